package js

import (
	"fmt"
	"strings"

	"github.com/chrisuehlinger/elementbind/dom"
)

// ScriptLoader fetches the source of an external script given its src attribute.
type ScriptLoader func(src string) (string, error)

// ScriptExecutor runs the scripts of a document against a runtime.
type ScriptExecutor struct {
	runtime *Runtime
	loader  ScriptLoader
}

// NewScriptExecutor creates a new script executor. External scripts are
// skipped when loader is nil.
func NewScriptExecutor(runtime *Runtime, loader ScriptLoader) *ScriptExecutor {
	return &ScriptExecutor{runtime: runtime, loader: loader}
}

// Runtime returns the JavaScript runtime.
func (se *ScriptExecutor) Runtime() *Runtime {
	return se.runtime
}

// ExecuteScripts finds and executes all script elements in the document,
// in document order. A failing script does not stop the ones after it.
func (se *ScriptExecutor) ExecuteScripts(doc *dom.Document) []error {
	scripts := doc.GetElementsByTagName("script").ToSlice()
	var errs []error
	for _, script := range scripts {
		if err := se.executeScript(script); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// executeScript executes a single script element.
func (se *ScriptExecutor) executeScript(script *dom.Element) error {
	// No type means JavaScript.
	scriptType := strings.ToLower(strings.TrimSpace(script.GetAttribute("type")))
	if scriptType != "" && scriptType != "text/javascript" && scriptType != "application/javascript" {
		return nil
	}

	if src := script.GetAttribute("src"); src != "" {
		if se.loader == nil {
			return nil
		}
		content, err := se.loader(src)
		if err != nil {
			return fmt.Errorf("loading script %q: %w", src, err)
		}
		return se.ExecuteExternalScript(content, src)
	}

	code := strings.TrimSpace(script.TextContent())
	if code == "" {
		return nil
	}

	id := script.GetAttribute("id")
	if id == "" {
		id = "inline"
	}
	return se.runtime.ExecuteScript(code, id)
}

// ExecuteExternalScript executes an external script with the given content.
// The scriptURL is used for error reporting.
func (se *ScriptExecutor) ExecuteExternalScript(content string, scriptURL string) error {
	code := strings.TrimSpace(content)
	if code == "" {
		return nil
	}
	return se.runtime.ExecuteScript(code, scriptURL)
}
