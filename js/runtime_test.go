package js

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/dop251/goja"
)

func TestRuntimeBasic(t *testing.T) {
	r := NewRuntime(nil)

	result, err := r.Execute("1 + 2")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ToInteger() != 3 {
		t.Errorf("Expected 3, got %v", result.ToInteger())
	}
}

func TestRuntimeVariables(t *testing.T) {
	r := NewRuntime(nil)

	if _, err := r.Execute("var x = 42;"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	result, err := r.Execute("x")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ToInteger() != 42 {
		t.Errorf("Expected 42, got %v", result.ToInteger())
	}
}

func TestRuntimeConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := NewRuntime(logger)

	if _, err := r.Execute(`console.log("hello", 1, null); console.warn("careful")`); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `msg="hello 1 null"`) {
		t.Errorf("Expected console.log message in output, got %q", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "careful") {
		t.Errorf("Expected console.warn at WARN level, got %q", out)
	}
	if !strings.Contains(out, "source=console") {
		t.Errorf("Expected source attribute, got %q", out)
	}
}

func TestRuntimeErrorHandling(t *testing.T) {
	r := NewRuntime(nil)

	var seen []error
	r.SetOnError(func(err error) {
		seen = append(seen, err)
	})

	if _, err := r.Execute("undefinedFunction()"); err == nil {
		t.Fatal("Expected error for undefined function")
	}
	if err := r.ExecuteScript("var = ;", "broken.js"); err == nil {
		t.Fatal("Expected syntax error")
	}

	if len(r.Errors()) != 2 {
		t.Errorf("Expected 2 recorded errors, got %d", len(r.Errors()))
	}
	if len(seen) != 2 {
		t.Errorf("Expected onError to be called twice, got %d", len(seen))
	}

	r.ClearErrors()
	if len(r.Errors()) != 0 {
		t.Errorf("Expected errors to be cleared, got %d", len(r.Errors()))
	}
}

func TestRuntimeExecuteScriptSource(t *testing.T) {
	r := NewRuntime(nil)

	err := r.ExecuteScript("throw new Error('boom')", "page.js")
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Expected thrown message in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "page.js") {
		t.Errorf("Expected script source in error, got %v", err)
	}
}

func TestRuntimeParseJSON(t *testing.T) {
	r := NewRuntime(nil)

	value, err := r.ParseJSON(`{"name": "Ada", "tags": ["a", "b"]}`)
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	obj := value.ToObject(r.VM())
	if got := obj.Get("name").String(); got != "Ada" {
		t.Errorf("Expected name Ada, got %q", got)
	}

	if _, err := r.ParseJSON("{not json"); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestRuntimeCallReturnsThrownErrors(t *testing.T) {
	r := NewRuntime(nil)

	if _, err := r.Execute("function thrower() { throw new TypeError('bad') }"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	fn, ok := goja.AssertFunction(r.VM().Get("thrower"))
	if !ok {
		t.Fatal("thrower is not callable")
	}
	_, err := r.call(fn, goja.Undefined())
	if err == nil {
		t.Fatal("Expected error from throwing function")
	}
	var exc *goja.Exception
	if !errors.As(err, &exc) {
		t.Errorf("Expected *goja.Exception, got %T", err)
	}
}
