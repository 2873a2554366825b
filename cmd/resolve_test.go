package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPage = `<!DOCTYPE html>
<html><body>
	<h1 id="title" data-bind="text: title">x</h1>
	<ul id="list">
		<li class="item">a</li>
		<li class="item">b</li>
	</ul>
	<li class="item" id="outside">c</li>
	<p id="both" data-bind="text: 'markup'">x</p>
	<script>
		bindings.setBinding({'.item': {css: 'item'}}, document.getElementById('list'));
		bindings.setBindingById('both', {text: function () { return {text: 'registry ' + this.title}; }});
	</script>
</body></html>`

type output struct {
	Node     string         `json:"node"`
	Bindings map[string]any `json:"bindings"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func runJSON(t *testing.T, args ...string) []output {
	t.Helper()
	stdout, stderr, err := run(t, append(args, "--output", "json")...)
	require.NoError(t, err, stderr)
	var results []output
	require.NoError(t, json.Unmarshal([]byte(stdout), &results), stdout)
	return results
}

func byNode(results []output) map[string][]map[string]any {
	m := make(map[string][]map[string]any)
	for _, r := range results {
		m[r.Node] = append(m[r.Node], r.Bindings)
	}
	return m
}

func TestResolve_RegistryLast(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", testPage)
	data := writeFile(t, dir, "data.json", `{"title": "Hello"}`)

	results := runJSON(t, "resolve", page, "--data", data)
	nodes := byNode(results)

	require.Equal(t, []map[string]any{{"text": "Hello"}}, nodes["h1#title"])
	require.Len(t, nodes["li.item"], 2, "container scopes class selectors")
	require.Equal(t, map[string]any{"css": "item"}, nodes["li.item"][0])
	require.Nil(t, nodes["li#outside.item"])
	require.Equal(t, []map[string]any{{"text": "markup"}}, nodes["p#both"])
}

func TestResolve_RegistryFirst(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", testPage)
	data := writeFile(t, dir, "data.json", `{"title": "Hello"}`)

	results := runJSON(t, "resolve", page, "--data", data, "--order", "registry-first")
	nodes := byNode(results)

	require.Equal(t, []map[string]any{{"text": "registry Hello"}}, nodes["p#both"])
	require.Equal(t, []map[string]any{{"text": "Hello"}}, nodes["h1#title"])
}

func TestResolve_DocumentOrder(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", testPage)
	data := writeFile(t, dir, "data.json", `{"title": "Hello"}`)

	results := runJSON(t, "resolve", page, "--data", data)
	var order []string
	for _, r := range results {
		order = append(order, r.Node)
	}
	require.Equal(t, []string{"h1#title", "li.item", "li.item", "p#both"}, order)
}

func TestResolve_YAMLOutput(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", testPage)
	data := writeFile(t, dir, "data.json", `{"title": "Hello"}`)

	stdout, stderr, err := run(t, "resolve", page, "--data", data)
	require.NoError(t, err, stderr)
	require.True(t, strings.HasPrefix(stdout, "- node: h1#title\n  bindings:\n    text: Hello\n"), stdout)
}

func TestResolve_ScriptFlagAndExternalScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.js", `bindings.setBindingById('title', {visible: true});`)
	page := writeFile(t, dir, "page.html", `<html><body>
		<h1 id="title">x</h1><p class="note">n</p>
		<script src="lib.js"></script>
	</body></html>`)
	extra := writeFile(t, dir, "extra.js", `bindings.setBindingByClassName('note', {text: 'note'});`)

	results := runJSON(t, "resolve", page, "--script", extra)
	nodes := byNode(results)

	require.Equal(t, []map[string]any{{"visible": true}}, nodes["h1#title"])
	require.Equal(t, []map[string]any{{"text": "note"}}, nodes["p.note"])
}

func TestResolve_CustomAttribute(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", `<html><body>
		<p id="a" data-view="text: 'view'">x</p>
		<p id="b" data-bind="text: 'bind'">x</p>
	</body></html>`)

	results := runJSON(t, "resolve", page, "--attribute", "data-view")
	require.Len(t, results, 1)
	require.Equal(t, "p#a", results[0].Node)
}

func TestResolve_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", testPage)
	data := writeFile(t, dir, "data.json", `{"title": "Hello"}`)
	cfg := writeFile(t, dir, "elementbind.yaml", "resolver_order: registry-first\noutput: json\n")

	stdout, stderr, err := run(t, "--config", cfg, "resolve", page, "--data", data)
	require.NoError(t, err, stderr)
	require.Contains(t, stdout, `"text": "registry Hello"`)
}

func TestResolve_FailingPageScriptIsLogged(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", `<html><body>
		<p id="a" data-bind="text: 'ok'">x</p>
		<script>throw new Error('page script broke');</script>
	</body></html>`)

	stdout, stderr, err := run(t, "resolve", page, "--output", "json")
	require.NoError(t, err)
	require.Contains(t, stderr, "page script broke")
	require.Contains(t, stdout, `"p#a"`)
}

func TestResolve_NodeFailuresStillPrintOthers(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", `<html><body>
		<p id="bad" data-bind="text: missing.name">x</p>
		<p id="good" data-bind="text: 'ok'">x</p>
	</body></html>`)

	stdout, _, err := run(t, "resolve", page, "--output", "json")
	require.Error(t, err)
	require.Contains(t, err.Error(), "p#bad")
	require.Contains(t, stdout, `"p#good"`)
	require.NotContains(t, stdout, `"p#bad"`)
}

func TestResolve_Errors(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "page.html", testPage)

	_, _, err := run(t, "resolve", filepath.Join(dir, "missing.html"))
	require.Error(t, err)

	_, _, err = run(t, "resolve", page, "--output", "xml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "output")

	bad := writeFile(t, dir, "bad.json", `{nope`)
	_, _, err = run(t, "resolve", page, "--data", bad)
	require.Error(t, err)

	broken := writeFile(t, dir, "broken.js", `bindings.setBinding(`)
	_, _, err = run(t, "resolve", page, "--script", broken)
	require.Error(t, err)

	_, _, err = run(t, "resolve")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	require.Contains(t, stdout, "elementbind version")
}

func TestResolve_RemotePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app/index.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><p id="greeting">x</p><script src="bindings.js"></script></body></html>`))
		case "/app/bindings.js":
			w.Header().Set("Content-Type", "text/javascript")
			_, _ = w.Write([]byte(`bindings.setBindingById('greeting', {text: 'remote'});`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	results := runJSON(t, "resolve", server.URL+"/app/index.html")
	require.Len(t, results, 1)
	require.Equal(t, "p#greeting", results[0].Node)
	require.Equal(t, map[string]any{"text": "remote"}, results[0].Bindings)
}
