package js

import (
	"testing"

	"github.com/chrisuehlinger/elementbind/dom"
)

const testPage = `<!DOCTYPE html>
<html><body>
	<div id="list">
		<p class="row" id="r1">one</p>
		<p class="row">two</p>
	</div>
	<span id="title" class="big">Title</span>
</body></html>`

func newTestBinder(t *testing.T) (*dom.Document, *DOMBinder) {
	t.Helper()
	doc, err := dom.ParseHTML(testPage)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	binder := NewDOMBinder(NewRuntime(nil))
	binder.BindDocument(doc)
	t.Cleanup(func() { dom.ClearMutationCallbacks(doc) })
	return doc, binder
}

func mustExecute(t *testing.T, r *Runtime, code string) string {
	t.Helper()
	result, err := r.Execute(code)
	if err != nil {
		t.Fatalf("Execute(%q) failed: %v", code, err)
	}
	return result.String()
}

func TestDOMBinderDocument(t *testing.T) {
	_, binder := newTestBinder(t)
	r := binder.Runtime()

	if got := mustExecute(t, r, "document.nodeType"); got != "9" {
		t.Errorf("Expected nodeType 9, got %s", got)
	}
	if got := mustExecute(t, r, "document.documentElement.tagName"); got != "HTML" {
		t.Errorf("Expected HTML, got %s", got)
	}
	if got := mustExecute(t, r, "document.body.tagName"); got != "BODY" {
		t.Errorf("Expected BODY, got %s", got)
	}
	if got := mustExecute(t, r, "document.getElementById('title').textContent"); got != "Title" {
		t.Errorf("Expected Title, got %s", got)
	}
	if got := mustExecute(t, r, "document.getElementById('missing')"); got != "null" {
		t.Errorf("Expected null for missing id, got %s", got)
	}
}

func TestDOMBinderIdentity(t *testing.T) {
	_, binder := newTestBinder(t)
	r := binder.Runtime()

	got := mustExecute(t, r, "document.getElementById('r1') === document.getElementsByClassName('row')[0]")
	if got != "true" {
		t.Errorf("Expected the same object for the same node, got %s", got)
	}
	got = mustExecute(t, r, "document.getElementById('r1').parentNode === document.getElementById('list')")
	if got != "true" {
		t.Errorf("Expected parentNode identity, got %s", got)
	}
}

func TestDOMBinderGoNode(t *testing.T) {
	doc, binder := newTestBinder(t)
	r := binder.Runtime()

	value, err := r.Execute("document.getElementById('title')")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if binder.GoNode(value) != doc.GetElementById("title").AsNode() {
		t.Error("GoNode did not return the bound node")
	}

	value, _ = r.Execute("({})")
	if binder.GoNode(value) != nil {
		t.Error("Expected nil for a plain object")
	}
	if binder.GoNode(nil) != nil {
		t.Error("Expected nil for a nil value")
	}
}

func TestDOMBinderAttributes(t *testing.T) {
	doc, binder := newTestBinder(t)
	r := binder.Runtime()

	mustExecute(t, r, "var el = document.getElementById('title'); el.setAttribute('data-x', 'y'); el.className = 'big bold'")

	title := doc.GetElementById("title")
	if got := title.GetAttribute("data-x"); got != "y" {
		t.Errorf("Expected data-x=y, got %q", got)
	}
	if !title.HasClass("bold") {
		t.Error("Expected className setter to update classes")
	}
	if got := mustExecute(t, r, "el.getAttribute('nope')"); got != "null" {
		t.Errorf("Expected null for missing attribute, got %s", got)
	}

	mustExecute(t, r, "el.id = 'heading'")
	if doc.GetElementById("heading") == nil {
		t.Error("Expected id setter to update the element")
	}
}

func TestDOMBinderTreeMutation(t *testing.T) {
	doc, binder := newTestBinder(t)
	r := binder.Runtime()

	mustExecute(t, r, `
		var list = document.getElementById('list');
		var p = document.createElement('p');
		p.className = 'row';
		p.appendChild(document.createTextNode('three'));
		list.appendChild(p);
	`)

	if got := doc.GetElementsByClassName("row").Length(); got != 3 {
		t.Errorf("Expected 3 rows after append, got %d", got)
	}
	if got := mustExecute(t, r, "p.isConnected"); got != "true" {
		t.Errorf("Expected appended node to be connected, got %s", got)
	}

	mustExecute(t, r, "list.removeChild(p)")
	if got := mustExecute(t, r, "p.isConnected"); got != "false" {
		t.Errorf("Expected removed node to be detached, got %s", got)
	}

	mustExecute(t, r, "document.getElementById('r1').remove()")
	if doc.GetElementById("r1") != nil {
		t.Error("Expected remove() to detach the element")
	}
}

func TestDOMBinderAppendChildHierarchyError(t *testing.T) {
	_, binder := newTestBinder(t)
	r := binder.Runtime()

	_, err := r.Execute("document.getElementById('list').appendChild(document.body)")
	if err == nil {
		t.Fatal("Expected hierarchy error when appending an ancestor")
	}
}

func TestDOMBinderClassNameQueryIsSnapshot(t *testing.T) {
	_, binder := newTestBinder(t)
	r := binder.Runtime()

	got := mustExecute(t, r, `
		var rows = document.getElementsByClassName('row');
		var extra = document.createElement('p');
		extra.className = 'row';
		document.body.appendChild(extra);
		rows.length + ',' + document.getElementsByClassName('row').length
	`)
	if got != "2,3" {
		t.Errorf("Expected snapshot then fresh query, got %s", got)
	}
}

func TestDOMBinderInsertAdjacentHTML(t *testing.T) {
	doc, binder := newTestBinder(t)
	r := binder.Runtime()

	mustExecute(t, r, `
		var list = document.getElementById('list');
		list.insertAdjacentHTML('beforeend', '<p class="row" id="r3">three</p>');
		list.insertAdjacentHTML('afterbegin', '<p class="row" id="r0">zero</p>');
		list.insertAdjacentHTML('afterend', '<hr id="rule">');
	`)

	rows := doc.GetElementsByClassName("row").ToSlice()
	var ids []string
	for _, row := range rows {
		ids = append(ids, row.Id())
	}
	if got := len(ids); got != 4 || ids[0] != "r0" || ids[3] != "r3" {
		t.Errorf("Expected r0 first and r3 last, got %v", ids)
	}
	rule := doc.GetElementById("rule")
	if rule == nil || rule.AsNode().PreviousSibling() != doc.GetElementById("list").AsNode() {
		t.Error("Expected hr right after the list")
	}

	if _, err := r.Execute("list.insertAdjacentHTML('sideways', '<p></p>')"); err == nil {
		t.Error("Expected error for an invalid position")
	}
}
