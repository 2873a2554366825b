package dom

import (
	"testing"
)

func TestNewDocument(t *testing.T) {
	doc := NewDocument()
	if doc == nil {
		t.Fatal("NewDocument returned nil")
	}
	if doc.NodeType() != DocumentNode {
		t.Errorf("Expected DocumentNode, got %v", doc.NodeType())
	}
	if doc.NodeName() != "#document" {
		t.Errorf("Expected '#document', got %s", doc.NodeName())
	}
	if doc.AsNode().OwnerDocument() != nil {
		t.Error("Document should not report an owner document")
	}
}

func TestDocument_CreateElement(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")

	if el.TagName() != "DIV" {
		t.Errorf("Expected tagName 'DIV', got '%s'", el.TagName())
	}
	if el.LocalName() != "div" {
		t.Errorf("Expected localName 'div', got '%s'", el.LocalName())
	}
	if el.AsNode().OwnerDocument() != doc {
		t.Error("Element should be owned by the creating document")
	}
	if el.AsNode().IsConnected() {
		t.Error("A created element should not be connected")
	}
}

func TestElement_Attributes(t *testing.T) {
	doc := NewDocument()
	el := doc.CreateElement("div")

	el.SetAttribute("ID", "main")
	el.SetClassName("card  wide card")

	if el.Id() != "main" {
		t.Errorf("Expected id 'main', got '%s'", el.Id())
	}
	if !el.HasClass("wide") || el.HasClass("car") {
		t.Errorf("Unexpected class membership for %q", el.ClassName())
	}
	classes := el.ClassList()
	if len(classes) != 2 || classes[0] != "card" || classes[1] != "wide" {
		t.Errorf("Expected [card wide], got %v", classes)
	}
	if got := el.Descriptor(); got != "div#main.card.wide" {
		t.Errorf("Expected descriptor 'div#main.card.wide', got '%s'", got)
	}

	el.RemoveAttribute("id")
	if el.HasAttribute("id") {
		t.Error("id attribute should be removed")
	}
}

func TestNode_AppendChild(t *testing.T) {
	doc := NewDocument()
	parent := doc.CreateElement("div")
	child := doc.CreateElement("span")

	if _, err := parent.AppendChild(child.AsNode()); err != nil {
		t.Fatalf("AppendChild failed: %v", err)
	}
	if child.AsNode().ParentNode() != parent.AsNode() {
		t.Error("Child's parent should be the div")
	}
	if parent.AsNode().FirstChild() != child.AsNode() || parent.AsNode().LastChild() != child.AsNode() {
		t.Error("Child should be the only child")
	}
}

func TestNode_AppendChild_RejectsAncestor(t *testing.T) {
	doc := NewDocument()
	outer := doc.CreateElement("div")
	inner := doc.CreateElement("div")
	_, _ = outer.AppendChild(inner.AsNode())

	_, err := inner.AppendChild(outer.AsNode())
	if err == nil {
		t.Fatal("Expected HierarchyRequestError")
	}
	if domErr, ok := err.(*DOMError); !ok || domErr.Name != "HierarchyRequestError" {
		t.Errorf("Expected HierarchyRequestError, got %v", err)
	}
}

func TestNode_InsertBefore(t *testing.T) {
	doc := NewDocument()
	parent := doc.CreateElement("ul").AsNode()
	a := doc.CreateElement("li").AsNode()
	b := doc.CreateElement("li").AsNode()

	_, _ = parent.AppendChild(b)
	if _, err := parent.InsertBefore(a, b); err != nil {
		t.Fatalf("InsertBefore failed: %v", err)
	}
	children := parent.ChildNodes()
	if len(children) != 2 || children[0] != a || children[1] != b {
		t.Errorf("Unexpected child order: %v", children)
	}
	if a.NextSibling() != b || b.PreviousSibling() != a {
		t.Error("Sibling pointers not linked")
	}
}

func TestNode_RemoveChild(t *testing.T) {
	doc := NewDocument()
	parent := doc.CreateElement("div").AsNode()
	child := doc.CreateElement("span").AsNode()
	_, _ = parent.AppendChild(child)

	if _, err := parent.RemoveChild(child); err != nil {
		t.Fatalf("RemoveChild failed: %v", err)
	}
	if child.ParentNode() != nil {
		t.Error("Removed child should have no parent")
	}
	if parent.HasChildNodes() {
		t.Error("Parent should have no children")
	}
	if _, err := parent.RemoveChild(child); err == nil {
		t.Error("Removing a non-child should fail")
	}
}

func TestNode_IsConnected(t *testing.T) {
	doc, err := ParseHTML(`<div id="a"><span id="b"></span></div>`)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	b := doc.GetElementById("b").AsNode()
	if !b.IsConnected() {
		t.Error("Parsed element should be connected")
	}

	a := doc.GetElementById("a")
	a.Remove()
	if b.IsConnected() {
		t.Error("Descendant of a removed element should be disconnected")
	}
	if !a.AsNode().Contains(b) {
		t.Error("Removed subtree should still contain its descendants")
	}
}

func TestNode_TextContent(t *testing.T) {
	doc, _ := ParseHTML(`<p id="p">Hello <b>World</b><!-- note --></p>`)
	if got := doc.GetElementById("p").TextContent(); got != "Hello World" {
		t.Errorf("Expected 'Hello World', got '%s'", got)
	}
}

func TestDocument_GetElementById(t *testing.T) {
	doc, _ := ParseHTML(`<div><p id="first">1</p><p id="first">2</p></div>`)

	el := doc.GetElementById("first")
	if el == nil {
		t.Fatal("Expected element with id 'first'")
	}
	if el.TextContent() != "1" {
		t.Errorf("Expected the first match in tree order, got '%s'", el.TextContent())
	}
	if doc.GetElementById("missing") != nil {
		t.Error("Expected nil for a missing id")
	}
	if doc.GetElementById("") != nil {
		t.Error("Expected nil for the empty id")
	}
}

func TestDocument_GetElementsByClassName(t *testing.T) {
	doc, _ := ParseHTML(`<body>
		<div id="box" class="item"><span class="item x"></span></div>
		<p class="item"></p>
		<p class="other"></p>
	</body>`)

	items := doc.GetElementsByClassName("item")
	if items.Length() != 3 {
		t.Errorf("Expected 3 items, got %d", items.Length())
	}
	both := doc.GetElementsByClassName("item x")
	if both.Length() != 1 {
		t.Errorf("Expected 1 element with both classes, got %d", both.Length())
	}
	scoped := doc.GetElementById("box").GetElementsByClassName("item")
	if scoped.Length() != 1 || scoped.Item(0).LocalName() != "span" {
		t.Error("Element-scoped lookup should only see descendants")
	}
	if doc.GetElementsByClassName("  ").Length() != 0 {
		t.Error("An empty class list should match nothing")
	}
}

func TestHTMLCollection_IsLive(t *testing.T) {
	doc, _ := ParseHTML(`<body><p class="a"></p></body>`)
	items := doc.GetElementsByClassName("a")
	if items.Length() != 1 {
		t.Fatalf("Expected 1, got %d", items.Length())
	}

	extra := doc.CreateElement("p")
	extra.SetClassName("a")
	_, _ = doc.Body().AppendChild(extra.AsNode())

	if items.Length() != 2 {
		t.Errorf("Collection should reflect the appended element, got %d", items.Length())
	}
	if items.Item(5) != nil {
		t.Error("Out of range Item should be nil")
	}
}

func TestParseHTMLFragment(t *testing.T) {
	doc := NewDocument()
	nodes, err := ParseHTMLFragment(doc, `<li class="x">one</li><li>two</li>`)
	if err != nil {
		t.Fatalf("ParseHTMLFragment failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("Expected 2 nodes, got %d", len(nodes))
	}
	for _, n := range nodes {
		if n.ParentNode() != nil {
			t.Error("Fragment nodes should be detached")
		}
		if n.OwnerDocument() != doc {
			t.Error("Fragment nodes should be owned by doc")
		}
	}
	if !nodes[0].AsElement().HasClass("x") {
		t.Error("Attributes should survive fragment parsing")
	}
}
