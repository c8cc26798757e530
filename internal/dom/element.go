package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a handle on an element node. Handles are cheap; two handles on the
// same node compare equal through Is.
type Element struct {
	node *html.Node
}

func wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}

	return &Element{node: n}
}

// NewElement creates a detached element with the given classes.
func NewElement(tag string, classes ...string) *Element {
	el := wrap(&html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))})
	for _, class := range classes {
		el.AddClass(class)
	}

	return el
}

// Node exposes the underlying html node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Is reports whether both handles point at the same node.
func (e *Element) Is(other *Element) bool {
	if e == nil || other == nil {
		return e == nil && other == nil
	}

	return e.node == other.node
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	if e.node.Type != html.ElementNode {
		return ""
	}

	return e.node.Data
}

// ID returns the id attribute.
func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}

	return "", false
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(key string) {
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	e.node.Attr = attrs
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the class list contains class.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.Classes() {
		if c == class {
			return true
		}
	}

	return false
}

// AddClass appends class unless it is already present.
func (e *Element) AddClass(class string) {
	if e.HasClass(class) {
		return
	}
	e.SetAttr("class", strings.Join(append(e.Classes(), class), " "))
}

// RemoveClass drops every occurrence of class.
func (e *Element) RemoveClass(class string) {
	if !e.HasClass(class) {
		return
	}
	kept := make([]string, 0, len(e.Classes()))
	for _, c := range e.Classes() {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// ToggleClass adds class when on is true and removes it otherwise.
func (e *Element) ToggleClass(class string, on bool) {
	if on {
		e.AddClass(class)
		return
	}
	e.RemoveClass(class)
}

// Style returns an inline style property.
func (e *Element) Style(prop string) string {
	for _, decl := range e.styleDecls() {
		if decl[0] == prop {
			return decl[1]
		}
	}

	return ""
}

// SetStyle sets an inline style property; an empty value removes it.
func (e *Element) SetStyle(prop, val string) {
	decls := e.styleDecls()
	out := make([]string, 0, len(decls)+1)
	found := false
	for _, decl := range decls {
		if decl[0] == prop {
			found = true
			if val == "" {
				continue
			}
			decl[1] = val
		}
		out = append(out, decl[0]+": "+decl[1])
	}
	if !found && val != "" {
		out = append(out, prop+": "+val)
	}
	if len(out) == 0 {
		e.RemoveAttr("style")
		return
	}
	e.SetAttr("style", strings.Join(out, "; "))
}

func (e *Element) styleDecls() [][2]string {
	raw, _ := e.Attr("style")
	var decls [][2]string
	for _, part := range strings.Split(raw, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		decls = append(decls, [2]string{strings.TrimSpace(prop), strings.TrimSpace(val)})
	}

	return decls
}

// Visible reports whether the inline style does not hide the element.
func (e *Element) Visible() bool {
	return e.Style("display") != "none"
}

// Parent returns the parent element or nil.
func (e *Element) Parent() *Element {
	p := e.node.Parent
	if p == nil {
		return nil
	}

	return wrap(p)
}

// Children returns the child elements, skipping text and comments.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, wrap(c))
		}
	}

	return out
}

// NextElement returns the next sibling element or nil.
func (e *Element) NextElement() *Element {
	for s := e.node.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return wrap(s)
		}
	}

	return nil
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}

	return false
}

// Find returns every descendant element matching pred, in document order.
func (e *Element) Find(pred func(*Element) bool) []*Element {
	var out []*Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				if el := wrap(c); pred(el) {
					out = append(out, el)
				}
			}
			walk(c)
		}
	}
	walk(e.node)

	return out
}

func (e *Element) findFirst(pred func(*Element) bool) *Element {
	var found *Element
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				if el := wrap(c); pred(el) {
					found = el
					return true
				}
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(e.node)

	return found
}

// FindByClass returns descendants carrying class.
func (e *Element) FindByClass(class string) []*Element {
	return e.Find(func(el *Element) bool { return el.HasClass(class) })
}

// FindFirstByClass returns the first descendant carrying class or nil.
func (e *Element) FindFirstByClass(class string) *Element {
	return e.findFirst(func(el *Element) bool { return el.HasClass(class) })
}

// FindByTag returns descendants with the tag name.
func (e *Element) FindByTag(tag string) []*Element {
	return e.Find(func(el *Element) bool { return el.Tag() == tag })
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)

	return sb.String()
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(text string) {
	e.clear()
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// InnerHTML renders the children.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}

	return buf.String()
}

// SetInnerHTML replaces the children with the parsed markup. Malformed markup is
// rejected and leaves the element untouched.
func (e *Element) SetInnerHTML(markup string) error {
	if err := CheckMarkup(markup); err != nil {
		return err
	}

	ctxNode := &html.Node{Type: html.ElementNode, Data: e.node.Data, DataAtom: e.node.DataAtom}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctxNode)
	if err != nil {
		return fmt.Errorf("failed to parse fragment: %w", err)
	}

	e.clear()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}

	return nil
}

// AppendChild attaches a detached element as the last child.
func (e *Element) AppendChild(child *Element) {
	child.Remove()
	e.node.AppendChild(child.node)
}

// InsertAfter places sibling directly after e.
func (e *Element) InsertAfter(sibling *Element) {
	parent := e.node.Parent
	if parent == nil {
		return
	}
	sibling.Remove()
	parent.InsertBefore(sibling.node, e.node.NextSibling)
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

func (e *Element) clear() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}
