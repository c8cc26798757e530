// Package dom is a small document model over golang.org/x/net/html.
// It gives the form components element handles with the handful of operations
// they need (class list, inline style, field values, fragment injection) without
// a browser.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Document is a parsed HTML page or fragment.
type Document struct {
	root *html.Node
}

// Parse reads markup from r and returns the parsed document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	return &Document{root: root}, nil
}

// ParseString parses markup held in a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Root returns the document node wrapped as an element.
func (d *Document) Root() *Element {
	return wrap(d.root)
}

// Body returns the body element, which always exists after parsing.
func (d *Document) Body() *Element {
	return d.Root().findFirst(func(e *Element) bool { return e.Tag() == "body" })
}

// ByID returns the element with the given id or nil.
func (d *Document) ByID(id string) *Element {
	if id == "" {
		return nil
	}

	return d.Root().findFirst(func(e *Element) bool { return e.ID() == id })
}

// FindByClass returns every element carrying the class, in document order.
func (d *Document) FindByClass(class string) []*Element {
	return d.Root().FindByClass(class)
}

// FindFirstByClass returns the first element carrying the class or nil.
func (d *Document) FindFirstByClass(class string) *Element {
	return d.Root().FindFirstByClass(class)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}

	return nil
}

func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)

	return buf.String()
}
