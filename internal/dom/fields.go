package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// IsField reports whether the element is a form control holding a value.
func (e *Element) IsField() bool {
	switch e.Tag() {
	case "input", "select", "textarea":
		return true
	default:
		return false
	}
}

// Fields returns the form controls inside e, in document order.
func (e *Element) Fields() []*Element {
	return e.Find(func(el *Element) bool { return el.IsField() })
}

// FieldByName returns the first control named name or nil.
func (e *Element) FieldByName(name string) *Element {
	return e.findFirst(func(el *Element) bool { return el.IsField() && el.Name() == name })
}

// Name returns the name attribute.
func (e *Element) Name() string {
	v, _ := e.Attr("name")
	return v
}

// Type returns the input type, defaulting to "text".
func (e *Element) Type() string {
	if e.Tag() != "input" {
		return e.Tag()
	}
	v, ok := e.Attr("type")
	if !ok || v == "" {
		return "text"
	}

	return strings.ToLower(v)
}

// Required reports whether the control carries the required attribute.
func (e *Element) Required() bool {
	_, ok := e.Attr("required")
	return ok
}

// Value returns the current control value.
func (e *Element) Value() string {
	switch e.Tag() {
	case "textarea":
		return e.Text()
	case "select":
		options := e.Options()
		for _, opt := range options {
			if _, ok := opt.Attr("selected"); ok {
				return opt.optionValue()
			}
		}
		if len(options) > 0 {
			return options[0].optionValue()
		}
		return ""
	default:
		v, _ := e.Attr("value")
		return v
	}
}

// SetValue writes a control value. For a select the matching option becomes
// the only selected one.
func (e *Element) SetValue(val string) {
	switch e.Tag() {
	case "textarea":
		e.SetText(val)
	case "select":
		for _, opt := range e.Options() {
			if opt.optionValue() == val {
				opt.SetAttr("selected", "")
			} else {
				opt.RemoveAttr("selected")
			}
		}
	default:
		e.SetAttr("value", val)
	}
}

// Options returns the option children of a select.
func (e *Element) Options() []*Element {
	return e.FindByTag("option")
}

// AppendOption adds an option with the given value and label.
func (e *Element) AppendOption(value, label string) *Element {
	opt := NewElement("option")
	opt.SetAttr("value", value)
	opt.node.AppendChild(&html.Node{Type: html.TextNode, Data: label})
	e.AppendChild(opt)

	return opt
}

func (e *Element) optionValue() string {
	if v, ok := e.Attr("value"); ok {
		return v
	}

	return strings.TrimSpace(e.Text())
}
