package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrMalformed is returned for markup with stray or unclosed elements.
var ErrMalformed = errors.New("malformed markup")

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// Elements whose end tag may be omitted.
var optionalEnd = map[string]bool{
	"html": true, "head": true, "body": true, "p": true, "li": true, "dt": true, "dd": true,
	"option": true, "optgroup": true, "tr": true, "td": true, "th": true, "thead": true,
	"tbody": true, "tfoot": true, "colgroup": true, "caption": true, "rb": true, "rt": true, "rp": true,
}

// CheckMarkup reports ErrMalformed when an end tag has no open element to close,
// or when an element that requires an end tag is left open.
func CheckMarkup(markup string) error {
	var stack []string
	z := html.NewTokenizer(strings.NewReader(markup))

	for {
		switch z.Next() {
		case html.ErrorToken:
			if !errors.Is(z.Err(), io.EOF) {
				return fmt.Errorf("%w: %w", ErrMalformed, z.Err())
			}
			for _, open := range stack {
				if !optionalEnd[open] {
					return fmt.Errorf("%w: <%s> is never closed", ErrMalformed, open)
				}
			}
			return nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); !voidElements[tag] {
				stack = append(stack, tag)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if voidElements[tag] {
				continue
			}
			idx := lastIndex(stack, tag)
			if idx < 0 {
				return fmt.Errorf("%w: stray </%s>", ErrMalformed, tag)
			}
			for _, open := range stack[idx+1:] {
				if !optionalEnd[open] {
					return fmt.Errorf("%w: <%s> closed by </%s>", ErrMalformed, open, tag)
				}
			}
			stack = stack[:idx]
		default:
			// text, comments, doctype and self-closing tags need no bookkeeping
		}
	}
}

func lastIndex(stack []string, tag string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == tag {
			return i
		}
	}

	return -1
}
