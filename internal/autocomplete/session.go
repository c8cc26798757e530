// Package autocomplete attaches address suggestions to a text input.
//
// A Session belongs to one event loop: every exported method must be called from
// a callback running on that loop. Provider queries run on their own goroutine
// and post their result back.
package autocomplete

import (
	"context"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/UnknownOlympus/hestia/internal/dom"
	"github.com/UnknownOlympus/hestia/internal/eventloop"
	"github.com/UnknownOlympus/hestia/internal/geocoding"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/microcosm-cc/bluemonday"
)

// Classes and attributes of the rendered list.
const (
	ListClass   = "autocomplete-items"
	ActiveClass = "autocomplete-active"
	IndexAttr   = "data-index"
)

// Defaults used when a Config field is zero.
const (
	DefaultDebounce  = 300 * time.Millisecond
	DefaultMinLength = 3
	DefaultTimeout   = 5 * time.Second
)

// Config tunes a Session.
type Config struct {
	Debounce     time.Duration // quiet period after the last keystroke
	MinLength    int           // shortest value sent to the provider, in characters
	Timeout      time.Duration // per-query deadline
	ProviderName string        // label for request metrics
}

// Session drives the suggestion list of a single input.
type Session struct {
	ctx      context.Context
	loop     eventloop.Scheduler
	provider geocoding.Provider
	input    *dom.Element
	cfg      Config
	log      *slog.Logger
	metrics  *metrics.Metrics
	policy   *bluemonday.Policy

	timer  eventloop.Timer
	cancel context.CancelFunc
	seq    uint64

	list   *dom.Element
	items  []models.Suggestion
	active int
}

// New creates a session for input. Queries derive from ctx, so cancelling it
// abandons any query in flight.
func New(
	ctx context.Context,
	loop eventloop.Scheduler,
	provider geocoding.Provider,
	input *dom.Element,
	cfg Config,
	log *slog.Logger,
	metrics *metrics.Metrics,
) *Session {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinLength
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	policy := bluemonday.NewPolicy()
	policy.AllowElements("strong")

	return &Session{
		ctx:      ctx,
		loop:     loop,
		provider: provider,
		input:    input,
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
		policy:   policy,
		active:   -1,
	}
}

// Input records a keystroke. The open list is closed, any pending or running
// query is abandoned and a new one is scheduled for when typing pauses.
func (s *Session) Input(text string) {
	s.input.SetValue(text)
	s.abandon()
	s.Close()
	s.timer = s.loop.AfterFunc(s.cfg.Debounce, s.fire)
}

// Open reports whether a suggestion list is shown.
func (s *Session) Open() bool {
	return s.list != nil
}

// Items returns the suggestions currently listed.
func (s *Session) Items() []models.Suggestion {
	return s.items
}

// Active returns the highlighted index, or -1.
func (s *Session) Active() int {
	return s.active
}

// List returns the rendered list element, or nil when closed.
func (s *Session) List() *dom.Element {
	return s.list
}

// Select writes the i-th suggestion into the input and closes the list.
func (s *Session) Select(i int) {
	if i < 0 || i >= len(s.items) {
		return
	}
	s.input.SetValue(s.items[i].Formatted)
	s.log.DebugContext(s.ctx, "Address selected", "place_id", s.items[i].ID)
	s.Close()
}

// Confirm selects the highlighted suggestion, if any.
func (s *Session) Confirm() {
	if s.active >= 0 {
		s.Select(s.active)
	}
}

// MoveNext highlights the next suggestion, wrapping to the first.
func (s *Session) MoveNext() {
	if len(s.items) == 0 {
		return
	}
	s.highlight((s.active + 1) % len(s.items))
}

// MovePrev highlights the previous suggestion, wrapping to the last.
func (s *Session) MovePrev() {
	if len(s.items) == 0 {
		return
	}
	idx := s.active - 1
	if idx < 0 {
		idx = len(s.items) - 1
	}
	s.highlight(idx)
}

// ClickOutside closes the list unless target is the input itself. A click on
// a list item selects that item.
func (s *Session) ClickOutside(target *dom.Element) {
	if target == nil || target.Is(s.input) {
		return
	}
	if s.list != nil && (target.Is(s.list) || s.list.Contains(target)) {
		for el := target; el != nil && !el.Is(s.list); el = el.Parent() {
			if raw, ok := el.Attr(IndexAttr); ok {
				if idx, err := strconv.Atoi(raw); err == nil {
					s.Select(idx)
				}
				return
			}
		}
		return
	}
	s.Close()
}

// Close removes the list.
func (s *Session) Close() {
	if s.list != nil {
		s.list.Remove()
	}
	s.list = nil
	s.items = nil
	s.active = -1
}

// Stop cancels the debounce timer and any query in flight.
func (s *Session) Stop() {
	s.abandon()
	s.Close()
}

func (s *Session) abandon() {
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) fire() {
	s.timer = nil
	text := strings.TrimSpace(s.input.Value())
	if utf8.RuneCountInString(text) < s.cfg.MinLength {
		return
	}

	seq := s.seq
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.Timeout)
	s.cancel = cancel

	go func() {
		defer cancel()
		start := time.Now()
		suggestions, err := s.provider.Suggest(ctx, text)
		s.metrics.RequestSeconds.WithLabelValues(s.cfg.ProviderName).Observe(time.Since(start).Seconds())

		s.loop.Post(func() { s.deliver(seq, text, suggestions, err) })
	}()
}

func (s *Session) deliver(seq uint64, text string, suggestions []models.Suggestion, err error) {
	if seq != s.seq {
		s.metrics.SuggestQueries.WithLabelValues("stale").Inc()
		return
	}
	s.cancel = nil

	if err != nil {
		s.metrics.SuggestQueries.WithLabelValues("failure").Inc()
		s.metrics.ProviderErrors.Inc()
		s.log.ErrorContext(s.ctx, "Error fetching autocomplete suggestions", "text", text, "error", err)
		return
	}
	s.metrics.SuggestQueries.WithLabelValues("success").Inc()

	if len(suggestions) == 0 {
		return
	}
	s.render(text, suggestions)
}

func (s *Session) render(text string, suggestions []models.Suggestion) {
	list := dom.NewElement("div", ListClass)
	for i, suggestion := range suggestions {
		item := dom.NewElement("div")
		item.SetAttr(IndexAttr, strconv.Itoa(i))
		if err := item.SetInnerHTML(s.Highlight(suggestion.Formatted, text)); err != nil {
			item.SetText(suggestion.Formatted)
		}
		list.AppendChild(item)
	}

	s.input.InsertAfter(list)
	s.list = list
	s.items = suggestions
	s.active = -1
}

func (s *Session) highlight(idx int) {
	for i, item := range s.list.Children() {
		item.ToggleClass(ActiveClass, i == idx)
	}
	s.active = idx
}

// Highlight returns escaped markup of formatted with the first case-insensitive
// occurrence of typed wrapped in <strong>.
func (s *Session) Highlight(formatted, typed string) string {
	var markup string
	lowerFormatted, lowerTyped := strings.ToLower(formatted), strings.ToLower(typed)
	idx := strings.Index(lowerFormatted, lowerTyped)
	// byte offsets are only valid while lowering keeps lengths
	if typed == "" || idx < 0 || len(lowerFormatted) != len(formatted) || len(lowerTyped) != len(typed) {
		markup = html.EscapeString(formatted)
	} else {
		end := idx + len(typed)
		markup = html.EscapeString(formatted[:idx]) +
			"<strong>" + html.EscapeString(formatted[idx:end]) + "</strong>" +
			html.EscapeString(formatted[end:])
	}

	return s.policy.Sanitize(markup)
}
