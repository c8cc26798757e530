// Package page boots the interactive parts of the landing page on a document:
// fragments, the services dropdown, address autocomplete, the quote wizard and
// the counters. Every interaction is dispatched through the page's event loop.
package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/hestia/internal/animation"
	"github.com/UnknownOlympus/hestia/internal/autocomplete"
	"github.com/UnknownOlympus/hestia/internal/dom"
	"github.com/UnknownOlympus/hestia/internal/eventloop"
	"github.com/UnknownOlympus/hestia/internal/fragment"
	"github.com/UnknownOlympus/hestia/internal/geocoding"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/site"
	"github.com/UnknownOlympus/hestia/internal/submission"
	"github.com/UnknownOlympus/hestia/internal/validation"
	"github.com/UnknownOlympus/hestia/internal/wizard"
)

// AddressInputID is the input that gets address suggestions.
const AddressInputID = "address-autocomplete"

// Keys understood by KeyDown.
const (
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
	KeyEnter     = "Enter"
)

const loopBuffer = 64

// ErrNoForm is returned by form actions on a page without a quote form.
var ErrNoForm = errors.New("page has no quote form")

// Options wires a page to its collaborators. Loader, Provider and Transport
// are optional; the matching feature is then left out.
type Options struct {
	Loader          *fragment.Loader
	BaseURL         string
	Services        []models.Service
	Provider        geocoding.Provider
	Transport       submission.Transport
	Autocomplete    autocomplete.Config
	Wizard          wizard.Config
	CounterDuration time.Duration
	CounterStep     time.Duration
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
}

// Page is a booted document.
type Page struct {
	doc      *dom.Document
	loop     *eventloop.Loop
	cancel   context.CancelFunc
	log      *slog.Logger
	wizard   *wizard.Controller
	session  *autocomplete.Session
	counters []*animation.Counter
}

// Open loads the fragments into doc and starts the components found in it.
// A missing quote form is not an error; the rest of the page still works.
func Open(ctx context.Context, doc *dom.Document, opts Options) (*Page, error) {
	if opts.CounterDuration <= 0 {
		opts.CounterDuration = animation.DefaultDuration
	}
	if opts.CounterStep <= 0 {
		opts.CounterStep = animation.DefaultStep
	}

	if opts.Loader != nil {
		base := strings.TrimSuffix(opts.BaseURL, "/")
		mounts := make([]fragment.Mount, len(site.Mounts))
		for i, m := range site.Mounts {
			mounts[i] = fragment.Mount{URL: base + "/" + m.URL, PlaceholderID: m.PlaceholderID}
		}
		opts.Loader.LoadAll(ctx, doc, mounts)
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Page{doc: doc, loop: eventloop.New(loopBuffer), cancel: cancel, log: opts.Logger}
	go p.loop.Run(ctx)

	var bootErr error
	err := p.loop.Do(func() { bootErr = p.boot(ctx, opts) })
	if err == nil {
		err = bootErr
	}
	if err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

func (p *Page) boot(ctx context.Context, opts Options) error {
	site.PopulateServices(p.doc, opts.Services)

	// Timings published by the server fill what the caller left unset.
	published := site.FormSettings(p.doc)
	if opts.Autocomplete.Debounce <= 0 {
		opts.Autocomplete.Debounce = published.Debounce
	}
	if opts.Autocomplete.MinLength <= 0 {
		opts.Autocomplete.MinLength = published.MinQuery
	}
	if opts.Wizard.ResetDelay <= 0 {
		opts.Wizard.ResetDelay = published.ResetDelay
	}

	if opts.Transport != nil && p.doc.ByID(wizard.FormID) != nil {
		validator := validation.NewValidator(opts.Logger, opts.Metrics)
		controller, err := wizard.New(ctx, p.doc, p.loop, opts.Transport, validator, opts.Wizard, opts.Logger, opts.Metrics)
		if err != nil {
			return fmt.Errorf("failed to start quote form: %w", err)
		}
		p.wizard = controller
	}

	if input := p.doc.ByID(AddressInputID); input != nil && opts.Provider != nil {
		p.session = autocomplete.New(ctx, p.loop, opts.Provider, input, opts.Autocomplete, opts.Logger, opts.Metrics)
	}

	p.counters = animation.StartCounters(ctx, p.loop, p.doc, opts.CounterDuration, opts.CounterStep)
	p.log.DebugContext(ctx, "Page ready",
		"form", p.wizard != nil, "autocomplete", p.session != nil, "counters", len(p.counters))

	return nil
}

// Inspect runs fn on the loop with the document.
func (p *Page) Inspect(fn func(doc *dom.Document)) error {
	return p.loop.Do(func() { fn(p.doc) })
}

// Type replaces the value of the address input as a keystroke would.
func (p *Page) Type(text string) error {
	return p.loop.Do(func() {
		if p.session != nil {
			p.session.Input(text)
		}
	})
}

// KeyDown handles a key pressed in the address input. It reports whether the
// key was consumed by the suggestion list.
func (p *Page) KeyDown(key string) (bool, error) {
	var handled bool
	err := p.loop.Do(func() {
		if p.session == nil || !p.session.Open() {
			return
		}
		switch key {
		case KeyArrowDown:
			p.session.MoveNext()
			handled = true
		case KeyArrowUp:
			p.session.MovePrev()
			handled = true
		case KeyEnter:
			p.session.Confirm()
			handled = true
		}
	})

	return handled, err
}

// Click dispatches a click on the element with the given id.
func (p *Page) Click(id string) error {
	return p.loop.Do(func() {
		target := p.doc.ByID(id)
		if target == nil {
			return
		}
		if p.session != nil {
			p.session.ClickOutside(target)
		}
	})
}

// ClickSuggestion clicks the i-th rendered suggestion.
func (p *Page) ClickSuggestion(i int) error {
	return p.loop.Do(func() {
		if p.session == nil || p.session.List() == nil {
			return
		}
		items := p.session.List().Children()
		if i >= 0 && i < len(items) {
			p.session.ClickOutside(items[i])
		}
	})
}

// Next presses the next button of the quote form.
func (p *Page) Next() (bool, error) {
	var moved bool
	err := p.formDo(func(w *wizard.Controller) { moved = w.Next() })
	return moved, err
}

// Previous presses the previous button of the quote form.
func (p *Page) Previous() (bool, error) {
	var moved bool
	err := p.formDo(func(w *wizard.Controller) { moved = w.Previous() })
	return moved, err
}

// Submit submits the quote form.
func (p *Page) Submit() error {
	var submitErr error
	if err := p.formDo(func(w *wizard.Controller) { submitErr = w.Submit() }); err != nil {
		return err
	}

	return submitErr
}

// State returns the submission state of the quote form.
func (p *Page) State() (models.SubmissionState, error) {
	var state models.SubmissionState
	err := p.formDo(func(w *wizard.Controller) { state = w.State() })
	return state, err
}

func (p *Page) formDo(fn func(w *wizard.Controller)) error {
	if p.wizard == nil {
		return ErrNoForm
	}

	return p.loop.Do(func() { fn(p.wizard) })
}

// Close tears the page down: timers, queries and animations stop, then the
// loop exits.
func (p *Page) Close() {
	_ = p.loop.Do(func() {
		for _, c := range p.counters {
			c.Stop()
		}
		if p.session != nil {
			p.session.Stop()
		}
		if p.wizard != nil {
			p.wizard.Close()
		}
	})
	p.cancel()
	<-p.loop.Done()
}
