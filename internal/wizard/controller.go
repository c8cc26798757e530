// Package wizard drives the multi-step quote form: step navigation with
// validation, the review step, progress indicators and the submission
// lifecycle.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/hestia/internal/dom"
	"github.com/UnknownOlympus/hestia/internal/eventloop"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/quote"
	"github.com/UnknownOlympus/hestia/internal/submission"
	"github.com/UnknownOlympus/hestia/internal/validation"
	"github.com/microcosm-cc/bluemonday"
)

// Element handles looked up at construction.
const (
	FormID        = "multiStepForm"
	ReviewID      = "review-details"
	ProgressID    = "progress"
	SuccessID     = "formSuccessMessage"
	StepClass     = "form-step"
	PrevClass     = "btn-prev"
	NextClass     = "btn-next"
	SubmitClass   = "btn-submit"
	NavClass      = "form-navigation"
	ProgressClass = "progress-step"
	BarClass      = "progressbar"
	ErrorClass    = "form-error"
	ActiveClass   = "active"
)

// Defaults used when a Config field is zero.
const (
	DefaultResetDelay  = 5 * time.Second
	DefaultSendTimeout = 30 * time.Second
)

// MsgSubmitFailed is shown above the navigation when the transport fails.
const MsgSubmitFailed = "Sorry, we could not send your request. Please try again."

var (
	ErrMissingElement = errors.New("required form element missing")
	ErrTooFewSteps    = errors.New("form needs at least two steps")
	ErrInvalid        = errors.New("step failed validation")
	ErrInFlight       = errors.New("submission already in flight")
)

// Config tunes a Controller.
type Config struct {
	ResetDelay  time.Duration // how long the success message stays before the form reverts
	SendTimeout time.Duration // deadline of a single transport call
}

type fieldDefault struct {
	field *dom.Element
	value string
}

// Controller owns the form for its whole life. All methods must run on the
// loop passed to New.
type Controller struct {
	ctx       context.Context
	cancel    context.CancelFunc
	loop      eventloop.Scheduler
	transport submission.Transport
	validator *validation.Validator
	cfg       Config
	log       *slog.Logger
	metrics   *metrics.Metrics
	policy    *bluemonday.Policy

	form        *dom.Element
	steps       []*dom.Element
	prev        *dom.Element
	next        *dom.Element
	submit      *dom.Element
	nav         *dom.Element
	review      *dom.Element
	indicators  []*dom.Element
	progress    *dom.Element
	progressbar *dom.Element
	success     *dom.Element
	defaults    []fieldDefault

	current    int
	state      models.SubmissionState
	inFlight   bool
	resetTimer eventloop.Timer
	receipt    *models.Receipt
}

// New collects the form handles from doc and shows the first step.
func New(
	ctx context.Context,
	doc *dom.Document,
	loop eventloop.Scheduler,
	transport submission.Transport,
	validator *validation.Validator,
	cfg Config,
	log *slog.Logger,
	metrics *metrics.Metrics,
) (*Controller, error) {
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = DefaultResetDelay
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}

	form := doc.ByID(FormID)
	if form == nil {
		return nil, fmt.Errorf("%w: #%s", ErrMissingElement, FormID)
	}

	c := &Controller{
		loop:        loop,
		transport:   transport,
		validator:   validator,
		cfg:         cfg,
		log:         log,
		metrics:     metrics,
		form:        form,
		steps:       form.FindByClass(StepClass),
		prev:        form.FindFirstByClass(PrevClass),
		next:        form.FindFirstByClass(NextClass),
		submit:      form.FindFirstByClass(SubmitClass),
		nav:         form.FindFirstByClass(NavClass),
		review:      doc.ByID(ReviewID),
		indicators:  doc.FindByClass(ProgressClass),
		progress:    doc.ByID(ProgressID),
		progressbar: doc.FindFirstByClass(BarClass),
		success:     doc.ByID(SuccessID),
	}

	required := []struct {
		el   *dom.Element
		name string
	}{
		{c.prev, "." + PrevClass},
		{c.next, "." + NextClass},
		{c.submit, "." + SubmitClass},
		{c.review, "#" + ReviewID},
		{c.success, "#" + SuccessID},
	}
	for _, r := range required {
		if r.el == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingElement, r.name)
		}
	}
	if len(c.steps) < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrTooFewSteps, len(c.steps))
	}

	for _, field := range form.Fields() {
		c.defaults = append(c.defaults, fieldDefault{field: field, value: field.Value()})
	}

	c.policy = bluemonday.NewPolicy()
	c.policy.AllowElements("p", "strong", "br")
	c.policy.AllowAttrs("class").OnElements("p")

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.render()

	return c, nil
}

// Current returns the active step index.
func (c *Controller) Current() int {
	return c.current
}

// Steps returns the number of steps.
func (c *Controller) Steps() int {
	return len(c.steps)
}

// State returns the submission state.
func (c *Controller) State() models.SubmissionState {
	return c.state
}

// InFlight reports whether a transport call has not completed yet.
func (c *Controller) InFlight() bool {
	return c.inFlight
}

// Receipt returns the receipt of the last accepted submission.
func (c *Controller) Receipt() *models.Receipt {
	return c.receipt
}

// Next advances when the current step validates. Entering the last step fills
// the review.
func (c *Controller) Next() bool {
	if c.current >= len(c.steps)-1 || c.state != models.SubmissionIdle {
		return false
	}
	if !c.validator.ValidateStep(c.steps[c.current]) {
		return false
	}

	c.current++
	if c.current == len(c.steps)-1 {
		c.populateReview()
	}
	c.render()

	return true
}

// Previous goes back one step without validating.
func (c *Controller) Previous() bool {
	if c.current == 0 || c.state != models.SubmissionIdle {
		return false
	}

	c.current--
	c.render()

	return true
}

// Submit sends the quote from the last step. Before the last step it acts
// like Next. A failed honeypot check drops the submission silently.
func (c *Controller) Submit() error {
	if c.inFlight || c.state != models.SubmissionIdle {
		return ErrInFlight
	}
	if c.current < len(c.steps)-1 {
		if !c.Next() {
			return ErrInvalid
		}
		return nil
	}

	c.clearFormError()
	if !c.validator.ValidateStep(c.steps[c.current]) {
		c.metrics.Submissions.WithLabelValues("invalid").Inc()
		return ErrInvalid
	}

	fields, err := quote.Compose(c.Values())
	if errors.Is(err, quote.ErrBot) {
		c.metrics.Submissions.WithLabelValues("bot").Inc()
		c.log.WarnContext(c.ctx, "Submission abandoned by honeypot check")
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to compose quote: %w", err)
	}

	c.inFlight = true
	c.state = models.SubmissionSubmitting
	c.submit.SetAttr("disabled", "")
	c.metrics.SubmissionsInFlight.Inc()

	go func() {
		ctx, cancel := context.WithTimeout(c.ctx, c.cfg.SendTimeout)
		defer cancel()

		receipt, sendErr := c.transport.Send(ctx, fields)
		c.metrics.SubmissionsInFlight.Dec()
		c.loop.Post(func() { c.complete(receipt, sendErr) })
	}()

	return nil
}

// Values returns the trimmed values of every named control of the form.
func (c *Controller) Values() models.FieldValues {
	values := make(models.FieldValues)
	for _, field := range c.form.Fields() {
		if name := field.Name(); name != "" {
			values[name] = strings.TrimSpace(field.Value())
		}
	}

	return values
}

// Close stops the revert timer and abandons a submission in flight.
func (c *Controller) Close() {
	if c.resetTimer != nil {
		c.resetTimer.Stop()
		c.resetTimer = nil
	}
	c.cancel()
}

func (c *Controller) complete(receipt *models.Receipt, err error) {
	if !c.inFlight {
		return
	}
	c.inFlight = false
	c.submit.RemoveAttr("disabled")

	if err != nil || receipt == nil || !receipt.Accepted {
		c.state = models.SubmissionIdle
		c.metrics.Submissions.WithLabelValues("failure").Inc()
		c.log.ErrorContext(c.ctx, "Quote submission failed", "error", err)
		c.showFormError(MsgSubmitFailed)
		return
	}

	c.state = models.SubmissionSucceeded
	c.receipt = receipt
	c.metrics.Submissions.WithLabelValues("success").Inc()
	c.log.InfoContext(c.ctx, "Quote submitted", "receipt", receipt.ID)

	c.form.SetStyle("display", "none")
	if c.progressbar != nil {
		c.progressbar.SetStyle("display", "none")
	}
	c.success.SetStyle("display", "block")

	c.resetTimer = c.loop.AfterFunc(c.cfg.ResetDelay, c.revert)
}

func (c *Controller) revert() {
	c.resetTimer = nil

	c.success.SetStyle("display", "none")
	if c.progressbar != nil {
		c.progressbar.SetStyle("display", "flex")
	}
	c.form.SetStyle("display", "block")

	for _, d := range c.defaults {
		d.field.SetValue(d.value)
	}
	c.validator.ClearStep(c.form)
	c.clearFormError()
	c.review.SetText("")

	c.current = 0
	c.state = models.SubmissionIdle
	c.render()
}

func (c *Controller) populateReview() {
	var sb strings.Builder
	for _, entry := range quote.ReviewEntries(c.Values()) {
		value := strings.ReplaceAll(html.EscapeString(entry.Value), "\n", "<br>")
		fmt.Fprintf(&sb, `<p class="mb-2"><strong>%s:</strong> %s</p>`, entry.Label, value)
	}

	if err := c.review.SetInnerHTML(c.policy.Sanitize(sb.String())); err != nil {
		c.log.ErrorContext(c.ctx, "Failed to render review", "error", err)
	}
}

func (c *Controller) showFormError(message string) {
	c.clearFormError()
	box := dom.NewElement("div", ErrorClass)
	box.SetAttr("role", "alert")
	box.SetText(message)
	c.form.AppendChild(box)
}

func (c *Controller) clearFormError() {
	for _, box := range c.form.FindByClass(ErrorClass) {
		box.Remove()
	}
}

func (c *Controller) render() {
	last := len(c.steps) - 1
	for i, step := range c.steps {
		step.ToggleClass(ActiveClass, i == c.current)
	}

	c.prev.SetStyle("display", display(c.current > 0))
	c.next.SetStyle("display", display(c.current < last))
	c.submit.SetStyle("display", display(c.current == last))

	if c.nav != nil {
		justify := "flex-end"
		if c.current > 0 {
			justify = "space-between"
		}
		c.nav.SetStyle("justify-content", justify)
	}

	active := 0
	for i, indicator := range c.indicators {
		on := i <= c.current
		indicator.ToggleClass(ActiveClass, on)
		if on {
			active++
		}
	}
	if c.progress != nil && len(c.indicators) > 1 {
		c.progress.SetStyle("width", ProgressWidth(active, len(c.indicators)))
	}
}

// ProgressWidth is the CSS width of the progress line for active of total
// indicators.
func ProgressWidth(active, total int) string {
	if total < 2 || active < 1 {
		return "0%"
	}
	const percent = 100
	pct := float64(active-1) / float64(total-1) * percent

	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

func display(on bool) string {
	if on {
		return "block"
	}

	return "none"
}
