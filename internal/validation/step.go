package validation

import (
	"log/slog"

	"github.com/UnknownOlympus/hestia/internal/dom"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
)

// Presentation classes of an inline error.
const (
	InvalidClass  = "is-invalid"
	FeedbackClass = "invalid-feedback"
)

// Validator applies the field rules to document subtrees and keeps the inline
// error indicators in sync.
type Validator struct {
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewValidator creates a Validator.
func NewValidator(log *slog.Logger, metrics *metrics.Metrics) *Validator {
	return &Validator{log: log, metrics: metrics}
}

// ValidateStep checks every required or typed control inside step. It returns
// true only if all of them pass. Failing controls get exactly one feedback node;
// passing controls lose any previous one.
func (v *Validator) ValidateStep(step *dom.Element) bool {
	valid := true
	for _, field := range step.Fields() {
		if !inScope(field) {
			continue
		}

		res := v.check(field)
		if res.Valid {
			ClearError(field)
			continue
		}

		valid = false
		ShowError(field, res.Message)
		v.metrics.ValidationFailures.WithLabelValues(res.Field).Inc()
		v.log.Debug("Field failed validation", "field", res.Field, "reason", res.Message)
	}

	return valid
}

// ClearStep removes every indicator inside step.
func (v *Validator) ClearStep(step *dom.Element) {
	for _, field := range step.Fields() {
		ClearError(field)
	}
}

func (v *Validator) check(field *dom.Element) models.ValidationResult {
	res := ValidateField(field.Name(), field.Value(), field.Required())
	if !res.Valid && res.Message == MsgRequired && field.Tag() == "select" {
		res.Message = MsgSelectOption
	}

	return res
}

func inScope(field *dom.Element) bool {
	if field.Type() == "hidden" {
		return false
	}

	return field.Required() || HasTypedCheck(field.Name())
}

// ShowError marks field invalid and places a single feedback node after it.
func ShowError(field *dom.Element, message string) {
	ClearError(field)
	field.AddClass(InvalidClass)

	feedback := dom.NewElement("div", FeedbackClass)
	feedback.SetText(message)
	field.InsertAfter(feedback)
}

// ClearError removes the invalid mark and the feedback nodes following field.
func ClearError(field *dom.Element) {
	field.RemoveClass(InvalidClass)
	for next := field.NextElement(); next != nil && next.HasClass(FeedbackClass); next = field.NextElement() {
		next.Remove()
	}
}
