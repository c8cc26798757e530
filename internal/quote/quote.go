// Package quote describes the fields of the quote request and turns collected
// values into the set handed to a submission transport.
package quote

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/UnknownOlympus/hestia/internal/models"
)

// Field names of the quote form.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "emailAddress"
	FieldPhone     = "phoneNumber"
	FieldService   = "serviceType"
	FieldAddress   = "propertyAddress"
	FieldUnit      = "unit"
	FieldMessage   = "messageContent"
	FieldHoneypot  = "website"
)

// HoneypotValue is the value a human-driven form always carries in the honeypot field.
const HoneypotValue = "99"

// ErrBot is returned when the honeypot field is absent or altered.
var ErrBot = errors.New("honeypot check failed")

// Known lists the reviewable fields in display order.
var Known = []string{FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldService, FieldAddress, FieldMessage}

// Required lists the fields a complete quote request must carry.
var Required = map[string]bool{
	FieldFirstName: true,
	FieldLastName:  true,
	FieldEmail:     true,
	FieldPhone:     true,
	FieldService:   true,
	FieldAddress:   true,
}

// Labels are the review captions of the known fields.
var Labels = map[string]string{
	FieldFirstName: "First Name",
	FieldLastName:  "Last Name",
	FieldEmail:     "Email",
	FieldPhone:     "Phone",
	FieldService:   "Service",
	FieldAddress:   "Address",
	FieldMessage:   "Message",
}

var nonDigits = regexp.MustCompile(`\D`)

// nationalDigits is the length of an Australian number without its trunk zero.
const nationalDigits = 9

// Entry is a single labelled line of the review.
type Entry struct {
	Field string
	Label string
	Value string
}

// ReviewEntries returns the labelled, non-empty known fields. The unit is folded
// into the address and internal fields never appear.
func ReviewEntries(values models.FieldValues) []Entry {
	merged := MergeUnit(values)
	entries := make([]Entry, 0, len(Known))
	for _, field := range Known {
		value := strings.TrimSpace(merged[field])
		if value == "" {
			continue
		}
		entries = append(entries, Entry{Field: field, Label: Labels[field], Value: value})
	}

	return entries
}

// NormalizePhone rewrites a phone number as "0ddd ddd ddd". Non-digits and a
// leading 61 country code are dropped, the trunk zero is forced and the national
// number is cut to its 9 significant digits.
func NormalizePhone(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	digits = strings.TrimPrefix(digits, "61")
	digits = strings.TrimLeft(digits, "0")
	if len(digits) > nationalDigits {
		digits = digits[:nationalDigits]
	}
	digits = "0" + digits

	var groups []string
	for start := 0; start < len(digits); {
		end := start + 3
		if start == 0 {
			end = 4
		}
		end = min(end, len(digits))
		groups = append(groups, digits[start:end])
		start = end
	}

	return strings.Join(groups, " ")
}

// MergeUnit returns a copy of values with the unit prefixed to the address and
// the unit field removed.
func MergeUnit(values models.FieldValues) models.FieldValues {
	out := make(models.FieldValues, len(values))
	for k, v := range values {
		out[k] = v
	}

	unit := strings.TrimSpace(out[FieldUnit])
	delete(out, FieldUnit)
	if unit != "" {
		out[FieldAddress] = strings.TrimSpace(unit + " " + strings.TrimSpace(out[FieldAddress]))
	}

	return out
}

// CheckHoneypot reports whether the honeypot carries the sentinel value.
func CheckHoneypot(values models.FieldValues) bool {
	v, ok := values[FieldHoneypot]
	return ok && v == HoneypotValue
}

// Compose builds the field set for the transport: honeypot verified and removed,
// phone normalised, unit merged. Empty values are kept so the relay sees every field.
func Compose(values models.FieldValues) (url.Values, error) {
	if !CheckHoneypot(values) {
		return nil, ErrBot
	}

	merged := MergeUnit(values)
	delete(merged, FieldHoneypot)
	if phone := strings.TrimSpace(merged[FieldPhone]); phone != "" {
		merged[FieldPhone] = NormalizePhone(phone)
	}

	form := make(url.Values, len(merged))
	for k, v := range merged {
		form.Set(k, strings.TrimSpace(v))
	}

	return form, nil
}
