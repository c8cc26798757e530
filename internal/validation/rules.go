// Package validation holds the field predicates of the quote and contact forms
// and applies them to a step of a parsed document.
package validation

import (
	"regexp"
	"strings"

	"github.com/UnknownOlympus/hestia/internal/models"
)

// Field names with typed checks.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "emailAddress"
	FieldPhone     = "phoneNumber"
	FieldAddress   = "propertyAddress"
)

// Messages shown next to an offending field.
const (
	MsgRequired     = "This field is required."
	MsgSelectOption = "Please select an option."
	MsgNumericName  = "Name cannot be only numbers."
	MsgEmail        = "Please enter a valid email address."
	MsgPhone        = "Please enter a valid Australian phone number."
	MsgPostcode     = "Address must include a 4-digit postcode."
)

var (
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	emailShape   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	auPhoneShape = regexp.MustCompile(`^(\+?61|0)[2-478]\d{8}$`)
	postcode     = regexp.MustCompile(`\b\d{4}\b`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Required fails on an empty or whitespace-only value.
func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Name fails when the value consists only of digits.
func Name(value string) bool {
	return !digitsOnly.MatchString(strings.TrimSpace(value))
}

// Email accepts values shaped like local@domain.tld.
func Email(value string) bool {
	return emailShape.MatchString(strings.TrimSpace(value))
}

// AustralianPhone accepts mobile and landline numbers with an optional +61 or
// leading zero, once whitespace is removed.
func AustralianPhone(value string) bool {
	return auPhoneShape.MatchString(whitespace.ReplaceAllString(value, ""))
}

// Postcode accepts addresses containing a standalone 4-digit token.
func Postcode(value string) bool {
	return postcode.MatchString(value)
}

// HasTypedCheck reports whether the field name has a shape check beyond required-ness.
func HasTypedCheck(name string) bool {
	switch name {
	case FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldAddress:
		return true
	default:
		return false
	}
}

// ValidateField checks one value. Shape checks only apply to non-empty values, so
// an optional typed field may be left blank.
func ValidateField(name, value string, required bool) models.ValidationResult {
	value = strings.TrimSpace(value)
	fail := func(msg string) models.ValidationResult {
		return models.ValidationResult{Field: name, Message: msg}
	}

	if value == "" {
		if required {
			return fail(MsgRequired)
		}
		return models.ValidationResult{Field: name, Valid: true}
	}

	switch name {
	case FieldFirstName, FieldLastName:
		if !Name(value) {
			return fail(MsgNumericName)
		}
	case FieldEmail:
		if !Email(value) {
			return fail(MsgEmail)
		}
	case FieldPhone:
		if !AustralianPhone(value) {
			return fail(MsgPhone)
		}
	case FieldAddress:
		if !Postcode(value) {
			return fail(MsgPostcode)
		}
	}

	return models.ValidationResult{Field: name, Valid: true}
}

// ValidateValues checks a whole field set, in the order of names. Only failures
// are returned; an empty result means every field passed.
func ValidateValues(values models.FieldValues, names []string, required map[string]bool) []models.ValidationResult {
	var failures []models.ValidationResult
	for _, name := range names {
		if res := ValidateField(name, values[name], required[name]); !res.Valid {
			failures = append(failures, res)
		}
	}

	return failures
}
