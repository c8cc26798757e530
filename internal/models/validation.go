package models

// FieldValues maps a field name to its trimmed value.
type FieldValues map[string]string

// ValidationResult is the outcome of checking a single field.
type ValidationResult struct {
	Field   string `json:"field"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}
