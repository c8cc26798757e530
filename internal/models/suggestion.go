package models

// Suggestion represents a single address candidate returned by a geocoding provider.
// It only lives while the suggestion list is open.
type Suggestion struct {
	ID        string `json:"id"`        // ID is the provider's stable place identifier.
	Formatted string `json:"formatted"` // Formatted is the full address written into the input on selection.
	Line1     string `json:"line1"`     // Line1 is the street part of the address.
	Line2     string `json:"line2"`     // Line2 is the suburb/state/postcode part of the address.
}
