package geocoding

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/hestia/internal/models"
)

// Provider is an interface that defines a method for address autocompletion.
// The Suggest method takes a context and the partial address typed so far,
// and returns the candidate addresses and an error if any occurs.
type Provider interface {
	Suggest(ctx context.Context, text string) ([]models.Suggestion, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
