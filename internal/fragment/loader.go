// Package fragment fetches HTML fragments and injects them into placeholders
// of a document.
package fragment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/hestia/internal/dom"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// maxFragmentSize bounds how much of a response body is read.
const maxFragmentSize = 1 << 20

var (
	ErrStatus          = errors.New("unexpected fragment status")
	ErrNoPlaceholder   = errors.New("placeholder not found")
	ErrFragmentTooLong = errors.New("fragment exceeds size limit")
)

// HTTPClient defines the interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Mount pairs a fragment URL with the id of the element it fills.
type Mount struct {
	URL           string
	PlaceholderID string
}

// Loader retrieves fragments over HTTP.
type Loader struct {
	client  HTTPClient
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewLoader creates a loader using a default HTTP client.
func NewLoader(log *slog.Logger, metrics *metrics.Metrics) *Loader {
	const timeout = 10
	return NewLoaderWithClient(&http.Client{Timeout: timeout * time.Second}, log, metrics)
}

// NewLoaderWithClient creates a loader with a custom HTTP client.
func NewLoaderWithClient(client HTTPClient, log *slog.Logger, metrics *metrics.Metrics) *Loader {
	return &Loader{client: client, log: log, metrics: metrics}
}

// Load fetches url and replaces the content of the element with id placeholderID.
// Failures are logged and reported as false; the placeholder is then left as it was.
func (l *Loader) Load(ctx context.Context, doc *dom.Document, url, placeholderID string) bool {
	markup, err := l.Fetch(ctx, url)
	if err != nil {
		l.fail(ctx, url, placeholderID, err)
		return false
	}

	if err = inject(doc, placeholderID, markup); err != nil {
		l.fail(ctx, url, placeholderID, err)
		return false
	}

	l.metrics.FragmentLoads.WithLabelValues("success").Inc()
	l.log.DebugContext(ctx, "Fragment loaded", "url", url, "placeholder", placeholderID)

	return true
}

// LoadAll fetches the mounts concurrently and injects them in mount order.
// It returns how many were injected; a failed mount leaves its placeholder empty.
func (l *Loader) LoadAll(ctx context.Context, doc *dom.Document, mounts []Mount) int {
	bodies := make([]string, len(mounts))
	errs := make([]error, len(mounts))

	var group errgroup.Group
	for i, mount := range mounts {
		group.Go(func() error {
			bodies[i], errs[i] = l.Fetch(ctx, mount.URL)
			return nil
		})
	}
	_ = group.Wait()

	loaded := 0
	for i, mount := range mounts {
		err := errs[i]
		if err == nil {
			err = inject(doc, mount.PlaceholderID, bodies[i])
		}
		if err != nil {
			l.fail(ctx, mount.URL, mount.PlaceholderID, err)
			continue
		}
		l.metrics.FragmentLoads.WithLabelValues("success").Inc()
		loaded++
	}

	l.log.DebugContext(ctx, "Fragments assembled", "loaded", loaded, "total", len(mounts))

	return loaded
}

// Fetch returns the body of a successful GET of url.
func (l *Loader) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch fragment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFragmentSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read fragment: %w", err)
	}
	if len(body) > maxFragmentSize {
		return "", ErrFragmentTooLong
	}

	return string(body), nil
}

func inject(doc *dom.Document, placeholderID, markup string) error {
	placeholder := doc.ByID(placeholderID)
	if placeholder == nil {
		return fmt.Errorf("%w: #%s", ErrNoPlaceholder, placeholderID)
	}

	if err := placeholder.SetInnerHTML(markup); err != nil {
		return fmt.Errorf("failed to inject fragment: %w", err)
	}

	return nil
}

func (l *Loader) fail(ctx context.Context, url, placeholderID string, err error) {
	l.metrics.FragmentLoads.WithLabelValues("failure").Inc()
	l.log.ErrorContext(ctx, "Error loading component", "url", url, "placeholder", placeholderID, "error", err)
}
