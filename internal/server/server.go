// Package server exposes the site over HTTP: the assembled page, the fragment
// files, the address suggestion proxy and the quote endpoint.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/UnknownOlympus/hestia/internal/autocomplete"
	"github.com/UnknownOlympus/hestia/internal/geocoding"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/quote"
	"github.com/UnknownOlympus/hestia/internal/site"
	"github.com/UnknownOlympus/hestia/internal/submission"
	"github.com/UnknownOlympus/hestia/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes served by the site.
const (
	RouteComponents = "/components/"
	RouteSuggest    = "/api/address/suggest"
	RouteServices   = "/api/services"
	RouteQuote      = "/api/quote"
	RouteHealth     = "/healthz"
	RouteMetrics    = "/metrics"
)

// MsgSubmitFailed is the error body of a quote the transport did not take.
const MsgSubmitFailed = "Sorry, we could not send your request. Please try again."

// Page renders the landing page.
type Page interface {
	Render(ctx context.Context, w io.Writer) error
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires the server to its collaborators. Provider, Transport and
// Pingers are optional.
type Options struct {
	Page          Page
	ComponentsDir string
	Provider      geocoding.Provider
	ProviderName  string
	MinQuery      int
	Services      []models.Service
	Transport     submission.Transport
	Pingers       map[string]Pinger
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
}

// Server holds the HTTP handlers of the site.
type Server struct {
	opts Options
	log  *slog.Logger
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.MinQuery <= 0 {
		opts.MinQuery = autocomplete.DefaultMinLength
	}

	return &Server{opts: opts, log: opts.Logger}
}

// Handler returns the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.Handle("GET "+RouteComponents,
		http.StripPrefix(RouteComponents, http.FileServer(http.Dir(s.opts.ComponentsDir))))
	mux.HandleFunc("GET "+RouteSuggest, s.handleSuggest)
	mux.HandleFunc("GET "+RouteServices, s.handleServices)
	mux.HandleFunc("POST "+RouteQuote, s.handleQuote)
	mux.HandleFunc("GET "+RouteHealth, s.handleHealth)
	if s.opts.Gatherer != nil {
		mux.Handle("GET "+RouteMetrics, promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

// Run serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	const (
		readTimeout     = 5
		writeTimeout    = 30
		shutdownTimeout = 10
	)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout * time.Second,
		WriteTimeout: writeTimeout * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting site server", "port", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("site server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down site server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("site server failed: %w", err)
	}

	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.opts.Page.Render(r.Context(), &buf); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to render page", "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write reply", "error", err)
	}
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	text := strings.TrimSpace(r.URL.Query().Get("text"))
	suggestions := []models.Suggestion{}

	if s.opts.Provider != nil && utf8.RuneCountInString(text) >= s.opts.MinQuery {
		start := time.Now()
		found, err := s.opts.Provider.Suggest(ctx, text)
		s.opts.Metrics.RequestSeconds.WithLabelValues(s.opts.ProviderName).Observe(time.Since(start).Seconds())

		if err != nil {
			s.opts.Metrics.ProviderErrors.Inc()
			s.log.ErrorContext(ctx, "Error fetching autocomplete suggestions", "text", text, "error", err)
		} else if len(found) > 0 {
			suggestions = found
		}
	}

	s.writeJSON(ctx, w, http.StatusOK, suggestions)
}

// handleServices lists the catalogue, filtered by the q parameter when given.
func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	services := []models.Service{}
	services = append(services, site.Search(s.opts.Services, r.URL.Query().Get("q"))...)

	s.writeJSON(r.Context(), w, http.StatusOK, services)
}

type validationReply struct {
	Errors []models.ValidationResult `json:"errors"`
}

type errorReply struct {
	Error string `json:"error"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.writeJSON(ctx, w, http.StatusBadRequest, errorReply{Error: "malformed form"})
		return
	}

	values := make(models.FieldValues, len(r.PostForm))
	for name := range r.PostForm {
		values[name] = strings.TrimSpace(r.PostForm.Get(name))
	}

	if !quote.CheckHoneypot(values) {
		s.opts.Metrics.Submissions.WithLabelValues("bot").Inc()
		s.log.WarnContext(ctx, "Submission abandoned by honeypot check", "remote", r.RemoteAddr)
		s.writeJSON(ctx, w, http.StatusAccepted, models.Receipt{Status: http.StatusAccepted, Accepted: true})
		return
	}

	if failures := validation.ValidateValues(values, quote.Known, quote.Required); len(failures) > 0 {
		s.opts.Metrics.Submissions.WithLabelValues("invalid").Inc()
		for _, f := range failures {
			s.opts.Metrics.ValidationFailures.WithLabelValues(f.Field).Inc()
		}
		s.writeJSON(ctx, w, http.StatusUnprocessableEntity, validationReply{Errors: failures})
		return
	}

	fields, err := quote.Compose(values)
	if err != nil {
		s.writeJSON(ctx, w, http.StatusBadRequest, errorReply{Error: err.Error()})
		return
	}

	if s.opts.Transport == nil {
		s.writeJSON(ctx, w, http.StatusServiceUnavailable, errorReply{Error: MsgSubmitFailed})
		return
	}

	s.opts.Metrics.SubmissionsInFlight.Inc()
	receipt, err := s.opts.Transport.Send(ctx, fields)
	s.opts.Metrics.SubmissionsInFlight.Dec()

	if err != nil || receipt == nil || !receipt.Accepted {
		s.opts.Metrics.Submissions.WithLabelValues("failure").Inc()
		s.log.ErrorContext(ctx, "Quote submission failed", "error", err)
		s.writeJSON(ctx, w, http.StatusBadGateway, errorReply{Error: MsgSubmitFailed})
		return
	}

	s.opts.Metrics.Submissions.WithLabelValues("success").Inc()
	s.log.InfoContext(ctx, "Quote submitted", "receipt", receipt.ID)
	s.writeJSON(ctx, w, http.StatusOK, receipt)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.log.DebugContext(ctx, "Performing health checks...")

	status, body := http.StatusOK, "OK"
	for name, pinger := range s.opts.Pingers {
		if err := pinger.Ping(ctx); err != nil {
			s.log.WarnContext(ctx, "Health check failed", "dependency", name, "error", err)
			status, body = http.StatusServiceUnavailable, name+" ping failed"
			break
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		s.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}
	s.log.DebugContext(ctx, "Health checks completed", "status", status)
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.ErrorContext(ctx, "failed to write reply", "error", err)
	}
}
