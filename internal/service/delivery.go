package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/repository"
	"github.com/UnknownOlympus/hestia/internal/submission"
)

// batchLimit caps the number of quotes picked up by a single poll.
const batchLimit = 100

// DeliveryService re-sends archived quotes whose first delivery failed,
// including logging, repository access, transport integration,
// metrics tracking, and worker management.
type DeliveryService struct {
	log          *slog.Logger         // Logger for logging service activities
	repo         repository.Interface // Interface for the quote archive
	transport    submission.Transport // Transport that delivers quotes; must not archive again
	metrics      *metrics.Metrics     // Metrics for tracking service performance
	numWorkers   int                  // Number of concurrent workers for processing
	pollInterval time.Duration        // Interval for polling undelivered quotes
}

// NewDeliveryService creates a new instance of DeliveryService.
// It takes a logger, a repository interface, the transport used for the retry,
// metrics for monitoring, the number of workers to use, and a polling interval.
func NewDeliveryService(
	log *slog.Logger,
	repo repository.Interface,
	transport submission.Transport,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
) *DeliveryService {
	return &DeliveryService{
		log:          log,
		repo:         repo,
		transport:    transport,
		metrics:      metrics,
		numWorkers:   numWorkers,
		pollInterval: pollInterval,
	}
}

// Run starts the delivery service, which periodically polls the archive for
// undelivered quotes. It returns when the context is cancelled.
func (ds *DeliveryService) Run(ctx context.Context) {
	ticker := time.NewTicker(ds.pollInterval)
	defer ticker.Stop()

	ds.log.InfoContext(ctx, "Delivery service started...")

	for {
		select {
		case <-ctx.Done():
			ds.log.InfoContext(ctx, "Delivery service stopped.")
			return
		case <-ticker.C:
			ds.log.DebugContext(ctx, "Polling for undelivered quotes...")
			ds.processQuotes(ctx)
		}
	}
}

// processQuotes fetches a batch of undelivered quotes, starts a worker pool
// to deliver them and waits for all workers to finish.
func (ds *DeliveryService) processQuotes(ctx context.Context) {
	quotes, err := ds.repo.FetchUndelivered(ctx, batchLimit)
	if err != nil {
		ds.log.ErrorContext(ctx, "Failed to fetch undelivered quotes", "error", err)
		return
	}
	quotes = due(quotes, time.Now())
	if len(quotes) == 0 {
		ds.log.DebugContext(ctx, "No quotes to deliver.")
		return
	}

	ds.log.InfoContext(
		ctx,
		"Found quotes to deliver. Starting worker pool.",
		"jobs",
		len(quotes),
		"num_workers",
		ds.numWorkers,
	)

	jobs := make(chan models.Quote, len(quotes))
	var wgr sync.WaitGroup

	for i := 1; i <= ds.numWorkers; i++ {
		wgr.Add(1)
		go ds.worker(ctx, i, &wgr, jobs)
	}

	for _, quote := range quotes {
		jobs <- quote
	}
	close(jobs)

	wgr.Wait()
	ds.log.InfoContext(ctx, "Delivery batch finished")
}

// due drops quotes whose first delivery may still be running in the request
// that archived them.
func due(quotes []models.Quote, now time.Time) []models.Quote {
	ready := quotes[:0]
	for _, quote := range quotes {
		if quote.Attempts == 0 && now.Sub(quote.CreatedAt) < repository.PendingGrace {
			continue
		}
		ready = append(ready, quote)
	}

	return ready
}

// worker delivers quotes from the jobs channel. A failed delivery bumps the
// attempt counter of the quote; a successful one marks it delivered.
func (ds *DeliveryService) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan models.Quote) {
	defer wg.Done()
	for quote := range jobs {
		ds.metrics.ActiveWorkers.Inc()
		ds.log.DebugContext(ctx, "Delivering quote", "worker", idx, "quote", quote.ID, "attempts", quote.Attempts)

		_, err := ds.transport.Send(ctx, quote.Fields)
		if err != nil {
			ds.log.ErrorContext(ctx, "Failed to deliver quote", "worker", idx, "quote", quote.ID, "error", err)
			ds.metrics.Deliveries.WithLabelValues("failure").Inc()

			if err = ds.repo.IncrementFailureCount(ctx, quote.ID, err.Error()); err != nil {
				ds.log.ErrorContext(
					ctx,
					"Could not update failure count for quote",
					"worker", idx,
					"quote", quote.ID,
					"error", err,
				)
			}
			ds.metrics.ActiveWorkers.Dec()
			continue
		}

		ds.metrics.Deliveries.WithLabelValues("success").Inc()

		if err = ds.repo.MarkDelivered(ctx, quote.ID); err != nil {
			ds.log.ErrorContext(
				ctx,
				"Failed to mark quote delivered",
				"worker", idx,
				"quote", quote.ID,
				"error", err,
			)
		} else {
			ds.log.DebugContext(ctx, "Worker successfully delivered the quote", "worker", idx, "quote", quote.ID)
		}

		ds.metrics.ActiveWorkers.Dec()
	}
}
