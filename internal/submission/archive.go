package submission

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/repository"
	"github.com/google/uuid"
)

// ArchivingTransport stores every quote before delivering it. A quote that
// was stored is accepted even if delivery fails; the delivery worker retries it.
type ArchivingTransport struct {
	inner Transport
	repo  repository.Interface
	log   *slog.Logger
}

// NewArchivingTransport wraps inner.
func NewArchivingTransport(inner Transport, repo repository.Interface, log *slog.Logger) *ArchivingTransport {
	return &ArchivingTransport{inner: inner, repo: repo, log: log}
}

// Send archives fields, then delivers them through the wrapped transport.
func (at *ArchivingTransport) Send(ctx context.Context, fields url.Values) (*models.Receipt, error) {
	id := uuid.NewString()

	if err := at.repo.SaveQuote(ctx, models.Quote{ID: id, Fields: fields}); err != nil {
		at.log.ErrorContext(ctx, "Failed to archive quote, delivering directly", "error", err)
		return at.inner.Send(ctx, fields)
	}

	receipt, err := at.inner.Send(ctx, fields)
	if err != nil {
		at.log.WarnContext(ctx, "Delivery failed, quote queued for retry", "quote", id, "error", err)
		if errCount := at.repo.IncrementFailureCount(ctx, id, err.Error()); errCount != nil {
			at.log.ErrorContext(ctx, "Could not record delivery failure", "quote", id, "error", errCount)
		}
		return &models.Receipt{ID: id, Status: http.StatusAccepted, Accepted: true}, nil
	}

	if err = at.repo.MarkDelivered(ctx, id); err != nil {
		at.log.ErrorContext(ctx, "Could not mark quote delivered", "quote", id, "error", err)
	}

	return &models.Receipt{ID: id, Status: receipt.Status, Accepted: true}, nil
}
