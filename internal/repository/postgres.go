package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/UnknownOlympus/hestia/internal/models"
)

// MaxDeliveryAttempts is the number of failed deliveries after which a quote
// is no longer retried.
const MaxDeliveryAttempts = 5

// PendingGrace is how long a quote without failed attempts is left to the
// request that saved it before the delivery worker may pick it up.
const PendingGrace = 2 * time.Minute

// SaveQuote stores a submitted quote as undelivered.
func (r *Repository) SaveQuote(ctx context.Context, quote models.Quote) error {
	query := `
		INSERT INTO quote_requests (quote_id, fields)
		VALUES ($1, $2);
	`

	fields, err := json.Marshal(quote.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode quote fields: %w", err)
	}

	if _, err = r.db.Exec(ctx, query, quote.ID, fields); err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	r.log.DebugContext(ctx, "Quote archived", "quote", quote.ID)

	return nil
}

// FetchUndelivered retrieves quotes that have not been delivered yet and have
// fewer than MaxDeliveryAttempts failed attempts, oldest first. Quotes that
// never failed are skipped until they are older than PendingGrace, since their
// first delivery may still be running.
//
// Parameters:
// - ctx: The context for the operation, allowing for cancellation and timeout.
// - limit: The maximum number of quotes to retrieve.
func (r *Repository) FetchUndelivered(ctx context.Context, limit int) ([]models.Quote, error) {
	var quotes []models.Quote
	query := `
		SELECT quote_id, fields, delivery_attempts, created_at
		FROM quote_requests
		WHERE
			delivered = false
			AND delivery_attempts < $1
			AND (delivery_attempts > 0 OR created_at < $2)
		ORDER BY created_at ASC
		LIMIT $3;
	`

	rows, err := r.db.Query(ctx, query, MaxDeliveryAttempts, time.Now().Add(-PendingGrace), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query undelivered quotes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			quote models.Quote
			raw   []byte
		)
		if errScan := rows.Scan(&quote.ID, &raw, &quote.Attempts, &quote.CreatedAt); errScan != nil {
			return nil, fmt.Errorf("failed to scan undelivered quote: %w", errScan)
		}
		if errDecode := json.Unmarshal(raw, &quote.Fields); errDecode != nil {
			return nil, fmt.Errorf("failed to decode fields of quote %s: %w", quote.ID, errDecode)
		}
		if quote.Fields == nil {
			quote.Fields = url.Values{}
		}
		quotes = append(quotes, quote)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return quotes, nil
}

// MarkDelivered flags the quote as delivered and clears its last error.
func (r *Repository) MarkDelivered(ctx context.Context, quoteID string) error {
	query := `
		UPDATE quote_requests
		SET
			delivered = true,
			delivery_error = NULL
		WHERE
			quote_id = $1;
	`

	_, err := r.db.Exec(ctx, query, quoteID)
	if err != nil {
		return fmt.Errorf("failed to mark quote delivered: %w", err)
	}

	return nil
}

// IncrementFailureCount increments the delivery attempt count of the quote
// and stores the error message of the failed attempt.
func (r *Repository) IncrementFailureCount(ctx context.Context, quoteID string, errMsg string) error {
	query := `
		UPDATE quote_requests
		SET
			delivery_attempts = delivery_attempts + 1,
			delivery_error = $1
		WHERE quote_id = $2;
	`

	_, err := r.db.Exec(ctx, query, errMsg, quoteID)
	if err != nil {
		return fmt.Errorf("failed to update delivery error and number of attempts: %w", err)
	}

	return nil
}
