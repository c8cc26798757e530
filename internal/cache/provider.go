// Package cache keeps recent address suggestions in Redis so repeated
// keystroke sequences do not reach the paid autocomplete API.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/hestia/internal/geocoding"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hestia:suggest:"

// Provider decorates a geocoding.Provider with a Redis cache.
type Provider struct {
	inner   geocoding.Provider
	rdb     *redis.Client
	ttl     time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewProvider wraps inner so that suggestion lists are cached for ttl.
func NewProvider(
	inner geocoding.Provider,
	rdb *redis.Client,
	ttl time.Duration,
	log *slog.Logger,
	metrics *metrics.Metrics,
) *Provider {
	return &Provider{inner: inner, rdb: rdb, ttl: ttl, log: log, metrics: metrics}
}

// Key returns the cache key for a query. Queries differing only in case or
// surrounding whitespace share an entry.
func Key(text string) string {
	return keyPrefix + strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Suggest serves cached suggestions when present. A cache miss or a Redis
// failure falls through to the wrapped provider.
func (p *Provider) Suggest(ctx context.Context, text string) ([]models.Suggestion, error) {
	key := Key(text)

	raw, err := p.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []models.Suggestion
		if err = json.Unmarshal(raw, &cached); err == nil {
			p.metrics.CacheLookups.WithLabelValues("hit").Inc()
			p.log.DebugContext(ctx, "Suggestion cache hit", "key", key, "count", len(cached))
			return cached, nil
		}
		p.log.WarnContext(ctx, "Discarding unreadable cache entry", "key", key, "error", err)
		p.metrics.CacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		p.metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		p.log.WarnContext(ctx, "Suggestion cache unavailable", "error", err)
		p.metrics.CacheLookups.WithLabelValues("error").Inc()
	}

	suggestions, err := p.inner.Suggest(ctx, text)
	if err != nil {
		return nil, err
	}

	if err = p.store(ctx, key, suggestions); err != nil {
		p.log.WarnContext(ctx, "Failed to cache suggestions", "key", key, "error", err)
	}

	return suggestions, nil
}

func (p *Provider) store(ctx context.Context, key string, suggestions []models.Suggestion) error {
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}

	data, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("failed to encode suggestions: %w", err)
	}

	if err = p.rdb.Set(ctx, key, data, p.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}
