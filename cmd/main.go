package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/hestia/internal/cache"
	"github.com/UnknownOlympus/hestia/internal/config"
	"github.com/UnknownOlympus/hestia/internal/fragment"
	"github.com/UnknownOlympus/hestia/internal/geocoding"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/repository"
	"github.com/UnknownOlympus/hestia/internal/server"
	"github.com/UnknownOlympus/hestia/internal/service"
	"github.com/UnknownOlympus/hestia/internal/site"
	"github.com/UnknownOlympus/hestia/internal/submission"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// redisPinger adapts a redis client to the health check.
type redisPinger struct {
	rdb *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	content, err := config.LoadSite(cfg.SiteFile)
	if err != nil {
		log.Fatalf("Failed to load site content: %v", err)
	}

	// Create autocomplete provider using factory pattern based on configuration
	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Provider.Type),
		APIKey:    cfg.Provider.APIKey,
		Country:   cfg.Provider.Country,
		RateLimit: cfg.Provider.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Provider.Type)

	pingers := map[string]server.Pinger{}

	// The suggestion cache is optional; the site works without Redis.
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err = rdb.Ping(ctx).Err(); err != nil {
			logger.WarnContext(ctx, "Redis unreachable, suggestions are not cached", "error", err)
		} else {
			provider = cache.NewProvider(provider, rdb, cfg.Redis.TTL, logger, appMetrics)
			pingers["redis"] = redisPinger{rdb: rdb}
			logger.InfoContext(ctx, "Suggestion cache enabled", "ttl", cfg.Redis.TTL)
		}
	}

	// The quote archive is optional as well.
	var archive repository.Interface
	var repo *repository.Repository
	if cfg.Database.Host != "" {
		dtb, dbErr := repository.NewDatabase(
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if dbErr != nil {
			log.Fatalf("Failed to connect to DB: %v", dbErr)
		}
		defer dtb.Close()

		if dbErr = repository.Migrate(ctx, dtb); dbErr != nil {
			log.Fatalf("Failed to migrate DB: %v", dbErr)
		}

		repo = repository.NewRepository(dtb, logger)
		archive = repo
		pingers["postgres"] = dtb
	}

	transport, err := submission.NewTransport(ctx, submission.TransportConfig{
		Type:      submission.TransportType(cfg.Transport.Type),
		RelayURL:  cfg.Transport.RelayURL,
		SESRegion: cfg.Transport.SESRegion,
		From:      cfg.Transport.MailFrom,
		To:        cfg.Transport.MailTo,
		Archive:   archive,
		Logger:    logger,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Quote transport unavailable, quotes will be refused", "error", err)
	}

	// Re-deliver archived quotes whose first delivery failed.
	if repo != nil && transport != nil {
		deliveryService := service.NewDeliveryService(
			logger,
			repo,
			submission.Inner(transport),
			appMetrics,
			cfg.Workers,
			cfg.Interval,
		)
		go deliveryService.Run(ctx)
	}

	loader := fragment.NewLoader(logger, appMetrics)
	assembler := site.NewAssembler(loader, cfg.Layout, cfg.FragmentBase, content, cfg.Form, logger)

	srv := server.New(server.Options{
		Page:          assembler,
		ComponentsDir: cfg.ComponentsDir,
		Provider:      provider,
		ProviderName:  cfg.Provider.Type,
		MinQuery:      cfg.Form.MinQuery,
		Services:      content.Services,
		Transport:     transport,
		Pingers:       pingers,
		Gatherer:      reg,
		Logger:        logger,
		Metrics:       appMetrics,
	})

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err = srv.Run(ctx, cfg.Port); err != nil {
		logger.ErrorContext(ctx, "Site server stopped with error", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
