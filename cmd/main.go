package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"description-publisher/analytics"
	"description-publisher/config"
	"description-publisher/driver"
	"description-publisher/handler"
	"description-publisher/repository"
	"description-publisher/service"
	"description-publisher/service/notifier"
)

func main() {
	healthCheck := flag.Bool("health-check", false, "Perform health check and exit")
	flag.Parse()

	// Optional .env for local development
	_ = godotenv.Load()

	logger := setupLogger()

	if *healthCheck {
		fmt.Println("OK")
		return
	}

	if err := run(logger); err != nil {
		logger.Error("Service failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger() *slog.Logger {
	var level slog.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Info("Description publisher starting",
		"service", cfg.ServiceName,
		"api_base_url", cfg.API.BaseURL,
		"http_port", cfg.HTTP.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sink := analytics.NewSink(logger, prometheus.DefaultRegisterer)

	poller := notifier.New(
		notificationPoll(cfg),
		notifier.Config{
			PollInterval: cfg.Notifier.PollInterval,
			PollTimeout:  cfg.Notifier.PollTimeout,
		},
		logger,
	)

	policyStore := service.NewLanguagePolicyStore(store, logger)
	tracker := service.NewEditStateTracker(store, poller.Start, logger)

	client := driver.NewStructuredDataClient(cfg.API.BaseURL, cfg.API.UserAgent, cfg.API.Timeout, logger)
	publisher := service.NewDescriptionPublisher(client, policyStore, tracker, sink, cfg.API.EndpointPath, logger)

	// Resume the notification lifecycle when a previous run already recorded
	// an authenticated edit.
	if tracker.HasSucceededBefore(ctx) {
		poller.Start()
	}

	router := handler.NewRouter(handler.RouterConfig{
		Logger:            logger,
		ServiceName:       cfg.ServiceName,
		Publisher:         publisher,
		PolicyStore:       policyStore,
		MetricsGatherer:   prometheus.DefaultGatherer,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := router.Start(":" + cfg.HTTP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		poller.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return router.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info("Description publisher stopped")
	return nil
}

func buildStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.KeyValueStore, func(), error) {
	if cfg.Redis.Addr == "" {
		logger.Warn("REDIS_ADDR not set, using in-memory store; persisted state will not survive restarts")
		return repository.NewMemoryStore(), func() {}, nil
	}

	redisStore := repository.NewRedisStore(cfg.Redis.Addr)
	if err := redisStore.Ping(ctx); err != nil {
		return nil, nil, fmt.Errorf("redis unreachable at %s: %w", cfg.Redis.Addr, err)
	}

	return redisStore, func() { _ = redisStore.Close() }, nil
}

// notificationPoll builds the poll step for the notification collaborator: a
// lightweight read against the same service.
func notificationPoll(cfg *config.Config) notifier.PollFunc {
	client := &http.Client{Timeout: cfg.Notifier.PollTimeout}
	query := url.Values{
		"action": {"query"},
		"meta":   {"notifications"},
		"format": {"json"},
	}
	pollURL := cfg.API.BaseURL + cfg.API.EndpointPath + "?" + query.Encode()

	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pollURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", cfg.API.UserAgent)

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("notification poll failed with status %d", resp.StatusCode)
		}
		return nil
	}
}
