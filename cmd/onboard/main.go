package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sellerdesk/onboard/internal/config"
	"github.com/sellerdesk/onboard/internal/database"
	"github.com/sellerdesk/onboard/internal/events"
	"github.com/sellerdesk/onboard/internal/handler"
	"github.com/sellerdesk/onboard/internal/logger"
	"github.com/sellerdesk/onboard/internal/metrics"
	"github.com/sellerdesk/onboard/internal/middleware"
	"github.com/sellerdesk/onboard/internal/repository"
	"github.com/sellerdesk/onboard/internal/search"
	"github.com/sellerdesk/onboard/internal/sellerapi"
	"github.com/sellerdesk/onboard/internal/storage"
	"github.com/sellerdesk/onboard/internal/wizard"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:  "onboard",
		Usage: "Seller onboarding service for the marketplace",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   config.DefaultPort,
				Usage:   "HTTP server port",
				EnvVars: []string{"PORT"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Value:   config.DefaultDatabaseURL,
				Usage:   "PostgreSQL connection URL (omit for in-memory sessions)",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "api-base-url",
				Value:   config.DefaultAPIBaseURL,
				Usage:   "Marketplace backend API base URL",
				EnvVars: []string{"API_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka broker list (omit to disable event publishing)",
				EnvVars: []string{"KAFKA_BROKERS"},
			},
			&cli.IntFlag{
				Name:    "rate-limit",
				Value:   config.DefaultRateLimit,
				Usage:   "Requests per minute per IP",
				EnvVars: []string{"RATE_LIMIT"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file",
				EnvVars: []string{"ONBOARD_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			if path := c.String("config"); path != "" {
				file, err := config.Load(path)
				if err != nil {
					return err
				}
				applyConfigFile(c, file)
			}
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations and exit",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// applyConfigFile fills in flag values from the config file. Flags and
// environment variables set explicitly win over file values.
func applyConfigFile(c *cli.Context, file *config.File) {
	set := func(flag, value string) {
		if value != "" && !c.IsSet(flag) {
			_ = c.Set(flag, value)
		}
	}
	set("port", file.Port)
	set("database-url", file.DatabaseURL)
	set("api-base-url", file.APIBaseURL)
	set("kafka-brokers", file.KafkaBrokers)
	set("log-level", file.LogLevel)
	if file.RateLimit > 0 && !c.IsSet("rate-limit") {
		_ = c.Set("rate-limit", fmt.Sprintf("%d", file.RateLimit))
	}
}

func migrate(c *cli.Context) error {
	databaseURL := c.String("database-url")
	if databaseURL == "" {
		return fmt.Errorf("migrate requires --database-url")
	}
	if err := database.Migrate(c.Context, databaseURL); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	slog.Info("migrations applied")
	return nil
}

func serve(c *cli.Context) error {
	port := c.String("port")
	databaseURL := c.String("database-url")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pool *pgxpool.Pool
	if databaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, databaseURL)
		if err != nil {
			return fmt.Errorf("failed to create database pool: %w", err)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("database unreachable: %w", err)
		}
	} else {
		slog.Warn("no database configured, sessions are in-memory only")
	}

	client := sellerapi.NewClient(c.String("api-base-url"))

	var clientState storage.KeyValue
	var store *repository.SessionRepository
	var outbox *events.Outbox
	var recorder events.Recorder = events.LogRecorder{}
	if pool != nil {
		var err error
		store, err = repository.NewSessionRepository(pool)
		if err != nil {
			return err
		}
		clientState, err = repository.NewClientStateStore(pool)
		if err != nil {
			return err
		}
		outbox, err = events.NewOutbox(pool)
		if err != nil {
			return err
		}
		recorder = outbox
	} else {
		clientState = storage.NewMemory()
	}

	manager, err := wizard.NewManager(client, clientState, recorder)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	checker := search.NewChecker(config.DebounceWindow, client.CheckStoreName)
	m := metrics.New()

	var h *handler.Handler
	if store != nil {
		h, err = handler.New(manager, checker, client, store, m)
	} else {
		h, err = handler.New(manager, checker, client, nil, m)
	}
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	limiter, err := middleware.New(c.Int("rate-limit"), []string{"/healthz", "/metrics"})
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}
	defer limiter.Close()

	root := limiter.Middleware(middleware.CacheControl(m.Instrument("api", mux)))

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if outbox != nil {
		if kc := events.NewKafkaClient(c.String("kafka-brokers")); kc.Enabled() {
			relay, rerr := events.NewRelay(outbox, kc)
			if rerr != nil {
				return fmt.Errorf("failed to create event relay: %w", rerr)
			}
			g.Go(func() error {
				return relay.Run(gctx)
			})
		}
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	cancel()
	if err := g.Wait(); err != nil && err != context.Canceled {
		slog.Warn("event relay stopped with error", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
