package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/paaskampf/scoreboard/internal/actions"
	"github.com/paaskampf/scoreboard/internal/config"
	"github.com/paaskampf/scoreboard/internal/database"
	"github.com/paaskampf/scoreboard/internal/handler/health"
	"github.com/paaskampf/scoreboard/internal/handler/livews"
	"github.com/paaskampf/scoreboard/internal/migrations"
	"github.com/paaskampf/scoreboard/internal/realtime"
	"github.com/paaskampf/scoreboard/internal/remote"
	"github.com/paaskampf/scoreboard/internal/server"
	"github.com/paaskampf/scoreboard/internal/state"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	checks := map[string]health.Checker{
		"sqlite": health.CheckerFunc(db.PingContext),
	}

	// --- Change feed ---
	var feed remote.Feed
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		feed = remote.NewRedisFeed(rdb, logger)
		checks["redis"] = health.CheckerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	} else {
		feed = remote.NewBroker(logger)
		logger.Info("using in-process change feed")
	}

	// --- Scoreboard ---
	store := remote.NewSQLiteStore(db, feed, logger)
	cache := state.New()
	svc := actions.New(cache, store, logger)
	defer svc.Close()

	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("loading scoreboard: %w", err)
	}
	if cfg.SeedDemo {
		if err := server.SeedDemo(ctx, logger, svc, cache); err != nil {
			return fmt.Errorf("seeding demo: %w", err)
		}
	}

	gate, err := server.NewPINGate(cfg.PIN, cfg.SessionSecret)
	if err != nil {
		return err
	}
	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET not set, sessions end on restart")
	}

	// --- HTTP Server ---
	stream := server.NewBroker()
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Cache:       cache,
		Actions:     svc,
		Stream:      stream,
		Gate:        gate,
		PublicURL:   cfg.PublicURL,
		SPADir:      cfg.SPADir,
		CORSOrigins: cfg.CORSOrigins,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
		r.Mount("/ws", livews.NewHandler(cache, logger).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return realtime.New(cache, feed, svc, logger).Run(gctx)
	})

	g.Go(func() error {
		return stream.Relay(gctx, cache, logger)
	})

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
