package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/trailquest/hunt/internal/catalog"
	"github.com/trailquest/hunt/internal/config"
	"github.com/trailquest/hunt/internal/database"
	"github.com/trailquest/hunt/internal/game"
	"github.com/trailquest/hunt/internal/migrations"
	"github.com/trailquest/hunt/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

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

	// --- Catalog ---
	var source catalog.Source
	if cfg.SheetsID != "" {
		source, err = catalog.NewSheetsSource(ctx, cfg.SheetsCredentials, cfg.SheetsID)
		if err != nil {
			return fmt.Errorf("creating sheets source: %w", err)
		}
		logger.Info("catalog source: google sheets", "spreadsheet", cfg.SheetsID)
	} else {
		source = catalog.JSONSource{Path: cfg.CatalogFile}
		logger.Info("catalog source: json file", "path", cfg.CatalogFile)
	}

	cat, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	holder := catalog.NewHolder(cat)
	routes, checkpoints := cat.Len()
	logger.Info("catalog loaded", "routes", routes, "checkpoints", checkpoints)

	// --- Redis (optional) ---
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")
	}

	store := server.NewSQLiteStore(db, cfg.StoreTimeout)
	broker := server.NewBroker(logger, rdb)

	if cfg.SeedDemo {
		if err := server.SeedDemo(ctx, logger, store, holder.Current()); err != nil {
			return fmt.Errorf("seeding demo teams: %w", err)
		}
	}

	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Store:                store,
		Broker:               broker,
		Engine:               game.NewEngine(rand.New(rand.NewSource(time.Now().UnixNano()))),
		Catalog:              holder,
		Source:               source,
		DB:                   db,
		Redis:                rdb,
		OperatorPasswordHash: cfg.OperatorPasswordHash,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return broker.Run(gctx)
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
