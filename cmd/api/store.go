package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xavierca1/dealer-leads/internal/config"
	"github.com/xavierca1/dealer-leads/internal/entity"
	"github.com/xavierca1/dealer-leads/internal/infra/database"
)

// leadStore is a repository plus its lifecycle hooks.
type leadStore struct {
	repo    entity.LeadRepositoryInterface
	ping    func(ctx context.Context) error
	migrate func(ctx context.Context) error
	close   func() error
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*leadStore, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Store {
	case config.StoreMemory:
		repo := database.NewMemoryLeadRepository()
		logger.Warn("using in-memory lead store, data is lost on restart")
		return &leadStore{repo: repo, ping: repo.Ping, migrate: noop, close: func() error { return nil }}, nil

	case config.StoreSQLite:
		repo, err := database.NewSQLiteLeadRepository(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("lead store ready", "store", cfg.Store, "path", cfg.SQLitePath)
		// AutoMigrate already ran on open
		return &leadStore{repo: repo, ping: repo.Ping, migrate: noop, close: repo.Close}, nil

	case config.StorePostgres:
		db, err := database.NewDBConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		repo := database.NewPostgresLeadRepository(db)
		logger.Info("lead store ready", "store", cfg.Store)
		return &leadStore{repo: repo, ping: repo.Ping, migrate: repo.Migrate, close: db.Close}, nil

	case config.StoreMongo:
		repo, err := database.NewMongoLeadRepository(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		logger.Info("lead store ready", "store", cfg.Store, "database", cfg.MongoDatabase)
		return &leadStore{
			repo:    repo,
			ping:    repo.Ping,
			migrate: noop,
			close:   func() error { return repo.Close(context.Background()) },
		}, nil
	}

	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
