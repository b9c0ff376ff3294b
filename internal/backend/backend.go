// Package backend opens the lending.Store selected by the configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"library-lending-service/internal/boltstore"
	"library-lending-service/internal/config"
	"library-lending-service/internal/firebase"
	"library-lending-service/internal/lending"
	"library-lending-service/internal/memstore"
	"library-lending-service/internal/postgres"
)

// Backend is an opened store plus the Firebase client when one was needed
type Backend struct {
	Store    lending.Store
	Firebase *firebase.Client
	closers  []func() error
}

// Close releases every connection opened by Open
func (b *Backend) Close() error {
	var firstErr error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open connects the configured backend. Postgres schemas are migrated on open.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{}

	if cfg.NeedsFirebase() {
		client, err := firebase.NewClient(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		b.Firebase = client
		b.closers = append(b.closers, client.Close)
		logger.Info("firebase initialized")
	}

	switch cfg.Backend {
	case config.BackendMemory:
		b.Store = memstore.New()

	case config.BackendBolt:
		store, err := boltstore.New(cfg.BoltPath)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Store = store
		b.closers = append(b.closers, store.Close)

	case config.BackendFirestore:
		b.Store = b.Firebase.Store(firebase.WithLogger(logger))

	case config.BackendPostgres:
		store, err := openPostgres(ctx, cfg, logger, b)
		if err != nil {
			b.Close()
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.Store = store

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	logger.Info("store opened", "backend", cfg.Backend)
	return b, nil
}

func openPostgres(ctx context.Context, cfg config.Config, logger *slog.Logger, b *Backend) (*postgres.Store, error) {
	if cfg.PostgresDriver == "sqlx" {
		db, err := postgres.OpenSQLX(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		return postgres.NewStoreFromSQLX(db, postgres.WithLogger(logger))
	}

	pool, err := postgres.OpenPGXPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, func() error {
		pool.Close()
		return nil
	})
	return postgres.NewStoreFromPGXPool(pool, postgres.WithLogger(logger))
}
