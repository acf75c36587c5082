package main

import (
	"context"
	"fmt"
	"strings"

	"worldforge/internal/config"
	"worldforge/internal/store"
	"worldforge/internal/store/postgres"
	"worldforge/internal/store/sqlite"
)

// openStore opens the backend named by the DSN scheme and ensures its schema.
func openStore(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn := cfg.Database.DSN

	var db store.Store
	var err error
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		db, err = sqlite.New(ctx, dsn)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		db, err = postgres.New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database dsn %q: expected sqlite:// or postgres://", dsn)
	}
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	return db, nil
}

// withStore loads the config, opens the store and runs fn against it.
func withStore(ctx context.Context, fn func(store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	return fn(db)
}
