package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/hemovita/hemovita-cli/internal/store"
)

// initStore opens the configured run/snapshot store. Driver "none"
// returns (nil, nil); callers treat a nil store as bookkeeping disabled.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "hemovita.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "none", "":
		return nil, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
