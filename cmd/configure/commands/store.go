package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/avancea/ritmo/internal/config"
	"github.com/avancea/ritmo/internal/database"
	"github.com/avancea/ritmo/internal/storage"
)

// openStore dials the database and hands back a transactional store.
// The returned cleanup must run even when the command fails.
func openStore(ctx context.Context) (storage.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}

	if err := db.Migrate(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database.NewStore(db), cleanup, nil
}
