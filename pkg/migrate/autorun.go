package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/isaiahriv1234/Freight-Project/pkg/config"
	"github.com/isaiahriv1234/Freight-Project/pkg/db"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
)

// AutoRun applies pending migrations at process start. It only acts in dev
// with FREIGHT_AUTO_MIGRATE set; other environments migrate via cmd/migrate.
func AutoRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if client == nil {
		return fmt.Errorf("db client required")
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	dialect := DialectFor(client.Dialect())
	from, to, err := ApplyPending(ctx, sqlDB, dialect, DefaultDir)
	if err != nil {
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"dialect":      dialect,
		"from_version": from,
		"to_version":   to,
	})
	if from == to {
		logg.Debug(ctx, "schema already current")
		return nil
	}
	logg.Info(ctx, "schema migrated")
	return nil
}

// ApplyPending validates dir, then migrates up, returning the schema version
// before and after.
func ApplyPending(ctx context.Context, sqlDB *sql.DB, dialect, dir string) (int64, int64, error) {
	if sqlDB == nil {
		return 0, 0, fmt.Errorf("db is required")
	}
	if err := ValidateDir(dir); err != nil {
		return 0, 0, fmt.Errorf("validating %s: %w", dir, err)
	}
	if err := setDialect(dialect); err != nil {
		return 0, 0, err
	}

	from, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, 0, fmt.Errorf("get db version: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
		return from, from, fmt.Errorf("goose up: %w", err)
	}
	to, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return from, from, fmt.Errorf("get db version: %w", err)
	}
	return from, to, nil
}
