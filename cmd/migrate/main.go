package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/isaiahriv1234/Freight-Project/pkg/config"
	"github.com/isaiahriv1234/Freight-Project/pkg/db"
	"github.com/isaiahriv1234/Freight-Project/pkg/logger"
	"github.com/isaiahriv1234/Freight-Project/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name, for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version YYYYMMDDHHMMSS, for -cmd=version")
	flag.Parse()

	// create and validate only touch the filesystem.
	switch opts.cmd {
	case "create":
		exitOn(logg, createMigration(opts))
		return
	case "validate":
		exitOn(logg, migrate.ValidateDir(opts.dir))
		fmt.Println("migrations valid:", opts.dir)
		return
	}

	cfg, err := config.Load()
	exitOn(logg, err)
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx := logg.WithFields(context.Background(), map[string]any{"cmd": opts.cmd, "dir": opts.dir})
	if err := runAgainstDB(ctx, cfg, logg, opts); err != nil {
		logg.Error(ctx, "migration command failed", err)
		os.Exit(1)
	}
}

func createMigration(opts options) error {
	if opts.name == "" {
		return fmt.Errorf("-name is required for create")
	}
	path, err := migrate.CreateSQLMigration(opts.dir, opts.name, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Println("created migration:", path)
	return nil
}

func runAgainstDB(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts options) error {
	client, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql database: %w", err)
	}
	dialect := migrate.DialectFor(client.Dialect())

	switch opts.cmd {
	case "up":
		from, to, err := migrate.ApplyPending(ctx, sqlDB, dialect, opts.dir)
		if err != nil {
			return err
		}
		logg.Info(logg.WithFields(ctx, map[string]any{"from_version": from, "to_version": to}), "schema migrated")
		return nil
	case "down", "status":
		return migrate.Run(ctx, sqlDB, dialect, opts.dir, opts.cmd)
	case "version":
		if opts.version == "" {
			return fmt.Errorf("-version is required for version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, dialect, opts.dir, opts.version)
	default:
		return fmt.Errorf("unknown -cmd %q", opts.cmd)
	}
}

func exitOn(logg *logger.Logger, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "migrate failed", err)
	os.Exit(1)
}
