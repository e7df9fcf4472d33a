package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// DialectPostgres is the only dialect the SQL migrations are written for.
// SQLite development databases are built with gorm AutoMigrate instead.
const DialectPostgres = "postgres"

// Commands that move the schema; the directory is validated before they run.
var mutating = map[string]bool{"up": true, "down": true, "redo": true, "reset": true}

var supported = map[string]bool{"up": true, "down": true, "redo": true, "reset": true, "status": true, "version": true}

// Run executes a goose command against db. Schema changing commands refuse to
// start while any file in dir is malformed.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if !supported[command] {
		return fmt.Errorf("unsupported goose command %q", command)
	}
	if err := prepare(db, dir, mutating[command]); err != nil {
		return err
	}
	// goose prints status output to stdout itself.
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down until it sits at
// targetVersion, a YYYYMMDDHHMMSS migration version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	target, err := parseVersion(targetVersion)
	if err != nil {
		return err
	}
	if err := prepare(db, dir, true); err != nil {
		return err
	}

	current, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

func prepare(db *sql.DB, dir string, validate bool) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	if validate {
		if err := ValidateDir(dir); err != nil {
			return fmt.Errorf("invalid migrations in %q: %w", dir, err)
		}
	}
	if err := goose.SetDialect(DialectPostgres); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

func parseVersion(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("target version is required")
	}
	if _, err := time.Parse(versionLayout, raw); err != nil {
		return 0, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", raw)
	}
	return strconv.ParseInt(raw, 10, 64)
}
