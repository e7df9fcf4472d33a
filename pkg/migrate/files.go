package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const versionLayout = "20060102150405"

var (
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)
	sqlFileRe      = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	createTableRe  = regexp.MustCompile(`^create_([a-z0-9_]+?)_table$`)
	addColumnRe    = regexp.MustCompile(`^add_([a-z0-9_]+?)_to_([a-z0-9_]+)$`)
)

// CreateSQLMigration writes <dir>/<version>_<name>.sql. Names follow the
// repo's verb_object style; "create_<table>_table" and
// "add_<column>_to_<table>" get a matching skeleton.
func CreateSQLMigration(dir, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	version, err := nextVersion(dir, now)
	if err != nil {
		return "", err
	}
	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, safe))
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}

	up, down := skeleton(safe)
	body := fmt.Sprintf("-- +goose Up\n-- +goose StatementBegin\n%s\n-- +goose StatementEnd\n\n-- +goose Down\n-- +goose StatementBegin\n%s\n-- +goose StatementEnd\n", up, down)
	if err := os.WriteFile(fullpath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

// nextVersion keeps new files ordered after every existing one even when the
// clock is behind the newest version.
func nextVersion(dir string, now time.Time) (string, error) {
	versions, err := existingVersions(dir)
	if err != nil {
		return "", err
	}
	candidate := now.UTC().Truncate(time.Second)
	if len(versions) > 0 {
		latest, err := time.Parse(versionLayout, versions[len(versions)-1])
		if err == nil && !candidate.After(latest) {
			candidate = latest.Add(time.Second)
		}
	}
	return candidate.Format(versionLayout), nil
}

func existingVersions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}
	var versions []string
	for _, e := range entries {
		if m := sqlFileRe.FindStringSubmatch(e.Name()); m != nil && !e.IsDir() {
			versions = append(versions, m[1])
		}
	}
	sort.Strings(versions)
	return versions, nil
}

func skeleton(name string) (string, string) {
	if m := createTableRe.FindStringSubmatch(name); m != nil {
		table := m[1]
		up := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    created_at timestamptz NOT NULL DEFAULT now(),
    updated_at timestamptz NOT NULL DEFAULT now()
);`, table)
		return up, fmt.Sprintf("DROP TABLE IF EXISTS %s;", table)
	}
	if m := addColumnRe.FindStringSubmatch(name); m != nil {
		column, table := m[1], m[2]
		return fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s text;", table, column),
			fmt.Sprintf("ALTER TABLE %s DROP COLUMN IF EXISTS %s;", table, column)
	}
	return "-- " + name, "-- rollback " + name
}

// ValidateDir checks every migration in dir and reports all problems at once:
// filename shape, duplicate versions, Up before Down, and balanced statement
// blocks.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var errs error
	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
			continue
		}
		if _, err := time.Parse(versionLayout, m[1]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("migration %q has an invalid timestamp version", name))
		}
		if prev, ok := seen[m[1]]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name))
		}
		seen[m[1]] = name

		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read file %q: %w", name, err))
			continue
		}
		errs = multierr.Append(errs, checkBody(name, string(b)))
	}
	return errs
}

func checkBody(name, txt string) error {
	up := strings.Index(txt, "-- +goose Up")
	down := strings.Index(txt, "-- +goose Down")
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
	case down < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
	case down < up:
		return fmt.Errorf("migration %q has Down before Up", name)
	}
	begins := strings.Count(txt, "-- +goose StatementBegin")
	ends := strings.Count(txt, "-- +goose StatementEnd")
	if begins != ends {
		return fmt.Errorf("migration %q has %d StatementBegin and %d StatementEnd", name, begins, ends)
	}
	return nil
}
