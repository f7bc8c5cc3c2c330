package store

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type migration struct {
	version     string
	description string
	sql         string
}

// loadMigrations reads every NNN_description.sql file embedded under
// migrations/ and returns them sorted by the numeric version prefix.
func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, indexerr.Wrap(indexerr.MigrationFailure, "read embedded migrations", err)
	}

	var out []migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		raw, err := migrationFiles.ReadFile("migrations/" + e.Name())
		if err != nil {
			return nil, indexerr.Wrap(indexerr.MigrationFailure, "read migration "+e.Name(), err)
		}
		version, description := parseMigrationName(e.Name())
		out = append(out, migration{version: version, description: description, sql: string(raw)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// parseMigrationName splits "001_init.sql" into ("001", "init").
func parseMigrationName(filename string) (version, description string) {
	name := strings.TrimSuffix(filename, ".sql")
	idx := strings.IndexByte(name, '_')
	if idx < 0 {
		return name, name
	}
	return name[:idx], strings.ReplaceAll(name[idx+1:], "_", " ")
}

// migrate applies every migration whose version is not yet recorded in
// migration_history, in order, each inside its own transaction. The
// migration_history and meta bookkeeping tables are created beforehand by
// ensureBookkeeping.
func (s *Store) migrate() error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	if err := s.ensureBookkeeping(); err != nil {
		return err
	}

	for _, m := range migrations {
		applied, err := s.migrationApplied(m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := s.applyMigration(m); err != nil {
			return err
		}
	}
	return nil
}

// ensureBookkeeping creates migration_history and meta ahead of the first
// migration so migrationApplied can query them even before 001 runs. It is
// idempotent and harmless if 001_init.sql also creates these tables, since
// CREATE TABLE IF NOT EXISTS style guards are used here specifically.
func (s *Store) ensureBookkeeping() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS migration_history (
			version     TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return indexerr.Wrap(indexerr.MigrationFailure, "create bookkeeping tables", err)
	}
	return nil
}

func (s *Store) migrationApplied(version string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(1) FROM migration_history WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, indexerr.Wrap(indexerr.MigrationFailure, "check migration history", err)
	}
	return count > 0, nil
}

func (s *Store) applyMigration(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return indexerr.Wrap(indexerr.MigrationFailure, "begin migration "+m.version, err)
	}
	defer tx.Rollback()

	// Every statement of the file runs. 001_init.sql declares meta and
	// migration_history with IF NOT EXISTS, so running it after
	// ensureBookkeeping does not conflict.
	stmts := splitStatements(m.sql)
	for _, stmt := range stmts {
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return indexerr.Wrap(indexerr.MigrationFailure, "apply migration "+m.version+": "+m.description, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO migration_history (version, description, applied_at) VALUES (?, ?, ?)",
		m.version, m.description, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return indexerr.Wrap(indexerr.MigrationFailure, "record migration history "+m.version, err)
	}

	if _, err := tx.Exec(
		"INSERT INTO meta (key, value) VALUES ('schema_version', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		m.version,
	); err != nil {
		return indexerr.Wrap(indexerr.MigrationFailure, "bump schema_version", err)
	}

	if err := tx.Commit(); err != nil {
		return indexerr.Wrap(indexerr.MigrationFailure, "commit migration "+m.version, err)
	}
	return nil
}

// SchemaVersion returns the current value of meta.schema_version, or "" if
// no migration has ever applied.
func (s *Store) SchemaVersion() (string, error) {
	var version string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	if err == nil {
		return version, nil
	}
	if err.Error() == "sql: no rows in result set" {
		return "", nil
	}
	return "", indexerr.Wrap(indexerr.StoreIOError, "read schema_version", err)
}

// splitStatements performs a naive split of a .sql file body on statement
// terminators. Migration files are written one statement per semicolon and
// never embed a semicolon inside a string literal or trigger body comment,
// except CREATE TRIGGER bodies which use BEGIN...END; those are kept whole
// by tracking trigger nesting.
func splitStatements(body string) []string {
	var out []string
	var current strings.Builder
	inTrigger := false

	lines := strings.Split(body, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToUpper(trimmed), "--") {
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')

		upper := strings.ToUpper(trimmed)
		if strings.Contains(upper, "CREATE TRIGGER") {
			inTrigger = true
		}
		if inTrigger {
			if strings.HasPrefix(upper, "END;") || upper == "END;" {
				inTrigger = false
				out = append(out, strings.TrimSpace(current.String()))
				current.Reset()
			}
			continue
		}
		if strings.HasSuffix(trimmed, ";") {
			out = append(out, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}
