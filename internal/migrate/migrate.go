// AngelaMos | 2026
// migrate.go

package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/callboard/internal/core"
)

//go:embed sql/*.sql
var files embed.FS

// lockID serializes concurrent migrators across replicas.
const lockID int64 = 0x63616c6c

const createTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    VARCHAR(255) PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		applied_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`

type Migration struct {
	Version string
	Name    string
	SQL     string
}

type Status struct {
	Version   string     `db:"version"`
	Name      string     `db:"name"`
	AppliedAt *time.Time `db:"applied_at"`
}

type Migrator struct {
	db         *sqlx.DB
	migrations []Migration
	logger     *slog.Logger
}

func New(db *sqlx.DB, logger *slog.Logger) (*Migrator, error) {
	migrations, err := Load(files)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Migrator{db: db, migrations: migrations, logger: logger}, nil
}

// Load reads NNNN_name.sql files from fsys in version order.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.Glob(fsys, "sql/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(entries)

	migrations := make([]Migration, 0, len(entries))
	seen := make(map[string]string, len(entries))

	for _, entry := range entries {
		base := strings.TrimSuffix(path.Base(entry), ".sql")
		version, name, ok := strings.Cut(base, "_")
		if !ok || version == "" || name == "" {
			return nil, fmt.Errorf("migration %q: expected NNNN_name.sql", entry)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %s used by %s and %s", version, prev, entry)
		}
		seen[version] = entry

		body, err := fs.ReadFile(fsys, entry)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry, err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    name,
			SQL:     string(body),
		})
	}

	return migrations, nil
}

func (m *Migrator) Migrations() []Migration {
	return m.migrations
}

// Up applies every pending migration, each in its own transaction. It
// returns the number applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if _, err := m.db.ExecContext(ctx, createTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := 0
	for _, mig := range m.migrations {
		ran, err := m.apply(ctx, mig)
		if err != nil {
			return applied, err
		}
		if ran {
			applied++
			m.logger.Info("migration applied", "version", mig.Version, "name", mig.Name)
		}
	}

	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) (bool, error) {
	ran := false

	err := core.InTx(ctx, m.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockID); err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}

		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`,
			mig.Version,
		); err != nil {
			return fmt.Errorf("check migration %s: %w", mig.Version, err)
		}
		if exists {
			return nil
		}

		if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
			return fmt.Errorf("apply migration %s_%s: %w", mig.Version, mig.Name, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
			mig.Version, mig.Name,
		); err != nil {
			return fmt.Errorf("record migration %s: %w", mig.Version, err)
		}

		ran = true
		return nil
	})

	return ran, err
}

// Status lists every known migration with its applied time, nil when pending.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	if _, err := m.db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var rows []Status
	if err := m.db.SelectContext(ctx, &rows,
		`SELECT version, name, applied_at FROM schema_migrations ORDER BY version`,
	); err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}

	applied := make(map[string]*time.Time, len(rows))
	for _, row := range rows {
		applied[row.Version] = row.AppliedAt
	}

	out := make([]Status, 0, len(m.migrations))
	for _, mig := range m.migrations {
		out = append(out, Status{
			Version:   mig.Version,
			Name:      mig.Name,
			AppliedAt: applied[mig.Version],
		})
	}

	return out, nil
}
