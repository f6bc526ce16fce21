package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/ha1tch/automata/pkg/automatonfile"
	"github.com/rs/zerolog"

	// SQLite driver
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS automata (
	name       TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteRepository keeps automata in a SQLite database.
type SQLiteRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(ctx context.Context, path string, log zerolog.Logger) (*SQLiteRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialise database: %w", err)
		}
	}

	return &SQLiteRepository{db: db, log: log}, nil
}

// Save stores a under name.
func (r *SQLiteRepository) Save(ctx context.Context, name string, a *automaton.Automaton) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := automatonfile.ToJSON(a, false)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO automata (name, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		name, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}

	r.log.Debug().Str("name", name).Int("bytes", len(data)).Msg("saved")
	return nil
}

// Load reads a stored automaton.
func (r *SQLiteRepository) Load(ctx context.Context, name string) (*automaton.Automaton, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM automata WHERE name = ?`, name).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return automatonfile.ParseJSON([]byte(doc))
}

// Delete removes a stored automaton.
func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM automata WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	r.log.Debug().Str("name", name).Msg("deleted")
	return nil
}

// List returns the stored names.
func (r *SQLiteRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM automata ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list automata: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
