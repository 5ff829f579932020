// Package audit provides SQLite-backed append-only storage for resolved
// arbitration plans.
//
// The store is an external collaborator of the engine, invoked only after a
// plan is finalized, and is non-fatal by contract: a failed append is logged
// and reported as false, never as an error the request path must handle.
//
// Ordering uses the seq column (logical clock), never timestamps, so
// read-back order is deterministic regardless of wall time.
package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/attunehq/arbiter/internal/engine"
	"github.com/attunehq/arbiter/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Store is the SQLite audit log. Safe for concurrent use; SQLite is limited
// to a single writer connection to avoid SQLITE_BUSY errors.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens an audit database at the given path.
// Use ":memory:" for tests. Idempotent.
//
// The database is configured with WAL mode for concurrent reads, NORMAL
// synchronous mode, a 5-second busy timeout, and foreign key enforcement.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Single writer to avoid SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Store appends one audit entry. Implements engine.AuditSink.
// Returns false (and logs) on failure; never returns an error.
func (s *Store) Store(entry engine.AuditEntry) bool {
	suppressed, err := json.Marshal(entry.Suppressed)
	if err != nil {
		s.logger.Warn("audit append failed", "error", err)
		return false
	}

	_, err = s.db.Exec(
		`INSERT INTO audit_entries
		 (computed_at, input_hash, user_id, tenant_id, primary_domain, suppressed, conflict_count, response)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ComputedAt.UTC().Format(time.RFC3339Nano),
		entry.InputHash,
		entry.UserID,
		entry.TenantID,
		string(entry.PrimaryDomain),
		string(suppressed),
		entry.ConflictCount,
		string(entry.Response),
	)
	if err != nil {
		s.logger.Warn("audit append failed", "error", err, "input_hash", entry.InputHash)
		return false
	}
	return true
}

// Row is one persisted audit record.
type Row struct {
	Seq           int64             `json:"seq"`
	ComputedAt    time.Time         `json:"computed_at"`
	InputHash     string            `json:"input_hash"`
	UserID        string            `json:"user_id"`
	TenantID      string            `json:"tenant_id"`
	PrimaryDomain model.Domain      `json:"primary_domain"`
	Suppressed    []model.Domain    `json:"suppressed,omitempty"`
	ConflictCount int               `json:"conflict_count"`
}

// List returns up to limit audit rows in seq order, oldest first.
// A limit <= 0 returns all rows.
func (s *Store) List(ctx context.Context, limit int) ([]Row, error) {
	query := `SELECT seq, computed_at, input_hash, user_id, tenant_id, primary_domain, suppressed, conflict_count
	          FROM audit_entries ORDER BY seq ASC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r          Row
			computedAt string
			suppressed string
		)
		if err := rows.Scan(&r.Seq, &computedAt, &r.InputHash, &r.UserID, &r.TenantID,
			&r.PrimaryDomain, &suppressed, &r.ConflictCount); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		r.ComputedAt, err = time.Parse(time.RFC3339Nano, computedAt)
		if err != nil {
			return nil, fmt.Errorf("parse computed_at: %w", err)
		}
		if err := json.Unmarshal([]byte(suppressed), &r.Suppressed); err != nil {
			return nil, fmt.Errorf("parse suppressed: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Response returns the full stored response JSON for one entry.
func (s *Store) Response(ctx context.Context, seq int64) ([]byte, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT response FROM audit_entries WHERE seq = ?", seq).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("load audit response: %w", err)
	}
	return []byte(raw), nil
}

// CountByInputHash returns how many entries share the given input hash.
// The external deduplication path uses this to spot repeated invocations.
func (s *Store) CountByInputHash(ctx context.Context, inputHash string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audit_entries WHERE input_hash = ?", inputHash).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by input hash: %w", err)
	}
	return n, nil
}
