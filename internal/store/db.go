package store

import (
	"context"
	_ "embed"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// BusyTimeout is the duration SQLite waits on a locked database before
// returning SQLITE_BUSY, absorbing short contention between a foreground
// handler and a background worker.
const BusyTimeout = 10 * time.Second

// DB wraps the embedded database connection shared by every component that
// touches the memory store: event-model CRUD, the task queue, and
// retrieval.
type DB struct {
	conn *sql.DB
	log  *slog.Logger
	path string
}

// Open creates the parent directory if needed and opens (or creates) the
// SQLite file at path, applying WAL journaling and a busy timeout the way
// the sqlitevec backend this is grounded on does, then brings the schema up
// to date.
func Open(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store")

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, BusyTimeout.Milliseconds())
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: set journal mode: %w", err)
	}
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", BusyTimeout.Milliseconds())); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}

	db := &DB{conn: conn, log: logger, path: path}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Conn exposes the underlying *sql.DB for packages (queue, retrieval) that
// need direct access within this process.
func (d *DB) Conn() *sql.DB { return d.conn }

// Path returns the filesystem path this database was opened from, for the
// lifecycle statistics reporter's byte-size count.
func (d *DB) Path() string { return d.path }

// Vacuum reclaims space freed by prior deletes.
func (d *DB) Vacuum(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("store: vacuum: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (d *DB) Close() error { return d.conn.Close() }

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range splitStatements(schemaSQL) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := d.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: apply schema: %w", err)
		}
	}
	for _, m := range columnMigrations {
		if err := d.applyColumnMigration(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// columnMigration adds one column to one table if it is not already
// present. Every entry here is safe to replay against an up-to-date
// database: ALTER TABLE ADD COLUMN is skipped once the column exists.
type columnMigration struct {
	table  string
	column string
	ddl    string
}

// columnMigrations is the fixed, append-only list of column additions
// applied to older database files. New fields added to the schema after
// first release belong here, never as a destructive ALTER.
var columnMigrations = []columnMigration{
	{table: "memory_entries", column: "content_hash", ddl: "ALTER TABLE memory_entries ADD COLUMN content_hash TEXT NOT NULL DEFAULT ''"},
}

func (d *DB) applyColumnMigration(ctx context.Context, m columnMigration) error {
	rows, err := d.conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", m.table))
	if err != nil {
		return fmt.Errorf("store: inspect %s: %w", m.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return fmt.Errorf("store: scan column info: %w", err)
		}
		if name == m.column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := d.conn.ExecContext(ctx, m.ddl); err != nil {
		return fmt.Errorf("store: add column %s.%s: %w", m.table, m.column, err)
	}
	return nil
}

// splitStatements splits a .sql file on statement-terminating semicolons,
// keeping the semicolons inside BEGIN ... END trigger bodies within their
// statement. The embedded schema never contains semicolons inside string
// literals, so counting BEGIN/END keywords is sufficient and keeps this
// dependency-free.
func splitStatements(sqlText string) []string {
	raw := strings.Split(sqlText, ";")
	stmts := make([]string, 0, len(raw))
	var buf strings.Builder
	depth := 0
	for _, part := range raw {
		buf.WriteString(part)
		depth += strings.Count(part, "BEGIN") - strings.Count(part, "END")
		if depth > 0 {
			buf.WriteString(";")
			continue
		}
		stmts = append(stmts, buf.String())
		buf.Reset()
	}
	return stmts
}
