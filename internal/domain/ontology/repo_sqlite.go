package ontology

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS ontology_concept (
    concept_key       TEXT PRIMARY KEY,
    parent_key        TEXT,
    name              TEXT NOT NULL,
    hlevel            INTEGER NOT NULL DEFAULT 0,
    visual_attributes TEXT NOT NULL DEFAULT 'LA',
    basecode          TEXT,
    dimcode           TEXT,
    operator          TEXT,
    table_name        TEXT,
    is_modifier       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_ontology_concept_parent ON ontology_concept(parent_key)`

// SQLiteStore is a file-backed ontology store for offline use.
type SQLiteStore struct {
	conn *sql.DB
	Path string
}

// OpenSQLite opens (and creates, if needed) an ontology database at path.
// Use ":memory:" for a throwaway store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ontology database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	return &SQLiteStore{conn: conn, Path: path}, nil
}

// Migrate creates the concept table.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating ontology_concept: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) GetByKey(ctx context.Context, key string) (*Record, error) {
	var rec Record
	var kind string
	err := s.conn.QueryRowContext(ctx, selectConcept+` WHERE concept_key = ?`, key).Scan(
		&rec.Key, &rec.ParentKey, &rec.Name, &rec.Level, &kind,
		&rec.BaseCode, &rec.DimCodeRaw, &rec.OperatorOp, &rec.TableName, &rec.IsModifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("get concept %s: %w", key, err)
	}
	rec.Kind = Kind(kind)
	return &rec, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec *Record) error {
	var parent *string
	if rec.ParentKey != "" {
		parent = Str(rec.ParentKey)
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO ontology_concept (concept_key, parent_key, name, hlevel, visual_attributes,
		        basecode, dimcode, operator, table_name, is_modifier)
		 VALUES (?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT (concept_key) DO UPDATE SET
		        parent_key = excluded.parent_key, name = excluded.name, hlevel = excluded.hlevel,
		        visual_attributes = excluded.visual_attributes, basecode = excluded.basecode,
		        dimcode = excluded.dimcode, operator = excluded.operator,
		        table_name = excluded.table_name, is_modifier = excluded.is_modifier`,
		rec.Key, parent, rec.Name, rec.Level, string(rec.Kind),
		rec.BaseCode, rec.DimCodeRaw, rec.OperatorOp, rec.TableName, rec.IsModifier)
	if err != nil {
		return fmt.Errorf("upsert concept %s: %w", rec.Key, err)
	}
	return nil
}
