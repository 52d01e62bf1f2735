package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Timestamps are stored as unix nanoseconds, booleans as 0/1.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id          TEXT PRIMARY KEY,
	author_id   TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL,
	deleted_at  INTEGER
);

CREATE TABLE IF NOT EXISTS %[2]s (
	id              TEXT PRIMARY KEY,
	project_id      TEXT NOT NULL REFERENCES %[1]s(id) ON DELETE CASCADE,
	parent_id       TEXT REFERENCES %[2]s(id),
	name            TEXT NOT NULL,
	node_type       TEXT NOT NULL CHECK (node_type IN ('folder', 'file')),
	description     TEXT,
	content         TEXT,
	file_extension  TEXT,
	word_count      INTEGER NOT NULL DEFAULT 0,
	path            TEXT NOT NULL,
	depth           INTEGER NOT NULL DEFAULT 0 CHECK (depth >= 0),
	sort_order      INTEGER NOT NULL DEFAULT 0,
	global_sequence INTEGER,
	is_deleted      INTEGER NOT NULL DEFAULT 0,
	deleted_at      INTEGER,
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL,
	CHECK (parent_id IS NULL OR parent_id <> id)
);

CREATE INDEX IF NOT EXISTS %[3]sidx_fs_nodes_siblings ON %[2]s (project_id, parent_id, sort_order);
CREATE INDEX IF NOT EXISTS %[3]sidx_fs_nodes_tree ON %[2]s (project_id, depth, sort_order);
CREATE INDEX IF NOT EXISTS %[3]sidx_fs_nodes_parent ON %[2]s (parent_id);
`

// SchemaSQL renders the DDL for a table prefix
func SchemaSQL(prefix string) string {
	tables := NewTableNames(prefix)
	return fmt.Sprintf(schemaTemplate, tables.Projects, tables.Nodes, prefix)
}

// EnsureSchema creates the tables and indexes when they do not exist yet
func EnsureSchema(ctx context.Context, db *sql.DB, prefix string) error {
	if _, err := db.ExecContext(ctx, SchemaSQL(prefix)); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
