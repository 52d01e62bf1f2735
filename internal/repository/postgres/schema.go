package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaTemplate creates the project and node tables. %[1]s is the projects
// table, %[2]s the nodes table and %[3]s the table prefix used for index names.
//
// parent_id references the nodes table without ON DELETE CASCADE: a purge must
// remove children before their parent.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	author_id   TEXT NOT NULL,
	title       VARCHAR(255) NOT NULL,
	description TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	deleted_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS %[2]s (
	id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	project_id      UUID NOT NULL REFERENCES %[1]s(id) ON DELETE CASCADE,
	parent_id       UUID REFERENCES %[2]s(id),
	name            VARCHAR(255) NOT NULL,
	node_type       TEXT NOT NULL CHECK (node_type IN ('folder', 'file')),
	description     TEXT,
	content         TEXT,
	file_extension  VARCHAR(16),
	word_count      INTEGER NOT NULL DEFAULT 0,
	path            TEXT NOT NULL,
	depth           INTEGER NOT NULL DEFAULT 0 CHECK (depth >= 0),
	sort_order      INTEGER NOT NULL DEFAULT 0,
	global_sequence INTEGER,
	is_deleted      BOOLEAN NOT NULL DEFAULT false,
	deleted_at      TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (parent_id IS NULL OR parent_id <> id)
);

ALTER TABLE %[2]s ADD COLUMN IF NOT EXISTS deleted_at TIMESTAMPTZ;

CREATE INDEX IF NOT EXISTS %[3]sidx_fs_nodes_siblings
	ON %[2]s (project_id, parent_id, sort_order);
CREATE INDEX IF NOT EXISTS %[3]sidx_fs_nodes_tree
	ON %[2]s (project_id, depth, sort_order) WHERE is_deleted = false;
CREATE INDEX IF NOT EXISTS %[3]sidx_fs_nodes_parent
	ON %[2]s (parent_id);
CREATE INDEX IF NOT EXISTS %[3]sidx_projects_author
	ON %[1]s (author_id) WHERE deleted_at IS NULL;
`

// SchemaSQL renders the DDL for a table prefix
func SchemaSQL(prefix string) string {
	tables := NewTableNames(prefix)
	return fmt.Sprintf(schemaTemplate, tables.Projects, tables.Nodes, prefix)
}

// EnsureSchema creates the tables and indexes when they do not exist yet
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, prefix string) error {
	if _, err := pool.Exec(ctx, SchemaSQL(prefix)); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
