package fsnode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quill/internal/domain"
	models "quill/internal/domain/models/fsnode"
	fsnodeRepo "quill/internal/domain/repositories/fsnode"
	"quill/internal/repository/postgres"
)

const nodeColumns = `id, project_id, parent_id, name, node_type, description, content,
	file_extension, word_count, path, depth, sort_order, global_sequence,
	is_deleted, deleted_at, created_at, updated_at`

// PostgresNodeRepository implements the NodeRepository interface
type PostgresNodeRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(config *postgres.RepositoryConfig) fsnodeRepo.NodeRepository {
	return &PostgresNodeRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner, node *models.Node) error {
	return row.Scan(
		&node.ID,
		&node.ProjectID,
		&node.ParentID,
		&node.Name,
		&node.NodeType,
		&node.Description,
		&node.Content,
		&node.FileExtension,
		&node.WordCount,
		&node.Path,
		&node.Depth,
		&node.SortOrder,
		&node.GlobalSequence,
		&node.IsDeleted,
		&node.DeletedAt,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
}

// Create inserts a node
func (r *PostgresNodeRepository) Create(ctx context.Context, node *models.Node) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, parent_id, name, node_type, description, content,
			file_extension, word_count, path, depth, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		node.ProjectID,
		node.ParentID,
		node.Name,
		node.NodeType,
		node.Description,
		node.Content,
		node.FileExtension,
		node.WordCount,
		node.Path,
		node.Depth,
		node.SortOrder,
		node.CreatedAt,
		node.UpdatedAt,
	).Scan(&node.ID, &node.CreatedAt, &node.UpdatedAt)

	if err != nil {
		return postgres.StoreErr("create node", "node", err)
	}
	return nil
}

// GetByID retrieves a live node scoped to a project
func (r *PostgresNodeRepository) GetByID(ctx context.Context, id, projectID string) (*models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND project_id = $2 AND is_deleted = false
	`, nodeColumns, r.tables.Nodes)

	return r.getOne(ctx, query, id, id, projectID)
}

// GetByIDOnly retrieves a live node by ID only
func (r *PostgresNodeRepository) GetByIDOnly(ctx context.Context, id string) (*models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND is_deleted = false
	`, nodeColumns, r.tables.Nodes)

	return r.getOne(ctx, query, id, id)
}

// GetTrashedByID retrieves a soft-deleted node
func (r *PostgresNodeRepository) GetTrashedByID(ctx context.Context, id string) (*models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND is_deleted = true
	`, nodeColumns, r.tables.Nodes)

	return r.getOne(ctx, query, id, id)
}

func (r *PostgresNodeRepository) getOne(ctx context.Context, query, id string, args ...any) (*models.Node, error) {
	var node models.Node
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanNode(executor.QueryRow(ctx, query, args...), &node); err != nil {
		return nil, postgres.StoreErr("get node", "node "+id, err)
	}
	return &node, nil
}

// GetParentID returns the parent pointer of a live node
func (r *PostgresNodeRepository) GetParentID(ctx context.Context, id string) (*string, error) {
	query := fmt.Sprintf(`
		SELECT parent_id FROM %s
		WHERE id = $1 AND is_deleted = false
	`, r.tables.Nodes)

	var parentID *string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&parentID); err != nil {
		return nil, postgres.StoreErr("get parent id", "node "+id, err)
	}
	return parentID, nil
}

// MaxSiblingSortOrder returns the largest sort_order among live and trashed siblings, or 0
func (r *PostgresNodeRepository) MaxSiblingSortOrder(ctx context.Context, projectID string, parentID *string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(sort_order), 0) FROM %s
		WHERE project_id = $1
		  AND parent_id IS NOT DISTINCT FROM $2::uuid
	`, r.tables.Nodes)

	var maxOrder int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID, parentID).Scan(&maxOrder); err != nil {
		return 0, postgres.StoreErr("max sibling sort order", "siblings", err)
	}
	return maxOrder, nil
}

// Update writes the non-nil fields of patch plus updated_at
func (r *PostgresNodeRepository) Update(ctx context.Context, id string, patch *models.NodePatch) (*models.Node, error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Content != nil {
		set("content", *patch.Content)
	}
	if patch.FileExtension != nil {
		set("file_extension", *patch.FileExtension)
	}
	if patch.WordCount != nil {
		set("word_count", *patch.WordCount)
	}
	if patch.SortOrder != nil {
		set("sort_order", *patch.SortOrder)
	}
	if patch.ParentID.Present {
		set("parent_id", patch.ParentID.Value)
	}
	if patch.Path != nil {
		set("path", *patch.Path)
	}
	if patch.Depth != nil {
		set("depth", *patch.Depth)
	}
	set("updated_at", patch.UpdatedAt)

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE %s SET %s
		WHERE id = $%d AND is_deleted = false
		RETURNING %s
	`, r.tables.Nodes, strings.Join(sets, ", "), len(args), nodeColumns)

	var node models.Node
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := scanNode(executor.QueryRow(ctx, query, args...), &node); err != nil {
		return nil, postgres.StoreErr("update node", "node "+id, err)
	}
	return &node, nil
}

// UpdateHierarchy rewrites the derived path and depth of a node
func (r *PostgresNodeRepository) UpdateHierarchy(ctx context.Context, id, path string, depth int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET path = $1, depth = $2, updated_at = now()
		WHERE id = $3
	`, r.tables.Nodes)

	return r.execOne(ctx, "update hierarchy", id, query, path, depth, id)
}

// SetGlobalSequence stores the reading-order position of a file
func (r *PostgresNodeRepository) SetGlobalSequence(ctx context.Context, id string, sequence *int) error {
	query := fmt.Sprintf(`UPDATE %s SET global_sequence = $1 WHERE id = $2`, r.tables.Nodes)
	return r.execOne(ctx, "set global sequence", id, query, sequence, id)
}

// SoftDelete moves a live node to the trash
func (r *PostgresNodeRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET is_deleted = true, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND is_deleted = false
	`, r.tables.Nodes)

	return r.execOne(ctx, "soft delete node", id, query, id, deletedAt)
}

// Restore takes a node out of the trash
func (r *PostgresNodeRepository) Restore(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET is_deleted = false, deleted_at = NULL, updated_at = now()
		WHERE id = $1
	`, r.tables.Nodes)

	return r.execOne(ctx, "restore node", id, query, id)
}

// Delete permanently removes a node row. The parent_id foreign key has no
// cascade, so deleting a node that still has children fails.
func (r *PostgresNodeRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Nodes)
	return r.execOne(ctx, "delete node", id, query, id)
}

func (r *PostgresNodeRepository) execOne(ctx context.Context, op, id, query string, args ...any) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return postgres.StoreErr(op, "node "+id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListChildren lists the live immediate children of parentID
func (r *PostgresNodeRepository) ListChildren(ctx context.Context, projectID string, parentID *string) ([]models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE project_id = $1
		  AND parent_id IS NOT DISTINCT FROM $2::uuid
		  AND is_deleted = false
		ORDER BY sort_order ASC, created_at ASC
	`, nodeColumns, r.tables.Nodes)

	return r.list(ctx, "list children", query, projectID, parentID)
}

// CountChildren counts the live immediate children of a node
func (r *PostgresNodeRepository) CountChildren(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE parent_id = $1 AND is_deleted = false
	`, r.tables.Nodes)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, postgres.StoreErr("count children", "node "+id, err)
	}
	return count, nil
}

// ListByProject lists all live nodes of a project
func (r *PostgresNodeRepository) ListByProject(ctx context.Context, projectID string) ([]models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE project_id = $1 AND is_deleted = false
		ORDER BY depth ASC, sort_order ASC, created_at ASC
	`, nodeColumns, r.tables.Nodes)

	return r.list(ctx, "list project nodes", query, projectID)
}

// ListDescendants walks the subtree below id with a recursive CTE.
// UNION (not UNION ALL) stops the walk on rows it has already seen.
func (r *PostgresNodeRepository) ListDescendants(ctx context.Context, id string, includeDeleted bool) ([]models.Node, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM %[1]s
			WHERE parent_id = $1 AND ($2::boolean OR is_deleted = false)
			UNION
			SELECT n.id FROM %[1]s n
			JOIN subtree s ON n.parent_id = s.id
			WHERE ($2::boolean OR n.is_deleted = false)
		)
		SELECT %[2]s FROM %[1]s
		WHERE id IN (SELECT id FROM subtree)
		ORDER BY depth ASC, sort_order ASC, created_at ASC
	`, r.tables.Nodes, nodeColumns)

	return r.list(ctx, "list descendants", query, id, includeDeleted)
}

func (r *PostgresNodeRepository) list(ctx context.Context, op, query string, args ...any) ([]models.Node, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.StoreErr(op, "nodes", err)
	}
	defer rows.Close()

	nodes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Node, error) {
		var node models.Node
		err := scanNode(row, &node)
		return node, err
	})
	if err != nil {
		return nil, postgres.StoreErr(op, "nodes", err)
	}

	// Return empty slice instead of nil if no rows
	if nodes == nil {
		nodes = []models.Node{}
	}
	return nodes, nil
}
