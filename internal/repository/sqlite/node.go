package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"quill/internal/domain"
	models "quill/internal/domain/models/fsnode"
	fsnodeRepo "quill/internal/domain/repositories/fsnode"
)

const nodeColumns = `id, project_id, parent_id, name, node_type, description, content,
	file_extension, word_count, path, depth, sort_order, global_sequence,
	is_deleted, deleted_at, created_at, updated_at`

// NodeRepository implements fsnode.NodeRepository on SQLite
type NodeRepository struct {
	db     *sql.DB
	tables *TableNames
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(config *Config) fsnodeRepo.NodeRepository {
	return &NodeRepository{db: config.DB, tables: config.Tables}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner, node *models.Node) error {
	var createdAt, updatedAt int64
	var deletedAt sql.NullInt64
	err := row.Scan(
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
		&deletedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return err
	}
	node.CreatedAt = fromUnix(createdAt)
	node.UpdatedAt = fromUnix(updatedAt)
	if deletedAt.Valid {
		t := fromUnix(deletedAt.Int64)
		node.DeletedAt = &t
	}
	return nil
}

// Create inserts a node with a fresh UUID
func (r *NodeRepository) Create(ctx context.Context, node *models.Node) error {
	now := time.Now().UTC()
	if node.CreatedAt.IsZero() {
		node.CreatedAt = now
	}
	if node.UpdatedAt.IsZero() {
		node.UpdatedAt = now
	}
	id := uuid.NewString()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, project_id, parent_id, name, node_type, description, content,
			file_extension, word_count, path, depth, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.tables.Nodes)

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		id,
		node.ProjectID,
		node.ParentID,
		node.Name,
		string(node.NodeType),
		node.Description,
		node.Content,
		node.FileExtension,
		node.WordCount,
		node.Path,
		node.Depth,
		node.SortOrder,
		toUnix(node.CreatedAt),
		toUnix(node.UpdatedAt),
	)
	if err != nil {
		return storeErr("create node", "node", err)
	}

	node.ID = id
	node.CreatedAt = fromUnix(toUnix(node.CreatedAt))
	node.UpdatedAt = fromUnix(toUnix(node.UpdatedAt))
	return nil
}

// GetByID retrieves a live node scoped to a project
func (r *NodeRepository) GetByID(ctx context.Context, id, projectID string) (*models.Node, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? AND project_id = ? AND is_deleted = 0`,
		nodeColumns, r.tables.Nodes)
	return r.getOne(ctx, query, id, id, projectID)
}

// GetByIDOnly retrieves a live node by ID only
func (r *NodeRepository) GetByIDOnly(ctx context.Context, id string) (*models.Node, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? AND is_deleted = 0`, nodeColumns, r.tables.Nodes)
	return r.getOne(ctx, query, id, id)
}

// GetTrashedByID retrieves a soft-deleted node
func (r *NodeRepository) GetTrashedByID(ctx context.Context, id string) (*models.Node, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ? AND is_deleted = 1`, nodeColumns, r.tables.Nodes)
	return r.getOne(ctx, query, id, id)
}

func (r *NodeRepository) getOne(ctx context.Context, query, id string, args ...any) (*models.Node, error) {
	var node models.Node
	if err := scanNode(getExecutor(ctx, r.db).QueryRowContext(ctx, query, args...), &node); err != nil {
		return nil, storeErr("get node", "node "+id, err)
	}
	return &node, nil
}

// GetParentID returns the parent pointer of a live node
func (r *NodeRepository) GetParentID(ctx context.Context, id string) (*string, error) {
	query := fmt.Sprintf(`SELECT parent_id FROM %s WHERE id = ? AND is_deleted = 0`, r.tables.Nodes)

	var parentID *string
	if err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&parentID); err != nil {
		return nil, storeErr("get parent id", "node "+id, err)
	}
	return parentID, nil
}

// MaxSiblingSortOrder returns the largest sort_order among live and trashed siblings, or 0
func (r *NodeRepository) MaxSiblingSortOrder(ctx context.Context, projectID string, parentID *string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(sort_order), 0) FROM %s
		WHERE project_id = ? AND parent_id IS ?
	`, r.tables.Nodes)

	var maxOrder int
	if err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, projectID, parentID).Scan(&maxOrder); err != nil {
		return 0, storeErr("max sibling sort order", "siblings", err)
	}
	return maxOrder, nil
}

// Update writes the non-nil fields of patch plus updated_at
func (r *NodeRepository) Update(ctx context.Context, id string, patch *models.NodePatch) (*models.Node, error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
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
	updatedAt := patch.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	set("updated_at", toUnix(updatedAt))

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ? AND is_deleted = 0`,
		r.tables.Nodes, strings.Join(sets, ", "))
	if err := r.execOne(ctx, "update node", id, query, append(args, id)...); err != nil {
		return nil, err
	}
	return r.GetByIDOnly(ctx, id)
}

// UpdateHierarchy rewrites the derived path and depth of a node
func (r *NodeRepository) UpdateHierarchy(ctx context.Context, id, path string, depth int) error {
	query := fmt.Sprintf(`UPDATE %s SET path = ?, depth = ?, updated_at = ? WHERE id = ?`, r.tables.Nodes)
	return r.execOne(ctx, "update hierarchy", id, query, path, depth, toUnix(time.Now()), id)
}

// SetGlobalSequence stores the reading-order position of a file
func (r *NodeRepository) SetGlobalSequence(ctx context.Context, id string, sequence *int) error {
	query := fmt.Sprintf(`UPDATE %s SET global_sequence = ? WHERE id = ?`, r.tables.Nodes)
	return r.execOne(ctx, "set global sequence", id, query, sequence, id)
}

// SoftDelete moves a live node to the trash
func (r *NodeRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET is_deleted = 1, deleted_at = ?1, updated_at = ?1 WHERE id = ?2 AND is_deleted = 0`, r.tables.Nodes)
	return r.execOne(ctx, "soft delete node", id, query, toUnix(deletedAt), id)
}

// Restore takes a node out of the trash
func (r *NodeRepository) Restore(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET is_deleted = 0, deleted_at = NULL, updated_at = ? WHERE id = ?`, r.tables.Nodes)
	return r.execOne(ctx, "restore node", id, query, toUnix(time.Now()), id)
}

// Delete permanently removes a node row; it fails while children reference it
func (r *NodeRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.tables.Nodes)
	return r.execOne(ctx, "delete node", id, query, id)
}

func (r *NodeRepository) execOne(ctx context.Context, op, id, query string, args ...any) error {
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return storeErr(op, "node "+id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storeErr(op, "node "+id, err)
	}
	if affected == 0 {
		return fmt.Errorf("node %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListChildren lists the live immediate children of parentID
func (r *NodeRepository) ListChildren(ctx context.Context, projectID string, parentID *string) ([]models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE project_id = ? AND parent_id IS ? AND is_deleted = 0
		ORDER BY sort_order ASC, created_at ASC
	`, nodeColumns, r.tables.Nodes)
	return r.list(ctx, "list children", query, projectID, parentID)
}

// CountChildren counts the live immediate children of a node
func (r *NodeRepository) CountChildren(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE parent_id = ? AND is_deleted = 0`, r.tables.Nodes)

	var count int
	if err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, storeErr("count children", "node "+id, err)
	}
	return count, nil
}

// ListByProject lists all live nodes of a project
func (r *NodeRepository) ListByProject(ctx context.Context, projectID string) ([]models.Node, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE project_id = ? AND is_deleted = 0
		ORDER BY depth ASC, sort_order ASC, created_at ASC
	`, nodeColumns, r.tables.Nodes)
	return r.list(ctx, "list project nodes", query, projectID)
}

// ListDescendants walks the subtree below id with a recursive CTE
func (r *NodeRepository) ListDescendants(ctx context.Context, id string, includeDeleted bool) ([]models.Node, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM %[1]s WHERE parent_id = ?1 AND (?2 OR is_deleted = 0)
			UNION
			SELECT n.id FROM %[1]s n
			JOIN subtree s ON n.parent_id = s.id
			WHERE (?2 OR n.is_deleted = 0)
		)
		SELECT %[2]s FROM %[1]s
		WHERE id IN (SELECT id FROM subtree)
		ORDER BY depth ASC, sort_order ASC, created_at ASC
	`, r.tables.Nodes, nodeColumns)
	return r.list(ctx, "list descendants", query, id, includeDeleted)
}

func (r *NodeRepository) list(ctx context.Context, op, query string, args ...any) ([]models.Node, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, "nodes", err)
	}
	defer rows.Close()

	nodes := []models.Node{}
	for rows.Next() {
		var node models.Node
		if err := scanNode(rows, &node); err != nil {
			return nil, storeErr(op, "nodes", err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, "nodes", err)
	}
	return nodes, nil
}
