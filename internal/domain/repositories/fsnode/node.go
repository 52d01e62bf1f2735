package fsnode

import (
	"context"
	"time"

	"quill/internal/domain/models/fsnode"
)

// NodeRepository defines data access operations for hierarchy nodes.
// Unless a method says otherwise it only sees live (is_deleted = false) rows.
type NodeRepository interface {
	// Create inserts a node and fills in its generated ID and timestamps
	Create(ctx context.Context, node *fsnode.Node) error

	// GetByID retrieves a node by ID scoped to a project
	GetByID(ctx context.Context, id, projectID string) (*fsnode.Node, error)

	// GetByIDOnly retrieves a node by ID only (no project scoping)
	// Use when authorization is handled separately (e.g., by ResourceAuthorizer)
	GetByIDOnly(ctx context.Context, id string) (*fsnode.Node, error)

	// GetTrashedByID retrieves a soft-deleted node by ID
	GetTrashedByID(ctx context.Context, id string) (*fsnode.Node, error)

	// GetParentID returns the parent pointer of a live node (nil for root level)
	GetParentID(ctx context.Context, id string) (*string, error)

	// MaxSiblingSortOrder returns the largest sort_order under parentID, or 0.
	// Trashed siblings count so that a restored node keeps a distinct slot.
	MaxSiblingSortOrder(ctx context.Context, projectID string, parentID *string) (int, error)

	// Update writes the non-nil fields of patch and returns the stored row
	Update(ctx context.Context, id string, patch *fsnode.NodePatch) (*fsnode.Node, error)

	// UpdateHierarchy rewrites the derived path and depth of a node
	UpdateHierarchy(ctx context.Context, id, path string, depth int) error

	// SetGlobalSequence stores the reading-order position of a file
	SetGlobalSequence(ctx context.Context, id string, sequence *int) error

	// SoftDelete moves a live node to the trash (is_deleted = true) stamped with deletedAt
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) error

	// Restore takes a node out of the trash and clears deleted_at
	Restore(ctx context.Context, id string) error

	// Delete permanently removes a node row
	Delete(ctx context.Context, id string) error

	// ListChildren lists the immediate children of parentID, ordered by sort_order then created_at
	ListChildren(ctx context.Context, projectID string, parentID *string) ([]fsnode.Node, error)

	// CountChildren counts the immediate children of a node
	CountChildren(ctx context.Context, id string) (int, error)

	// ListByProject lists all nodes of a project ordered by depth, sort_order, created_at
	ListByProject(ctx context.Context, projectID string) ([]fsnode.Node, error)

	// ListDescendants lists the transitive descendants of a node ordered by depth, sort_order.
	// includeDeleted walks through trashed rows as well (used by restore).
	ListDescendants(ctx context.Context, id string, includeDeleted bool) ([]fsnode.Node, error)
}
