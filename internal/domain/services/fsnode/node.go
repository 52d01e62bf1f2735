package fsnode

import (
	"context"

	"quill/internal/domain/models/fsnode"
)

// NodeService handles the lifecycle of hierarchy nodes.
// Every operation takes the requesting user's ID and authorizes against the
// owning project before touching the store.
type NodeService interface {
	// CreateNode creates a folder or file
	CreateNode(ctx context.Context, req *CreateNodeRequest) (*fsnode.Node, error)

	// GetNode retrieves a single live node
	GetNode(ctx context.Context, userID, nodeID string) (*fsnode.Node, error)

	// UpdateNode renames, edits, or moves a node
	UpdateNode(ctx context.Context, userID, nodeID string, req *UpdateNodeRequest) (*fsnode.Node, error)

	// MoveNode changes only the parent and sort order of a node
	MoveNode(ctx context.Context, userID, nodeID string, req *MoveNodeRequest) (*fsnode.Node, error)

	// DeleteNode trashes or purges a node, optionally with its subtree
	DeleteNode(ctx context.Context, userID, nodeID string, opts DeleteOptions) (*DeleteResult, error)

	// RestoreNode takes a trashed node, and what was trashed along with it, out of the trash
	RestoreNode(ctx context.Context, userID, nodeID string) (*fsnode.Node, error)

	// GetProjectTree returns the forest of live nodes of a project
	GetProjectTree(ctx context.Context, userID, projectID string) ([]*fsnode.TreeNode, error)

	// GetNodeChildren returns the live descendants of a node ordered by depth then sort_order
	GetNodeChildren(ctx context.Context, userID, nodeID string, opts ChildrenOptions) ([]fsnode.Node, error)

	// GetProjectStats returns file/folder/word totals for a project
	GetProjectStats(ctx context.Context, userID, projectID string) (*fsnode.ProjectStats, error)
}

// CreateNodeRequest represents a node creation request
type CreateNodeRequest struct {
	UserID        string          `json:"-"`
	ProjectID     string          `json:"project_id"`
	ParentID      *string         `json:"parent_id,omitempty"` // null for root
	Name          string          `json:"name"`
	NodeType      fsnode.NodeType `json:"node_type"`
	Description   *string         `json:"description,omitempty"`
	Content       *string         `json:"content,omitempty"`
	FileExtension *string         `json:"file_extension,omitempty"`
	SortOrder     *int            `json:"sort_order,omitempty"` // max sibling + 1 when omitted
}

// UpdateNodeRequest represents a partial node update.
// ParentID has no json tag - handler maps it from httputil.OptionalString.
type UpdateNodeRequest struct {
	Name        *string           `json:"name,omitempty"`        // rename
	Description *string           `json:"description,omitempty"` // edit description
	Content     *string           `json:"content,omitempty"`     // edit file content
	SortOrder   *int              `json:"sort_order,omitempty"`  // reorder among siblings
	ParentID    fsnode.OptionalID `json:"-"`                     // move (Value nil = root)
}

// MoveNodeRequest represents a move request. A nil ParentID moves the node to root level.
type MoveNodeRequest struct {
	ParentID  *string `json:"parent_id"`
	SortOrder *int    `json:"sort_order,omitempty"`
}

// DeleteOptions carries the boundary flags of a delete request.
// Both default to false: trash semantics, refuse non-empty folders.
type DeleteOptions struct {
	HardDelete    bool
	CascadeDelete bool
}

// ChildrenOptions narrows a children listing. DirectOnly returns the immediate
// children instead of the whole subtree.
type ChildrenOptions struct {
	DirectOnly bool
}

// DeleteResult reports what a delete did
type DeleteResult struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deleted_count"`
}
