package services

import (
	"context"

	"quill/internal/domain/models/fsnode"
)

// ResourceAuthorizer checks if a user can access resources.
// Current implementation: ownership-based (user authored the project).
//
// Design principle: Services call authorizer before operating on resources.
// This separates authorization (who can access) from identification (which resource).
type ResourceAuthorizer interface {
	// CanAccessProject checks if user can access a project
	CanAccessProject(ctx context.Context, userID, projectID string) error

	// CanAccessNode checks if user can access a live node (via its project)
	// and returns the node so callers don't load it twice
	CanAccessNode(ctx context.Context, userID, nodeID string) (*fsnode.Node, error)

	// CanAccessTrashedNode is CanAccessNode for nodes in the trash
	CanAccessTrashedNode(ctx context.Context, userID, nodeID string) (*fsnode.Node, error)
}
