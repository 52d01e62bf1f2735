package auth

import (
	"context"
	"errors"
	"fmt"

	"quill/internal/domain"
	"quill/internal/domain/models/fsnode"
	fsnodeRepo "quill/internal/domain/repositories/fsnode"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can access a node if they authored the project that contains it.
//
// Every denial is reported as domain.ErrNotFound: a project or node owned by
// someone else is indistinguishable from one that does not exist.
type OwnerBasedAuthorizer struct {
	projectRepo fsnodeRepo.ProjectRepository
	nodeRepo    fsnodeRepo.NodeRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	projectRepo fsnodeRepo.ProjectRepository,
	nodeRepo fsnodeRepo.NodeRepository,
) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{
		projectRepo: projectRepo,
		nodeRepo:    nodeRepo,
	}
}

// CanAccessProject checks if user owns the project
func (a *OwnerBasedAuthorizer) CanAccessProject(ctx context.Context, userID, projectID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}

	// ProjectRepository.GetByID already filters by author (ownership check)
	// If it returns not found, user doesn't own the project
	_, err := a.projectRepo.GetByID(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
		}
		return fmt.Errorf("check project access: %w", err)
	}
	return nil
}

// CanAccessNode checks if user can access a node (via its project)
func (a *OwnerBasedAuthorizer) CanAccessNode(ctx context.Context, userID, nodeID string) (*fsnode.Node, error) {
	node, err := a.nodeRepo.GetByIDOnly(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("get node for auth: %w", err)
	}

	if err := a.CanAccessProject(ctx, userID, node.ProjectID); err != nil {
		return nil, hideNode(nodeID, err)
	}
	return node, nil
}

// CanAccessTrashedNode checks if user can access a trashed node (via its project)
func (a *OwnerBasedAuthorizer) CanAccessTrashedNode(ctx context.Context, userID, nodeID string) (*fsnode.Node, error) {
	node, err := a.nodeRepo.GetTrashedByID(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("get trashed node for auth: %w", err)
	}

	if err := a.CanAccessProject(ctx, userID, node.ProjectID); err != nil {
		return nil, hideNode(nodeID, err)
	}
	return node, nil
}

// hideNode rewrites a project denial so it names the node rather than the project
func hideNode(nodeID string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("node %s: %w", nodeID, domain.ErrNotFound)
	}
	return err
}
