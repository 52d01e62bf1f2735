package fsnode

import (
	"context"

	"quill/internal/domain/models/fsnode"
)

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	UserID      string  `json:"-"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// ProjectService manages the projects that own node hierarchies
type ProjectService interface {
	// CreateProject creates a new, empty project owned by the requester
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*fsnode.Project, error)

	// GetProject retrieves a project the requester owns
	GetProject(ctx context.Context, userID, projectID string) (*fsnode.Project, error)
}
