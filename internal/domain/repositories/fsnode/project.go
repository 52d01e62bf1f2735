package fsnode

import (
	"context"

	"quill/internal/domain/models/fsnode"
)

// ProjectRepository defines the project lookups the node subsystem needs
type ProjectRepository interface {
	// Create creates a new project and returns it with generated ID and timestamps
	Create(ctx context.Context, project *fsnode.Project) error

	// GetByID retrieves a live project owned by authorID
	GetByID(ctx context.Context, id, authorID string) (*fsnode.Project, error)
}
