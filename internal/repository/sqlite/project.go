package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	models "quill/internal/domain/models/fsnode"
	fsnodeRepo "quill/internal/domain/repositories/fsnode"
)

// ProjectRepository implements fsnode.ProjectRepository on SQLite
type ProjectRepository struct {
	db     *sql.DB
	tables *TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *Config) fsnodeRepo.ProjectRepository {
	return &ProjectRepository{db: config.DB, tables: config.Tables}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = now
	}
	id := uuid.NewString()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, author_id, title, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.tables.Projects)

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		id,
		project.AuthorID,
		project.Title,
		project.Description,
		toUnix(project.CreatedAt),
		toUnix(project.UpdatedAt),
	)
	if err != nil {
		return storeErr("create project", "project", err)
	}

	project.ID = id
	return nil
}

// GetByID retrieves a live project owned by authorID
func (r *ProjectRepository) GetByID(ctx context.Context, id, authorID string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT id, author_id, title, description, created_at, updated_at
		FROM %s
		WHERE id = ? AND author_id = ? AND deleted_at IS NULL
	`, r.tables.Projects)

	var project models.Project
	var createdAt, updatedAt int64
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id, authorID).Scan(
		&project.ID,
		&project.AuthorID,
		&project.Title,
		&project.Description,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, storeErr("get project", "project "+id, err)
	}

	project.CreatedAt = fromUnix(createdAt)
	project.UpdatedAt = fromUnix(updatedAt)
	return &project, nil
}
