package fsnode

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"quill/internal/domain"
	models "quill/internal/domain/models/fsnode"
	fsnodeRepo "quill/internal/domain/repositories/fsnode"
	"quill/internal/repository/postgres"
)

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *postgres.RepositoryConfig) fsnodeRepo.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (author_id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		project.AuthorID,
		project.Title,
		project.Description,
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("project '%s' already exists", project.Title),
				ResourceType: "project",
			}
		}
		return postgres.StoreErr("create project", "project", err)
	}
	return nil
}

// GetByID retrieves a live project owned by authorID
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id, authorID string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT id, author_id, title, description, created_at, updated_at, deleted_at
		FROM %s
		WHERE id = $1 AND author_id = $2 AND deleted_at IS NULL
	`, r.tables.Projects)

	var project models.Project
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, authorID).Scan(
		&project.ID,
		&project.AuthorID,
		&project.Title,
		&project.Description,
		&project.CreatedAt,
		&project.UpdatedAt,
		&project.DeletedAt,
	)
	if err != nil {
		return nil, postgres.StoreErr("get project", "project "+id, err)
	}

	return &project, nil
}
