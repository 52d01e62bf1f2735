package fsnode

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"quill/internal/config"
	"quill/internal/domain"
	models "quill/internal/domain/models/fsnode"
	fsnodeRepo "quill/internal/domain/repositories/fsnode"
	fsnodeSvc "quill/internal/domain/services/fsnode"
)

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo fsnodeRepo.ProjectRepository
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo fsnodeRepo.ProjectRepository,
	logger *slog.Logger,
) fsnodeSvc.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// CreateProject creates a new project
func (s *projectService) CreateProject(ctx context.Context, req *fsnodeSvc.CreateProjectRequest) (*models.Project, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title,
			validation.Required.Error("title is required"),
			validation.By(notBlank("title")),
			validation.RuneLength(1, config.MaxProjectTitleLength),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	project := &models.Project{
		AuthorID:    req.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		"id", project.ID,
		"title", project.Title,
		"user_id", req.UserID,
	)

	return project, nil
}

// GetProject retrieves a project by ID
func (s *projectService) GetProject(ctx context.Context, userID, projectID string) (*models.Project, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.projectRepo.GetByID(ctx, projectID, userID)
}

func notBlank(field string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be blank", field)
		}
		return nil
	}
}
