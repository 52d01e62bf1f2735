package fsnode

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"quill/internal/config"
	"quill/internal/domain"
	models "quill/internal/domain/models/fsnode"
	fsnodeRepo "quill/internal/domain/repositories/fsnode"
	fsnodeSvc "quill/internal/domain/services/fsnode"
)

var nodeNamePattern = regexp.MustCompile(`^[^/]+$`)

// ParentValidator checks that a referenced parent can hold a node
type ParentValidator struct {
	nodeRepo fsnodeRepo.NodeRepository
}

// NewParentValidator creates a new parent validator
func NewParentValidator(nodeRepo fsnodeRepo.NodeRepository) *ParentValidator {
	return &ParentValidator{nodeRepo: nodeRepo}
}

// LoadParent loads a live parent scoped to projectID. A missing, trashed or
// foreign parent is an InvalidParentError, not a NotFound.
func (v *ParentValidator) LoadParent(ctx context.Context, parentID, projectID string) (*models.Node, error) {
	parent, err := v.nodeRepo.GetByID(ctx, parentID, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.InvalidParentError{ParentID: parentID, Reason: "parent node not found in this project"}
		}
		return nil, err
	}
	return parent, nil
}

// RequireFolder rejects parents that cannot hold children
func (v *ParentValidator) RequireFolder(parent *models.Node) error {
	if !parent.IsFolder() {
		return &domain.InvalidParentError{ParentID: parent.ID, Reason: "parent must be a folder"}
	}
	return nil
}

// ResolveParent is LoadParent followed by RequireFolder
func (v *ParentValidator) ResolveParent(ctx context.Context, parentID, projectID string) (*models.Node, error) {
	parent, err := v.LoadParent(ctx, parentID, projectID)
	if err != nil {
		return nil, err
	}
	if err := v.RequireFolder(parent); err != nil {
		return nil, err
	}
	return parent, nil
}

// validateCreateRequest validates a node creation request
func validateCreateRequest(req *fsnodeSvc.CreateNodeRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required, is.UUID),
		validation.Field(&req.ParentID, is.UUID),
		validation.Field(&req.Name, nameRules()...),
		validation.Field(&req.NodeType,
			validation.Required,
			validation.In(models.NodeTypeFolder, models.NodeTypeFile).Error("node_type must be folder or file"),
		),
		validation.Field(&req.FileExtension, validation.NilOrNotEmpty, validation.Length(1, config.MaxFileExtensionLength)),
		validation.Field(&req.Content,
			validation.When(req.NodeType == models.NodeTypeFolder, validation.Nil.Error("folders cannot carry content")),
		),
	)
}

// validateUpdateRequest validates a node update request
func validateUpdateRequest(req *fsnodeSvc.UpdateNodeRequest) error {
	if req.Name == nil && req.Description == nil && req.Content == nil &&
		req.SortOrder == nil && !req.ParentID.Present {
		return fmt.Errorf("at least one field must be provided")
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.By(func(value interface{}) error {
			name, _ := value.(*string)
			if name == nil {
				return nil
			}
			return validation.Validate(strings.TrimSpace(*name), nameRules()...)
		})),
	)
}

func nameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(1, config.MaxNodeNameLength),
		validation.Match(nodeNamePattern).Error("name cannot contain slashes"),
	}
}

// validatePath rejects positions whose derived path outgrows the column
func validatePath(pos Position) error {
	if len(pos.Path) > config.MaxNodePathLength {
		return fmt.Errorf("%w: path exceeds %d characters", domain.ErrValidation, config.MaxNodePathLength)
	}
	return nil
}

// validateDepth rejects placements that would put any node of a subtree at
// depth maxDepth or below. height is the number of levels under the placed node.
func validateDepth(pos Position, height, maxDepth int) error {
	if deepest := pos.Depth + height; deepest >= maxDepth {
		return fmt.Errorf("%w: a node would sit at depth %d, trees are limited to %d levels",
			domain.ErrValidation, deepest, maxDepth)
	}
	return nil
}
