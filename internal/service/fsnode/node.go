package fsnode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quill/internal/config"
	"quill/internal/domain"
	models "quill/internal/domain/models/fsnode"
	"quill/internal/domain/repositories"
	fsnodeRepo "quill/internal/domain/repositories/fsnode"
	"quill/internal/domain/services"
	fsnodeSvc "quill/internal/domain/services/fsnode"
)

// Options tunes the node service
type Options struct {
	// DefaultFileExtension is stored on files created without an extension
	DefaultFileExtension string
	// MaxTreeDepth is the number of levels a tree may have (depths 0 to
	// MaxTreeDepth-1). It also bounds ancestor walks during cycle detection.
	MaxTreeDepth int
}

type nodeService struct {
	nodeRepo   fsnodeRepo.NodeRepository
	txManager  repositories.TransactionManager
	analyzer   fsnodeSvc.ContentAnalyzer
	validator  *ParentValidator
	authorizer services.ResourceAuthorizer
	sequencer  *Sequencer
	opts       Options
	logger     *slog.Logger
}

// NewNodeService creates a new node service
func NewNodeService(
	nodeRepo fsnodeRepo.NodeRepository,
	txManager repositories.TransactionManager,
	analyzer fsnodeSvc.ContentAnalyzer,
	validator *ParentValidator,
	authorizer services.ResourceAuthorizer,
	sequencer *Sequencer,
	opts Options,
	logger *slog.Logger,
) fsnodeSvc.NodeService {
	if opts.DefaultFileExtension == "" {
		opts.DefaultFileExtension = "md"
	}
	if opts.MaxTreeDepth <= 0 {
		opts.MaxTreeDepth = config.DefaultMaxTreeDepth
	}
	return &nodeService{
		nodeRepo:   nodeRepo,
		txManager:  txManager,
		analyzer:   analyzer,
		validator:  validator,
		authorizer: authorizer,
		sequencer:  sequencer,
		opts:       opts,
		logger:     logger,
	}
}

// CreateNode creates a folder or file under an optional parent folder
func (s *nodeService) CreateNode(ctx context.Context, req *fsnodeSvc.CreateNodeRequest) (*models.Node, error) {
	// Normalize empty string to nil for root-level nodes
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if err := validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.authorizer.CanAccessProject(ctx, req.UserID, req.ProjectID); err != nil {
		return nil, err
	}

	var parent *models.Node
	if req.ParentID != nil {
		p, err := s.validator.ResolveParent(ctx, *req.ParentID, req.ProjectID)
		if err != nil {
			return nil, err
		}
		parent = p
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	} else {
		next, err := s.nextSortOrder(ctx, req.ProjectID, req.ParentID)
		if err != nil {
			return nil, err
		}
		sortOrder = next
	}

	name := strings.TrimSpace(req.Name)
	pos := ComputePathAndDepth(name, parent)
	if err := validatePath(pos); err != nil {
		return nil, err
	}
	if err := validateDepth(pos, 0, s.opts.MaxTreeDepth); err != nil {
		return nil, err
	}

	now := time.Now()
	node := &models.Node{
		ProjectID:   req.ProjectID,
		ParentID:    req.ParentID,
		Name:        name,
		NodeType:    req.NodeType,
		Description: req.Description,
		Path:        pos.Path,
		Depth:       pos.Depth,
		SortOrder:   sortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if node.NodeType == models.NodeTypeFile {
		ext := s.opts.DefaultFileExtension
		if req.FileExtension != nil {
			ext = strings.TrimPrefix(*req.FileExtension, ".")
		}
		content := ""
		if req.Content != nil {
			content = *req.Content
		}
		node.FileExtension = &ext
		node.Content = &content
		node.WordCount = s.analyzer.CountWords(content)
	}

	if err := s.nodeRepo.Create(ctx, node); err != nil {
		return nil, err
	}

	if node.NodeType == models.NodeTypeFile {
		s.sequencer.resequenceBestEffort(ctx, node.ProjectID)
		node = s.refresh(ctx, node)
	}

	s.logger.Info("node created",
		"id", node.ID,
		"name", node.Name,
		"type", node.NodeType,
		"project_id", node.ProjectID,
		"parent_id", node.ParentID,
		"path", node.Path,
	)

	return node, nil
}

// GetNode retrieves a single live node
func (s *nodeService) GetNode(ctx context.Context, userID, nodeID string) (*models.Node, error) {
	return s.authorizer.CanAccessNode(ctx, userID, nodeID)
}

// UpdateNode renames, edits or moves a node
func (s *nodeService) UpdateNode(ctx context.Context, userID, nodeID string, req *fsnodeSvc.UpdateNodeRequest) (*models.Node, error) {
	if req.ParentID.Present && req.ParentID.Value != nil && *req.ParentID.Value == "" {
		req.ParentID.Value = nil
	}

	if err := validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	node, err := s.authorizer.CanAccessNode(ctx, userID, nodeID)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, node, req)
}

// MoveNode changes the parent (nil = root level) and optionally the sort order
func (s *nodeService) MoveNode(ctx context.Context, userID, nodeID string, req *fsnodeSvc.MoveNodeRequest) (*models.Node, error) {
	parentID := req.ParentID
	if parentID != nil && *parentID == "" {
		parentID = nil
	}

	node, err := s.authorizer.CanAccessNode(ctx, userID, nodeID)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, node, &fsnodeSvc.UpdateNodeRequest{
		ParentID:  models.OptionalID{Present: true, Value: parentID},
		SortOrder: req.SortOrder,
	})
}

// update applies req to node. All validation, including the cycle check,
// happens before the first write.
func (s *nodeService) update(ctx context.Context, node *models.Node, req *fsnodeSvc.UpdateNodeRequest) (*models.Node, error) {
	patch := &models.NodePatch{UpdatedAt: time.Now()}

	name := node.Name
	if req.Name != nil {
		if trimmed := strings.TrimSpace(*req.Name); trimmed != node.Name {
			name = trimmed
			patch.Name = &name
		}
	}

	if req.Description != nil {
		patch.Description = req.Description
	}

	if req.Content != nil {
		if node.IsFolder() {
			return nil, fmt.Errorf("%w: folders cannot carry content", domain.ErrValidation)
		}
		wordCount := s.analyzer.CountWords(*req.Content)
		patch.Content = req.Content
		patch.WordCount = &wordCount
	}

	// Tri-state: only move if the field was present and differs
	moving := req.ParentID.Present && !sameID(node.ParentID, req.ParentID.Value)

	var parent *models.Node
	if moving {
		if req.ParentID.Value != nil {
			p, err := s.checkNewParent(ctx, node, *req.ParentID.Value)
			if err != nil {
				return nil, err
			}
			parent = p
			s.logger.Debug("moving node to new parent", "node_id", node.ID, "parent_id", p.ID)
		} else {
			s.logger.Debug("moving node to root", "node_id", node.ID)
		}
		patch.ParentID = req.ParentID

		if req.SortOrder == nil {
			next, err := s.nextSortOrder(ctx, node.ProjectID, req.ParentID.Value)
			if err != nil {
				return nil, err
			}
			patch.SortOrder = &next
		}
	}

	if req.SortOrder != nil && (moving || *req.SortOrder != node.SortOrder) {
		patch.SortOrder = req.SortOrder
	}

	if moving || patch.Name != nil {
		if !moving && node.ParentID != nil {
			p, err := s.nodeRepo.GetByIDOnly(ctx, *node.ParentID)
			if err != nil {
				return nil, fmt.Errorf("load parent: %w", err)
			}
			parent = p
		}
		pos := ComputePathAndDepth(name, parent)
		if err := validatePath(pos); err != nil {
			return nil, err
		}
		if pos.Depth != node.Depth {
			height, err := s.subtreeHeight(ctx, node)
			if err != nil {
				return nil, err
			}
			if err := validateDepth(pos, height, s.opts.MaxTreeDepth); err != nil {
				return nil, err
			}
		}
		if pos.Path != node.Path {
			patch.Path = &pos.Path
		}
		if pos.Depth != node.Depth {
			patch.Depth = &pos.Depth
		}
	}

	if patch.IsEmpty() {
		return node, nil
	}

	var updated *models.Node
	var err error
	if (patch.Path != nil || patch.Depth != nil) && node.IsFolder() {
		// Descendant paths embed this node's path; rewrite them atomically
		err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			u, err := s.nodeRepo.Update(txCtx, node.ID, patch)
			if err != nil {
				return err
			}
			updated = u
			return s.propagateHierarchy(txCtx, u)
		})
	} else {
		updated, err = s.nodeRepo.Update(ctx, node.ID, patch)
	}
	if err != nil {
		return nil, err
	}

	if moving || patch.SortOrder != nil {
		s.sequencer.resequenceBestEffort(ctx, updated.ProjectID)
		updated = s.refresh(ctx, updated)
	}

	s.logger.Info("node updated",
		"id", updated.ID,
		"name", updated.Name,
		"parent_id", updated.ParentID,
		"path", updated.Path,
		"moved", moving,
	)

	return updated, nil
}

// checkNewParent validates a move target: same project, no cycle, folder.
// The cycle check runs before the type check so that moving a folder under
// one of its own files reports the cycle.
func (s *nodeService) checkNewParent(ctx context.Context, node *models.Node, parentID string) (*models.Node, error) {
	parent, err := s.validator.LoadParent(ctx, parentID, node.ProjectID)
	if err != nil {
		return nil, err
	}

	// Rows written before the limit was lowered may sit deeper than it
	maxSteps := s.opts.MaxTreeDepth
	if parent.Depth >= maxSteps {
		maxSteps = parent.Depth + 1
	}

	circular, err := DetectCycle(ctx, node.ID, parent.ID, s.nodeRepo.GetParentID, maxSteps)
	if err != nil {
		return nil, fmt.Errorf("detect cycle: %w", err)
	}
	if circular {
		return nil, &domain.CircularReferenceError{NodeID: node.ID, ParentID: parent.ID}
	}

	if err := s.validator.RequireFolder(parent); err != nil {
		return nil, err
	}
	return parent, nil
}

// subtreeHeight counts the live levels below node (0 for files and empty folders)
func (s *nodeService) subtreeHeight(ctx context.Context, node *models.Node) (int, error) {
	if !node.IsFolder() {
		return 0, nil
	}
	descendants, err := s.nodeRepo.ListDescendants(ctx, node.ID, false)
	if err != nil {
		return 0, fmt.Errorf("list descendants: %w", err)
	}
	return Height(BuildSubtree(*node, descendants)), nil
}

// propagateHierarchy rewrites path and depth of the live descendants of root
func (s *nodeService) propagateHierarchy(ctx context.Context, root *models.Node) error {
	descendants, err := s.nodeRepo.ListDescendants(ctx, root.ID, false)
	if err != nil {
		return fmt.Errorf("list descendants: %w", err)
	}

	updates := RecomputeSubtree(root, descendants)
	for _, u := range updates {
		if err := s.nodeRepo.UpdateHierarchy(ctx, u.ID, u.Path, u.Depth); err != nil {
			return fmt.Errorf("update hierarchy of %s: %w", u.ID, err)
		}
	}

	if len(updates) > 0 {
		s.logger.Debug("descendant paths updated", "node_id", root.ID, "count", len(updates))
	}
	return nil
}

// DeleteNode trashes or purges a node. Folders with live children need
// CascadeDelete; the whole subtree is then removed children first inside one
// transaction. A hard delete also accepts a node that is already in the trash.
func (s *nodeService) DeleteNode(ctx context.Context, userID, nodeID string, opts fsnodeSvc.DeleteOptions) (*fsnodeSvc.DeleteResult, error) {
	node, err := s.authorizer.CanAccessNode(ctx, userID, nodeID)
	if err != nil {
		if !opts.HardDelete || !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		trashed, trashErr := s.authorizer.CanAccessTrashedNode(ctx, userID, nodeID)
		if trashErr != nil {
			return nil, err
		}
		node = trashed
	}

	var descendants []models.Node
	if node.IsFolder() {
		if !opts.CascadeDelete {
			children, err := s.nodeRepo.CountChildren(ctx, node.ID)
			if err != nil {
				return nil, fmt.Errorf("count children: %w", err)
			}
			if children > 0 {
				live, err := s.nodeRepo.ListDescendants(ctx, node.ID, false)
				if err != nil {
					return nil, fmt.Errorf("list descendants: %w", err)
				}
				return nil, &domain.NotEmptyError{NodeID: node.ID, ChildCount: len(live)}
			}
		}

		if opts.CascadeDelete || opts.HardDelete {
			// Purging must reach trashed descendants too or they would be orphaned
			descendants, err = s.nodeRepo.ListDescendants(ctx, node.ID, opts.HardDelete)
			if err != nil {
				return nil, fmt.Errorf("list descendants: %w", err)
			}
		}
	}

	// Every row trashed by this call shares deleted_at; RestoreNode keys on it
	deletedAt := time.Now().UTC().Truncate(time.Microsecond)

	order := PostOrder(BuildSubtree(*node, descendants))
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, n := range order {
			var err error
			if opts.HardDelete {
				err = s.nodeRepo.Delete(txCtx, n.ID)
			} else {
				err = s.nodeRepo.SoftDelete(txCtx, n.ID, deletedAt)
			}
			if err != nil {
				return fmt.Errorf("delete node %s: %w", n.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sequencer.resequenceBestEffort(ctx, node.ProjectID)

	s.logger.Info("node deleted",
		"id", node.ID,
		"name", node.Name,
		"project_id", node.ProjectID,
		"hard", opts.HardDelete,
		"deleted_count", len(order),
	)

	return &fsnodeSvc.DeleteResult{
		Message:      deleteMessage(node, len(order), opts.HardDelete),
		DeletedCount: len(order),
	}, nil
}

// RestoreNode takes a trashed node out of the trash together with the
// descendants trashed by the same delete. Descendants that were trashed
// earlier on their own stay in the trash. The parent must be live; positions
// are recomputed in case an ancestor was renamed while the subtree was trashed.
func (s *nodeService) RestoreNode(ctx context.Context, userID, nodeID string) (*models.Node, error) {
	node, err := s.authorizer.CanAccessTrashedNode(ctx, userID, nodeID)
	if err != nil {
		return nil, err
	}

	var parent *models.Node
	if node.ParentID != nil {
		p, err := s.validator.ResolveParent(ctx, *node.ParentID, node.ProjectID)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidParent) {
				return nil, &domain.InvalidParentError{
					ParentID: *node.ParentID,
					Reason:   "parent is not live; restore it first",
				}
			}
			return nil, err
		}
		parent = p
	}

	var descendants []models.Node
	if node.IsFolder() {
		trashed, err := s.nodeRepo.ListDescendants(ctx, node.ID, true)
		if err != nil {
			return nil, fmt.Errorf("list descendants: %w", err)
		}
		descendants = trashedWith(node, trashed)
	}

	pos := ComputePathAndDepth(node.Name, parent)
	root := *node
	root.Path, root.Depth = pos.Path, pos.Depth

	subtree := BuildSubtree(root, descendants)
	if err := validateDepth(pos, Height(subtree), s.opts.MaxTreeDepth); err != nil {
		return nil, err
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, n := range Flatten([]*models.TreeNode{subtree}) {
			if err := s.nodeRepo.Restore(txCtx, n.ID); err != nil {
				return fmt.Errorf("restore node %s: %w", n.ID, err)
			}
		}
		if pos.Path != node.Path || pos.Depth != node.Depth {
			if err := s.nodeRepo.UpdateHierarchy(txCtx, node.ID, pos.Path, pos.Depth); err != nil {
				return fmt.Errorf("update hierarchy of %s: %w", node.ID, err)
			}
		}
		for _, u := range RecomputeSubtree(&root, descendants) {
			if err := s.nodeRepo.UpdateHierarchy(txCtx, u.ID, u.Path, u.Depth); err != nil {
				return fmt.Errorf("update hierarchy of %s: %w", u.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sequencer.resequenceBestEffort(ctx, node.ProjectID)

	restored, err := s.nodeRepo.GetByIDOnly(ctx, node.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("node restored",
		"id", restored.ID,
		"name", restored.Name,
		"project_id", restored.ProjectID,
		"restored_count", CountDescendants(subtree)+1,
	)

	return restored, nil
}

// GetProjectTree returns the forest of live nodes of a project
func (s *nodeService) GetProjectTree(ctx context.Context, userID, projectID string) ([]*models.TreeNode, error) {
	if err := s.authorizer.CanAccessProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	nodes, err := s.nodeRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	tree := BuildTree(nodes)

	s.logger.Debug("tree built",
		"project_id", projectID,
		"nodes", len(nodes),
		"root_nodes", len(tree),
	)

	return tree, nil
}

// GetNodeChildren returns the live descendants of a node ordered by depth then
// sort_order, or only its immediate children when opts.DirectOnly is set
func (s *nodeService) GetNodeChildren(ctx context.Context, userID, nodeID string, opts fsnodeSvc.ChildrenOptions) ([]models.Node, error) {
	node, err := s.authorizer.CanAccessNode(ctx, userID, nodeID)
	if err != nil {
		return nil, err
	}

	if !node.IsFolder() {
		return []models.Node{}, nil
	}

	if opts.DirectOnly {
		children, err := s.nodeRepo.ListChildren(ctx, node.ProjectID, &node.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list children: %w", err)
		}
		return children, nil
	}

	descendants, err := s.nodeRepo.ListDescendants(ctx, node.ID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list descendants: %w", err)
	}
	return descendants, nil
}

// GetProjectStats returns file/folder/word totals for a project
func (s *nodeService) GetProjectStats(ctx context.Context, userID, projectID string) (*models.ProjectStats, error) {
	if err := s.authorizer.CanAccessProject(ctx, userID, projectID); err != nil {
		return nil, err
	}

	nodes, err := s.nodeRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	stats := ComputeStats(nodes)
	return &stats, nil
}

// nextSortOrder returns max sibling sort_order + 1 (1 for the first child)
func (s *nodeService) nextSortOrder(ctx context.Context, projectID string, parentID *string) (int, error) {
	maxOrder, err := s.nodeRepo.MaxSiblingSortOrder(ctx, projectID, parentID)
	if err != nil {
		return 0, fmt.Errorf("failed to read sibling order: %w", err)
	}
	return maxOrder + 1, nil
}

// refresh re-reads a node after a best-effort side effect; on failure the
// caller's copy is returned unchanged.
func (s *nodeService) refresh(ctx context.Context, node *models.Node) *models.Node {
	fresh, err := s.nodeRepo.GetByIDOnly(ctx, node.ID)
	if err != nil {
		s.logger.Warn("failed to reload node", "node_id", node.ID, "error", err)
		return node
	}
	return fresh
}

// trashedWith keeps the descendants that went to the trash in the same
// operation as root, along with their own batch members below them
func trashedWith(root *models.Node, descendants []models.Node) []models.Node {
	children := make(map[string][]models.Node, len(descendants))
	for _, d := range descendants {
		if d.ParentID != nil {
			children[*d.ParentID] = append(children[*d.ParentID], d)
		}
	}

	var batch []models.Node
	visited := map[string]struct{}{root.ID: {}}
	queue := []string{root.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			if _, seen := visited[child.ID]; seen || !sameInstant(child.DeletedAt, root.DeletedAt) {
				continue
			}
			visited[child.ID] = struct{}{}
			batch = append(batch, child)
			queue = append(queue, child.ID)
		}
	}
	return batch
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func deleteMessage(node *models.Node, count int, hard bool) string {
	verb := "moved to trash"
	if hard {
		verb = "permanently deleted"
	}
	if count <= 1 {
		return fmt.Sprintf("%s %q %s", node.NodeType, node.Name, verb)
	}
	return fmt.Sprintf("%s %q and %d descendants %s", node.NodeType, node.Name, count-1, verb)
}
