package fsnode

import (
	"context"
	"fmt"
	"log/slog"

	models "quill/internal/domain/models/fsnode"
	fsnodeRepo "quill/internal/domain/repositories/fsnode"
)

// Sequencer keeps global_sequence in reading order: files numbered from 1 in
// a pre-order walk of the project tree (folder by folder, sibling order).
type Sequencer struct {
	nodeRepo fsnodeRepo.NodeRepository
	logger   *slog.Logger
}

// NewSequencer creates a new sequencer
func NewSequencer(nodeRepo fsnodeRepo.NodeRepository, logger *slog.Logger) *Sequencer {
	return &Sequencer{nodeRepo: nodeRepo, logger: logger}
}

// Resequence renumbers the files of a project and returns how many rows changed.
func (s *Sequencer) Resequence(ctx context.Context, projectID string) (int, error) {
	nodes, err := s.nodeRepo.ListByProject(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("list project nodes: %w", err)
	}

	changed := 0
	next := 1
	for _, n := range Flatten(BuildTree(nodes)) {
		if n.NodeType != models.NodeTypeFile {
			continue
		}
		seq := next
		next++
		if n.GlobalSequence != nil && *n.GlobalSequence == seq {
			continue
		}
		if err := s.nodeRepo.SetGlobalSequence(ctx, n.ID, &seq); err != nil {
			return changed, fmt.Errorf("set global sequence of %s: %w", n.ID, err)
		}
		changed++
	}

	s.logger.Debug("project resequenced",
		"project_id", projectID,
		"files", next-1,
		"changed", changed,
	)
	return changed, nil
}

// resequenceBestEffort runs Resequence and only logs a failure; the mutation
// that triggered it has already been committed.
func (s *Sequencer) resequenceBestEffort(ctx context.Context, projectID string) {
	if _, err := s.Resequence(ctx, projectID); err != nil {
		s.logger.Warn("failed to resequence project",
			"project_id", projectID,
			"error", err,
		)
	}
}
