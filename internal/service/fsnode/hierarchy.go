package fsnode

import (
	"context"
	"errors"

	"quill/internal/domain"
	models "quill/internal/domain/models/fsnode"
)

// PathSeparator joins ancestor names in a node path.
const PathSeparator = "/"

// Position is the derived location of a node: its ancestor-name path and depth.
type Position struct {
	Path  string
	Depth int
}

// ComputePathAndDepth derives the position of a node called name placed under
// parent. A nil parent means root level.
func ComputePathAndDepth(name string, parent *models.Node) Position {
	if parent == nil {
		return Position{Path: name, Depth: 0}
	}
	return Position{
		Path:  parent.Path + PathSeparator + name,
		Depth: parent.Depth + 1,
	}
}

// AncestorLookup returns the parent pointer of a live node, nil at root level.
// A missing node is reported with domain.ErrNotFound.
type AncestorLookup func(ctx context.Context, id string) (*string, error)

// DetectCycle reports whether placing candidateID under proposedParentID would
// make the candidate its own ancestor. It walks the single parent chain of
// proposedParentID upward, one lookup per step, until it reaches root level.
//
// The walk is bounded: a repeated id or a chain longer than maxSteps is
// reported as circular so that corrupt data or a racing move cannot loop
// forever. maxSteps must be at least the number of levels a valid tree can
// have, otherwise a deep but acyclic chain is misreported. Store failures are
// returned alongside true; a missing ancestor ends the chain.
func DetectCycle(ctx context.Context, candidateID, proposedParentID string, lookup AncestorLookup, maxSteps int) (bool, error) {
	visited := make(map[string]struct{})
	current := proposedParentID

	for steps := 0; ; steps++ {
		if current == candidateID {
			return true, nil
		}
		if _, seen := visited[current]; seen {
			return true, nil
		}
		if steps >= maxSteps {
			return true, nil
		}
		visited[current] = struct{}{}

		parentID, err := lookup(ctx, current)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return false, nil
			}
			return true, err
		}
		if parentID == nil {
			return false, nil
		}
		current = *parentID
	}
}

// HierarchyUpdate is a recomputed position for one descendant.
type HierarchyUpdate struct {
	ID    string
	Path  string
	Depth int
}

// RecomputeSubtree derives the positions of every descendant of root from
// root's current path and depth. Only nodes whose stored position differs are
// returned, parents before children. Descendants that are not connected to
// root through the given set are ignored.
func RecomputeSubtree(root *models.Node, descendants []models.Node) []HierarchyUpdate {
	children := make(map[string][]*models.Node, len(descendants))
	for i := range descendants {
		d := &descendants[i]
		if d.ParentID == nil || d.ID == root.ID {
			continue
		}
		children[*d.ParentID] = append(children[*d.ParentID], d)
	}

	type frame struct {
		id  string
		pos Position
	}

	var updates []HierarchyUpdate
	visited := map[string]struct{}{root.ID: {}}
	queue := []frame{{id: root.ID, pos: Position{Path: root.Path, Depth: root.Depth}}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, child := range children[current.id] {
			if _, seen := visited[child.ID]; seen {
				continue
			}
			visited[child.ID] = struct{}{}

			pos := Position{
				Path:  current.pos.Path + PathSeparator + child.Name,
				Depth: current.pos.Depth + 1,
			}
			if pos.Path != child.Path || pos.Depth != child.Depth {
				updates = append(updates, HierarchyUpdate{ID: child.ID, Path: pos.Path, Depth: pos.Depth})
			}
			queue = append(queue, frame{id: child.ID, pos: pos})
		}
	}

	return updates
}
