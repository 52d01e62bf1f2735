package fsnode

import (
	"sort"

	models "quill/internal/domain/models/fsnode"
)

// BuildTree assembles the forest of root-level nodes from a flat node list.
//
// The first pass creates every tree node, the second attaches each node to its
// parent, so parents may appear after their children in the input. Trashed
// rows are skipped and nodes whose parent is not in the set are dropped.
// Siblings end up ordered by sort_order, then created_at, then id, whatever
// the input order was.
func BuildTree(nodes []models.Node) []*models.TreeNode {
	return assemble(nodes, func(n *models.Node) bool { return n.ParentID == nil }, true)
}

// BuildSubtree assembles the subtree rooted at root from its flat descendants.
// Trashed descendants are kept so purge paths can see them.
func BuildSubtree(root models.Node, descendants []models.Node) *models.TreeNode {
	nodes := make([]models.Node, 0, len(descendants)+1)
	nodes = append(nodes, root)
	for _, d := range descendants {
		if d.ID != root.ID {
			nodes = append(nodes, d)
		}
	}

	forest := assemble(nodes, func(n *models.Node) bool { return n.ID == root.ID }, false)
	if len(forest) == 0 {
		return models.NewTreeNode(&root)
	}
	return forest[0]
}

func assemble(nodes []models.Node, isRoot func(*models.Node) bool, skipDeleted bool) []*models.TreeNode {
	nodeMap := make(map[string]*models.TreeNode, len(nodes))

	// First pass: create all tree nodes
	for i := range nodes {
		n := &nodes[i]
		if skipDeleted && n.IsDeleted {
			continue
		}
		if _, exists := nodeMap[n.ID]; exists {
			continue
		}
		nodeMap[n.ID] = models.NewTreeNode(n)
	}

	// Second pass: connect children to parents
	roots := make([]*models.TreeNode, 0)
	attached := make(map[string]struct{}, len(nodeMap))
	for i := range nodes {
		n := &nodes[i]
		node, exists := nodeMap[n.ID]
		if !exists {
			continue
		}
		if _, done := attached[n.ID]; done {
			continue
		}
		attached[n.ID] = struct{}{}

		if isRoot(n) {
			roots = append(roots, node)
			continue
		}
		if n.ParentID == nil || *n.ParentID == n.ID {
			continue
		}
		if parent, ok := nodeMap[*n.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}

	sortForest(roots)
	return roots
}

// sortForest orders every sibling list reachable from roots.
func sortForest(roots []*models.TreeNode) {
	sortSiblings(roots)
	stack := append([]*models.TreeNode(nil), roots...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sortSiblings(node.Children)
		stack = append(stack, node.Children...)
	}
}

func sortSiblings(siblings []*models.TreeNode) {
	sort.SliceStable(siblings, func(i, j int) bool {
		a, b := siblings[i], siblings[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Flatten lists every node of a forest in pre-order (parent, then its
// children in sibling order).
func Flatten(forest []*models.TreeNode) []models.Node {
	var out []models.Node
	stack := make([]*models.TreeNode, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, forest[i])
	}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, node.Row())
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
	return out
}

// PostOrder lists the nodes of a subtree children-first, ending with root.
// Deleting in this order never removes a parent before its children.
func PostOrder(root *models.TreeNode) []*models.TreeNode {
	var out []*models.TreeNode
	type frame struct {
		node     *models.TreeNode
		expanded bool
	}
	stack := []frame{{node: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.expanded {
			out = append(out, top.node)
			continue
		}
		stack = append(stack, frame{node: top.node, expanded: true})
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: top.node.Children[i]})
		}
	}
	return out
}

// CountDescendants counts every node below root (root excluded).
func CountDescendants(root *models.TreeNode) int {
	count := 0
	stack := append([]*models.TreeNode(nil), root.Children...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, node.Children...)
	}
	return count
}

// Height returns the number of levels below root (0 for a leaf).
func Height(root *models.TreeNode) int {
	height := 0
	level := root.Children
	for len(level) > 0 {
		height++
		var next []*models.TreeNode
		for _, node := range level {
			next = append(next, node.Children...)
		}
		level = next
	}
	return height
}
