package fsnode

import (
	"fmt"
	"strings"

	models "quill/internal/domain/models/fsnode"
)

// renderLine is one row of a rendered tree
type renderLine struct {
	name   string
	depth  int
	isLast bool
}

// RenderTree draws a forest with box-drawing characters under a "/" root:
//
//	/
//	├── Chapter 1/
//	│   └── Scene 1.md (120 words)
//	└── Notes.md (3 words)
func RenderTree(forest []*models.TreeNode) string {
	lines := []renderLine{{name: "/"}}

	type frame struct {
		node   *models.TreeNode
		depth  int
		isLast bool
	}
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{forest[i], 1, i == len(forest)-1})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		lines = append(lines, renderLine{name: label(f.node), depth: f.depth, isLast: f.isLast})
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1, i == len(f.node.Children)-1})
		}
	}

	var b strings.Builder
	// continuations[d] is set while depth d still has siblings to draw
	continuations := make(map[int]bool)
	for i, line := range lines {
		if line.depth > 0 {
			for d := 1; d < line.depth; d++ {
				if continuations[d] {
					b.WriteString("│   ")
				} else {
					b.WriteString("    ")
				}
			}
			if line.isLast {
				b.WriteString("└── ")
			} else {
				b.WriteString("├── ")
			}
		}
		b.WriteString(line.name)
		if i < len(lines)-1 {
			b.WriteString("\n")
		}

		if line.isLast {
			delete(continuations, line.depth)
		} else {
			continuations[line.depth] = true
		}
	}
	return b.String()
}

func label(n *models.TreeNode) string {
	if n.NodeType == models.NodeTypeFolder {
		return n.Name + "/"
	}
	name := n.Name
	if n.FileExtension != nil && *n.FileExtension != "" && !strings.HasSuffix(name, "."+*n.FileExtension) {
		name += "." + *n.FileExtension
	}
	return fmt.Sprintf("%s (%d words)", name, n.WordCount)
}
