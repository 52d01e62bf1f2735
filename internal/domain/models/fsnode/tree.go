package fsnode

import "time"

// TreeNode is a node of the assembled project tree. Content is carried for
// files so the editor can open a scene without a second round trip.
type TreeNode struct {
	ID             string      `json:"id"`
	ProjectID      string      `json:"project_id"`
	ParentID       *string     `json:"parent_id"`
	Name           string      `json:"name"`
	NodeType       NodeType    `json:"node_type"`
	Description    *string     `json:"description,omitempty"`
	Content        *string     `json:"content,omitempty"`
	FileExtension  *string     `json:"file_extension,omitempty"`
	WordCount      int         `json:"word_count"`
	Path           string      `json:"path"`
	Depth          int         `json:"depth"`
	SortOrder      int         `json:"sort_order"`
	GlobalSequence *int        `json:"global_sequence,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Children       []*TreeNode `json:"children"` // Pointers for proper nesting
}

// NewTreeNode copies the row attributes of n into a childless tree node.
func NewTreeNode(n *Node) *TreeNode {
	return &TreeNode{
		ID:             n.ID,
		ProjectID:      n.ProjectID,
		ParentID:       n.ParentID,
		Name:           n.Name,
		NodeType:       n.NodeType,
		Description:    n.Description,
		Content:        n.Content,
		FileExtension:  n.FileExtension,
		WordCount:      n.WordCount,
		Path:           n.Path,
		Depth:          n.Depth,
		SortOrder:      n.SortOrder,
		GlobalSequence: n.GlobalSequence,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
		Children:       []*TreeNode{},
	}
}

// Row converts the tree node back into its storage shape (without children).
// Tree nodes only ever hold live rows, so IsDeleted is false.
func (t *TreeNode) Row() Node {
	return Node{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		ParentID:       t.ParentID,
		Name:           t.Name,
		NodeType:       t.NodeType,
		Description:    t.Description,
		Content:        t.Content,
		FileExtension:  t.FileExtension,
		WordCount:      t.WordCount,
		Path:           t.Path,
		Depth:          t.Depth,
		SortOrder:      t.SortOrder,
		GlobalSequence: t.GlobalSequence,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// ProjectStats summarises the live nodes of a project.
type ProjectStats struct {
	TotalFiles     int `json:"total_files"`
	TotalFolders   int `json:"total_folders"`
	TotalWordCount int `json:"total_word_count"`
	RootNodeCount  int `json:"root_nodes"`
}
