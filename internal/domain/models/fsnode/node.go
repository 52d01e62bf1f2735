package fsnode

import (
	"time"
)

// NodeType distinguishes folders from files.
type NodeType string

const (
	NodeTypeFolder NodeType = "folder"
	NodeTypeFile   NodeType = "file"
)

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	return t == NodeTypeFolder || t == NodeTypeFile
}

// Node is one row of the project hierarchy. Folders and files share the table;
// the hierarchy is expressed by ParentID alone.
type Node struct {
	ID             string     `json:"id" db:"id"`
	ProjectID      string     `json:"project_id" db:"project_id"`
	ParentID       *string    `json:"parent_id" db:"parent_id"` // NULL = root level
	Name           string     `json:"name" db:"name"`
	NodeType       NodeType   `json:"node_type" db:"node_type"`
	Description    *string    `json:"description,omitempty" db:"description"`
	Content        *string    `json:"content,omitempty" db:"content"` // files only
	FileExtension  *string    `json:"file_extension,omitempty" db:"file_extension"`
	WordCount      int        `json:"word_count" db:"word_count"`
	Path           string     `json:"path" db:"path"`   // "Chapter 1/Scene 2"
	Depth          int        `json:"depth" db:"depth"` // 0 for root level
	SortOrder      int        `json:"sort_order" db:"sort_order"`
	GlobalSequence *int       `json:"global_sequence,omitempty" db:"global_sequence"` // files only
	IsDeleted      bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" db:"deleted_at"` // shared by every row of one trash operation
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// IsFolder reports whether the node can hold children.
func (n *Node) IsFolder() bool {
	return n.NodeType == NodeTypeFolder
}

// IsRoot reports whether the node sits at the top of its project.
func (n *Node) IsRoot() bool {
	return n.ParentID == nil
}

// NodePatch lists the columns an update writes. Nil pointers are left untouched.
// ParentID uses Optional semantics so that "move to root" (nil) can be told
// apart from "not moving".
type NodePatch struct {
	Name          *string
	Description   *string
	Content       *string
	FileExtension *string
	WordCount     *int
	SortOrder     *int
	ParentID      OptionalID
	Path          *string
	Depth         *int
	UpdatedAt     time.Time
}

// IsEmpty reports whether the patch would change nothing but the timestamp.
func (p *NodePatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Content == nil &&
		p.FileExtension == nil && p.WordCount == nil && p.SortOrder == nil &&
		!p.ParentID.Present && p.Path == nil && p.Depth == nil
}

// OptionalID tracks tri-state semantics for nullable id updates (RFC 7396 PATCH).
// This is transport-agnostic (no JSON tags) - handler maps from httputil.OptionalString.
//   - Present=false: field absent from request (don't change)
//   - Present=true, Value=nil: field is null (move to root)
//   - Present=true, Value=&"id": field has value
type OptionalID struct {
	Present bool
	Value   *string
}

// Some returns a present OptionalID holding id.
func Some(id string) OptionalID {
	return OptionalID{Present: true, Value: &id}
}

// Null returns a present OptionalID holding NULL.
func Null() OptionalID {
	return OptionalID{Present: true}
}
