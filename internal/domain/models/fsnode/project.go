package fsnode

import (
	"time"
)

// Project owns a node hierarchy. AuthorID is the only principal allowed to
// touch the project's nodes.
type Project struct {
	ID          string     `json:"id" db:"id"`
	AuthorID    string     `json:"author_id" db:"author_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}
