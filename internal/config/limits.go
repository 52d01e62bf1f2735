package config

const (
	// MaxNodeNameLength is the maximum length for file and folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (names should be short and descriptive).
	MaxNodeNameLength = 255

	// MaxNodePathLength is the maximum length for a derived node path.
	MaxNodePathLength = 4096

	// MaxFileExtensionLength bounds file_extension ("md", "txt", ...).
	MaxFileExtensionLength = 16

	// MaxProjectTitleLength bounds project titles.
	MaxProjectTitleLength = 255

	// DefaultMaxTreeDepth is the number of levels a project tree may have.
	// Creates, moves and restores that would go deeper are rejected, and
	// ancestor walks longer than this are treated as corrupt (circular) data.
	DefaultMaxTreeDepth = 256
)
