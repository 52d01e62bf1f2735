package fsnode

// ContentAnalyzer derives attributes from file content
type ContentAnalyzer interface {
	// CountWords counts the number of words in markdown text
	CountWords(markdown string) int

	// CleanMarkdown removes markdown syntax from text
	CleanMarkdown(markdown string) string
}
