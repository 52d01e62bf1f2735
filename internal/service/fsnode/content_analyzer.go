package fsnode

import (
	"regexp"
	"strings"
	"unicode"

	fsnodeSvc "quill/internal/domain/services/fsnode"
)

var (
	fencedCodePattern = regexp.MustCompile("(?s)```.*?```")
	listMarkerPattern = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+`)

	// Emphasis, inline code, headings and quotes carry no words of their own.
	markupReplacer = strings.NewReplacer(
		"`", "",
		"**", "",
		"__", "",
		"~~", "",
		"*", "",
		"_", "",
		"#", "",
		">", "",
	)
)

type contentAnalyzer struct{}

// NewContentAnalyzer creates the markdown-aware word counter used for file content
func NewContentAnalyzer() fsnodeSvc.ContentAnalyzer {
	return &contentAnalyzer{}
}

// CountWords counts whitespace-separated words once markdown syntax is removed.
// Empty or whitespace-only content counts as zero.
func (a *contentAnalyzer) CountWords(markdown string) int {
	if strings.TrimSpace(markdown) == "" {
		return 0
	}
	return len(strings.FieldsFunc(a.CleanMarkdown(markdown), unicode.IsSpace))
}

// CleanMarkdown strips fenced code, list markers, rules and inline markup,
// leaving the prose joined by single spaces.
func (a *contentAnalyzer) CleanMarkdown(markdown string) string {
	text := fencedCodePattern.ReplaceAllString(markdown, "")

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if isHorizontalRule(line) {
			continue
		}
		line = listMarkerPattern.ReplaceAllString(line, "")
		if line = strings.TrimSpace(markupReplacer.Replace(line)); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}

func isHorizontalRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	compact := strings.ReplaceAll(line, " ", "")
	for _, marker := range []string{"-", "*", "_"} {
		if strings.Trim(compact, marker) == "" {
			return true
		}
	}
	return false
}
