// Package textutil provides display-name helpers for uploaded clips.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	separatorPattern = regexp.MustCompile(`[._\-]+`)
	unsafePattern    = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	titleCaser       = cases.Title(language.English)
)

// DisplayName derives a human-friendly clip name from an uploaded filename.
// The extension is dropped, separators become spaces, and words are title
// cased.
func DisplayName(filename string) string {
	// Strip the extension before any trimming so a name that is all
	// whitespace plus an extension empties out instead of keeping the dot.
	// A dot at index zero marks a hidden file, not an extension.
	base := filename
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	base = separatorPattern.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)
	if base == "" {
		return "Untitled Clip"
	}
	return titleCaser.String(base)
}

// SanitizeFilename strips characters that are unsafe in filesystem paths and
// collapses runs of whitespace.
func SanitizeFilename(name string) string {
	cleaned := unsafePattern.ReplaceAllString(name, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.TrimSpace(cleaned)
}
