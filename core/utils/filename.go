package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonAlphaNumeric = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)
var multipleSpaces = regexp.MustCompile(`\s+`)

// UniqueSuffix returns a short random string for object-key collisions.
func UniqueSuffix() string {
	return uuid.NewString()[:8]
}

// SafeFilenamePrefix builds a filesystem/object-key safe prefix from track
// metadata. Empty titles fall back to a placeholder.
func SafeFilenamePrefix(title, artist string) string {
	if strings.TrimSpace(title) == "" {
		title = "Untitled_Track"
	}

	var parts []string
	if strings.TrimSpace(artist) != "" {
		parts = append(parts, strings.TrimSpace(artist))
	}
	parts = append(parts, strings.TrimSpace(title))

	base := strings.Join(parts, " - ")
	base = multipleSpaces.ReplaceAllString(base, "_")
	base = nonAlphaNumeric.ReplaceAllString(base, "")

	// Keep object keys short.
	maxLength := 100
	if len(base) > maxLength {
		base = base[:maxLength]
	}
	if base == "" {
		base = "fallback_filename"
	}
	return base
}
