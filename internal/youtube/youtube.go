package youtube

import (
	"fmt"
	"regexp"
	"strings"
)

// ThumbnailTemplate is the derived thumbnail location for a video id.
const ThumbnailTemplate = "https://i.ytimg.com/vi/%s/maxresdefault.jpg"

var (
	bareID     = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	embeddedID = regexp.MustCompile(`(?:v=|/)([A-Za-z0-9_-]{11})`)
)

// IsValidID reports whether id is exactly 11 characters of [A-Za-z0-9_-].
func IsValidID(id string) bool {
	return bareID.MatchString(id)
}

// ExtractID accepts a bare id or a video URL and returns the 11-character id,
// or "" when none can be found.
func ExtractID(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if bareID.MatchString(input) {
		return input
	}
	if m := embeddedID.FindStringSubmatch(input); m != nil {
		return m[1]
	}
	return ""
}

// ThumbnailURL returns the templated thumbnail for id, or "" for an empty id.
func ThumbnailURL(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf(ThumbnailTemplate, id)
}
