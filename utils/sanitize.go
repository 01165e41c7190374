package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var contentPolicy = bluemonday.UGCPolicy()

// SanitizeContent strips unsafe HTML from user-authored text and trims surrounding whitespace.
func SanitizeContent(input string) string {
	return strings.TrimSpace(contentPolicy.Sanitize(input))
}
