package utils

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	MaxIDLength    = 128
	MaxTitleLength = 256
	MaxPathLength  = 2048
)

// SafeIDPattern allows the characters used by grain ids and tokens
var SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var titlePolicy = bluemonday.StrictPolicy()

// ValidateID checks a grain id or token received from a client
func ValidateID(id, fieldName string, required bool) error {
	if id == "" {
		if required {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%s exceeds maximum length of %d", fieldName, MaxIDLength)
	}
	if !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateDeepLink bounds the path/query/hash fragments captured from a navigation
func ValidateDeepLink(path, query, hash string) error {
	for name, v := range map[string]string{"path": path, "query": query, "hash": hash} {
		if len(v) > MaxPathLength {
			return fmt.Errorf("%s exceeds maximum length of %d", name, MaxPathLength)
		}
		if !utf8.ValidString(v) {
			return fmt.Errorf("%s is not valid UTF-8", name)
		}
	}
	return nil
}

// SanitizeTitle strips markup from a title reported by an app or typed by a
// user and bounds its length. The result is plain text: entities the
// sanitizer emits are decoded again.
func SanitizeTitle(title string) (string, error) {
	if !utf8.ValidString(title) {
		return "", fmt.Errorf("title is not valid UTF-8")
	}
	clean := strings.TrimSpace(html.UnescapeString(titlePolicy.Sanitize(title)))
	if utf8.RuneCountInString(clean) > MaxTitleLength {
		return "", fmt.Errorf("title exceeds maximum length of %d", MaxTitleLength)
	}
	return clean, nil
}
