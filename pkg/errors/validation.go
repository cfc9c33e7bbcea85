package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Input limits shared by the CLI and the API.
const (
	// MaxDocumentBytes bounds the size of a document accepted for a build.
	MaxDocumentBytes = 10 << 20

	// MaxQueryLength bounds the length of a search expression.
	MaxQueryLength = 1024
)

// ValidateDocument checks that a document is non-empty, valid UTF-8 and no
// larger than limit bytes. A non-positive limit uses [MaxDocumentBytes].
// It does not parse the document.
func ValidateDocument(data []byte, limit int) error {
	if limit <= 0 {
		limit = MaxDocumentBytes
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(ErrCodeEmptyInput, "document is empty")
	}
	if len(data) > limit {
		return New(ErrCodeTooLarge, "document too large (%d bytes, max %d)", len(data), limit)
	}
	if !utf8.Valid(data) {
		return New(ErrCodeInvalidJSON, "document is not valid UTF-8")
	}
	return nil
}

// ValidateQuery checks a search expression for safety.
//
// The rules are intentionally loose because malformed paths are allowed and
// simply fail to match:
//   - No empty (or whitespace-only) queries
//   - No control characters
//   - Maximum length of [MaxQueryLength] bytes
func ValidateQuery(q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return New(ErrCodeEmptyQuery, "enter a JSON path to search")
	}
	if len(q) > MaxQueryLength {
		return New(ErrCodeInvalidQuery, "query too long (max %d characters)", MaxQueryLength)
	}
	for _, r := range q {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidQuery, "query contains invalid control characters")
		}
	}
	return nil
}

// ValidateNodeID checks that a node id has the form produced by tree builds.
func ValidateNodeID(id string) error {
	rest, ok := strings.CutPrefix(id, "node_")
	if !ok || rest == "" {
		return New(ErrCodeInvalidInput, "invalid node id: %q", id)
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return New(ErrCodeInvalidInput, "invalid node id: %q", id)
		}
	}
	return nil
}
