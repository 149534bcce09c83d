package agentpages

import (
	"errors"
	"fmt"
)

// Guard and lookup sentinels. Handlers match these with errors.Is to pick
// a response status; guard rejections leave the document and the history
// cursor untouched.
var (
	// ErrRequiredSection rejects deleting a section marked required.
	ErrRequiredSection = errors.New("required sections cannot be deleted")

	// ErrRequiredTypeDrop rejects inserting a required type from the
	// palette; those sections are singletons seeded at initialization.
	ErrRequiredTypeDrop = errors.New("required section types cannot be added from the palette")

	// ErrSectionNotFound reports a section id absent from the document.
	ErrSectionNotFound = errors.New("section not found")

	// ErrPageNotFound reports a page id absent from the store.
	ErrPageNotFound = errors.New("page not found")
)

// DocumentError is a detailed error from a subsystem that reads or writes
// documents, carrying enough context to act on.
type DocumentError struct {
	Source  string
	Message string
	Hint    string
}

func (e *DocumentError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Source, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// NewDocumentError creates a DocumentError for the given subsystem.
func NewDocumentError(source, message string) *DocumentError {
	return &DocumentError{Source: source, Message: message}
}

// WithHint attaches remediation or diagnostic detail.
func (e *DocumentError) WithHint(hint string) *DocumentError {
	e.Hint = hint
	return e
}
