// Package domain contains core concepts of the collaborative editing system.
// Entities here are immutable values: every "mutation" returns a new instance.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"fmt"
	"strings"

	"codraft/errors"
)

// UserID identifies a collaborator. It is stable across connections:
// session membership is keyed by it, never by a transient connection id.
type UserID struct {
	value string
}

func NewUserID(value string) (UserID, error) {
	if value == "" {
		return UserID{}, fmt.Errorf("%w: user id must not be empty", errors.ErrInvalidValue)
	}
	return UserID{value: value}, nil
}

func (u UserID) String() string { return u.value }

func (u UserID) IsZero() bool { return u.value == "" }

// UserName is the display name shown next to a participant's edits.
type UserName struct {
	value string
}

func NewUserName(value string) (UserName, error) {
	if value == "" {
		return UserName{}, fmt.Errorf("%w: user name must not be empty", errors.ErrInvalidValue)
	}
	return UserName{value: value}, nil
}

func (u UserName) String() string { return u.value }

// UserColor is the cursor/selection color assigned to a participant.
type UserColor struct {
	value string
}

func NewUserColor(value string) (UserColor, error) {
	if value == "" {
		return UserColor{}, fmt.Errorf("%w: user color must not be empty", errors.ErrInvalidValue)
	}
	return UserColor{value: value}, nil
}

func (u UserColor) String() string { return u.value }

// DocumentID identifies a document independently of any editing session.
type DocumentID struct {
	value string
}

func NewDocumentID(value string) (DocumentID, error) {
	if value == "" {
		return DocumentID{}, fmt.Errorf("%w: document id must not be empty", errors.ErrInvalidDocument)
	}
	return DocumentID{value: value}, nil
}

func (d DocumentID) String() string { return d.value }

func (d DocumentID) IsZero() bool { return d.value == "" }

// DocumentContent wraps the raw text of a document. Unlike the identity
// values above it may be empty: a freshly created document has no text.
type DocumentContent struct {
	value string
}

func NewDocumentContent(value string) DocumentContent {
	return DocumentContent{value: value}
}

func (c DocumentContent) String() string { return c.value }

func (c DocumentContent) IsEmpty() bool { return c.value == "" }

// WordCount counts whitespace-delimited tokens, ignoring leading Markdown
// heading markers on each line.
func (c DocumentContent) WordCount() int {
	if c.IsEmpty() {
		return 0
	}
	count := 0
	for _, line := range strings.Split(c.value, "\n") {
		count += len(strings.Fields(strings.TrimLeft(line, "#")))
	}
	return count
}
