package policy

import (
	"fmt"
	"strings"

	"codraft/errors"
)

// MentionPattern is the literal prefix that turns free text into an agent
// command, e.g. "@j". It is immutable once built.
type MentionPattern struct {
	value string
}

func NewMentionPattern(value string) (MentionPattern, error) {
	if value == "" {
		return MentionPattern{}, fmt.Errorf("%w: mention pattern must not be empty", errors.ErrInvalidValue)
	}
	return MentionPattern{value: value}, nil
}

func (m MentionPattern) String() string { return m.value }

// Detection is a command span found under the cursor. From/To are byte
// offsets into the scanned text; Text is the half-open slice [From, To).
type Detection struct {
	From int
	To   int
	Text string
}

// DetectAtCursor scans left to right for the pattern and returns the span
// running from the pattern's first character to the end of that line (or
// end of text). A span is only returned when the cursor sits inside it,
// both boundaries included. With several occurrences, only the one
// containing the cursor is reported.
func (m MentionPattern) DetectAtCursor(text string, cursor int) *Detection {
	if cursor < 0 || cursor > len(text) {
		return nil
	}

	for start := 0; start <= len(text); {
		idx := strings.Index(text[start:], m.value)
		if idx < 0 {
			return nil
		}
		from := start + idx

		to := len(text)
		if nl := strings.IndexByte(text[from:], '\n'); nl >= 0 {
			to = from + nl
		}

		if cursor >= from && cursor <= to {
			return &Detection{From: from, To: to, Text: text[from:to]}
		}
		if cursor < from {
			// Occurrences are visited in order, so later ones start
			// even further past the cursor.
			return nil
		}
		start = from + len(m.value)
	}
	return nil
}

// ExtractQuestion strips the pattern prefix and surrounding whitespace
// from a detection. The second return is false when the detection is nil
// or nothing but whitespace remains.
func (m MentionPattern) ExtractQuestion(d *Detection) (string, bool) {
	if d == nil {
		return "", false
	}
	question := strings.TrimSpace(strings.TrimPrefix(d.Text, m.value))
	if question == "" {
		return "", false
	}
	return question, true
}

// IsValidForQuery reports whether a detection carries a non-empty question.
func (m MentionPattern) IsValidForQuery(d *Detection) bool {
	_, ok := m.ExtractQuestion(d)
	return ok
}
