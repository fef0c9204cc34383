package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"codraft/errors"
)

func pattern(t *testing.T) MentionPattern {
	t.Helper()
	p, err := NewMentionPattern("@j")
	require.NoError(t, err)
	return p
}

func TestNewMentionPattern_RejectsEmpty(t *testing.T) {
	_, err := NewMentionPattern("")
	require.ErrorIs(t, err, errors.ErrInvalidValue)
}

func TestDetectAtCursor(t *testing.T) {
	p := pattern(t)

	tests := []struct {
		description string
		text        string
		cursor      int
		expected    *Detection
	}{
		{
			"Pattern at start of text",
			"@j what is TypeScript?", 5,
			&Detection{From: 0, To: 22, Text: "@j what is TypeScript?"},
		},
		{
			"Cursor on the left boundary",
			"@j hello", 0,
			&Detection{From: 0, To: 8, Text: "@j hello"},
		},
		{
			"Cursor on the right boundary",
			"@j hello", 8,
			&Detection{From: 0, To: 8, Text: "@j hello"},
		},
		{
			"Pattern mid-text with cursor inside",
			"note\n@j explain this\ntail", 10,
			&Detection{From: 5, To: 20, Text: "@j explain this"},
		},
		{
			"Cursor before the span",
			"note @j explain", 2,
			nil,
		},
		{
			"Cursor after the span on the next line",
			"@j explain\nmore text", 15,
			nil,
		},
		{
			"Pattern absent",
			"plain text without any marker", 4,
			nil,
		},
		{
			"Cursor out of bounds",
			"@j hi", 99,
			nil,
		},
		{
			"Negative cursor",
			"@j hi", -1,
			nil,
		},
		{
			"Second of two occurrences holds the cursor",
			"@j first\n@j second", 12,
			&Detection{From: 9, To: 18, Text: "@j second"},
		},
		{
			"First of two occurrences holds the cursor",
			"@j first\n@j second", 3,
			&Detection{From: 0, To: 8, Text: "@j first"},
		},
		{
			"Cursor between two occurrences on a bare line",
			"@j first\n\n@j second", 8,
			&Detection{From: 0, To: 8, Text: "@j first"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require.Equal(t, tt.expected, p.DetectAtCursor(tt.text, tt.cursor))
		})
	}
}

func TestExtractQuestion(t *testing.T) {
	p := pattern(t)

	t.Run("Round trip from detection", func(t *testing.T) {
		req := require.New(t)

		d := p.DetectAtCursor("@j what is TypeScript?", 5)
		req.NotNil(d)

		question, ok := p.ExtractQuestion(d)
		req.True(ok)
		req.Equal("what is TypeScript?", question)
		req.True(p.IsValidForQuery(d))
	})

	t.Run("Whitespace-only remainder is rejected", func(t *testing.T) {
		req := require.New(t)

		d := p.DetectAtCursor("@j ", 1)
		req.NotNil(d)
		req.Equal(&Detection{From: 0, To: 3, Text: "@j "}, d)

		question, ok := p.ExtractQuestion(d)
		req.False(ok)
		req.Empty(question)
		req.False(p.IsValidForQuery(d))
	})

	t.Run("Nil detection is rejected", func(t *testing.T) {
		req := require.New(t)

		question, ok := p.ExtractQuestion(nil)
		req.False(ok)
		req.Empty(question)
		req.False(p.IsValidForQuery(nil))
	})

	t.Run("Bare pattern is rejected", func(t *testing.T) {
		d := p.DetectAtCursor("@j", 1)
		require.NotNil(t, d)
		require.False(t, p.IsValidForQuery(d))
	})
}
