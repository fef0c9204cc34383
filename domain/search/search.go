// Package search parses user-facing search input into structured queries.
// It decouples raw query strings from the index engine's requirements.
package search

import (
	"strconv"
	"strings"
)

const defaultLimit = 10

// Query is the structured form of a document history search.
type Query struct {
	RawInput   string // the original user input
	Terms      string // the text to match against indexed revisions
	DocumentID string // optional scope to one document
	Limit      int    // maximum number of hits
}

// Parse extracts command-line style arguments from a raw query string.
// Example: invoice draft --document notes-2026 --limit 5
func Parse(input string) Query {
	query := Query{
		RawInput: input,
		Limit:    defaultLimit,
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "document":
				query.DocumentID = val
			case "limit":
				if limit, err := strconv.Atoi(val); err == nil && limit > 0 {
					query.Limit = limit
				}
			}
			i++
			continue
		}

		textTerms = append(textTerms, part)
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}

// IsValid reports whether the query has anything to match on.
func (q Query) IsValid() bool {
	return q.Terms != ""
}
