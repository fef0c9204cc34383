package domain

import (
	"time"
)

// Document is a versioned content aggregate owning its full change log.
// All operations are pure: they leave the receiver untouched and return a
// new value. Invariants: Version == len(changes), changes[0] is a Create,
// UpdatedAt never decreases.
type Document struct {
	id        DocumentID
	content   DocumentContent
	createdAt time.Time
	updatedAt time.Time
	version   int
	changes   []DocumentChange
}

// NewDocument creates a version-1 document with a single Create change.
func NewDocument(id DocumentID, content DocumentContent, actorID UserID) Document {
	now := time.Now().UTC()
	return Document{
		id:        id,
		content:   content,
		createdAt: now,
		updatedAt: now,
		version:   1,
		changes:   []DocumentChange{{Kind: ChangeCreate, ActorID: actorID, At: now}},
	}
}

// UpdateContent returns a new document with the given content, a bumped
// version and one appended Update change. CreatedAt is preserved.
func (d Document) UpdateContent(content DocumentContent, actorID UserID) Document {
	now := time.Now().UTC()
	if now.Before(d.updatedAt) {
		now = d.updatedAt
	}

	changes := make([]DocumentChange, len(d.changes), len(d.changes)+1)
	copy(changes, d.changes)
	changes = append(changes, DocumentChange{Kind: ChangeUpdate, ActorID: actorID, At: now})

	d.content = content
	d.updatedAt = now
	d.version++
	d.changes = changes
	return d
}

// RestoreDocument rebuilds an aggregate from a persisted snapshot and its
// change log. The persistence layer owns the disk shape; this is the only
// way back into the in-memory value it expects.
func RestoreDocument(id DocumentID, content DocumentContent,
	createdAt, updatedAt time.Time, version int, changes []DocumentChange) Document {
	owned := make([]DocumentChange, len(changes))
	copy(owned, changes)
	return Document{
		id:        id,
		content:   content,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		changes:   owned,
	}
}

func (d Document) ID() DocumentID { return d.id }

func (d Document) Content() DocumentContent { return d.content }

func (d Document) CreatedAt() time.Time { return d.createdAt }

func (d Document) UpdatedAt() time.Time { return d.updatedAt }

func (d Document) Version() int { return d.version }

func (d Document) IsEmpty() bool { return d.content.IsEmpty() }

func (d Document) WordCount() int { return d.content.WordCount() }

// HasBeenModified reports whether any Update change has been recorded.
func (d Document) HasBeenModified() bool { return d.version > 1 }

// ChangeHistory returns a copy of the full change log; callers cannot
// mutate the audit trail through it.
func (d Document) ChangeHistory() []DocumentChange {
	history := make([]DocumentChange, len(d.changes))
	copy(history, d.changes)
	return history
}
