package domain

import "time"

// ChangeKind discriminates the two audit entry types a document can record.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
)

// DocumentChange is one immutable, ordered audit entry in a document's
// history. It is created exactly once per mutation and never modified.
type DocumentChange struct {
	Kind    ChangeKind
	ActorID UserID
	At      time.Time
}
