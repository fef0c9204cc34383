// Package projection builds local read models from observed events.
// Handles ordering and bounded retention.
// Does not emit events or interact with transport directly.
package projection

import (
	"context"
	"sync"
	"time"

	"codraft/domain/event"
)

type EntryKind string

const (
	EntryJoined      EntryKind = "joined"
	EntryLeft        EntryKind = "left"
	EntryDeactivated EntryKind = "deactivated"
	EntryEdited      EntryKind = "edited"
	EntryMention     EntryKind = "mention"
	EntryAgent       EntryKind = "agent"
)

// Entry is one line of session activity, flattened for display.
type Entry struct {
	Kind    EntryKind
	Session string
	Actor   string
	Detail  string
	At      time.Time
}

// Timeline keeps a bounded in-memory audit trail across all sessions.
// Oldest entries are evicted once the cap is reached.
type Timeline struct {
	mu      sync.RWMutex
	entries []Entry
	cap     int
}

func NewTimeline(cap int) *Timeline {
	if cap <= 0 {
		cap = 256
	}
	return &Timeline{cap: cap}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	entry, ok := fromEvent(e)
	if !ok {
		return nil
	}

	t.mu.Lock()
	t.entries = append(t.entries, entry)
	if len(t.entries) > t.cap {
		t.entries = t.entries[len(t.entries)-t.cap:]
	}
	t.mu.Unlock()
	return nil
}

// Entries returns a copy of the trail, oldest first.
func (t *Timeline) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// EntriesForSession filters the trail to one session, oldest first.
func (t *Timeline) EntriesForSession(sessionID string) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Entry
	for _, entry := range t.entries {
		if entry.Session == sessionID {
			out = append(out, entry)
		}
	}
	return out
}

func fromEvent(e event.DomainEvent) (Entry, bool) {
	switch evt := e.(type) {
	case event.ParticipantJoined:
		return Entry{Kind: EntryJoined, Session: evt.Session, Actor: evt.UserID, Detail: evt.UserName, At: evt.At}, true
	case event.ParticipantLeft:
		return Entry{Kind: EntryLeft, Session: evt.Session, Actor: evt.UserID, At: evt.At}, true
	case event.ParticipantDeactivated:
		return Entry{Kind: EntryDeactivated, Session: evt.Session, Actor: evt.UserID, At: evt.At}, true
	case event.DocumentUpdated:
		return Entry{Kind: EntryEdited, Session: evt.Session, Actor: evt.Actor, Detail: evt.Document, At: evt.At}, true
	case event.MentionDetected:
		return Entry{Kind: EntryMention, Session: evt.Session, Actor: evt.UserID, Detail: evt.Question, At: evt.At}, true
	case event.AgentResponded:
		return Entry{Kind: EntryAgent, Session: evt.Session, Actor: evt.UserID, Detail: evt.Question, At: evt.At}, true
	default:
		return Entry{}, false
	}
}
