package event

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact produced by a session worker after a command has
// been applied. Events carry plain values so sinks can serialize them
// without reaching back into the aggregates.
type DomainEvent interface {
	SessionID() string
}

type ParticipantJoined struct {
	Session   string
	UserID    string
	UserName  string
	UserColor string
	Rejoin    bool
	At        time.Time
}

func (e ParticipantJoined) SessionID() string { return e.Session }

type ParticipantLeft struct {
	Session string
	UserID  string
	At      time.Time
}

func (e ParticipantLeft) SessionID() string { return e.Session }

type ParticipantDeactivated struct {
	Session string
	UserID  string
	At      time.Time
}

func (e ParticipantDeactivated) SessionID() string { return e.Session }

// DocumentEdited is the raw edit as accepted by the session worker. It is
// sanitized by the moderation worker before leaving the pipeline.
type DocumentEdited struct {
	ID        uuid.UUID
	Session   string
	Document  string
	Actor     string
	Content   string
	Version   int
	CreatedAt time.Time
	At        time.Time
}

func (e DocumentEdited) SessionID() string { return e.Session }

// DocumentUpdated is the sanitized form of an edit: the content has passed
// moderation and carries a detected language tag. Only this event reaches
// persistence and connected clients.
type DocumentUpdated struct {
	ID            uuid.UUID
	Session       string
	Document      string
	Actor         string
	Content       string
	Version       int
	Lang          string
	CensoredWords []string
	CreatedAt     time.Time
	At            time.Time
}

func (e DocumentUpdated) SessionID() string { return e.Session }

// MentionDetected surfaces the agent-invocation affordance: a validated
// command span under a participant's cursor.
type MentionDetected struct {
	Session  string
	UserID   string
	From     int
	To       int
	Span     string
	Question string
	At       time.Time
}

func (e MentionDetected) SessionID() string { return e.Session }

type AgentResponded struct {
	Session  string
	UserID   string
	Question string
	Answer   string
	Lang     string
	At       time.Time
}

func (e AgentResponded) SessionID() string { return e.Session }
