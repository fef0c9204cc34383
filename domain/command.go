package domain

import (
	"time"
)

// Command is a session-scoped intent produced by the transport layer.
// Every command targeting the same session id is applied by a single
// worker, which gives the copy-on-write aggregates a total order.
type Command interface {
	SessionID() string
}

type JoinSessionCommand struct {
	Session     string
	Participant Participant
}

func (c JoinSessionCommand) SessionID() string { return c.Session }

type LeaveSessionCommand struct {
	Session string
	UserID  UserID
}

func (c LeaveSessionCommand) SessionID() string { return c.Session }

type DeactivateParticipantCommand struct {
	Session string
	UserID  UserID
}

func (c DeactivateParticipantCommand) SessionID() string { return c.Session }

type UpdateDocumentCommand struct {
	Session   string
	ActorID   UserID
	Content   DocumentContent
	CreatedAt time.Time
}

func (c UpdateDocumentCommand) SessionID() string { return c.Session }

// CursorActivityCommand carries a keystroke batch: the current text and
// the caret offset inside it. It feeds mention detection only and never
// touches the document aggregate.
type CursorActivityCommand struct {
	Session   string
	UserID    UserID
	Text      string
	Cursor    int
	CreatedAt time.Time
}

func (c CursorActivityCommand) SessionID() string { return c.Session }

// AppendDocumentCommand appends text to the current content as an Update
// change. It is issued by system actors (the agent landing its answer), so
// the edit-permission policy does not apply; the command still rides the
// session worker queue and fails once the session is gone.
type AppendDocumentCommand struct {
	Session   string
	ActorID   UserID
	Text      string
	CreatedAt time.Time
}

func (c AppendDocumentCommand) SessionID() string { return c.Session }

// AskAgentCommand is a confirmed mention: the extracted question is handed
// to the agent invoker and the response lands as an Update change.
type AskAgentCommand struct {
	Session   string
	UserID    UserID
	Question  string
	CreatedAt time.Time
}

func (c AskAgentCommand) SessionID() string { return c.Session }
