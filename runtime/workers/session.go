package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"codraft/domain"
	"codraft/domain/event"
	"codraft/domain/policy"
	"codraft/errors"
)

// Envelope pairs a command with an optional reply channel so transport
// calls can observe rejections (capacity, permissions) synchronously while
// the command itself is still applied in the session's total order.
type Envelope struct {
	Cmd   domain.Command
	Reply chan error
}

// SessionWorker is the single writer for one collaboration session. All
// mutating commands against its session id flow through one channel and
// are applied sequentially, which is the whole serialization contract:
// the copy-on-write aggregates themselves need no locks.
type SessionWorker struct {
	mu          sync.RWMutex
	session     domain.CollaborationSession
	document    domain.Document
	commands    chan Envelope
	events      chan event.DomainEvent
	maxCapacity int
	log         *slog.Logger
}

func NewSessionWorker(session domain.CollaborationSession, document domain.Document,
	commands chan Envelope, events chan event.DomainEvent,
	maxCapacity int, log *slog.Logger) *SessionWorker {
	return &SessionWorker{
		session:     session,
		document:    document,
		commands:    commands,
		events:      events,
		maxCapacity: maxCapacity,
		log:         log,
	}
}

// Snapshot returns the current aggregate values. They are immutable, so
// handing them out is safe; the lock only orders the read against the
// worker's own replacement writes.
func (w *SessionWorker) Snapshot() (domain.CollaborationSession, domain.Document) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.session, w.document
}

func (w *SessionWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker", "session_id", w.session.SessionID())
			return ctx.Err()
		case env, ok := <-w.commands:
			if !ok {
				return nil
			}
			evt, err := w.apply(env.Cmd)
			reply(env, err)
			if err != nil {
				w.log.Debug("Command rejected",
					"session_id", env.Cmd.SessionID(),
					"error", err)
				continue
			}
			if evt == nil {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case w.events <- evt:
			}
		}
	}
}

func (w *SessionWorker) apply(cmd domain.Command) (event.DomainEvent, error) {
	switch c := cmd.(type) {
	case domain.JoinSessionCommand:
		return w.join(c)
	case domain.LeaveSessionCommand:
		return w.leave(c)
	case domain.DeactivateParticipantCommand:
		return w.deactivate(c)
	case domain.UpdateDocumentCommand:
		return w.updateDocument(c)
	case domain.AppendDocumentCommand:
		return w.appendDocument(c)
	default:
		w.log.Debug(fmt.Sprintf("Unhandled command : %T", cmd))
		return nil, nil
	}
}

func (w *SessionWorker) join(cmd domain.JoinSessionCommand) (event.DomainEvent, error) {
	if !policy.CanParticipantJoin(w.session.Participants(), cmd.Participant, w.maxCapacity) {
		return nil, fmt.Errorf("%w: capacity %d reached", errors.ErrSessionFull, w.maxCapacity)
	}
	rejoin := w.session.HasParticipant(cmd.Participant.UserID())
	w.replaceSession(w.session.AddParticipant(cmd.Participant))

	return event.ParticipantJoined{
		Session:   cmd.Session,
		UserID:    cmd.Participant.UserID().String(),
		UserName:  cmd.Participant.UserName().String(),
		UserColor: cmd.Participant.UserColor().String(),
		Rejoin:    rejoin,
		At:        time.Now().UTC(),
	}, nil
}

func (w *SessionWorker) leave(cmd domain.LeaveSessionCommand) (event.DomainEvent, error) {
	if !w.session.HasParticipant(cmd.UserID) {
		return nil, nil
	}
	w.replaceSession(w.session.RemoveParticipant(cmd.UserID))

	return event.ParticipantLeft{
		Session: cmd.Session,
		UserID:  cmd.UserID.String(),
		At:      time.Now().UTC(),
	}, nil
}

func (w *SessionWorker) deactivate(cmd domain.DeactivateParticipantCommand) (event.DomainEvent, error) {
	if !w.session.HasParticipant(cmd.UserID) {
		return nil, nil
	}
	w.replaceSession(w.session.DeactivateParticipant(cmd.UserID))

	return event.ParticipantDeactivated{
		Session: cmd.Session,
		UserID:  cmd.UserID.String(),
		At:      time.Now().UTC(),
	}, nil
}

func (w *SessionWorker) updateDocument(cmd domain.UpdateDocumentCommand) (event.DomainEvent, error) {
	participant, ok := w.session.Participant(cmd.ActorID)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a member", errors.ErrEditNotAllowed, cmd.ActorID)
	}
	if !policy.CanUserEdit(participant) {
		return nil, fmt.Errorf("%w: %s is inactive", errors.ErrEditNotAllowed, cmd.ActorID)
	}

	document := w.document.UpdateContent(cmd.Content, cmd.ActorID)
	w.replaceDocument(document)

	return event.DocumentEdited{
		ID:        uuid.New(),
		Session:   cmd.Session,
		Document:  document.ID().String(),
		Actor:     cmd.ActorID.String(),
		Content:   document.Content().String(),
		Version:   document.Version(),
		CreatedAt: document.CreatedAt(),
		At:        document.UpdatedAt(),
	}, nil
}

// appendDocument lands a system-produced block (an agent answer) at the
// end of the current content. No membership check: the actor is not a
// participant and the capacity rules do not apply to it.
func (w *SessionWorker) appendDocument(cmd domain.AppendDocumentCommand) (event.DomainEvent, error) {
	content := cmd.Text
	if !w.document.IsEmpty() {
		content = w.document.Content().String() + "\n\n" + cmd.Text
	}

	document := w.document.UpdateContent(domain.NewDocumentContent(content), cmd.ActorID)
	w.replaceDocument(document)

	return event.DocumentEdited{
		ID:        uuid.New(),
		Session:   cmd.Session,
		Document:  document.ID().String(),
		Actor:     cmd.ActorID.String(),
		Content:   document.Content().String(),
		Version:   document.Version(),
		CreatedAt: document.CreatedAt(),
		At:        document.UpdatedAt(),
	}, nil
}

func (w *SessionWorker) replaceSession(session domain.CollaborationSession) {
	w.mu.Lock()
	w.session = session
	w.mu.Unlock()
}

func (w *SessionWorker) replaceDocument(document domain.Document) {
	w.mu.Lock()
	w.document = document
	w.mu.Unlock()
}

func reply(env Envelope, err error) {
	if env.Reply == nil {
		return
	}
	select {
	case env.Reply <- err:
	default:
	}
}
