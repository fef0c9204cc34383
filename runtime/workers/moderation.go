package workers

import (
	"context"
	"log/slog"

	"github.com/abadojack/whatlanggo"

	"codraft/domain/event"
	"codraft/moderation"
)

// ModerationWorker sits between the session workers and the fanout. Raw
// document edits are censored and tagged with a detected language before
// anything reaches persistence or connected clients; every other event
// passes through untouched.
type ModerationWorker struct {
	moderator moderation.Moderator
	rawEvents chan event.DomainEvent
	events    chan event.DomainEvent
	log       *slog.Logger
}

func NewModerationWorker(moderator moderation.Moderator,
	rawEvents, events chan event.DomainEvent, log *slog.Logger) *ModerationWorker {
	return &ModerationWorker{
		moderator: moderator,
		rawEvents: rawEvents,
		events:    events,
		log:       log,
	}
}

func (w ModerationWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case e, ok := <-w.rawEvents:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			out := e
			if edited, isEdit := e.(event.DocumentEdited); isEdit {
				out = w.toSanitizedEvent(edited)
			}
			select {
			case <-ctx.Done():
				w.log.Debug("Stopping worker")
				return ctx.Err()
			case w.events <- out:
			}
		}
	}
}

func (w ModerationWorker) toSanitizedEvent(evt event.DocumentEdited) event.DomainEvent {
	info := whatlanggo.Detect(evt.Content)
	langCode := info.Lang.Iso6391()

	sanitized, foundWords := w.moderator.Censor(evt.Content)
	if len(foundWords) > 0 {
		w.log.Warn("Censored document update",
			"document_id", evt.Document,
			"actor", evt.Actor,
			"words", len(foundWords))
	}

	return event.DocumentUpdated{
		ID:            evt.ID,
		Session:       evt.Session,
		Document:      evt.Document,
		Actor:         evt.Actor,
		Content:       sanitized,
		Version:       evt.Version,
		Lang:          langCode,
		CensoredWords: foundWords,
		CreatedAt:     evt.CreatedAt,
		At:            evt.At,
	}
}
