package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codraft/domain"
	"codraft/domain/event"
	"codraft/domain/policy"
)

// MentionWorker runs the mention-detection policy off the hot edit path.
// Cursor activity is debounced per participant: only the latest batch per
// (session, user) pair is inspected when the quiet period elapses, so fast
// typing never floods the detector.
type MentionWorker struct {
	pattern  policy.MentionPattern
	activity chan domain.CursorActivityCommand
	events   chan event.DomainEvent
	debounce time.Duration
	log      *slog.Logger
}

func NewMentionWorker(pattern policy.MentionPattern,
	activity chan domain.CursorActivityCommand,
	events chan event.DomainEvent,
	debounce time.Duration, log *slog.Logger) *MentionWorker {
	return &MentionWorker{
		pattern:  pattern,
		activity: activity,
		events:   events,
		debounce: debounce,
		log:      log,
	}
}

func (w *MentionWorker) Run(ctx context.Context) error {
	pending := make(map[string]domain.CursorActivityCommand)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.activity:
			if !ok {
				return nil
			}
			if len(pending) == 0 {
				timer.Reset(w.debounce)
			}
			pending[activityKey(cmd)] = cmd
		case <-timer.C:
			for _, cmd := range pending {
				evt := w.detect(cmd)
				if evt == nil {
					continue
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case w.events <- evt:
				}
			}
			pending = make(map[string]domain.CursorActivityCommand)
		}
	}
}

// detect surfaces the agent-invocation affordance only when the span under
// the cursor carries a non-empty question.
func (w *MentionWorker) detect(cmd domain.CursorActivityCommand) event.DomainEvent {
	detection := w.pattern.DetectAtCursor(cmd.Text, cmd.Cursor)
	question, ok := w.pattern.ExtractQuestion(detection)
	if !ok {
		return nil
	}

	return event.MentionDetected{
		Session:  cmd.Session,
		UserID:   cmd.UserID.String(),
		From:     detection.From,
		To:       detection.To,
		Span:     detection.Text,
		Question: question,
		At:       time.Now().UTC(),
	}
}

func activityKey(cmd domain.CursorActivityCommand) string {
	return fmt.Sprintf("%s/%s", cmd.Session, cmd.UserID)
}
