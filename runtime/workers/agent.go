package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"

	"codraft/contract"
	"codraft/domain"
	"codraft/domain/event"
	"codraft/observability"
)

// AgentWorker drives the agent-invocation collaborator. A confirmed
// mention arrives as an AskAgentCommand; the worker calls the invoker
// under a deadline and lands the answer as an Update change through the
// dispatcher. Dispatching by session id means a torn-down session simply
// rejects the landing: no answer is ever appended to a dead document.
type AgentWorker struct {
	invoker    contract.Invoker
	dispatcher contract.IDispatcher
	asks       chan domain.AskAgentCommand
	events     chan event.DomainEvent
	agentID    domain.UserID
	timeout    time.Duration
	log        *slog.Logger
	monitor    *observability.MonitoringManager
}

func NewAgentWorker(invoker contract.Invoker, dispatcher contract.IDispatcher,
	asks chan domain.AskAgentCommand, events chan event.DomainEvent,
	agentID domain.UserID, timeout time.Duration, log *slog.Logger) *AgentWorker {
	return &AgentWorker{
		invoker:    invoker,
		dispatcher: dispatcher,
		asks:       asks,
		events:     events,
		agentID:    agentID,
		timeout:    timeout,
		log:        log,
	}
}

// SetMonitor attaches the failure counter. Optional.
func (w *AgentWorker) SetMonitor(monitor *observability.MonitoringManager) {
	w.monitor = monitor
}

func (w *AgentWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case ask, ok := <-w.asks:
			if !ok {
				return nil
			}
			w.handle(ctx, ask)
		}
	}
}

func (w *AgentWorker) handle(ctx context.Context, ask domain.AskAgentCommand) {
	invokeCtx, cancel := context.WithTimeout(ctx, w.timeout)
	answer, err := w.invoker.Invoke(invokeCtx, ask.Question)
	cancel()
	if err != nil {
		if w.monitor != nil {
			w.monitor.IncrAgentFailures()
		}
		w.log.Error("Agent invocation failed",
			"session_id", ask.Session,
			"user_id", ask.UserID.String(),
			"error", err)
		return
	}

	landing := domain.AppendDocumentCommand{
		Session:   ask.Session,
		ActorID:   w.agentID,
		Text:      answer,
		CreatedAt: time.Now().UTC(),
	}
	if err := w.dispatcher.DispatchSync(ctx, landing); err != nil {
		w.log.Warn("Agent answer dropped, session gone",
			"session_id", ask.Session,
			"error", err)
		return
	}

	info := whatlanggo.Detect(answer)
	evt := event.AgentResponded{
		Session:  ask.Session,
		UserID:   ask.UserID.String(),
		Question: ask.Question,
		Answer:   answer,
		Lang:     info.Lang.Iso6391(),
		At:       time.Now().UTC(),
	}
	select {
	case <-ctx.Done():
	case w.events <- evt:
	}
}
