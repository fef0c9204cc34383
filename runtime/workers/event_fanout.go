package workers

import (
	"context"
	"log/slog"

	"codraft/contract"
	"codraft/domain/event"
)

// EventFanout broadcasts domain events to in-process consumers: the
// permanent sinks (persistence, search index, audit timeline) and the live
// connections registered for the event's session.
//
// Delivery is best effort with no ordering or retry guarantees across
// sinks; EventFanout is not a message broker. A slow connection only costs
// that connection its events.
type EventFanout struct {
	log            *slog.Logger
	events         chan event.DomainEvent
	registry       contract.IRegistry
	permanentSinks []contract.EventSink
}

func NewEventFanout(log *slog.Logger, events chan event.DomainEvent, registry contract.IRegistry) *EventFanout {
	return &EventFanout{log: log, events: events, registry: registry}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.permanentSinks = append(w.permanentSinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt := <-w.events:
			w.fanout(ctx, evt)
		}
	}
}

func (w *EventFanout) fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.permanentSinks {
		if err := sink.Consume(ctx, evt); err != nil {
			w.log.Error("Permanent sink failed", "error", err)
		}
	}
	for _, sink := range w.registry.GetSinksForSession(evt.SessionID()) {
		if err := sink.Consume(ctx, evt); err != nil {
			w.log.Debug("Connection sink dropped event", "error", err)
		}
	}
}
