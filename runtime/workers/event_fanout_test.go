package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codraft/contract"
	"codraft/domain/event"
)

type countingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
	err    error
}

func (s *countingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *countingSink) consumed() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent(nil), s.events...)
}

type stubRegistry struct {
	sinks map[string][]contract.EventSink
}

func (r stubRegistry) GetSinksForSession(sessionID string) []contract.EventSink {
	return r.sinks[sessionID]
}

func (r stubRegistry) Subscribe(_, _ string, _ contract.EventSink) {}
func (r stubRegistry) Unsubscribe(_, _ string)                     {}

func TestEventFanout_DeliversToPermanentAndSessionSinks(t *testing.T) {
	req := require.New(t)

	permanent := &countingSink{}
	connected := &countingSink{}
	other := &countingSink{}
	registry := stubRegistry{sinks: map[string][]contract.EventSink{
		"session-1": {connected},
		"session-2": {other},
	}}

	events := make(chan event.DomainEvent, 4)
	fanout := NewEventFanout(slog.Default(), events, registry).Add(permanent)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fanout.Run(ctx)

	evt := event.ParticipantLeft{Session: "session-1", UserID: "alice", At: time.Now().UTC()}
	events <- evt

	req.Eventually(func() bool {
		return len(permanent.consumed()) == 1 && len(connected.consumed()) == 1
	}, time.Second, 10*time.Millisecond)

	req.Equal(evt, permanent.consumed()[0])
	req.Equal(evt, connected.consumed()[0])
	// Connections subscribed to another session never see it.
	req.Empty(other.consumed())
}

func TestEventFanout_SinkFailureDoesNotStopDelivery(t *testing.T) {
	req := require.New(t)

	failing := &countingSink{err: fmt.Errorf("disk full")}
	healthy := &countingSink{}
	registry := stubRegistry{sinks: map[string][]contract.EventSink{}}

	events := make(chan event.DomainEvent, 4)
	fanout := NewEventFanout(slog.Default(), events, registry).Add(failing, healthy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fanout.Run(ctx)

	events <- event.ParticipantLeft{Session: "session-1", UserID: "alice", At: time.Now().UTC()}
	events <- event.ParticipantLeft{Session: "session-1", UserID: "bob", At: time.Now().UTC()}

	req.Eventually(func() bool {
		return len(healthy.consumed()) == 2
	}, time.Second, 10*time.Millisecond)
	req.Len(failing.consumed(), 2)
}
