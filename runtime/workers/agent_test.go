package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codraft/domain"
	"codraft/domain/event"
)

type fakeInvoker struct {
	answer string
	err    error
}

func (f fakeInvoker) Invoke(_ context.Context, _ string) (string, error) {
	return f.answer, f.err
}

type recordingDispatcher struct {
	mu       sync.Mutex
	commands []domain.Command
	err      error
}

func (d *recordingDispatcher) DispatchSync(_ context.Context, cmd domain.Command) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = append(d.commands, cmd)
	return d.err
}

func (d *recordingDispatcher) dispatched() []domain.Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Command(nil), d.commands...)
}

func newAgentWorker(t *testing.T, invoker fakeInvoker, dispatcher *recordingDispatcher) (chan domain.AskAgentCommand, chan event.DomainEvent) {
	t.Helper()
	agentID, err := domain.NewUserID("agent")
	require.NoError(t, err)

	asks := make(chan domain.AskAgentCommand, 4)
	events := make(chan event.DomainEvent, 4)
	worker := NewAgentWorker(invoker, dispatcher, asks, events, agentID, time.Second, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go worker.Run(ctx)
	return asks, events
}

func newAsk(session, user, question string) domain.AskAgentCommand {
	userID, _ := domain.NewUserID(user)
	return domain.AskAgentCommand{
		Session:   session,
		UserID:    userID,
		Question:  question,
		CreatedAt: time.Now().UTC(),
	}
}

func TestAgentWorker_LandsAnswerAndEmits(t *testing.T) {
	req := require.New(t)
	dispatcher := &recordingDispatcher{}
	asks, events := newAgentWorker(t, fakeInvoker{answer: "A closure captures its environment."}, dispatcher)

	asks <- newAsk("session-1", "alice", "what is a closure?")

	responded := nextEvent(t, events).(event.AgentResponded)
	req.Equal("session-1", responded.Session)
	req.Equal("alice", responded.UserID)
	req.Equal("what is a closure?", responded.Question)
	req.Equal("A closure captures its environment.", responded.Answer)

	commands := dispatcher.dispatched()
	req.Len(commands, 1)
	landing, ok := commands[0].(domain.AppendDocumentCommand)
	req.True(ok)
	req.Equal("session-1", landing.Session)
	req.Equal("agent", landing.ActorID.String())
	req.Equal("A closure captures its environment.", landing.Text)
}

func TestAgentWorker_InvocationFailureEmitsNothing(t *testing.T) {
	req := require.New(t)
	dispatcher := &recordingDispatcher{}
	asks, events := newAgentWorker(t, fakeInvoker{err: fmt.Errorf("model unavailable")}, dispatcher)

	asks <- newAsk("session-1", "alice", "anything")

	select {
	case evt := <-events:
		t.Fatalf("unexpected event after failed invocation: %v", evt)
	case <-time.After(200 * time.Millisecond):
	}
	req.Empty(dispatcher.dispatched())
}

func TestAgentWorker_GoneSessionDropsAnswer(t *testing.T) {
	dispatcher := &recordingDispatcher{err: fmt.Errorf("no worker for session")}
	asks, events := newAgentWorker(t, fakeInvoker{answer: "too late"}, dispatcher)

	asks <- newAsk("session-gone", "alice", "still there?")

	select {
	case evt := <-events:
		t.Fatalf("answer should not be announced for a dead session: %v", evt)
	case <-time.After(200 * time.Millisecond):
	}
}
