package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"codraft/contract"
	"codraft/domain/event"
)

var _ contract.IRegistry = (*Registry)(nil)

type nopSink struct{}

func (nopSink) Consume(_ context.Context, _ event.DomainEvent) error { return nil }

func TestRegistry_SubscribeAndResolve(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	first := nopSink{}
	second := nopSink{}
	registry.Subscribe("conn-1", "session-1", first)
	registry.Subscribe("conn-2", "session-1", second)
	registry.Subscribe("conn-3", "session-2", nopSink{})

	req.Len(registry.GetSinksForSession("session-1"), 2)
	req.Len(registry.GetSinksForSession("session-2"), 1)
	req.Nil(registry.GetSinksForSession("session-3"))
}

func TestRegistry_UnsubscribeDropsConnection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Subscribe("conn-1", "session-1", nopSink{})
	registry.Subscribe("conn-2", "session-1", nopSink{})

	registry.Unsubscribe("conn-1", "session-1")
	req.Len(registry.GetSinksForSession("session-1"), 1)

	// Last one out removes the session entry entirely.
	registry.Unsubscribe("conn-2", "session-1")
	req.Nil(registry.GetSinksForSession("session-1"))
}

func TestRegistry_MultipleSessionsIndependent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Subscribe("conn-1", "session-1", nopSink{})
	registry.Subscribe("conn-2", "session-2", nopSink{})

	registry.Unsubscribe("conn-1", "session-1")
	req.Nil(registry.GetSinksForSession("session-1"))
	req.Len(registry.GetSinksForSession("session-2"), 1)
}
