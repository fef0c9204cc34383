package projection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codraft/domain/event"
)

func TestTimeline_Consume_OrderedEntries(t *testing.T) {
	timeline := NewTimeline(10)
	ctx := context.Background()

	evt1 := event.ParticipantJoined{
		Session:  "design-review",
		UserID:   "alice",
		UserName: "Alice",
		At:       time.Now(),
	}
	evt2 := event.DocumentUpdated{
		Session:  "design-review",
		Document: "notes",
		Actor:    "alice",
		At:       time.Now().Add(time.Second),
	}

	require.NoError(t, timeline.Consume(ctx, evt1))
	require.NoError(t, timeline.Consume(ctx, evt2))

	entries := timeline.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, EntryJoined, entries[0].Kind)
	require.Equal(t, "alice", entries[0].Actor)
	require.Equal(t, EntryEdited, entries[1].Kind)
	require.Equal(t, "notes", entries[1].Detail)
}

func TestTimeline_Consume_EvictsOldest(t *testing.T) {
	timeline := NewTimeline(2)
	ctx := context.Background()

	for _, user := range []string{"alice", "bob", "clara"} {
		err := timeline.Consume(ctx, event.ParticipantJoined{
			Session: "standup",
			UserID:  user,
			At:      time.Now(),
		})
		require.NoError(t, err)
	}

	entries := timeline.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "bob", entries[0].Actor)
	require.Equal(t, "clara", entries[1].Actor)
}

func TestTimeline_EntriesForSession(t *testing.T) {
	timeline := NewTimeline(10)
	ctx := context.Background()

	require.NoError(t, timeline.Consume(ctx, event.ParticipantJoined{Session: "a", UserID: "alice", At: time.Now()}))
	require.NoError(t, timeline.Consume(ctx, event.ParticipantJoined{Session: "b", UserID: "bob", At: time.Now()}))

	entries := timeline.EntriesForSession("b")
	require.Len(t, entries, 1)
	require.Equal(t, "bob", entries[0].Actor)
}
