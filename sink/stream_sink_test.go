package sink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codraft/domain/event"
)

func TestStreamSink_BuffersUntilFull(t *testing.T) {
	req := require.New(t)
	stream := NewStreamSink(2)
	ctx := context.Background()

	first := event.ParticipantLeft{Session: "session-1", UserID: "alice", At: time.Now().UTC()}
	second := event.ParticipantLeft{Session: "session-1", UserID: "bob", At: time.Now().UTC()}
	overflow := event.ParticipantLeft{Session: "session-1", UserID: "carol", At: time.Now().UTC()}

	req.NoError(stream.Consume(ctx, first))
	req.NoError(stream.Consume(ctx, second))
	// Full buffer: the event is dropped, the pipeline is never stalled.
	req.NoError(stream.Consume(ctx, overflow))

	req.Equal(first, <-stream.Events)
	req.Equal(second, <-stream.Events)
	req.Empty(stream.Events)
}

func TestStreamSink_CanceledContext(t *testing.T) {
	req := require.New(t)
	stream := NewStreamSink(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := stream.Consume(ctx, event.ParticipantLeft{Session: "session-1", UserID: "alice"})
	req.ErrorIs(err, context.Canceled)
}
