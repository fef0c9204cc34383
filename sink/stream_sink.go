package sink

import (
	"context"

	"codraft/domain/event"
)

// StreamSink buffers events for one live connection. The fanout pushes
// into the channel, the transport handler drains it. A full buffer drops
// the event rather than stalling the pipeline: a client that cannot keep
// up only loses its own updates.
type StreamSink struct {
	Events chan event.DomainEvent
}

func NewStreamSink(bufferSize int) *StreamSink {
	return &StreamSink{Events: make(chan event.DomainEvent, bufferSize)}
}

func (s *StreamSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
