package sink

import (
	"context"

	"codraft/domain/event"
	"codraft/observability"
)

// MetricsSink folds pipeline events into the monitoring counters.
type MetricsSink struct {
	monitor *observability.MonitoringManager
}

func NewMetricsSink(monitor *observability.MonitoringManager) MetricsSink {
	return MetricsSink{monitor: monitor}
}

func (s MetricsSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.DocumentUpdated:
		s.monitor.IncrEditsApplied()
		if len(evt.CensoredWords) > 0 {
			s.monitor.IncrCensoredEdits()
		}
	case event.MentionDetected:
		s.monitor.IncrMentionsFired()
	case event.AgentResponded:
		s.monitor.IncrAgentCalls()
	}
	return nil
}
