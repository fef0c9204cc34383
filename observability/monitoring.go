// Package observability aggregates runtime counters for the debug
// inspector and periodic stat logging.
package observability

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// MonitoringStats is the flattened snapshot served to the inspector.
type MonitoringStats struct {
	SessionsCreated uint64 `json:"sessions_created"`
	SessionsClosed  uint64 `json:"sessions_closed"`
	EditsApplied    uint64 `json:"edits_applied"`
	EditsRejected   uint64 `json:"edits_rejected"`
	MentionsFired   uint64 `json:"mentions_fired"`
	AgentCalls      uint64 `json:"agent_calls"`
	AgentFailures   uint64 `json:"agent_failures"`
	CensoredEdits   uint64 `json:"censored_edits"`

	AllocMemMb uint64 `json:"alloc_mem_mb"`
	NumGC      uint32 `json:"num_gc"`
	Goroutines int    `json:"goroutines"`
}

// MonitoringManager keeps lock-free counters and periodically folds them
// into a snapshot together with Go memory stats.
type MonitoringManager struct {
	log *slog.Logger
	mu  sync.RWMutex

	sessionsCreated uint64
	sessionsClosed  uint64
	editsApplied    uint64
	editsRejected   uint64
	mentionsFired   uint64
	agentCalls      uint64
	agentFailures   uint64
	censoredEdits   uint64

	latestStats MonitoringStats
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) IncrSessionsCreated() { atomic.AddUint64(&mm.sessionsCreated, 1) }
func (mm *MonitoringManager) IncrSessionsClosed()  { atomic.AddUint64(&mm.sessionsClosed, 1) }
func (mm *MonitoringManager) IncrEditsApplied()    { atomic.AddUint64(&mm.editsApplied, 1) }
func (mm *MonitoringManager) IncrEditsRejected()   { atomic.AddUint64(&mm.editsRejected, 1) }
func (mm *MonitoringManager) IncrMentionsFired()   { atomic.AddUint64(&mm.mentionsFired, 1) }
func (mm *MonitoringManager) IncrAgentCalls()      { atomic.AddUint64(&mm.agentCalls, 1) }
func (mm *MonitoringManager) IncrAgentFailures()   { atomic.AddUint64(&mm.agentFailures, 1) }
func (mm *MonitoringManager) IncrCensoredEdits()   { atomic.AddUint64(&mm.censoredEdits, 1) }

// Listen refreshes the snapshot on a fixed interval until the context is
// cancelled.
func (mm *MonitoringManager) Listen(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			mm.log.Info("Monitoring manager stopped")
			return
		case <-ticker.C:
			mm.updateStats()
		}
	}
}

func (mm *MonitoringManager) updateStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mm.mu.Lock()
	mm.latestStats = MonitoringStats{
		SessionsCreated: atomic.LoadUint64(&mm.sessionsCreated),
		SessionsClosed:  atomic.LoadUint64(&mm.sessionsClosed),
		EditsApplied:    atomic.LoadUint64(&mm.editsApplied),
		EditsRejected:   atomic.LoadUint64(&mm.editsRejected),
		MentionsFired:   atomic.LoadUint64(&mm.mentionsFired),
		AgentCalls:      atomic.LoadUint64(&mm.agentCalls),
		AgentFailures:   atomic.LoadUint64(&mm.agentFailures),
		CensoredEdits:   atomic.LoadUint64(&mm.censoredEdits),
		AllocMemMb:      m.Alloc / 1024 / 1024,
		NumGC:           m.NumGC,
		Goroutines:      runtime.NumGoroutine(),
	}
	mm.mu.Unlock()

	mm.log.Debug("Stats refreshed",
		"edits", mm.latestStats.EditsApplied,
		"mentions", mm.latestStats.MentionsFired,
		"agent_calls", mm.latestStats.AgentCalls,
		"mem_mb", mm.latestStats.AllocMemMb,
	)
}

func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latestStats
}

// AsMap adapts the latest snapshot to the debug inspector's stats shape.
func (mm *MonitoringManager) AsMap() map[string]any {
	stats := mm.GetLatest()
	return map[string]any{
		"sessions_created": stats.SessionsCreated,
		"sessions_closed":  stats.SessionsClosed,
		"edits_applied":    stats.EditsApplied,
		"edits_rejected":   stats.EditsRejected,
		"mentions_fired":   stats.MentionsFired,
		"agent_calls":      stats.AgentCalls,
		"agent_failures":   stats.AgentFailures,
		"censored_edits":   stats.CensoredEdits,
		"alloc_mem_mb":     stats.AllocMemMb,
		"num_gc":           stats.NumGC,
		"goroutines":       stats.Goroutines,
	}
}
