// Package runtime serializes session commands, propagates domain events,
// and supervises the background workers. It orchestrates the system
// without containing business logic or domain rules.
package runtime

import (
	"sync"

	"codraft/contract"
)

type Set map[string]struct{}

// Registry tracks live connections and their session membership. A
// connection id is transient; the stable user identity lives inside the
// session aggregate, never here.
type Registry struct {
	mu             sync.RWMutex
	connections    map[string]contract.EventSink // connection -> sink
	sessionMembers map[string]Set                // session -> connections
}

func NewRegistry() *Registry {
	return &Registry{
		connections:    make(map[string]contract.EventSink),
		sessionMembers: make(map[string]Set),
	}
}

// GetSinksForSession resolves every live connection attached to a session.
// Returns nil when the session has no connected members.
func (r *Registry) GetSinksForSession(sessionID string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.sessionMembers[sessionID]
	if !ok {
		return nil
	}
	var sinks []contract.EventSink
	for connectionID := range members {
		if sink, exists := r.connections[connectionID]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// Subscribe registers a connection's sink and attaches it to a session,
// initializing the membership set on the fly.
func (r *Registry) Subscribe(connectionID, sessionID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[connectionID] = sink

	if _, ok := r.sessionMembers[sessionID]; !ok {
		r.sessionMembers[sessionID] = make(Set)
	}
	r.sessionMembers[sessionID][connectionID] = struct{}{}
}

// Unsubscribe drops a connection and removes empty membership sets so the
// registry does not leak session entries over time.
func (r *Registry) Unsubscribe(connectionID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.connections, connectionID)

	if members, ok := r.sessionMembers[sessionID]; ok {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(r.sessionMembers, sessionID)
		}
	}
}
