package http

import (
	"codraft/domain/event"
)

// wireEvent is the envelope streamed to connected clients. Payload shapes
// mirror the domain events minus internal bookkeeping.
type wireEvent struct {
	Type    string `json:"type"`
	Session string `json:"session_id"`
	Payload any    `json:"payload"`
}

func toWireEvent(e event.DomainEvent) (wireEvent, bool) {
	switch evt := e.(type) {
	case event.ParticipantJoined:
		return wireEvent{Type: "participant_joined", Session: evt.Session, Payload: evt}, true
	case event.ParticipantLeft:
		return wireEvent{Type: "participant_left", Session: evt.Session, Payload: evt}, true
	case event.ParticipantDeactivated:
		return wireEvent{Type: "participant_deactivated", Session: evt.Session, Payload: evt}, true
	case event.DocumentUpdated:
		return wireEvent{Type: "document_updated", Session: evt.Session, Payload: evt}, true
	case event.MentionDetected:
		return wireEvent{Type: "mention_detected", Session: evt.Session, Payload: evt}, true
	case event.AgentResponded:
		return wireEvent{Type: "agent_responded", Session: evt.Session, Payload: evt}, true
	default:
		// Raw edits and anything unknown stay inside the pipeline.
		return wireEvent{}, false
	}
}
