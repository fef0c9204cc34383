package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Every event the pipeline produces must resolve to its session so the
// fanout can route it to the right connections.
func TestDomainEvents_ResolveSessionID(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()

	events := []DomainEvent{
		ParticipantJoined{Session: "session-1", UserID: "alice", UserName: "Alice", UserColor: "#ff0000", At: at},
		ParticipantLeft{Session: "session-1", UserID: "alice", At: at},
		ParticipantDeactivated{Session: "session-1", UserID: "alice", At: at},
		DocumentEdited{ID: uuid.New(), Session: "session-1", Document: "doc-1", Actor: "alice", Version: 2, At: at},
		DocumentUpdated{ID: uuid.New(), Session: "session-1", Document: "doc-1", Actor: "alice", Version: 2, Lang: "en", At: at},
		MentionDetected{Session: "session-1", UserID: "alice", Question: "what is Go?", At: at},
		AgentResponded{Session: "session-1", UserID: "alice", Question: "what is Go?", Answer: "a language", At: at},
	}
	for _, e := range events {
		req.Equal("session-1", e.SessionID())
	}
}

func TestDocumentUpdated_KeepsEditIdentity(t *testing.T) {
	req := require.New(t)
	id := uuid.New()

	edited := DocumentEdited{ID: id, Session: "session-1", Document: "doc-1", Actor: "alice", Content: "raw", Version: 2}
	updated := DocumentUpdated{ID: edited.ID, Session: edited.Session, Document: edited.Document,
		Actor: edited.Actor, Content: "sanitized", Version: edited.Version}

	req.Equal(id, updated.ID)
	req.Equal(edited.Version, updated.Version)
}
