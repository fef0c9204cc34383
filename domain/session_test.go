package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"codraft/errors"
)

func mustParticipant(t *testing.T, id, name, color string) Participant {
	t.Helper()
	userID, err := NewUserID(id)
	require.NoError(t, err)
	userName, err := NewUserName(name)
	require.NoError(t, err)
	userColor, err := NewUserColor(color)
	require.NoError(t, err)
	return Join(userID, userName, userColor)
}

func newTestSession(t *testing.T) CollaborationSession {
	t.Helper()
	docID, err := NewDocumentID("d1")
	require.NoError(t, err)
	session, err := NewCollaborationSession("s1", docID)
	require.NoError(t, err)
	return session
}

func TestNewCollaborationSession_Validation(t *testing.T) {
	req := require.New(t)

	docID, err := NewDocumentID("d1")
	req.NoError(err)

	_, err = NewCollaborationSession("", docID)
	req.ErrorIs(err, errors.ErrInvalidSession)

	_, err = NewCollaborationSession("s1", DocumentID{})
	req.ErrorIs(err, errors.ErrInvalidDocument)

	session, err := NewCollaborationSession("s1", docID)
	req.NoError(err)
	req.Equal("s1", session.SessionID())
	req.Equal("d1", session.DocumentID().String())
	req.Zero(session.ParticipantCount())
}

func TestCollaborationSession_AddParticipant_IsCopyOnWrite(t *testing.T) {
	req := require.New(t)

	session := newTestSession(t)
	alice := mustParticipant(t, "u1", "Alice", "#ff0000")

	withAlice := session.AddParticipant(alice)

	req.Zero(session.ParticipantCount())
	req.Equal(1, withAlice.ParticipantCount())
	req.True(withAlice.HasParticipant(alice.UserID()))
}

func TestCollaborationSession_RejoinReplacesEntry(t *testing.T) {
	req := require.New(t)

	session := newTestSession(t).
		AddParticipant(mustParticipant(t, "u1", "Alice", "#ff0000")).
		AddParticipant(mustParticipant(t, "u1", "Alicia", "#00ff00"))

	req.Equal(1, session.ParticipantCount())

	userID, err := NewUserID("u1")
	req.NoError(err)
	p, ok := session.Participant(userID)
	req.True(ok)
	req.Equal("Alicia", p.UserName().String())
	req.Equal("#00ff00", p.UserColor().String())
	req.True(p.Active())
}

func TestCollaborationSession_RemoveParticipant(t *testing.T) {
	req := require.New(t)

	alice := mustParticipant(t, "u1", "Alice", "#ff0000")
	session := newTestSession(t).AddParticipant(alice)

	removed := session.RemoveParticipant(alice.UserID())
	req.Zero(removed.ParticipantCount())
	req.Equal(1, session.ParticipantCount())

	// Absent member is a no-op
	ghost, err := NewUserID("nobody")
	req.NoError(err)
	req.Equal(1, session.RemoveParticipant(ghost).ParticipantCount())
}

func TestCollaborationSession_DeactivateKeepsMembership(t *testing.T) {
	req := require.New(t)

	alice := mustParticipant(t, "u1", "Alice", "#ff0000")
	bob := mustParticipant(t, "u2", "Bob", "#0000ff")
	session := newTestSession(t).AddParticipant(alice).AddParticipant(bob)

	deactivated := session.DeactivateParticipant(alice.UserID())

	req.Equal(2, deactivated.ParticipantCount())
	req.True(deactivated.HasParticipant(alice.UserID()))
	req.Len(deactivated.ActiveParticipants(), 1)

	p, ok := deactivated.Participant(alice.UserID())
	req.True(ok)
	req.False(p.Active())

	// Receiver untouched, entry in the original still active
	original, ok := session.Participant(alice.UserID())
	req.True(ok)
	req.True(original.Active())

	// Deactivating a non-member is a no-op
	ghost, err := NewUserID("nobody")
	req.NoError(err)
	req.Equal(2, deactivated.DeactivateParticipant(ghost).ParticipantCount())
}

func TestParticipant_DeactivateIsIdempotent(t *testing.T) {
	req := require.New(t)

	alice := mustParticipant(t, "u1", "Alice", "#ff0000")
	once := alice.Deactivate()
	twice := once.Deactivate()

	req.True(alice.Active())
	req.False(once.Active())
	req.Equal(once, twice)
}

func TestValueObjects_RejectEmptyInput(t *testing.T) {
	tests := []struct {
		description string
		build       func() error
		sentinel    error
	}{
		{"Empty user id", func() error { _, err := NewUserID(""); return err }, errors.ErrInvalidValue},
		{"Empty user name", func() error { _, err := NewUserName(""); return err }, errors.ErrInvalidValue},
		{"Empty user color", func() error { _, err := NewUserColor(""); return err }, errors.ErrInvalidValue},
		{"Empty document id", func() error { _, err := NewDocumentID(""); return err }, errors.ErrInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require.ErrorIs(t, tt.build(), tt.sentinel)
		})
	}
}

func TestValueObjects_ValueEquality(t *testing.T) {
	req := require.New(t)

	a, err := NewUserID("u1")
	req.NoError(err)
	b, err := NewUserID("u1")
	req.NoError(err)
	c, err := NewUserID("u2")
	req.NoError(err)

	req.Equal(a, b)
	req.NotEqual(a, c)

	// Empty content is a valid document content value
	req.True(NewDocumentContent("").IsEmpty())
}
