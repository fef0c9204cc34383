package domain

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"codraft/errors"
)

// CollaborationSession binds a set of participants to one document. The
// participant registry is keyed strictly by UserID, so two concurrent join
// events for the same user always collapse to one logical member. Every
// operation is copy-on-write: the receiver is never mutated.
type CollaborationSession struct {
	sessionID    string
	documentID   DocumentID
	createdAt    time.Time
	participants map[UserID]Participant
}

func NewCollaborationSession(sessionID string, documentID DocumentID) (CollaborationSession, error) {
	if sessionID == "" {
		return CollaborationSession{}, fmt.Errorf("%w: session id must not be empty", errors.ErrInvalidSession)
	}
	if documentID.IsZero() {
		return CollaborationSession{}, fmt.Errorf("%w: document id must not be empty", errors.ErrInvalidDocument)
	}
	return CollaborationSession{
		sessionID:    sessionID,
		documentID:   documentID,
		createdAt:    time.Now().UTC(),
		participants: map[UserID]Participant{},
	}, nil
}

// RestoreCollaborationSession rebuilds a session from a persisted
// snapshot. Participants are re-keyed by their own UserID, so no key/value
// mismatch can survive a restart either.
func RestoreCollaborationSession(sessionID string, documentID DocumentID,
	createdAt time.Time, participants []Participant) (CollaborationSession, error) {
	session, err := NewCollaborationSession(sessionID, documentID)
	if err != nil {
		return CollaborationSession{}, err
	}
	session.createdAt = createdAt
	for _, p := range participants {
		session.participants[p.UserID()] = p
	}
	return session, nil
}

func (s CollaborationSession) SessionID() string { return s.sessionID }

func (s CollaborationSession) DocumentID() DocumentID { return s.documentID }

func (s CollaborationSession) CreatedAt() time.Time { return s.createdAt }

// AddParticipant inserts or replaces the entry keyed by the participant's
// own UserID. A rejoin with a new name or color fully supersedes the prior
// entry; there is no field-level merge.
func (s CollaborationSession) AddParticipant(p Participant) CollaborationSession {
	participants := s.cloneParticipants()
	participants[p.UserID()] = p
	s.participants = participants
	return s
}

// RemoveParticipant deletes the member if present, no-op otherwise.
// Removal is the only operation that frees a capacity slot.
func (s CollaborationSession) RemoveParticipant(userID UserID) CollaborationSession {
	if _, ok := s.participants[userID]; !ok {
		return s
	}
	participants := s.cloneParticipants()
	delete(participants, userID)
	s.participants = participants
	return s
}

// DeactivateParticipant marks the member inactive if present. The member
// stays registered: inactive is not the same as having left.
func (s CollaborationSession) DeactivateParticipant(userID UserID) CollaborationSession {
	p, ok := s.participants[userID]
	if !ok {
		return s
	}
	participants := s.cloneParticipants()
	participants[userID] = p.Deactivate()
	s.participants = participants
	return s
}

func (s CollaborationSession) Participant(userID UserID) (Participant, bool) {
	p, ok := s.participants[userID]
	return p, ok
}

// HasParticipant is true for both active and inactive members.
func (s CollaborationSession) HasParticipant(userID UserID) bool {
	_, ok := s.participants[userID]
	return ok
}

// ActiveParticipants returns the members still marked active, in no
// particular order.
func (s CollaborationSession) ActiveParticipants() []Participant {
	return lo.Filter(lo.Values(s.participants), func(p Participant, _ int) bool {
		return p.Active()
	})
}

// ParticipantCount counts every member, inactive ones included.
func (s CollaborationSession) ParticipantCount() int { return len(s.participants) }

// Participants returns a copy of the registry for policy evaluation.
func (s CollaborationSession) Participants() map[UserID]Participant {
	return s.cloneParticipants()
}

func (s CollaborationSession) cloneParticipants() map[UserID]Participant {
	participants := make(map[UserID]Participant, len(s.participants))
	for id, p := range s.participants {
		participants[id] = p
	}
	return participants
}
