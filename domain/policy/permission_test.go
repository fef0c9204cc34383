package policy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"codraft/domain"
)

func participant(t *testing.T, id string) domain.Participant {
	t.Helper()
	userID, err := domain.NewUserID(id)
	require.NoError(t, err)
	userName, err := domain.NewUserName("user-" + id)
	require.NoError(t, err)
	userColor, err := domain.NewUserColor("#336699")
	require.NoError(t, err)
	return domain.Join(userID, userName, userColor)
}

func registryOf(ps ...domain.Participant) map[domain.UserID]domain.Participant {
	registry := make(map[domain.UserID]domain.Participant, len(ps))
	for _, p := range ps {
		registry[p.UserID()] = p
	}
	return registry
}

func TestCanUserEdit(t *testing.T) {
	req := require.New(t)

	alice := participant(t, "u1")
	req.True(CanUserEdit(alice))
	req.False(CanUserEdit(alice.Deactivate()))
}

func TestIsSessionFull_InactiveMembersOccupySlots(t *testing.T) {
	req := require.New(t)

	registry := registryOf(
		participant(t, "u1").Deactivate(),
		participant(t, "u2"),
	)

	req.False(IsSessionFull(registry, 3))
	req.True(IsSessionFull(registry, 2))
	req.True(IsSessionFull(registry, 1))
}

func TestCanParticipantJoin(t *testing.T) {
	member := participant(t, "u1")
	full := registryOf(member, participant(t, "u2"), participant(t, "u3"))

	tests := []struct {
		description string
		registry    map[domain.UserID]domain.Participant
		candidate   domain.Participant
		maxCapacity int
		expected    bool
	}{
		{"New joiner with free slot", registryOf(member), participant(t, "u9"), 3, true},
		{"New joiner at capacity", full, participant(t, "u9"), 3, false},
		{"Rejoin at capacity always succeeds", full, participant(t, "u1"), 3, true},
		{"Rejoin over capacity still succeeds", full, member, 2, true},
		{"Empty registry", registryOf(), participant(t, "u9"), 1, true},
		{"Zero capacity blocks new joiners", registryOf(), participant(t, "u9"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require.Equal(t, tt.expected, CanParticipantJoin(tt.registry, tt.candidate, tt.maxCapacity))
		})
	}
}

// Rejoin must beat capacity for every registry exactly at capacity, and a
// stranger must always be refused at that point.
func TestCapacityRejoinInvariant(t *testing.T) {
	req := require.New(t)

	for size := 1; size <= 8; size++ {
		members := make([]domain.Participant, 0, size)
		for i := 0; i < size; i++ {
			members = append(members, participant(t, fmt.Sprintf("u%d", i)))
		}
		registry := registryOf(members...)

		for _, m := range members {
			req.True(CanParticipantJoin(registry, m, size))
		}
		req.False(CanParticipantJoin(registry, participant(t, "stranger"), size))
	}
}

// Scenario from the capacity rules: a capacity-3 session with three
// members refuses a fourth, and deactivation frees no slot.
func TestCapacityScenario(t *testing.T) {
	req := require.New(t)

	docID, err := domain.NewDocumentID("d1")
	req.NoError(err)
	session, err := domain.NewCollaborationSession("s1", docID)
	req.NoError(err)

	alice := participant(t, "u1")
	session = session.
		AddParticipant(alice).
		AddParticipant(participant(t, "u2")).
		AddParticipant(participant(t, "u3"))

	req.False(CanParticipantJoin(session.Participants(), participant(t, "u4"), 3))

	session = session.DeactivateParticipant(alice.UserID())
	req.Equal(3, session.ParticipantCount())
	req.Len(session.ActiveParticipants(), 2)
	req.True(session.HasParticipant(alice.UserID()))
	req.False(CanParticipantJoin(session.Participants(), participant(t, "u4"), 3))
}
