// Package policy holds the pure business rules of the editing core. The
// functions here take domain values as plain arguments and perform no I/O,
// so they can be exercised without building a full session.
package policy

import (
	"codraft/domain"
)

// CanUserEdit allows edits from active members only. A deactivated
// participant keeps its seat but loses write access until it rejoins.
func CanUserEdit(p domain.Participant) bool {
	return p.Active()
}

// IsSessionFull reports whether the member registry has reached capacity.
// Inactive members count: a slot is occupied until explicitly removed.
func IsSessionFull(participants map[domain.UserID]domain.Participant, maxCapacity int) bool {
	return len(participants) >= maxCapacity
}

// CanParticipantJoin admits a candidate into the session. A rejoin always
// succeeds regardless of capacity, because the registry is keyed by user
// identity and the candidate already owns a slot; only brand-new joiners
// are refused once the session is full.
func CanParticipantJoin(participants map[domain.UserID]domain.Participant, candidate domain.Participant, maxCapacity int) bool {
	if _, ok := participants[candidate.UserID()]; ok {
		return true
	}
	return !IsSessionFull(participants, maxCapacity)
}
