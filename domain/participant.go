package domain

// Participant is a session member: identity, display attributes, and an
// active flag. Participants are immutable values; deactivation produces a
// replacement, it never edits in place.
type Participant struct {
	userID    UserID
	userName  UserName
	userColor UserColor
	active    bool
}

// Join builds the participant value for a user entering a session.
func Join(userID UserID, userName UserName, userColor UserColor) Participant {
	return Participant{
		userID:    userID,
		userName:  userName,
		userColor: userColor,
		active:    true,
	}
}

// Deactivate returns a copy with the active flag cleared. Calling it on an
// already-inactive participant yields an equal value.
func (p Participant) Deactivate() Participant {
	p.active = false
	return p
}

func (p Participant) UserID() UserID { return p.userID }

func (p Participant) UserName() UserName { return p.userName }

func (p Participant) UserColor() UserColor { return p.userColor }

func (p Participant) Active() bool { return p.active }
