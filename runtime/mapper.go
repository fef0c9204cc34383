package runtime

import (
	"github.com/google/uuid"
	"github.com/samber/lo"

	"codraft/domain"
	"codraft/repositories"
)

func newChangeID() uuid.UUID {
	return uuid.New()
}

func toDiskSession(session domain.CollaborationSession) repositories.DiskSession {
	return repositories.DiskSession{
		SessionID:  session.SessionID(),
		DocumentID: session.DocumentID().String(),
		CreatedAt:  session.CreatedAt(),
		Participants: lo.MapToSlice(session.Participants(),
			func(_ domain.UserID, p domain.Participant) repositories.DiskParticipant {
				return repositories.DiskParticipant{
					UserID:    p.UserID().String(),
					UserName:  p.UserName().String(),
					UserColor: p.UserColor().String(),
					Active:    p.Active(),
				}
			}),
	}
}

func fromDiskSession(disk repositories.DiskSession) (domain.CollaborationSession, error) {
	documentID, err := domain.NewDocumentID(disk.DocumentID)
	if err != nil {
		return domain.CollaborationSession{}, err
	}

	participants := make([]domain.Participant, 0, len(disk.Participants))
	for _, dp := range disk.Participants {
		p, err := fromDiskParticipant(dp)
		if err != nil {
			return domain.CollaborationSession{}, err
		}
		participants = append(participants, p)
	}

	return domain.RestoreCollaborationSession(disk.SessionID, documentID, disk.CreatedAt, participants)
}

func fromDiskParticipant(disk repositories.DiskParticipant) (domain.Participant, error) {
	userID, err := domain.NewUserID(disk.UserID)
	if err != nil {
		return domain.Participant{}, err
	}
	userName, err := domain.NewUserName(disk.UserName)
	if err != nil {
		return domain.Participant{}, err
	}
	userColor, err := domain.NewUserColor(disk.UserColor)
	if err != nil {
		return domain.Participant{}, err
	}

	p := domain.Join(userID, userName, userColor)
	if !disk.Active {
		p = p.Deactivate()
	}
	return p, nil
}

func toDiskDocument(document domain.Document) repositories.DiskDocument {
	return repositories.DiskDocument{
		ID:        document.ID().String(),
		Content:   document.Content().String(),
		Version:   document.Version(),
		CreatedAt: document.CreatedAt(),
		UpdatedAt: document.UpdatedAt(),
	}
}

func fromDiskDocument(disk repositories.DiskDocument, changes []repositories.DiskChange) (domain.Document, error) {
	documentID, err := domain.NewDocumentID(disk.ID)
	if err != nil {
		return domain.Document{}, err
	}

	history := make([]domain.DocumentChange, 0, len(changes))
	for _, dc := range changes {
		actor, err := domain.NewUserID(dc.Actor)
		if err != nil {
			return domain.Document{}, err
		}
		history = append(history, domain.DocumentChange{
			Kind:    domain.ChangeKind(dc.Kind),
			ActorID: actor,
			At:      dc.At,
		})
	}

	return domain.RestoreDocument(
		documentID,
		domain.NewDocumentContent(disk.Content),
		disk.CreatedAt,
		disk.UpdatedAt,
		disk.Version,
		history,
	), nil
}
