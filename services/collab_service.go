package services

import (
	"context"
	"time"

	"github.com/samber/lo"

	"codraft/contract"
	"codraft/domain"
	"codraft/repositories"
	"codraft/runtime"
)

type ICollabService interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (SessionView, error)
	Join(ctx context.Context, sessionID, userID, userName, userColor string) (SessionView, error)
	Leave(ctx context.Context, sessionID, userID string) error
	Deactivate(ctx context.Context, sessionID, userID string) error
	Edit(ctx context.Context, sessionID, userID, content string) error
	CursorActivity(sessionID, userID, text string, cursor int)
	AskAgent(sessionID, userID, question string)
	Session(sessionID string) (SessionView, error)
	Document(documentID string) (DocumentView, error)
	History(documentID string) ([]ChangeView, error)
	Search(ctx context.Context, query, documentID string, limit int) ([]repositories.SearchHit, uint64, error)
	Subscribe(connectionID, sessionID string, sink contract.EventSink)
	Unsubscribe(connectionID, sessionID string)
}

type CreateSessionRequest struct {
	SessionID      string
	DocumentID     string
	InitialContent string
	UserID         string
}

type SessionView struct {
	SessionID    string            `json:"session_id"`
	DocumentID   string            `json:"document_id"`
	CreatedAt    time.Time         `json:"created_at"`
	Participants []ParticipantView `json:"participants"`
}

type ParticipantView struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserColor string `json:"user_color"`
	Active    bool   `json:"active"`
}

type DocumentView struct {
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	Version    int       `json:"version"`
	WordCount  int       `json:"word_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ChangeView struct {
	Kind  string    `json:"kind"`
	Actor string    `json:"actor"`
	At    time.Time `json:"at"`
}

// CollabService is the transport-facing facade: it turns raw strings into
// domain values, routes commands through the orchestrator, and flattens
// aggregates into serializable views.
type CollabService struct {
	orchestrator       *runtime.Orchestrator
	documentRepository repositories.IDocumentRepository
	searchRepository   repositories.ISearchRepository
}

func NewCollabService(o *runtime.Orchestrator,
	documentRepository repositories.IDocumentRepository,
	searchRepository repositories.ISearchRepository) *CollabService {
	return &CollabService{
		orchestrator:       o,
		documentRepository: documentRepository,
		searchRepository:   searchRepository,
	}
}

func (s *CollabService) CreateSession(ctx context.Context, req CreateSessionRequest) (SessionView, error) {
	actorID, err := domain.NewUserID(req.UserID)
	if err != nil {
		return SessionView{}, err
	}
	session, err := s.orchestrator.CreateSession(req.SessionID, req.DocumentID, req.InitialContent, actorID)
	if err != nil {
		return SessionView{}, err
	}
	return toSessionView(session), nil
}

func (s *CollabService) Join(ctx context.Context, sessionID, userID, userName, userColor string) (SessionView, error) {
	participant, err := newParticipant(userID, userName, userColor)
	if err != nil {
		return SessionView{}, err
	}
	if err := s.orchestrator.JoinSession(ctx, sessionID, participant); err != nil {
		return SessionView{}, err
	}
	return s.Session(sessionID)
}

func (s *CollabService) Leave(ctx context.Context, sessionID, userID string) error {
	id, err := domain.NewUserID(userID)
	if err != nil {
		return err
	}
	return s.orchestrator.LeaveSession(ctx, sessionID, id)
}

func (s *CollabService) Deactivate(ctx context.Context, sessionID, userID string) error {
	id, err := domain.NewUserID(userID)
	if err != nil {
		return err
	}
	return s.orchestrator.DeactivateParticipant(ctx, sessionID, id)
}

func (s *CollabService) Edit(ctx context.Context, sessionID, userID, content string) error {
	id, err := domain.NewUserID(userID)
	if err != nil {
		return err
	}
	return s.orchestrator.DispatchSync(ctx, domain.UpdateDocumentCommand{
		Session:   sessionID,
		ActorID:   id,
		Content:   domain.NewDocumentContent(content),
		CreatedAt: time.Now().UTC(),
	})
}

func (s *CollabService) CursorActivity(sessionID, userID, text string, cursor int) {
	id, err := domain.NewUserID(userID)
	if err != nil {
		return
	}
	s.orchestrator.Dispatch(domain.CursorActivityCommand{
		Session:   sessionID,
		UserID:    id,
		Text:      text,
		Cursor:    cursor,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *CollabService) AskAgent(sessionID, userID, question string) {
	id, err := domain.NewUserID(userID)
	if err != nil {
		return
	}
	s.orchestrator.Dispatch(domain.AskAgentCommand{
		Session:   sessionID,
		UserID:    id,
		Question:  question,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *CollabService) Session(sessionID string) (SessionView, error) {
	session, _, err := s.orchestrator.Snapshot(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return toSessionView(session), nil
}

func (s *CollabService) Document(documentID string) (DocumentView, error) {
	// Reads go through live state when a session holds the document, so a
	// view is never staler than the last persisted revision.
	disk, err := s.documentRepository.GetSnapshot(documentID)
	if err != nil {
		return DocumentView{}, err
	}
	content := domain.NewDocumentContent(disk.Content)
	return DocumentView{
		DocumentID: disk.ID,
		Content:    disk.Content,
		Version:    disk.Version,
		WordCount:  content.WordCount(),
		CreatedAt:  disk.CreatedAt,
		UpdatedAt:  disk.UpdatedAt,
	}, nil
}

func (s *CollabService) History(documentID string) ([]ChangeView, error) {
	if _, err := s.documentRepository.GetSnapshot(documentID); err != nil {
		return nil, err
	}
	changes, err := s.documentRepository.GetChanges(documentID)
	if err != nil {
		return nil, err
	}
	return lo.Map(changes, func(c repositories.DiskChange, _ int) ChangeView {
		return ChangeView{Kind: c.Kind, Actor: c.Actor, At: c.At}
	}), nil
}

func (s *CollabService) Search(ctx context.Context, query, documentID string, limit int) ([]repositories.SearchHit, uint64, error) {
	if err := s.searchRepository.Flush(); err != nil {
		return nil, 0, err
	}
	return s.searchRepository.Search(ctx, query, documentID, limit)
}

func (s *CollabService) Subscribe(connectionID, sessionID string, sink contract.EventSink) {
	s.orchestrator.RegisterConnection(connectionID, sessionID, sink)
}

func (s *CollabService) Unsubscribe(connectionID, sessionID string) {
	s.orchestrator.UnregisterConnection(connectionID, sessionID)
}

func newParticipant(userID, userName, userColor string) (domain.Participant, error) {
	id, err := domain.NewUserID(userID)
	if err != nil {
		return domain.Participant{}, err
	}
	name, err := domain.NewUserName(userName)
	if err != nil {
		return domain.Participant{}, err
	}
	color, err := domain.NewUserColor(userColor)
	if err != nil {
		return domain.Participant{}, err
	}
	return domain.Join(id, name, color), nil
}

func toSessionView(session domain.CollaborationSession) SessionView {
	return SessionView{
		SessionID:  session.SessionID(),
		DocumentID: session.DocumentID().String(),
		CreatedAt:  session.CreatedAt(),
		Participants: lo.Map(lo.Values(session.Participants()),
			func(p domain.Participant, _ int) ParticipantView {
				return ParticipantView{
					UserID:    p.UserID().String(),
					UserName:  p.UserName().String(),
					UserColor: p.UserColor().String(),
					Active:    p.Active(),
				}
			}),
	}
}
