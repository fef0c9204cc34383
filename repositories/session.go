package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	apperrors "codraft/errors"
)

type ISessionRepository interface {
	Store(session DiskSession) error
	Get(sessionID string) (DiskSession, error)
	Delete(sessionID string) error
	List() ([]DiskSession, error)
}

type SessionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSessionRepository(db *badger.DB, log *slog.Logger) SessionRepository {
	return SessionRepository{db: db, log: log}
}

// DiskSession is the persisted snapshot of a collaboration session, kept
// so a restarting server can rehydrate membership.
type DiskSession struct {
	SessionID    string            `json:"session_id"`
	DocumentID   string            `json:"document_id"`
	CreatedAt    time.Time         `json:"created_at"`
	Participants []DiskParticipant `json:"participants"`
}

type DiskParticipant struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserColor string `json:"user_color"`
	Active    bool   `json:"active"`
}

func (r SessionRepository) Store(session DiskSession) error {
	bytes, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("ses:"+session.SessionID), bytes)
	})
}

func (r SessionRepository) Get(sessionID string) (DiskSession, error) {
	var session DiskSession
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("ses:" + sessionID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return DiskSession{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownSession, sessionID)
	}
	if err != nil {
		return DiskSession{}, err
	}
	return session, nil
}

func (r SessionRepository) Delete(sessionID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte("ses:" + sessionID))
	})
}

func (r SessionRepository) List() ([]DiskSession, error) {
	var sessions []DiskSession
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("ses:")
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var session DiskSession
				if err := json.Unmarshal(val, &session); err != nil {
					return err
				}
				sessions = append(sessions, session)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return sessions, err
}
