// Package repositories persists document snapshots, change logs, sessions
// and user accounts in BadgerDB. It only deals in disk representations;
// rebuilding domain aggregates from them is the caller's concern.
package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	apperrors "codraft/errors"
)

type IDocumentRepository interface {
	StoreSnapshot(document DiskDocument) error
	GetSnapshot(documentID string) (DiskDocument, error)
	AppendChange(change DiskChange) error
	GetChanges(documentID string) ([]DiskChange, error)
}

type DocumentRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewDocumentRepository(db *badger.DB, log *slog.Logger) DocumentRepository {
	return DocumentRepository{db: db, log: log}
}

// DiskDocument is the persisted snapshot of a document aggregate.
type DiskDocument struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DiskChange is one persisted audit entry of a document's change log.
type DiskChange struct {
	ID         uuid.UUID `json:"id"`
	DocumentID string    `json:"document_id"`
	Kind       string    `json:"kind"`
	Actor      string    `json:"actor"`
	At         time.Time `json:"at"`
}

// StoreSnapshot upserts the latest state of a document under "doc:{id}".
func (r DocumentRepository) StoreSnapshot(document DiskDocument) error {
	bytes, err := json.Marshal(document)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("doc:"+document.ID), bytes)
	})
}

func (r DocumentRepository) GetSnapshot(documentID string) (DiskDocument, error) {
	var document DiskDocument
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("doc:" + documentID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &document)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return DiskDocument{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownDocument, documentID)
	}
	if err != nil {
		return DiskDocument{}, err
	}
	return document, nil
}

// AppendChange persists one audit entry.
// The key is formatted as "chg:{document_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     changes land at the same nanosecond.
func (r DocumentRepository) AppendChange(change DiskChange) error {
	key := fmt.Sprintf("chg:%s:%019d:%s",
		change.DocumentID,
		change.At.UnixNano(),
		change.ID,
	)
	bytes, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetChanges retrieves the full change log of a document, oldest first.
// Thanks to the padded timestamp in the key the prefix scan is naturally
// sorted by time.
func (r DocumentRepository) GetChanges(documentID string) ([]DiskChange, error) {
	var byteChanges [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("chg:%s:", documentID))
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				buf := make([]byte, len(val))
				copy(buf, val)
				byteChanges = append(byteChanges, buf)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	changes := make([]DiskChange, 0, len(byteChanges))
	for _, b := range byteChanges {
		var change DiskChange
		if err := json.Unmarshal(b, &change); err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, nil
}
