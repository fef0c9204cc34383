package sink

import (
	"context"
	"fmt"
	"log/slog"

	"codraft/domain"
	"codraft/domain/event"
	"codraft/repositories"
)

// DiskSink persists every sanitized document revision: the snapshot is
// overwritten, the change record is appended to the document's history.
type DiskSink struct {
	repository repositories.IDocumentRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.IDocumentRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log}
}

func (d DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.DocumentUpdated:
		if err := d.repository.StoreSnapshot(toDiskDocument(evt)); err != nil {
			return err
		}
		return d.repository.AppendChange(toDiskChange(evt))
	default:
		d.log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
		return nil
	}
}

func toDiskDocument(evt event.DocumentUpdated) repositories.DiskDocument {
	return repositories.DiskDocument{
		ID:        evt.Document,
		Content:   evt.Content,
		Version:   evt.Version,
		CreatedAt: evt.CreatedAt,
		UpdatedAt: evt.At,
	}
}

func toDiskChange(evt event.DocumentUpdated) repositories.DiskChange {
	return repositories.DiskChange{
		ID:         evt.ID,
		DocumentID: evt.Document,
		Kind:       string(domain.ChangeUpdate),
		Actor:      evt.Actor,
		At:         evt.At,
	}
}
