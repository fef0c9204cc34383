package sink

import (
	"context"
	"log/slog"

	"codraft/domain/event"
	"codraft/repositories"
)

// IndexSink feeds sanitized document revisions into the full-text index.
// Indexing is best effort: a failed index write is logged, never bubbled
// back into the pipeline.
type IndexSink struct {
	repository repositories.ISearchRepository
	log        *slog.Logger
}

func NewIndexSink(repository repositories.ISearchRepository, log *slog.Logger) IndexSink {
	return IndexSink{repository: repository, log: log}
}

func (s IndexSink) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.DocumentUpdated)
	if !ok {
		return nil
	}
	err := s.repository.Index(repositories.SearchEntry{
		DocumentID: evt.Document,
		SessionID:  evt.Session,
		Actor:      evt.Actor,
		Content:    evt.Content,
		Version:    evt.Version,
		At:         evt.At,
	})
	if err != nil {
		s.log.Error("Failed to index document revision",
			"document_id", evt.Document, "version", evt.Version, "error", err)
	}
	return nil
}
