package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/blugelabs/bluge/index"
)

type ISearchRepository interface {
	Index(entry SearchEntry) error
	Flush() error
	Search(ctx context.Context, query, documentID string, limit int) ([]SearchHit, uint64, error)
}

// SearchEntry is one indexed document revision. The index key is
// documentID:version so re-indexing the same revision is idempotent.
type SearchEntry struct {
	DocumentID string
	SessionID  string
	Actor      string
	Content    string
	Version    int
	At         time.Time
}

type SearchHit struct {
	DocumentID string
	SessionID  string
	Actor      string
	Content    string
	Version    int
	At         time.Time
}

// SearchRepository indexes document revisions into bluge. Writes are
// buffered into a batch and flushed on a size threshold; Flush forces the
// buffered batch out, tests and shutdown call it directly.
type SearchRepository struct {
	mu        sync.Mutex
	writer    *bluge.Writer
	log       *slog.Logger
	batch     *index.Batch
	pending   int
	batchSize int
}

func NewSearchRepository(writer *bluge.Writer, log *slog.Logger, batchSize int) *SearchRepository {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &SearchRepository{
		writer:    writer,
		log:       log,
		batch:     bluge.NewBatch(),
		batchSize: batchSize,
	}
}

func (r *SearchRepository) Index(entry SearchEntry) error {
	doc := bluge.NewDocument(fmt.Sprintf("%s:%d", entry.DocumentID, entry.Version)).
		AddField(bluge.NewKeywordField("document", entry.DocumentID).StoreValue()).
		AddField(bluge.NewKeywordField("session", entry.SessionID).StoreValue()).
		AddField(bluge.NewKeywordField("actor", entry.Actor).StoreValue()).
		AddField(bluge.NewTextField("content", entry.Content).StoreValue()).
		AddField(bluge.NewKeywordField("version", strconv.Itoa(entry.Version)).StoreValue()).
		AddField(bluge.NewDateTimeField("at", entry.At).StoreValue().Sortable())

	r.mu.Lock()
	r.batch.Update(doc.ID(), doc)
	r.pending++
	full := r.pending >= r.batchSize
	r.mu.Unlock()

	if full {
		return r.Flush()
	}
	return nil
}

func (r *SearchRepository) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == 0 {
		return nil
	}
	if err := r.writer.Batch(r.batch); err != nil {
		return fmt.Errorf("failed to flush search batch: %w", err)
	}
	r.batch.Reset()
	r.pending = 0
	return nil
}

// Search runs a full-text match over indexed revisions, optionally scoped
// to a single document. Returns the hits plus the total match count.
func (r *SearchRepository) Search(ctx context.Context, query, documentID string, limit int) ([]SearchHit, uint64, error) {
	reader, err := r.writer.Reader()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open search reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			r.log.Warn("Failed to close search reader", "error", err)
		}
	}()

	boolean := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField("content"))
	if documentID != "" {
		boolean.AddMust(bluge.NewTermQuery(documentID).SetField("document"))
	}

	request := bluge.NewTopNSearch(limit, boolean).
		WithStandardAggregations().
		SortBy([]string{"-at"})

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}

	var hits []SearchHit
	match, err := iterator.Next()
	for err == nil && match != nil {
		var hit SearchHit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "document":
				hit.DocumentID = string(value)
			case "session":
				hit.SessionID = string(value)
			case "actor":
				hit.Actor = string(value)
			case "content":
				hit.Content = string(value)
			case "version":
				hit.Version, _ = strconv.Atoi(string(value))
			case "at":
				if at, err := bluge.DecodeDateTime(value); err == nil {
					hit.At = at
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, 0, visitErr
		}
		hits = append(hits, hit)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, 0, err
	}

	return hits, iterator.Aggregations().Count(), nil
}
