package repositories

import (
	"testing"
	"time"

	db "github.com/mama165/sdk-go/database"
	"github.com/stretchr/testify/require"
)

func Test_Search_IndexAndMatch(t *testing.T) {
	req := require.New(t)
	ctx, log, badgerDB, blugeWriter, err := db.SetupBenchmark(t.TempDir())
	req.NoError(err)
	defer db.CleanupDB(badgerDB, blugeWriter)

	repository := NewSearchRepository(blugeWriter, log, 10)
	at := time.Now().UTC()
	entries := []SearchEntry{
		{DocumentID: "doc-1", SessionID: "session-1", Actor: "alice", Content: "notes about goroutine scheduling", Version: 2, At: at},
		{DocumentID: "doc-1", SessionID: "session-1", Actor: "bob", Content: "notes about channel buffering", Version: 3, At: at.Add(time.Minute)},
		{DocumentID: "doc-2", SessionID: "session-2", Actor: "carol", Content: "grocery list", Version: 1, At: at},
	}
	for _, entry := range entries {
		req.NoError(repository.Index(entry))
	}
	req.NoError(repository.Flush())

	hits, total, err := repository.Search(ctx, "goroutine", "", 10)
	req.NoError(err)
	req.Equal(uint64(1), total)
	req.Len(hits, 1)
	req.Equal("doc-1", hits[0].DocumentID)
	req.Equal("alice", hits[0].Actor)
	req.Equal(2, hits[0].Version)
}

func Test_Search_ScopedToDocument(t *testing.T) {
	req := require.New(t)
	ctx, log, badgerDB, blugeWriter, err := db.SetupBenchmark(t.TempDir())
	req.NoError(err)
	defer db.CleanupDB(badgerDB, blugeWriter)

	repository := NewSearchRepository(blugeWriter, log, 10)
	at := time.Now().UTC()
	req.NoError(repository.Index(SearchEntry{DocumentID: "doc-1", SessionID: "session-1", Actor: "alice", Content: "shared notes", Version: 2, At: at}))
	req.NoError(repository.Index(SearchEntry{DocumentID: "doc-2", SessionID: "session-2", Actor: "bob", Content: "shared notes", Version: 4, At: at}))
	req.NoError(repository.Flush())

	hits, total, err := repository.Search(ctx, "notes", "doc-2", 10)
	req.NoError(err)
	req.Equal(uint64(1), total)
	req.Len(hits, 1)
	req.Equal("doc-2", hits[0].DocumentID)
}

func Test_Search_ReindexedRevisionIsIdempotent(t *testing.T) {
	req := require.New(t)
	ctx, log, badgerDB, blugeWriter, err := db.SetupBenchmark(t.TempDir())
	req.NoError(err)
	defer db.CleanupDB(badgerDB, blugeWriter)

	repository := NewSearchRepository(blugeWriter, log, 10)
	at := time.Now().UTC()
	entry := SearchEntry{DocumentID: "doc-1", SessionID: "session-1", Actor: "alice", Content: "revision text", Version: 2, At: at}
	req.NoError(repository.Index(entry))
	req.NoError(repository.Index(entry))
	req.NoError(repository.Flush())

	_, total, err := repository.Search(ctx, "revision", "", 10)
	req.NoError(err)
	req.Equal(uint64(1), total)
}
