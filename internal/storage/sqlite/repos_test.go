package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/qdoctor/agent/internal/core"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *ChunkRepo {
	t.Helper()
	db, err := NewDB(context.Background(), t.TempDir()+"/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewChunkRepo(db)
}

func TestChunkRepo_SaveAndScan(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	chunks := []core.StoredChunk{
		{ID: "c1", Source: "nice.md", Text: "first", Embedding: []float32{1, 0}},
		{ID: "c2", Source: "nice.md", Text: "second", Embedding: []float32{0, 1}},
		{ID: "c3", Source: "who.md", Text: "third", Embedding: []float32{0.5, 0.5}},
	}
	for _, c := range chunks {
		require.NoError(t, repo.SaveChunk(ctx, c))
	}

	got, err := repo.AllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Insertion order preserved, ordinals strictly increasing.
	for i, c := range got {
		require.Equal(t, chunks[i].ID, c.ID)
		require.Equal(t, chunks[i].Text, c.Text)
		require.Equal(t, chunks[i].Embedding, c.Embedding)
		if i > 0 {
			require.Greater(t, c.Ordinal, got[i-1].Ordinal)
		}
	}

	ok, err := repo.HasChunk(ctx, "c2")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.HasChunk(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestChunkRepo_CreatedAtRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	when := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.SaveChunk(ctx, core.StoredChunk{
		ID: "c1", Source: "nice.md", Text: "stamped",
		Embedding: []float32{1, 0},
		CreatedAt: when,
	}))
	// Zero value falls back to the insertion time.
	require.NoError(t, repo.SaveChunk(ctx, core.StoredChunk{
		ID: "c2", Source: "nice.md", Text: "unstamped",
		Embedding: []float32{0, 1},
	}))

	got, err := repo.AllChunks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.True(t, got[0].CreatedAt.Equal(when), "stored %v, want %v", got[0].CreatedAt, when)
	require.False(t, got[1].CreatedAt.IsZero())
}

func TestCacheRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(ctx, t.TempDir()+"/cache.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewCacheRepo(db, time.Minute)

	resp := core.FinalResponse{
		Text:      "validated answer",
		Sources:   []string{"nice.md"},
		Valid:     true,
		Cacheable: true,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	_, found, err := repo.Get(ctx, "key1")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, repo.Set(ctx, "key1", resp))

	got, found, err := repo.Get(ctx, "key1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, resp, got)

	require.NoError(t, repo.Invalidate(ctx, "key1"))
	_, found, err = repo.Get(ctx, "key1")
	require.NoError(t, err)
	require.False(t, found)
}

func TestCacheRepo_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(ctx, t.TempDir()+"/ttl.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewCacheRepo(db, time.Minute)
	now := time.Now()
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Set(ctx, "k", core.FinalResponse{Text: "a", Valid: true}))

	_, found, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)

	// Jump past the TTL.
	repo.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, found, err = repo.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestCacheRepo_Purge(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(ctx, t.TempDir()+"/purge.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewCacheRepo(db, 0)
	require.NoError(t, repo.Set(ctx, "a", core.FinalResponse{Text: "1"}))
	require.NoError(t, repo.Set(ctx, "b", core.FinalResponse{Text: "2"}))

	require.NoError(t, repo.Purge(ctx))

	_, found, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, found)
}
