package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/qdoctor/agent/internal/core"
)

// ChunkRepo persists document chunks and their embeddings.
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) SaveChunk(ctx context.Context, chunk core.StoredChunk) error {
	vecBlob, err := serializeVector(chunk.Embedding)
	if err != nil {
		return err
	}

	createdAt := chunk.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO chunks (id, source, content, embedding, created_at) VALUES (?, ?, ?, ?, ?)`,
		chunk.ID, chunk.Source, chunk.Text, vecBlob, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

func (r *ChunkRepo) HasChunk(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM chunks WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("chunk lookup failed: %w", err)
	}
	return true, nil
}

// AllChunks returns every indexed chunk in insertion order. The rowid doubles
// as the deterministic tie-breaker for equal similarity scores.
func (r *ChunkRepo) AllChunks(ctx context.Context) ([]core.StoredChunk, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rowid, id, source, content, embedding, created_at FROM chunks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("chunk scan failed: %w", err)
	}
	defer rows.Close()

	var chunks []core.StoredChunk
	for rows.Next() {
		var c core.StoredChunk
		var blob []byte
		if err := rows.Scan(&c.Ordinal, &c.ID, &c.Source, &c.Text, &blob, &c.CreatedAt); err != nil {
			return nil, err
		}
		if c.Embedding, err = deserializeVector(blob); err != nil {
			return nil, fmt.Errorf("chunk %s: %w", c.ID, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
