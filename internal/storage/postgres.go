package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/models"
)

// embeddingDim matches the text-embedding-3-small output size.
const embeddingDim = 1536

// Embedder produces a vector for a text, used to make stored evaluations
// searchable by similarity.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PostgresStore persists evaluations in PostgreSQL with a pgvector embedding
// of the model's answer.
type PostgresStore struct {
	pool     *pgxpool.Pool
	embedder Embedder
	logger   *slog.Logger
}

// NewPostgresStore connects to the database and verifies the connection.
func NewPostgresStore(ctx context.Context, connString string, embedder Embedder, logger *slog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool, embedder: embedder, logger: logger}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Record stores one evaluation. Embedding generation is best-effort: on
// failure the row is stored without a vector and the error is logged.
func (s *PostgresStore) Record(ctx context.Context, eval models.Evaluation) error {
	var embedding *pgvector.Vector
	if s.embedder != nil && eval.Answer != "" {
		vec, err := s.embedder.Embed(ctx, eval.Answer)
		if err != nil {
			s.logger.Warn("failed to generate embedding, storing without one", "error", err)
		} else {
			v := pgvector.NewVector(vec)
			embedding = &v
		}
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO evaluations
		(id, image_path, before_path, mode, score, source, answer, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		eval.ID, eval.ImagePath, eval.BeforePath, eval.Mode, eval.Score,
		eval.Source, eval.Answer, embedding, eval.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store evaluation: %w", err)
	}
	return nil
}

// SearchSimilar returns stored evaluations whose answers are closest to the
// query embedding, by cosine distance.
func (s *PostgresStore) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]models.SearchResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT image_path, score, answer, 1 - (embedding <=> $1) AS similarity
		FROM evaluations
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(queryEmbedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search evaluations: %w", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.ImagePath, &r.Score, &r.Answer, &r.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// InitSchema creates the vector extension and the evaluations table.
func InitSchema(ctx context.Context, connString string) error {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err = conn.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS evaluations (
			id UUID PRIMARY KEY,
			image_path TEXT NOT NULL,
			before_path TEXT,
			mode VARCHAR(16) NOT NULL,
			score INTEGER NOT NULL,
			source VARCHAR(16) NOT NULL,
			answer TEXT,
			embedding vector(%d),
			created_at TIMESTAMPTZ NOT NULL
		)`, embeddingDim))
	if err != nil {
		return fmt.Errorf("failed to create evaluations table: %w", err)
	}

	_, err = conn.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_evaluations_embedding
		ON evaluations USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`)
	if err != nil {
		return fmt.Errorf("failed to create embedding index: %w", err)
	}
	return nil
}
