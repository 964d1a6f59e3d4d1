package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/models"
)

// Store persists evaluation history. Persistence is best-effort supporting
// infrastructure: callers log Record errors and move on, the score itself is
// never affected.
type Store interface {
	// Record persists one completed evaluation.
	Record(ctx context.Context, eval models.Evaluation) error

	// Close releases any underlying resources.
	Close()
}

// fileStore appends evaluations to a JSON file under a history directory.
type fileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates a Store backed by <dir>/evaluations.json.
func NewFileStore(dir string) Store {
	return &fileStore{dir: dir}
}

func (s *fileStore) Record(ctx context.Context, eval models.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, "evaluations.json")

	var existing []models.Evaluation
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &existing); err != nil {
			return fmt.Errorf("failed to unmarshal existing history: %w", err)
		}
	}

	existing = append(existing, eval)

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory '%s': %w", s.dir, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create history file: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(existing); err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return nil
}

func (s *fileStore) Close() {}
