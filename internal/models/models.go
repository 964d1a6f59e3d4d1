package models

import (
	"time"

	"github.com/google/uuid"
)

// Evaluation is one completed scoring run.
type Evaluation struct {
	ID         uuid.UUID `json:"id"`
	ImagePath  string    `json:"image_path"`
	BeforePath string    `json:"before_path,omitempty"`
	Mode       string    `json:"mode"` // "quality" or "improvement"
	Score      int       `json:"score"`
	Source     string    `json:"source"` // how the score was obtained
	Answer     string    `json:"answer"` // raw model answer
	CreatedAt  time.Time `json:"created_at"`
}

// SearchResult is a stored evaluation ranked by similarity to a query.
type SearchResult struct {
	ImagePath  string
	Score      int
	Answer     string
	Similarity float64
}
