package posting

import (
	"time"

	"github.com/google/uuid"

	"skillgap/internal/domain/skill"
)

type Skill struct {
	Name       string           `json:"name"`
	Importance skill.Importance `json:"importance"`
}

type Posting struct {
	ID          uuid.UUID
	Title       string
	Company     string
	Location    string
	Industry    string
	Description string
	URL         string
	Skills      []Skill
	PostedAt    *time.Time
	CreatedAt   time.Time

	Embedding          []float64
	EmbeddingGenerated *time.Time
	EmbeddingVersion   string
	EmbeddingError     string

	// SimilarityScore is set by the relevance filter on semantically
	// ranked postings; postings admitted via the unscored supplement or
	// the category fallback carry nil.
	SimilarityScore *float64
}

// HasUsableEmbedding reports whether the posting can join similarity
// ranking against vectors of the given version.
func (p Posting) HasUsableEmbedding(version string) bool {
	return len(p.Embedding) > 0 && p.EmbeddingVersion == version
}
