package curriculum

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Curriculum struct {
	ID               uuid.UUID
	ProgramName      string
	Description      string
	TargetIndustries []string
	CourseSkills     []string

	Embedding          []float64
	EmbeddingGenerated *time.Time
	EmbeddingVersion   string
	EmbeddingError     string

	CreatedAt time.Time
}

// HasUsableEmbedding reports whether the stored embedding can be compared
// against freshly generated vectors of the given version.
func (c Curriculum) HasUsableEmbedding(version string) bool {
	return len(c.Embedding) > 0 && c.EmbeddingVersion == version
}

// EmbeddingText synthesizes the text the embedding provider sees for a
// curriculum: program name, description, and the aggregated course skill
// names.
func (c Curriculum) EmbeddingText() string {
	parts := make([]string, 0, 3)
	if s := strings.TrimSpace(c.ProgramName); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(c.Description); s != "" {
		parts = append(parts, s)
	}
	if len(c.CourseSkills) > 0 {
		parts = append(parts, strings.Join(c.CourseSkills, ", "))
	}
	return strings.Join(parts, ". ")
}
