package embedding

import (
	"context"
	"errors"
)

// MinTextLength is the shortest input worth embedding. Callers reject
// shorter text before invoking the provider.
const MinTextLength = 20

var (
	ErrEmptyText        = errors.New("empty embedding input")
	ErrTextTooShort     = errors.New("embedding input below minimum length")
	ErrGenerationFailed = errors.New("embedding generation failed")
)

// Provider turns text into fixed-length vectors. Implementations are
// expected to be safe for concurrent use.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
	Version() string
	Close() error
}
