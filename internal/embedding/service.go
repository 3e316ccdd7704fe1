package embedding

import (
	"context"
	"strings"
	"sync"
)

// batchChunkSize bounds how many texts go to the provider in one call,
// keeping peak in-flight work per batch bounded.
const batchChunkSize = 10

// Service wraps a lazily initialized Provider behind an initialization
// lock. Concurrent callers block on the same in-flight initialization
// instead of constructing duplicate provider handles; a failed attempt is
// retried on the next call.
type Service struct {
	version string

	mu       sync.Mutex
	provider Provider
	initFn   func(ctx context.Context) (Provider, error)
}

// NewService builds a Service around a deferred provider constructor. The
// version tag is known up front from configuration so stored embeddings
// can be checked for compatibility without forcing initialization.
func NewService(version string, initFn func(ctx context.Context) (Provider, error)) *Service {
	return &Service{version: version, initFn: initFn}
}

// NewServiceWithProvider skips lazy initialization, mainly for tests.
func NewServiceWithProvider(p Provider) *Service {
	return &Service{version: p.Version(), provider: p}
}

func (s *Service) get(ctx context.Context) (Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provider != nil {
		return s.provider, nil
	}
	p, err := s.initFn(ctx)
	if err != nil {
		return nil, err
	}
	s.provider = p
	return p, nil
}

// Embed validates the text and generates a single embedding.
func (s *Service) Embed(ctx context.Context, text string) ([]float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if len(text) < MinTextLength {
		return nil, ErrTextTooShort
	}

	p, err := s.get(ctx)
	if err != nil {
		return nil, err
	}
	return p.Embed(ctx, text)
}

// EmbedBatch generates embeddings for all texts, issuing provider calls
// in bounded chunks and awaiting each chunk before the next. Result order
// matches input order. Any text failing validation fails the whole batch;
// per-item skip policies belong to the caller.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for _, t := range texts {
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return nil, ErrEmptyText
		}
		if len(trimmed) < MinTextLength {
			return nil, ErrTextTooShort
		}
	}

	p, err := s.get(ctx)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += batchChunkSize {
		end := start + batchChunkSize
		if end > len(texts) {
			end = len(texts)
		}
		chunk, err := p.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// Version reports the model version embeddings from this service carry.
func (s *Service) Version() string {
	return s.version
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provider == nil {
		return nil
	}
	err := s.provider.Close()
	s.provider = nil
	return err
}
