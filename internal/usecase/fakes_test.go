package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"skillgap/internal/domain/analysis"
	"skillgap/internal/domain/curriculum"
	"skillgap/internal/domain/posting"
	"skillgap/internal/repository"

	"github.com/google/uuid"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type fakeCurriculumRepo struct {
	byID        map[uuid.UUID]curriculum.Curriculum
	saved       map[uuid.UUID][]float64
	savedVer    map[uuid.UUID]string
	embedErrors map[uuid.UUID]string
	getErr      error
	saveErr     error
	ids         []uuid.UUID
}

func newFakeCurriculumRepo(curricula ...curriculum.Curriculum) *fakeCurriculumRepo {
	r := &fakeCurriculumRepo{
		byID:        make(map[uuid.UUID]curriculum.Curriculum),
		saved:       make(map[uuid.UUID][]float64),
		savedVer:    make(map[uuid.UUID]string),
		embedErrors: make(map[uuid.UUID]string),
	}
	for _, c := range curricula {
		r.byID[c.ID] = c
		r.ids = append(r.ids, c.ID)
	}
	return r
}

func (r *fakeCurriculumRepo) GetByID(_ context.Context, id uuid.UUID) (curriculum.Curriculum, error) {
	if r.getErr != nil {
		return curriculum.Curriculum{}, r.getErr
	}
	c, ok := r.byID[id]
	if !ok {
		return curriculum.Curriculum{}, repository.ErrCurriculumNotFound
	}
	return c, nil
}

func (r *fakeCurriculumRepo) ListIDs(_ context.Context, limit, offset int) ([]uuid.UUID, error) {
	if offset >= len(r.ids) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.ids) {
		end = len(r.ids)
	}
	return r.ids[offset:end], nil
}

func (r *fakeCurriculumRepo) SaveEmbedding(_ context.Context, id uuid.UUID, embedding []float64, version string) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved[id] = embedding
	r.savedVer[id] = version
	return nil
}

func (r *fakeCurriculumRepo) SetEmbeddingError(_ context.Context, id uuid.UUID, message string) error {
	r.embedErrors[id] = message
	return nil
}

type fakePostingRepo struct {
	postings    []posting.Posting
	missing     []posting.Posting
	listErr     error
	saved       map[uuid.UUID][]float64
	embedErrors map[uuid.UUID]string
}

func newFakePostingRepo(postings ...posting.Posting) *fakePostingRepo {
	return &fakePostingRepo{
		postings:    postings,
		saved:       make(map[uuid.UUID][]float64),
		embedErrors: make(map[uuid.UUID]string),
	}
}

func (r *fakePostingRepo) ListRecent(_ context.Context, filter repository.PostingFilter) ([]posting.Posting, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := r.postings
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	cp := make([]posting.Posting, len(out))
	copy(cp, out)
	return cp, nil
}

func (r *fakePostingRepo) ListMissingEmbeddings(_ context.Context, limit, offset int) ([]posting.Posting, error) {
	if offset >= len(r.missing) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.missing) {
		end = len(r.missing)
	}
	return r.missing[offset:end], nil
}

func (r *fakePostingRepo) SaveEmbedding(_ context.Context, id uuid.UUID, embedding []float64, version string) error {
	r.saved[id] = embedding
	for i := range r.missing {
		if r.missing[i].ID == id {
			r.missing = append(r.missing[:i], r.missing[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakePostingRepo) SetEmbeddingError(_ context.Context, id uuid.UUID, message string) error {
	r.embedErrors[id] = message
	for i := range r.missing {
		if r.missing[i].ID == id {
			r.missing = append(r.missing[:i], r.missing[i+1:]...)
			break
		}
	}
	return nil
}

type fakeAnalysisRepo struct {
	inserted  []analysis.Snapshot
	latest    map[uuid.UUID]analysis.Snapshot
	insertErr error
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{latest: make(map[uuid.UUID]analysis.Snapshot)}
}

func (r *fakeAnalysisRepo) Insert(_ context.Context, snap analysis.Snapshot) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, snap)
	r.latest[snap.CurriculumID] = snap
	return nil
}

func (r *fakeAnalysisRepo) GetLatestByCurriculum(_ context.Context, curriculumID uuid.UUID) (analysis.Snapshot, error) {
	snap, ok := r.latest[curriculumID]
	if !ok {
		return analysis.Snapshot{}, repository.ErrSnapshotNotFound
	}
	return snap, nil
}

// fakeEmbedder serves a fixed vector unless a per-text function is set.
type fakeEmbedder struct {
	version   string
	vec       []float64
	embedErr  error
	batchErr  error
	embedFunc func(text string) ([]float64, error)

	embedCalls int
	batchCalls int
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.embedCalls++
	if e.embedFunc != nil {
		return e.embedFunc(text)
	}
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	return e.vec, nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	e.batchCalls++
	if e.batchErr != nil {
		return nil, e.batchErr
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (e *fakeEmbedder) Version() string {
	if e.version == "" {
		return "test-v1"
	}
	return e.version
}

type fakeCache struct {
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.sets++
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *fakeCache) SetIfNotExists(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	if _, taken := c.data[key]; taken {
		return false, nil
	}
	c.data[key] = []byte(value)
	return true, nil
}

func (c *fakeCache) InvalidateCurriculum(_ context.Context, curriculumID string) error {
	delete(c.data, "analysis:latest:"+curriculumID)
	return nil
}

type fakeUserRepo struct {
	byEmail map[string]repository.User
	byID    map[uuid.UUID]repository.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]repository.User),
		byID:    make(map[uuid.UUID]repository.User),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, u repository.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return repository.ErrEmailTaken
	}
	r.byEmail[u.Email] = u
	r.byID[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (repository.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return repository.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (repository.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return repository.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

var errFakeRepo = errors.New("fake repository failure")
