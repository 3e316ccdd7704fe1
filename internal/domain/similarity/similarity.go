package similarity

import (
	"errors"
	"math"
	"sort"
)

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ThresholdCap bounds the dynamically adjusted similarity threshold. Even
// in a degenerate batch where the median score exceeds the cap, the
// effective threshold never rises above it; the adjusted filter may then
// still admit nothing, which is accepted.
const ThresholdCap = 0.5

// Cosine computes the cosine similarity of two vectors. Vectors of
// unequal length are a hard error. A zero-norm vector yields 0 rather
// than an error, so degenerate embeddings rank lowest instead of
// aborting a batch.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Ranked pairs a candidate's original index with its similarity score.
type Ranked struct {
	Index int
	Score float64
}

// Rank scores every candidate embedding against the query and returns the
// list sorted by similarity descending. Ties keep input order. Candidates
// whose dimension does not match the query are dropped and their indices
// reported separately.
func Rank(query []float64, candidates [][]float64) (ranked []Ranked, mismatched []int) {
	ranked = make([]Ranked, 0, len(candidates))
	for i, c := range candidates {
		score, err := Cosine(query, c)
		if err != nil {
			mismatched = append(mismatched, i)
			continue
		}
		ranked = append(ranked, Ranked{Index: i, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, mismatched
}

// EffectiveThreshold returns the similarity cutoff to apply for a batch of
// scores. When the requested threshold admits at least one score it is
// used unchanged. Otherwise the median of the full set, capped at
// ThresholdCap, replaces it. The fallback is a heuristic, not a guarantee
// of a non-empty result.
func EffectiveThreshold(scores []float64, requested float64) (threshold float64, adjusted bool) {
	if len(scores) == 0 {
		return requested, false
	}
	for _, s := range scores {
		if s >= requested {
			return requested, false
		}
	}

	m := median(scores)
	if m > ThresholdCap {
		m = ThresholdCap
	}
	return m, true
}

// FilterByThreshold keeps ranked entries scoring at or above threshold.
func FilterByThreshold(ranked []Ranked, threshold float64) []Ranked {
	out := make([]Ranked, 0, len(ranked))
	for _, r := range ranked {
		if r.Score >= threshold {
			out = append(out, r)
		}
	}
	return out
}

func median(scores []float64) float64 {
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
