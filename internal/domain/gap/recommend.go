package gap

import (
	"fmt"
	"strings"
)

const (
	RecommendationAddSkill        = "add_skill"
	RecommendationMonitorTrends   = "monitor_trends"
	RecommendationMajorRevision   = "major_revision"
	RecommendationModerateUpdates = "moderate_updates"
)

type Recommendation struct {
	Type     string   `json:"type"`
	Priority string   `json:"priority"`
	Message  string   `json:"message"`
	Skills   []string `json:"skills,omitempty"`
}

// GenerateRecommendations derives prioritized recommendations from a gap
// result. Rules are evaluated in fixed order and fire independently; an
// analysis with full coverage and no gaps yields none.
func GenerateRecommendations(res Result) []Recommendation {
	out := make([]Recommendation, 0, 3)

	if len(res.CriticalGaps) > 0 {
		top := topGapNames(res.CriticalGaps, 5)
		out = append(out, Recommendation{
			Type:     RecommendationAddSkill,
			Priority: PriorityHigh,
			Message:  fmt.Sprintf("Add coverage for high-demand skills missing from the curriculum: %s", strings.Join(top, ", ")),
			Skills:   top,
		})
	}

	highEmerging := make([]string, 0, 3)
	for _, es := range res.EmergingSkills {
		if es.Priority != PriorityHigh {
			continue
		}
		highEmerging = append(highEmerging, es.SkillName)
		if len(highEmerging) == 3 {
			break
		}
	}
	if len(highEmerging) > 0 {
		out = append(out, Recommendation{
			Type:     RecommendationMonitorTrends,
			Priority: PriorityMedium,
			Message:  fmt.Sprintf("Monitor emerging skills gaining traction in the market: %s", strings.Join(highEmerging, ", ")),
			Skills:   highEmerging,
		})
	}

	switch {
	case res.OverallMatchRate < 50:
		out = append(out, Recommendation{
			Type:     RecommendationMajorRevision,
			Priority: PriorityHigh,
			Message:  fmt.Sprintf("Curriculum matches only %.2f%% of market demand; a major revision is recommended", res.OverallMatchRate),
		})
	case res.OverallMatchRate < 70:
		out = append(out, Recommendation{
			Type:     RecommendationModerateUpdates,
			Priority: PriorityHigh,
			Message:  fmt.Sprintf("Curriculum matches %.2f%% of market demand; moderate updates would close the gap", res.OverallMatchRate),
		})
	}

	return out
}

func topGapNames(gaps []Entry, n int) []string {
	if n > len(gaps) {
		n = len(gaps)
	}
	out := make([]string, 0, n)
	for _, g := range gaps[:n] {
		out = append(out, g.SkillName)
	}
	return out
}
