package gap

import (
	"strings"
	"testing"
)

func recommendationOfType(recs []Recommendation, typ string) (Recommendation, bool) {
	for _, r := range recs {
		if r.Type == typ {
			return r, true
		}
	}
	return Recommendation{}, false
}

func TestGenerateRecommendationsAddSkill(t *testing.T) {
	res := Result{
		OverallMatchRate: 75,
		CriticalGaps: []Entry{
			{SkillName: "kubernetes", MarketDemand: 60},
			{SkillName: "terraform", MarketDemand: 55},
			{SkillName: "aws", MarketDemand: 50},
			{SkillName: "docker", MarketDemand: 45},
			{SkillName: "react", MarketDemand: 40},
			{SkillName: "figma", MarketDemand: 10},
		},
	}

	recs := GenerateRecommendations(res)

	add, ok := recommendationOfType(recs, RecommendationAddSkill)
	if !ok {
		t.Fatal("expected an add_skill recommendation")
	}
	if add.Priority != PriorityHigh {
		t.Errorf("priority = %s, want high", add.Priority)
	}
	if len(add.Skills) != 5 {
		t.Errorf("skills = %v, want top 5 gaps", add.Skills)
	}
	if add.Skills[0] != "kubernetes" {
		t.Errorf("skills[0] = %s, want kubernetes", add.Skills[0])
	}
	if !strings.Contains(add.Message, "kubernetes") {
		t.Errorf("message %q does not name the top gap", add.Message)
	}
}

func TestGenerateRecommendationsMonitorTrends(t *testing.T) {
	res := Result{
		OverallMatchRate: 90,
		EmergingSkills: []EmergingSkill{
			{SkillName: "rust", DemandRate: 48, Priority: PriorityHigh},
			{SkillName: "svelte", DemandRate: 44, Priority: PriorityHigh},
			{SkillName: "grpc", DemandRate: 42, Priority: PriorityHigh},
			{SkillName: "deno", DemandRate: 41, Priority: PriorityHigh},
			{SkillName: "terraform", DemandRate: 25, Priority: PriorityMedium},
		},
	}

	recs := GenerateRecommendations(res)

	monitor, ok := recommendationOfType(recs, RecommendationMonitorTrends)
	if !ok {
		t.Fatal("expected a monitor_trends recommendation")
	}
	if monitor.Priority != PriorityMedium {
		t.Errorf("priority = %s, want medium", monitor.Priority)
	}
	if len(monitor.Skills) != 3 {
		t.Errorf("skills = %v, want high-priority skills capped at 3", monitor.Skills)
	}
	for _, s := range monitor.Skills {
		if s == "terraform" {
			t.Error("medium-priority emerging skill must not appear")
		}
	}
}

func TestGenerateRecommendationsRevisionBands(t *testing.T) {
	cases := []struct {
		rate     float64
		wantType string
	}{
		{20, RecommendationMajorRevision},
		{49.99, RecommendationMajorRevision},
		{50, RecommendationModerateUpdates},
		{69.99, RecommendationModerateUpdates},
	}
	for _, c := range cases {
		recs := GenerateRecommendations(Result{OverallMatchRate: c.rate})
		if len(recs) != 1 {
			t.Fatalf("rate %v: got %d recommendations, want 1", c.rate, len(recs))
		}
		if recs[0].Type != c.wantType {
			t.Errorf("rate %v: type = %s, want %s", c.rate, recs[0].Type, c.wantType)
		}
	}
}

func TestGenerateRecommendationsNoneWhenHealthy(t *testing.T) {
	recs := GenerateRecommendations(Result{OverallMatchRate: 85})
	if len(recs) != 0 {
		t.Errorf("expected no recommendations, got %v", recs)
	}
}

func TestGenerateRecommendationsRulesFireIndependently(t *testing.T) {
	res := Result{
		OverallMatchRate: 30,
		CriticalGaps:     []Entry{{SkillName: "kubernetes", MarketDemand: 60}},
		EmergingSkills:   []EmergingSkill{{SkillName: "rust", DemandRate: 45, Priority: PriorityHigh}},
	}

	recs := GenerateRecommendations(res)
	if len(recs) != 3 {
		t.Fatalf("got %d recommendations, want 3: %v", len(recs), recs)
	}
	for _, typ := range []string{RecommendationAddSkill, RecommendationMonitorTrends, RecommendationMajorRevision} {
		if _, ok := recommendationOfType(recs, typ); !ok {
			t.Errorf("missing %s recommendation", typ)
		}
	}
}
