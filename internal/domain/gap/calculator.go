package gap

import (
	"math"
	"sort"
	"strings"

	"skillgap/internal/domain/skill"
)

type Severity string

const (
	SeverityLow      Severity = "low-gap"
	SeverityMinor    Severity = "minor-gap"
	SeverityModerate Severity = "moderate-gap"
	SeverityCritical Severity = "critical-gap"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// emergingRateFloor is the demand rate above which an uncovered market
// skill is additionally flagged as emerging.
const emergingRateFloor = 20.0

type Entry struct {
	SkillName          string   `json:"skill_name"`
	Category           string   `json:"category"`
	MarketDemand       float64  `json:"market_demand"`
	CurriculumCoverage float64  `json:"curriculum_coverage"`
	GapSeverity        Severity `json:"gap_severity"`
}

type EmergingSkill struct {
	SkillName  string  `json:"skill_name"`
	Category   string  `json:"category"`
	DemandRate float64 `json:"demand_rate"`
	Priority   string  `json:"priority"`
}

type CoveredSkill struct {
	SkillName    string  `json:"skill_name"`
	Category     string  `json:"category"`
	MarketDemand float64 `json:"market_demand"`
}

type Result struct {
	OverallMatchRate  float64
	CriticalGaps      []Entry
	EmergingSkills    []EmergingSkill
	WellCoveredSkills []CoveredSkill
}

// SeverityFor buckets a demand rate into a gap severity. Band lower
// bounds are inclusive.
func SeverityFor(demandRate float64) Severity {
	switch {
	case demandRate >= 50:
		return SeverityCritical
	case demandRate >= 30:
		return SeverityModerate
	case demandRate >= 15:
		return SeverityMinor
	default:
		return SeverityLow
	}
}

func emergingPriority(demandRate float64) string {
	switch {
	case demandRate >= 40:
		return PriorityHigh
	case demandRate >= 20:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Calculate cross-references market demand against curriculum coverage.
// Every market skill lands in exactly one of WellCoveredSkills or
// CriticalGaps; uncovered skills with demand above the emerging floor are
// additionally flagged in EmergingSkills. All lists come back sorted by
// demand descending.
func Calculate(curriculumSkills []skill.Record, marketSkills []skill.MarketSkill) Result {
	covered := make(map[string]bool, len(curriculumSkills))
	for _, cs := range curriculumSkills {
		name := strings.ToLower(strings.TrimSpace(cs.Name))
		if name != "" {
			covered[name] = true
		}
	}

	res := Result{
		CriticalGaps:      make([]Entry, 0),
		EmergingSkills:    make([]EmergingSkill, 0),
		WellCoveredSkills: make([]CoveredSkill, 0),
	}

	matched := 0
	for _, ms := range marketSkills {
		name := strings.ToLower(strings.TrimSpace(ms.Name))
		if covered[name] {
			matched++
			res.WellCoveredSkills = append(res.WellCoveredSkills, CoveredSkill{
				SkillName:    ms.Name,
				Category:     ms.Category,
				MarketDemand: ms.DemandRate,
			})
			continue
		}

		res.CriticalGaps = append(res.CriticalGaps, Entry{
			SkillName:          ms.Name,
			Category:           ms.Category,
			MarketDemand:       ms.DemandRate,
			CurriculumCoverage: 0,
			GapSeverity:        SeverityFor(ms.DemandRate),
		})
		if ms.DemandRate > emergingRateFloor {
			res.EmergingSkills = append(res.EmergingSkills, EmergingSkill{
				SkillName:  ms.Name,
				Category:   ms.Category,
				DemandRate: ms.DemandRate,
				Priority:   emergingPriority(ms.DemandRate),
			})
		}
	}

	if len(marketSkills) > 0 {
		res.OverallMatchRate = round2(float64(matched) / float64(len(marketSkills)) * 100)
	}

	sort.SliceStable(res.CriticalGaps, func(i, j int) bool {
		return res.CriticalGaps[i].MarketDemand > res.CriticalGaps[j].MarketDemand
	})
	sort.SliceStable(res.EmergingSkills, func(i, j int) bool {
		return res.EmergingSkills[i].DemandRate > res.EmergingSkills[j].DemandRate
	})
	sort.SliceStable(res.WellCoveredSkills, func(i, j int) bool {
		return res.WellCoveredSkills[i].MarketDemand > res.WellCoveredSkills[j].MarketDemand
	})

	return res
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
