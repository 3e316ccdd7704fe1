package dto

import (
	"time"

	"skillgap/internal/domain/analysis"
	"skillgap/internal/domain/gap"
)

type AnalysisResponse struct {
	SnapshotID        string               `json:"snapshot_id"`
	CurriculumID      string               `json:"curriculum_id"`
	AnalysisDate      time.Time            `json:"analysis_date"`
	TargetIndustry    string               `json:"target_industry,omitempty"`
	JobSampleSize     int                  `json:"job_sample_size"`
	OverallMatchRate  float64              `json:"overall_match_rate"`
	CriticalGaps      []gap.Entry          `json:"critical_gaps"`
	EmergingSkills    []gap.EmergingSkill  `json:"emerging_skills"`
	WellCoveredSkills []gap.CoveredSkill   `json:"well_covered_skills"`
	Recommendations   []gap.Recommendation `json:"recommendations"`
	MLInsights        *analysis.MLStats    `json:"ml_insights,omitempty"`
}

type AnalysisFailureResponse struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func NewAnalysisResponse(s analysis.Snapshot) AnalysisResponse {
	out := AnalysisResponse{
		SnapshotID:        s.ID.String(),
		CurriculumID:      s.CurriculumID.String(),
		AnalysisDate:      s.AnalysisDate,
		TargetIndustry:    s.TargetIndustry,
		JobSampleSize:     s.JobSampleSize,
		OverallMatchRate:  s.Metrics.OverallMatchRate,
		CriticalGaps:      s.Metrics.CriticalGaps,
		EmergingSkills:    s.Metrics.EmergingSkills,
		WellCoveredSkills: s.Metrics.WellCoveredSkills,
		Recommendations:   s.Recommendations,
		MLInsights:        s.MLStats,
	}
	if out.CriticalGaps == nil {
		out.CriticalGaps = []gap.Entry{}
	}
	if out.EmergingSkills == nil {
		out.EmergingSkills = []gap.EmergingSkill{}
	}
	if out.WellCoveredSkills == nil {
		out.WellCoveredSkills = []gap.CoveredSkill{}
	}
	if out.Recommendations == nil {
		out.Recommendations = []gap.Recommendation{}
	}
	return out
}
