package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type AnalysisCompletedEvent struct {
	Type         string  `json:"type"`
	CurriculumID string  `json:"curriculum_id"`
	MatchRate    float64 `json:"match_rate"`
	Timestamp    string  `json:"timestamp"`
}

var defaultHub atomic.Pointer[Hub]

func SetDefaultHub(h *Hub) {
	defaultHub.Store(h)
}

// NotifyAnalysisCompleted broadcasts a completed analysis run to every
// connected dashboard. Safe to call before a hub exists.
func NotifyAnalysisCompleted(curriculumID uuid.UUID, matchRate float64) {
	h := defaultHub.Load()
	if h == nil {
		return
	}
	if curriculumID == uuid.Nil {
		return
	}

	evt := AnalysisCompletedEvent{
		Type:         "analysis_completed",
		CurriculumID: curriculumID.String(),
		MatchRate:    matchRate,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}

	h.Broadcast(b)
}
