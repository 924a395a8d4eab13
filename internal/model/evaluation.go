package model

import (
	"math"
	"time"
)

// EvaluationStatus represents the lifecycle state of a qualitative evaluation.
type EvaluationStatus string

const (
	EvaluationPending  EvaluationStatus = "pending"
	EvaluationApproved EvaluationStatus = "approved"
)

// The four fixed pillars that compose a store's overall score. Performance
// is always derived from KPI data, never from evaluation records, even when
// an evaluation is tagged with it.
const (
	PillarPessoas     = "Pessoas"
	PillarPerformance = "Performance"
	PillarAmbiencia   = "Ambiência"
	PillarDigital     = "Digital"
)

// Pillars returns the fixed pillar set in display order.
func Pillars() []string {
	return []string{PillarPessoas, PillarPerformance, PillarAmbiencia, PillarDigital}
}

// KnownPillar reports whether name is one of the four fixed pillars.
func KnownPillar(name string) bool {
	switch name {
	case PillarPessoas, PillarPerformance, PillarAmbiencia, PillarDigital:
		return true
	}
	return false
}

// Evaluation is one qualitative assessment of a store on a single pillar.
// Score is a pointer so that a null score from the source system stays
// distinguishable from a legitimate zero.
type Evaluation struct {
	ID        string           `json:"id"`
	StoreID   string           `json:"store_id"`
	Pillar    string           `json:"pillar"`
	Score     *float64         `json:"score"`
	Status    EvaluationStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// ValidScore returns the evaluation score when it is present, numeric and
// within [0,100]. Anything else is excluded from averaging rather than
// silently becoming zero.
func (e *Evaluation) ValidScore() (float64, bool) {
	if e.Score == nil {
		return 0, false
	}
	v := *e.Score
	if math.IsNaN(v) || v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}
