package engine

import (
	"math"

	"github.com/redealvo/rede-cli/internal/model"
)

// PillarScoreSet holds a store's integer score per pillar plus the HasData
// flag that distinguishes "genuinely scored zero" from "never evaluated".
type PillarScoreSet struct {
	Scores  map[string]int `json:"scores"`
	HasData bool           `json:"has_data"`
}

// ScorePillars computes the per-pillar scores for one store in one month.
// The Performance pillar aggregates KPI achievements; the other pillars
// average the store's valid approved evaluation scores. Evaluations tagged
// with an unknown pillar name are never matched and therefore ignored.
func (e *Engine) ScorePillars(st model.Store, monthKey string, evals []model.Evaluation) PillarScoreSet {
	return e.scorePillars(st, monthKey, approvedOnly(evals))
}

// scorePillars assumes evals is already restricted to approved records.
func (e *Engine) scorePillars(st model.Store, monthKey string, evals []model.Evaluation) PillarScoreSet {
	scores := make(map[string]int, 4)
	scores[model.PillarPerformance] = e.performanceScore(st, monthKey)

	hasEval := false
	for i := range evals {
		if evals[i].StoreID == st.ID {
			hasEval = true
			break
		}
	}

	for _, pillar := range model.Pillars() {
		if pillar == model.PillarPerformance {
			continue
		}
		scores[pillar] = evaluationScore(st.ID, pillar, evals)
	}

	return PillarScoreSet{
		Scores:  scores,
		HasData: scores[model.PillarPerformance] > 0 || hasEval,
	}
}

// performanceScore runs the weighted KPI aggregation for the target month.
// The denominator is the sum of active weights, not a fixed 100, so a store
// whose configured weights do not cover every KPI still normalizes correctly.
func (e *Engine) performanceScore(st model.Store, monthKey string) int {
	goals := st.Goals.Month(monthKey)
	results := st.Results.Month(monthKey)
	weights := st.Weights.Month(monthKey)

	var weighted, weightSum float64
	for _, kpi := range e.cfg.KPIs {
		a := ScoreKPI(goals[kpi], results[kpi], weights[kpi])
		weighted += a.AchievementPct * a.WeightContribution
		weightSum += a.WeightContribution
	}
	if weightSum <= 0 {
		return 0
	}
	return int(math.Round(weighted / weightSum))
}

// evaluationScore averages the store's valid scores for one pillar. Scores
// that are null, NaN or outside [0,100] are excluded; an empty valid set
// scores zero.
func evaluationScore(storeID, pillar string, evals []model.Evaluation) int {
	var sum float64
	var n int
	for i := range evals {
		ev := &evals[i]
		if ev.StoreID != storeID || ev.Pillar != pillar {
			continue
		}
		if v, ok := ev.ValidScore(); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

// approvedOnly keeps only approved evaluations. The snapshot source already
// filters on status, but scoring must never trust that.
func approvedOnly(evals []model.Evaluation) []model.Evaluation {
	filtered := make([]model.Evaluation, 0, len(evals))
	for i := range evals {
		if evals[i].Status == model.EvaluationApproved {
			filtered = append(filtered, evals[i])
		}
	}
	return filtered
}
