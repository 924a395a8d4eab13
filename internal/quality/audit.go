// Package quality inspects a snapshot for data problems the scoring engine
// deliberately swallows. The engine resolves bad input to zero so screens
// never crash; this audit is the out-of-band surface that tells operators
// why a score looks wrong.
package quality

import (
	"fmt"
	"math"
	"sort"

	"github.com/redealvo/rede-cli/internal/model"
	"github.com/redealvo/rede-cli/internal/store"
)

// Finding codes.
const (
	CodeUnknownPillar   = "unknown_pillar"
	CodeInvalidScore    = "invalid_score"
	CodePerformanceEval = "performance_evaluation"
	CodeWeightSum       = "weight_sum"
	CodeUnweightedGoal  = "unweighted_goal"
	CodeThresholds      = "thresholds"
)

// Finding is one data problem detected in a snapshot.
type Finding struct {
	Code    string `json:"code"`
	StoreID string `json:"store_id,omitempty"`
	Detail  string `json:"detail"`
}

// Audit scans the snapshot for the target month and reports every problem
// found, ordered by code then store. It never fails: a clean snapshot
// yields an empty slice.
func Audit(snap *store.Snapshot, monthKey string, kpis []string) []Finding {
	var findings []Finding

	if err := snap.Thresholds.Validate(); err != nil {
		findings = append(findings, Finding{Code: CodeThresholds, Detail: err.Error()})
	}

	for i := range snap.Evaluations {
		ev := &snap.Evaluations[i]
		if !model.KnownPillar(ev.Pillar) {
			findings = append(findings, Finding{
				Code:    CodeUnknownPillar,
				StoreID: ev.StoreID,
				Detail:  fmt.Sprintf("evaluation %s has pillar %q, which no scorer will ever match", ev.ID, ev.Pillar),
			})
			continue
		}
		if ev.Pillar == model.PillarPerformance {
			findings = append(findings, Finding{
				Code:    CodePerformanceEval,
				StoreID: ev.StoreID,
				Detail:  fmt.Sprintf("evaluation %s is tagged Performance; that pillar is KPI-derived and the record is ignored", ev.ID),
			})
		}
		if _, ok := ev.ValidScore(); !ok {
			findings = append(findings, Finding{
				Code:    CodeInvalidScore,
				StoreID: ev.StoreID,
				Detail:  fmt.Sprintf("evaluation %s has score %s, excluded from averaging", ev.ID, scoreLabel(ev.Score)),
			})
		}
	}

	for i := range snap.Stores {
		st := &snap.Stores[i]
		goals := st.Goals.Month(monthKey)
		weights := st.Weights.Month(monthKey)

		var weightSum float64
		active := false
		for _, kpi := range kpis {
			if goals[kpi] > 0 {
				active = true
				weightSum += weights[kpi]
				if weights[kpi] <= 0 {
					findings = append(findings, Finding{
						Code:    CodeUnweightedGoal,
						StoreID: st.ID,
						Detail:  fmt.Sprintf("KPI %s has a goal for %s but no weight; it cannot influence the Performance score", kpi, monthKey),
					})
				}
			}
		}
		if active && math.Abs(weightSum-100) > 1 {
			findings = append(findings, Finding{
				Code:    CodeWeightSum,
				StoreID: st.ID,
				Detail:  fmt.Sprintf("active KPI weights for %s sum to %.1f, not 100; the score normalizes but the plan looks incomplete", monthKey, weightSum),
			})
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Code != findings[j].Code {
			return findings[i].Code < findings[j].Code
		}
		return findings[i].StoreID < findings[j].StoreID
	})
	return findings
}

func scoreLabel(score *float64) string {
	if score == nil {
		return "null"
	}
	if math.IsNaN(*score) {
		return "NaN"
	}
	return fmt.Sprintf("%.1f", *score)
}
