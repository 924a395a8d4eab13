package engine

import (
	"math"

	"github.com/redealvo/rede-cli/internal/model"
)

// StoreScore is a store's full derived score: the per-pillar breakdown plus
// the composite.
type StoreScore struct {
	PillarScoreSet
	Composite int `json:"composite"`
}

// Composite averages the four pillar scores into one overall score. The mean
// is unweighted and pillars scored zero for lack of data still participate,
// matching the established network rule even though it biases partially
// evaluated stores downward.
func Composite(ps PillarScoreSet) int {
	pillars := model.Pillars()
	var sum int
	for _, p := range pillars {
		sum += ps.Scores[p]
	}
	return int(math.Round(float64(sum) / float64(len(pillars))))
}

// ScoreStore computes the pillar breakdown and composite for one store.
func (e *Engine) ScoreStore(st model.Store, evals []model.Evaluation, monthKey string) StoreScore {
	ps := e.ScorePillars(st, monthKey, evals)
	return StoreScore{PillarScoreSet: ps, Composite: Composite(ps)}
}
