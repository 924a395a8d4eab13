package engine

import (
	"time"

	"github.com/redealvo/rede-cli/internal/model"
)

// DateWindow restricts which evaluations count as current. A zero bound is
// open on that side.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// Contains reports whether ts falls inside the window.
func (w DateWindow) Contains(ts time.Time) bool {
	if !w.From.IsZero() && ts.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && ts.After(w.To) {
		return false
	}
	return true
}

// PillarStanding identifies one store's score on one pillar.
type PillarStanding struct {
	StoreID string `json:"store_id"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
}

// PillarExtremes holds the best and worst performer for a pillar within a
// franchisee group. Nil pointers mean no store in the group had data for
// that pillar; callers must render that distinctly from a zero score.
type PillarExtremes struct {
	Best  *PillarStanding `json:"best,omitempty"`
	Worst *PillarStanding `json:"worst,omitempty"`
}

// BestWorstByGroup groups stores by franchise owner and extracts, for every
// pillar, the strongest and weakest performer among stores with a non-zero
// score on that pillar. Only evaluations inside the window participate.
// Ties keep the first store in input order on both ends.
func (e *Engine) BestWorstByGroup(stores []model.Store, evals []model.Evaluation, monthKey string, window DateWindow) map[string]map[string]PillarExtremes {
	windowed := make([]model.Evaluation, 0, len(evals))
	for i := range evals {
		if evals[i].Status == model.EvaluationApproved && window.Contains(evals[i].CreatedAt) {
			windowed = append(windowed, evals[i])
		}
	}

	type scoredStore struct {
		store  *model.Store
		scores map[string]int
	}
	groups := make(map[string][]scoredStore)
	order := make([]string, 0)
	for i := range stores {
		st := &stores[i]
		ps := e.scorePillars(*st, monthKey, windowed)
		label := st.FranchiseeLabel()
		if _, seen := groups[label]; !seen {
			order = append(order, label)
		}
		groups[label] = append(groups[label], scoredStore{store: st, scores: ps.Scores})
	}

	result := make(map[string]map[string]PillarExtremes, len(order))
	for _, label := range order {
		members := groups[label]
		pillars := make(map[string]PillarExtremes, 4)
		for _, pillar := range model.Pillars() {
			var best, worst *scoredStore
			for i := range members {
				m := &members[i]
				if m.scores[pillar] <= 0 {
					continue
				}
				if best == nil || m.scores[pillar] > best.scores[pillar] {
					best = m
				}
				if worst == nil || m.scores[pillar] < worst.scores[pillar] {
					worst = m
				}
			}
			ext := PillarExtremes{}
			if best != nil {
				ext.Best = &PillarStanding{StoreID: best.store.ID, Name: best.store.Name, Score: best.scores[pillar]}
				ext.Worst = &PillarStanding{StoreID: worst.store.ID, Name: worst.store.Name, Score: worst.scores[pillar]}
			}
			pillars[pillar] = ext
		}
		result[label] = pillars
	}
	return result
}
