package engine

import (
	"sort"

	"github.com/redealvo/rede-cli/internal/model"
	"github.com/redealvo/rede-cli/internal/search"
)

// Filters narrows the candidate store set before scoring. Filtering happens
// up front so it reduces the candidates, never re-ranks scored output.
type Filters struct {
	// Query matches store name or supervisor, case- and accent-insensitive.
	Query string
	// Franchisee restricts to one franchise owner label.
	Franchisee string
}

// RankingEntry is one row of the network ranking.
type RankingEntry struct {
	StoreID    string         `json:"store_id"`
	Name       string         `json:"name"`
	Franchisee string         `json:"franchisee"`
	Supervisor string         `json:"supervisor,omitempty"`
	Pillars    map[string]int `json:"pillars"`
	Composite  int            `json:"composite"`
	Patent     string         `json:"patent"`
	HasData    bool           `json:"has_data"`
}

// Rank scores every candidate store, drops those with no usable data, and
// returns the entries ordered by composite score descending. Stores tied on
// composite keep their input order; the sort is stable on purpose so that
// pagination over the same snapshot never reshuffles.
func (e *Engine) Rank(stores []model.Store, evals []model.Evaluation, t model.PatentThresholds, monthKey string, f Filters) []RankingEntry {
	approved := approvedOnly(evals)

	entries := make([]RankingEntry, 0, len(stores))
	for i := range stores {
		st := &stores[i]
		if !matchesFilters(st, f) {
			continue
		}
		ps := e.scorePillars(*st, monthKey, approved)
		if !ps.HasData {
			continue
		}
		composite := Composite(ps)
		entries = append(entries, RankingEntry{
			StoreID:    st.ID,
			Name:       st.Name,
			Franchisee: st.FranchiseeLabel(),
			Supervisor: st.Supervisor,
			Pillars:    ps.Scores,
			Composite:  composite,
			Patent:     Classify(float64(composite), t),
			HasData:    ps.HasData,
		})
	}

	// HasData first is defensive: the filter above already removed the rest.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].HasData != entries[j].HasData {
			return entries[i].HasData
		}
		return entries[i].Composite > entries[j].Composite
	})

	return entries
}

// SummarizeTiers tallies how many ranked stores fall into each patent tier.
// Every tier appears in the result, including empty ones.
func SummarizeTiers(entries []RankingEntry) map[string]int {
	counts := make(map[string]int, 4)
	for _, tier := range model.PatentTiers() {
		counts[tier] = 0
	}
	for i := range entries {
		counts[entries[i].Patent]++
	}
	return counts
}

func matchesFilters(st *model.Store, f Filters) bool {
	if f.Franchisee != "" && st.FranchiseeLabel() != f.Franchisee {
		return false
	}
	if f.Query != "" {
		if !search.Contains(st.Name, f.Query) && !search.Contains(st.Supervisor, f.Query) {
			return false
		}
	}
	return true
}
