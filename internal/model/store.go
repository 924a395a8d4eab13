package model

// OwnStoreLabel is the franchisee label used for company-owned stores that
// have no franchise owner on record.
const OwnStoreLabel = "Loja Própria"

// MonthSeries maps a month key (YYYY-MM) to per-KPI numeric values.
type MonthSeries map[string]map[string]float64

// Month returns the KPI values for the given month key. A missing month
// yields an empty map, never nil lookups for the caller to branch on.
func (s MonthSeries) Month(key string) map[string]float64 {
	if s == nil {
		return map[string]float64{}
	}
	if m, ok := s[key]; ok && m != nil {
		return m
	}
	return map[string]float64{}
}

// Store represents one retail store in the network. Goals, Results and
// Weights hold monthly KPI planning data; the remaining attributes are used
// for grouping and filtering only, never for scoring.
type Store struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Franchisee string      `json:"franchisee,omitempty"`
	Supervisor string      `json:"supervisor,omitempty"`
	Flag       string      `json:"flag,omitempty"`
	State      string      `json:"state,omitempty"`
	Goals      MonthSeries `json:"goals,omitempty"`
	Results    MonthSeries `json:"results,omitempty"`
	Weights    MonthSeries `json:"weights,omitempty"`
}

// FranchiseeLabel returns the franchise owner, falling back to OwnStoreLabel
// for company-owned stores.
func (s *Store) FranchiseeLabel() string {
	if s.Franchisee == "" {
		return OwnStoreLabel
	}
	return s.Franchisee
}
