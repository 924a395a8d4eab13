// Package engine implements the performance scoring and ranking engine for
// the store network. Every function is a pure transformation of the snapshot
// passed to it: nothing is cached, nothing is mutated, and degenerate input
// resolves to a defined zero value instead of an error so that every screen
// rendering a score agrees with every other.
package engine

// KPI keys used in the Performance pillar, as serialized in the monthly
// goal/result/weight blobs.
const (
	KPIFaturamento   = "faturamento"
	KPIPA            = "pa"
	KPITicketMedio   = "ticket_medio"
	KPIUsoEnxoval    = "uso_enxoval"
	KPITaxaConversao = "taxa_conversao"
)

// Config carries the KPI set the Performance pillar aggregates over. It is
// passed explicitly so the engine has no hidden module-level defaults.
type Config struct {
	KPIs []string
}

// DefaultConfig returns the standard five-KPI Performance configuration.
func DefaultConfig() Config {
	return Config{
		KPIs: []string{KPIFaturamento, KPIPA, KPITicketMedio, KPIUsoEnxoval, KPITaxaConversao},
	}
}

// Engine scores and ranks stores from immutable snapshots.
type Engine struct {
	cfg Config
}

// New creates an Engine. An empty config falls back to DefaultConfig.
func New(cfg Config) *Engine {
	if len(cfg.KPIs) == 0 {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// KPIAchievement is the contribution of one KPI to the Performance pillar.
type KPIAchievement struct {
	AchievementPct     float64
	WeightContribution float64
}

// ScoreKPI converts one KPI's goal, result and weight for a month into a
// capped achievement percentage and a weight contribution.
//
// A KPI with goal <= 0 does not participate: its weight contribution is zero
// and its achievement is ignored by callers. Achievement is capped at 100 so
// over-performance on one KPI cannot compensate for failure on others, but a
// negative result is not floored; a regressed KPI drags the pillar down.
func ScoreKPI(goal, result, weight float64) KPIAchievement {
	if goal <= 0 {
		return KPIAchievement{}
	}
	pct := result / goal * 100
	if pct > 100 {
		pct = 100
	}
	return KPIAchievement{
		AchievementPct:     pct,
		WeightContribution: weight / 100,
	}
}
