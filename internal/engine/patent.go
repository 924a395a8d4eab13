package engine

import "github.com/redealvo/rede-cli/internal/model"

// Classify maps a composite score to the highest patent tier whose threshold
// it meets or exceeds. Bronze is the floor and always matches.
func Classify(score float64, t model.PatentThresholds) string {
	switch {
	case score >= t.Platina:
		return model.PatentPlatina
	case score >= t.Ouro:
		return model.PatentOuro
	case score >= t.Prata:
		return model.PatentPrata
	default:
		return model.PatentBronze
	}
}
