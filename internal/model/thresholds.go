// Package model defines the entities read by the scoring engine: stores with
// their monthly goal/result/weight series, qualitative evaluations, and the
// patent threshold configuration.
package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Patent tier names, floor first.
const (
	PatentBronze  = "Bronze"
	PatentPrata   = "Prata"
	PatentOuro    = "Ouro"
	PatentPlatina = "Platina"
)

// PatentTiers returns the tier names in ascending order.
func PatentTiers() []string {
	return []string{PatentBronze, PatentPrata, PatentOuro, PatentPlatina}
}

// PatentThresholds holds the four ascending cut-points that map a composite
// score to a tier. A store is classified into the highest tier whose
// threshold its composite score meets or exceeds; Bronze is the floor.
type PatentThresholds struct {
	Bronze  float64 `json:"bronze" yaml:"bronze" mapstructure:"bronze"`
	Prata   float64 `json:"prata" yaml:"prata" mapstructure:"prata"`
	Ouro    float64 `json:"ouro" yaml:"ouro" mapstructure:"ouro"`
	Platina float64 `json:"platina" yaml:"platina" mapstructure:"platina"`
}

// DefaultThresholds returns the network-wide default cut-points used when no
// administrator-edited record exists.
func DefaultThresholds() PatentThresholds {
	return PatentThresholds{Bronze: 0, Prata: 70, Ouro: 85, Platina: 95}
}

// Validate checks that the cut-points are non-decreasing.
func (t PatentThresholds) Validate() error {
	var errs []string
	if t.Prata < t.Bronze {
		errs = append(errs, fmt.Sprintf("prata (%.1f) below bronze (%.1f)", t.Prata, t.Bronze))
	}
	if t.Ouro < t.Prata {
		errs = append(errs, fmt.Sprintf("ouro (%.1f) below prata (%.1f)", t.Ouro, t.Prata))
	}
	if t.Platina < t.Ouro {
		errs = append(errs, fmt.Sprintf("platina (%.1f) below ouro (%.1f)", t.Platina, t.Ouro))
	}
	if len(errs) > 0 {
		return eris.Errorf("model: thresholds must be non-decreasing: %s", strings.Join(errs, "; "))
	}
	return nil
}
