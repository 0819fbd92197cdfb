// Package calibration holds the versioned, immutable parameter bundle the
// estimators draw on: positional stat priors, award base rates, career
// decay constants and the composite dependence-factor table. The bundle is
// loaded once at startup; its signature participates in stable-tier cache
// snapshots so a version bump invalidates cached results implicitly.
package calibration

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Tier buckets players by established production level
type Tier string

const (
	TierElite   Tier = "elite"
	TierStarter Tier = "starter"
	TierDepth   Tier = "depth"
)

// StatKind distinguishes count-distributed stats from yardage-type stats
type StatKind string

const (
	StatCounting   StatKind = "counting"
	StatContinuous StatKind = "continuous"
)

// StatModel parametrizes the season distribution for one metric.
// Means are keyed by position then tier; a missing position means the
// metric is implausible for that role.
type StatModel struct {
	Kind StatKind `mapstructure:"kind" json:"kind"`
	// Means[position][tier] is the prior season mean
	Means map[string]map[Tier]float64 `mapstructure:"means" json:"means"`
	// Dispersion is variance/mean for counting stats; 1.0 is pure Poisson
	Dispersion float64 `mapstructure:"dispersion" json:"dispersion"`
	// VarCoef scales continuous-stat standard deviation with the mean
	VarCoef float64 `mapstructure:"var_coef" json:"var_coef"`
}

// AwardModel parametrizes per-season award probabilities by tier
type AwardModel struct {
	Rates map[Tier]float64 `mapstructure:"rates" json:"rates"`
	// EligiblePositions restricts the award to certain roles; empty = any
	EligiblePositions []string `mapstructure:"eligible_positions" json:"eligible_positions,omitempty"`
}

// DecayParams shape multi-season probability sequences
type DecayParams struct {
	// CareerStageDecay multiplies the per-season probability each year
	CareerStageDecay float64 `mapstructure:"career_stage_decay" json:"career_stage_decay"`
	// LeagueParity damps repeat success in single-winner markets
	LeagueParity float64 `mapstructure:"league_parity" json:"league_parity"`
	// HorizonSeasons bounds the remaining-career window
	HorizonSeasons int `mapstructure:"horizon_seasons" json:"horizon_seasons"`
	// TypicalCareerLength caps remaining seasons by experience
	TypicalCareerLength int `mapstructure:"typical_career_length" json:"typical_career_length"`
}

// DependenceRule adjusts a naive independence product for one pair of
// outcome kinds. Hand-tuned placeholders pending empirical calibration.
type DependenceRule struct {
	KindA      string  `mapstructure:"kind_a" json:"kind_a"`
	KindB      string  `mapstructure:"kind_b" json:"kind_b"`
	SameEntity bool    `mapstructure:"same_entity" json:"same_entity"`
	Factor     float64 `mapstructure:"factor" json:"factor"`
}

// MarketScaling derives one market's probability from a related one when
// no direct reference line is available.
type MarketScaling struct {
	From   string  `mapstructure:"from" json:"from"`
	To     string  `mapstructure:"to" json:"to"`
	Factor float64 `mapstructure:"factor" json:"factor"`
}

// Bounds are the global output clamps and repair constants
type Bounds struct {
	// probabilities never reach the closed endpoints
	ClampMinPct float64 `mapstructure:"clamp_min_pct" json:"clamp_min_pct"`
	ClampMaxPct float64 `mapstructure:"clamp_max_pct" json:"clamp_max_pct"`
	// n-fold achievements are capped at single-occurrence * damping
	MonotonicityDamping float64 `mapstructure:"monotonicity_damping" json:"monotonicity_damping"`
	// conditional denominators are floored at this pct
	EpsilonPct float64 `mapstructure:"epsilon_pct" json:"epsilon_pct"`
}

// Bundle is the complete calibration parameter set
type Bundle struct {
	Version    string                `mapstructure:"version" json:"version"`
	Stats      map[string]StatModel  `mapstructure:"stats" json:"stats"`
	Awards     map[string]AwardModel `mapstructure:"awards" json:"awards"`
	Decay      DecayParams           `mapstructure:"decay" json:"decay"`
	Dependence []DependenceRule      `mapstructure:"dependence" json:"dependence"`
	Scalings   []MarketScaling       `mapstructure:"scalings" json:"scalings"`
	Bounds     Bounds                `mapstructure:"bounds" json:"bounds"`
	// CohortRates are league-wide per-season rates for wildcard prompts
	CohortRates map[string]float64 `mapstructure:"cohort_rates" json:"cohort_rates"`

	signature string
}

// Signature returns a stable short hash of the bundle contents
func (b *Bundle) Signature() string {
	if b.signature != "" {
		return b.signature
	}
	raw, err := json.Marshal(b)
	if err != nil {
		// Marshal of plain maps/structs cannot fail; fall back to version
		return b.Version
	}
	h := sha256.Sum256(raw)
	b.signature = fmt.Sprintf("%s-%s", b.Version, hex.EncodeToString(h[:])[:12])
	return b.signature
}

// StatMean returns the prior mean for a metric/position/tier, and whether
// the metric is plausible for the position at all.
func (b *Bundle) StatMean(metric, position string, tier Tier) (float64, bool) {
	model, ok := b.Stats[metric]
	if !ok {
		return 0, false
	}
	byTier, ok := model.Means[strings.ToUpper(position)]
	if !ok {
		return 0, false
	}
	mean, ok := byTier[tier]
	return mean, ok
}

// AwardRate returns the per-season rate for an award/tier and whether the
// position is eligible for it.
func (b *Bundle) AwardRate(award string, position string, tier Tier) (float64, bool) {
	model, ok := b.Awards[award]
	if !ok {
		return 0, false
	}
	if len(model.EligiblePositions) > 0 {
		eligible := false
		for _, p := range model.EligiblePositions {
			if strings.EqualFold(p, position) {
				eligible = true
				break
			}
		}
		if !eligible {
			return 0, false
		}
	}
	rate, ok := model.Rates[tier]
	return rate, ok
}

// DependenceFactor looks up the adjustment for a pair of outcome kinds.
// Order-insensitive; defaults to 1.0 (independence).
func (b *Bundle) DependenceFactor(kindA, kindB string, sameEntity bool) float64 {
	for _, rule := range b.Dependence {
		match := (rule.KindA == kindA && rule.KindB == kindB) ||
			(rule.KindA == kindB && rule.KindB == kindA)
		if match && rule.SameEntity == sameEntity {
			return rule.Factor
		}
	}
	return 1.0
}

// ScalingFactor returns the derivation factor from one market to another
func (b *Bundle) ScalingFactor(from, to string) (float64, bool) {
	for _, s := range b.Scalings {
		if s.From == from && s.To == to {
			return s.Factor, true
		}
	}
	return 0, false
}
