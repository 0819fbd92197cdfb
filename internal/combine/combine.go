package combine

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/longshot/internal/calibration"
	"github.com/yourusername/longshot/internal/intent"
	"github.com/yourusername/longshot/internal/models"
	"github.com/yourusername/longshot/internal/oddsmath"
)

// Combiner folds per-clause estimates into one composite estimate. It never
// re-prices a clause: clause probabilities arrive fixed from the resolver
// chain and only the combination rule and dependence adjustments live here.
type Combiner struct {
	calib  *calibration.Bundle
	logger logrus.FieldLogger
}

func NewCombiner(calib *calibration.Bundle, logger logrus.FieldLogger) *Combiner {
	return &Combiner{calib: calib, logger: logger.WithField("component", "combine")}
}

// Combine applies the composite's operator over its clause outcomes. A
// single declined clause declines the whole composite; a bare unsupported
// reason is upgraded to unsupported_composite so the caller can tell a
// composite failure from an atomic one.
func (c *Combiner) Combine(comp *intent.Composite, outcomes []models.Outcome) models.Outcome {
	if len(outcomes) != len(comp.Clauses) || len(outcomes) == 0 {
		return models.Declined(models.SourceUnsupportedComposite, "clause count mismatch")
	}

	ests := make([]*models.ProbabilityEstimate, 0, len(outcomes))
	for i, out := range outcomes {
		if out.Declined != nil {
			reason := out.Declined.Reason
			if reason == models.SourceUnsupported {
				reason = models.SourceUnsupportedComposite
			}
			return models.Declined(reason,
				fmt.Sprintf("clause %d: %s", i+1, out.Declined.Detail))
		}
		ests = append(ests, out.Resolved)
	}

	conf := ests[0].Confidence
	for _, e := range ests[1:] {
		conf = models.WeakerOf(conf, e.Confidence)
	}

	var pct float64
	var label, rationale string
	var assumptions []string

	switch comp.Op {
	case intent.OpAnd:
		var notes []string
		pct, notes = c.jointPct(comp.Clauses, ests)
		label = joinLabels(ests, " and ")
		rationale = "Joint probability of all clauses with pairwise dependence adjustments."
		assumptions = append(clausePcts(ests), notes...)

	case intent.OpOr, intent.OpAnyOf:
		if exclusiveAlternatives(comp.Clauses) {
			pct = 0
			for _, e := range ests {
				pct += e.ProbabilityPct
			}
			rationale = "Alternatives are mutually exclusive outcomes of one single-winner event, so their probabilities add."
		} else {
			pct = unionPct(ests)
			rationale = "At-least-one probability across alternatives treated as independent."
		}
		label = joinLabels(ests, " or ")
		assumptions = clausePcts(ests)

	case intent.OpConditional:
		condPct := ests[0].ProbabilityPct
		jointPct, notes := c.jointPct(comp.Clauses, ests)
		floor := c.calib.Bounds.EpsilonPct
		if condPct < floor {
			condPct = floor
		}
		pct = jointPct / condPct * 100
		if pct < 1 {
			pct = 1
		}
		if pct > 99 {
			pct = 99
		}
		label = ests[1].Label + " given " + ests[0].Label
		rationale = "Conditional probability from the joint over the condition, with the condition floored to avoid division blow-ups."
		assumptions = append(clausePcts(ests), notes...)

	default:
		return models.Declined(models.SourceUnsupportedComposite,
			fmt.Sprintf("unknown composite operator %q", comp.Op))
	}

	if pct < c.calib.Bounds.ClampMinPct {
		pct = c.calib.Bounds.ClampMinPct
	}
	if pct > c.calib.Bounds.ClampMaxPct {
		pct = c.calib.Bounds.ClampMaxPct
	}

	rounded := oddsmath.RoundPct(pct)
	american, err := oddsmath.PctToAmerican(rounded)
	if err != nil {
		american = 10000
	}
	return models.Resolved(&models.ProbabilityEstimate{
		ProbabilityPct: rounded,
		Odds:           oddsmath.FormatAmerican(american),
		Confidence:     conf,
		SourceType:     models.SourceComposite,
		Label:          label,
		Rationale:      rationale,
		Assumptions:    assumptions,
	})
}

// jointPct multiplies clause probabilities and applies the calibration
// bundle's pairwise dependence factors over every clause pair.
func (c *Combiner) jointPct(clauses []*models.OutcomeDescriptor, ests []*models.ProbabilityEstimate) (float64, []string) {
	p := 1.0
	for _, e := range ests {
		p *= e.ProbabilityPct / 100
	}

	var notes []string
	for i := 0; i < len(clauses); i++ {
		for j := i + 1; j < len(clauses); j++ {
			same := sameEntity(clauses[i], clauses[j])
			factor := c.calib.DependenceFactor(string(clauses[i].Kind), string(clauses[j].Kind), same)
			if factor != 1.0 {
				p *= factor
				notes = append(notes, fmt.Sprintf("dependence factor %.2f between %s and %s", factor, clauses[i].Kind, clauses[j].Kind))
			}
		}
	}
	if p > 1 {
		p = 1
	}
	return p * 100, notes
}

// exclusiveAlternatives reports whether every alternative targets the same
// single-winner event with distinct entities, in which case probabilities
// are additive rather than union-combined.
func exclusiveAlternatives(clauses []*models.OutcomeDescriptor) bool {
	if len(clauses) < 2 {
		return false
	}
	key := clauses[0].EventKey()
	seen := make(map[string]bool, len(clauses))
	for _, d := range clauses {
		if !d.SingleWinnerEvent() || d.EventKey() != key {
			return false
		}
		name := d.EntityName()
		if name == "" || seen[name] {
			return false
		}
		seen[name] = true
	}
	return true
}

func unionPct(ests []*models.ProbabilityEstimate) float64 {
	miss := 1.0
	for _, e := range ests {
		miss *= 1 - e.ProbabilityPct/100
	}
	return (1 - miss) * 100
}

func sameEntity(a, b *models.OutcomeDescriptor) bool {
	nameA, nameB := a.EntityName(), b.EntityName()
	if nameA == "" || nameB == "" {
		return false
	}
	if nameA == nameB {
		return true
	}
	// a player clause and a clause about that player's team count as shared
	if a.Player != nil && b.Team != nil && strings.EqualFold(a.Player.Team, b.Team.Name) {
		return true
	}
	if b.Player != nil && a.Team != nil && strings.EqualFold(b.Player.Team, a.Team.Name) {
		return true
	}
	return false
}

func joinLabels(ests []*models.ProbabilityEstimate, sep string) string {
	labels := make([]string, len(ests))
	for i, e := range ests {
		labels[i] = e.Label
	}
	return strings.Join(labels, sep)
}

func clausePcts(ests []*models.ProbabilityEstimate) []string {
	out := make([]string, len(ests))
	for i, e := range ests {
		out[i] = fmt.Sprintf("clause %d (%s) at %.1f%%", i+1, e.Label, e.ProbabilityPct)
	}
	return out
}
