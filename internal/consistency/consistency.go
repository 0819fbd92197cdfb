package consistency

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/longshot/internal/calibration"
	"github.com/yourusername/longshot/internal/intent"
	"github.com/yourusername/longshot/internal/models"
	"github.com/yourusername/longshot/internal/oddsmath"
)

// rationales must not smuggle odds the contract check cannot see
var oddsLikeRe = regexp.MustCompile(`[+-]\d{3,}\b`)

// Enforcer applies cross-estimate invariants and the output contract. It
// runs after pricing and may only lower, never raise, a probability.
type Enforcer struct {
	calib  *calibration.Bundle
	logger logrus.FieldLogger
}

func NewEnforcer(calib *calibration.Bundle, logger logrus.FieldLogger) *Enforcer {
	return &Enforcer{calib: calib, logger: logger.WithField("component", "consistency")}
}

// CheckContradiction scans a conjunction for clauses that cannot be jointly
// true. Disjunctions and conditionals tolerate exclusive clauses, so only
// OpAnd composites are examined.
func (e *Enforcer) CheckContradiction(comp *intent.Composite) *models.Decline {
	if comp == nil || comp.Op != intent.OpAnd {
		return nil
	}
	for i := 0; i < len(comp.Clauses); i++ {
		for j := i + 1; j < len(comp.Clauses); j++ {
			if detail := contradicts(comp.Clauses[i], comp.Clauses[j]); detail != "" {
				return &models.Decline{Reason: models.SourceInconsistent, Detail: detail}
			}
		}
	}
	return nil
}

func contradicts(a, b *models.OutcomeDescriptor) string {
	// one winner per single-winner event
	if a.SingleWinnerEvent() && b.SingleWinnerEvent() &&
		a.EventKey() == b.EventKey() && a.EntityName() != b.EntityName() &&
		a.EntityName() != "" && b.EntityName() != "" {
		return fmt.Sprintf("%s and %s cannot both win %s", a.EntityName(), b.EntityName(), a.EventKey())
	}

	if !sameTeam(a, b) {
		return ""
	}

	missA := a.Kind == models.KindTeamPlayoff && a.Playoff == models.PlayoffMiss
	missB := b.Kind == models.KindTeamPlayoff && b.Playoff == models.PlayoffMiss
	makeA := a.Kind == models.KindTeamPlayoff && a.Playoff == models.PlayoffMake
	makeB := b.Kind == models.KindTeamPlayoff && b.Playoff == models.PlayoffMake

	if (missA && makeB) || (missB && makeA) {
		return fmt.Sprintf("%s cannot both make and miss the playoffs", a.EntityName())
	}

	// outright futures require a playoff berth
	if (missA && b.Kind == models.KindTeamMarket) || (missB && a.Kind == models.KindTeamMarket) {
		return fmt.Sprintf("%s cannot win an outright market while missing the playoffs", a.EntityName())
	}

	// an exact win total excludes a higher floor on the same team
	if d := exactVsFloor(a, b); d != "" {
		return d
	}
	if d := exactVsFloor(b, a); d != "" {
		return d
	}
	return ""
}

func exactVsFloor(exact, floor *models.OutcomeDescriptor) string {
	if exact.Kind != models.KindTeamWinTotal || exact.Comparator != models.CmpExactly {
		return ""
	}
	if floor.Kind != models.KindTeamWinTotal || floor.Comparator != models.CmpAtLeast {
		return ""
	}
	if floor.Wins > exact.Wins {
		return fmt.Sprintf("exactly %d wins excludes at least %d wins", exact.Wins, floor.Wins)
	}
	return ""
}

func sameTeam(a, b *models.OutcomeDescriptor) bool {
	if a.Team == nil || b.Team == nil {
		return false
	}
	return strings.EqualFold(a.Team.Name, b.Team.Name)
}

// CapMultiplicity enforces that an n-fold accumulation cannot approach its
// single-occurrence probability: the n-fold estimate is capped at the
// single estimate scaled by the damping factor.
func (e *Enforcer) CapMultiplicity(multi, single *models.ProbabilityEstimate) {
	if multi == nil || single == nil {
		return
	}
	limit := single.ProbabilityPct * e.calib.Bounds.MonotonicityDamping
	if limit < e.calib.Bounds.ClampMinPct {
		limit = e.calib.Bounds.ClampMinPct
	}
	if multi.ProbabilityPct > limit {
		e.logger.WithFields(logrus.Fields{
			"from": multi.ProbabilityPct,
			"to":   limit,
		}).Debug("capping accumulation above damped single-occurrence probability")
		multi.ProbabilityPct = oddsmath.RoundPct(limit)
		multi.Odds = deriveOdds(multi.ProbabilityPct)
		multi.Assumptions = append(multi.Assumptions, "capped below the single-occurrence probability")
	}
}

// FloorOpenScope enforces that an open-horizon ("ever") estimate is at
// least its season-scoped counterpart.
func (e *Enforcer) FloorOpenScope(allTime, season *models.ProbabilityEstimate) {
	if allTime == nil || season == nil {
		return
	}
	if allTime.ProbabilityPct < season.ProbabilityPct {
		allTime.ProbabilityPct = season.ProbabilityPct
		allTime.Odds = season.Odds
		allTime.Assumptions = append(allTime.Assumptions, "floored at the single-season probability")
	}
}

// FinalizeContract normalizes an estimate to the output contract: odds in
// American format consistent with the probability, probability inside the
// calibration bounds, and a rationale of at most three sentences carrying
// no odds-like figures.
func (e *Enforcer) FinalizeContract(est *models.ProbabilityEstimate) {
	if est == nil {
		return
	}

	if est.ProbabilityPct < e.calib.Bounds.ClampMinPct {
		est.ProbabilityPct = e.calib.Bounds.ClampMinPct
	}
	if est.ProbabilityPct > e.calib.Bounds.ClampMaxPct {
		est.ProbabilityPct = e.calib.Bounds.ClampMaxPct
	}
	est.ProbabilityPct = oddsmath.RoundPct(est.ProbabilityPct)

	rederive := true
	if line, err := oddsmath.ParseAmerican(est.Odds); err == nil {
		if oddsmath.Consistent(line, est.ProbabilityPct, oddsmath.DefaultTolerancePct) {
			rederive = false
		}
	}
	if rederive {
		est.Odds = deriveOdds(est.ProbabilityPct)
	}

	est.Rationale = tidyRationale(est.Rationale)
}

func deriveOdds(pct float64) string {
	american, err := oddsmath.PctToAmerican(pct)
	if err != nil {
		american = 10000
	}
	return oddsmath.FormatAmerican(american)
}

func tidyRationale(r string) string {
	r = oddsLikeRe.ReplaceAllString(r, "")
	r = strings.Join(strings.Fields(r), " ")

	sentences := strings.SplitAfter(r, ". ")
	if len(sentences) > 3 {
		r = strings.TrimSpace(strings.Join(sentences[:3], ""))
	}
	return r
}
