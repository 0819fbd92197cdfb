package estimator

import (
	"context"
	"fmt"

	"github.com/yourusername/longshot/internal/models"
)

// RaceResolver prices "A before B" descriptors as competing hazards over
// two independent per-season sequences. Both orderings run through the
// same evaluator and the raw pair is renormalized to sum to one, since the
// discrete formulation is not exactly symmetric.
type RaceResolver struct{}

// Name returns the resolver name
func (r *RaceResolver) Name() string { return "race_before" }

// TryResolve prices a race descriptor
func (r *RaceResolver) TryResolve(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) (models.Outcome, bool) {
	if d.Kind != models.KindRaceBefore || d.SideA == nil || d.SideB == nil {
		return models.Outcome{}, false
	}

	seqA, decline := seasonSequence(ctx, d.SideA, rctx)
	if decline != nil {
		return models.Outcome{Declined: decline}, true
	}
	seqB, decline := seasonSequence(ctx, d.SideB, rctx)
	if decline != nil {
		return models.Outcome{Declined: decline}, true
	}

	rawA := raceBefore(seqA, seqB)
	rawB := raceBefore(seqB, seqA)
	if rawA+rawB <= 0 {
		return models.Declined(models.SourceUnsupported,
			"neither race side has measurable probability inside the horizon"), true
	}

	pct := rawA / (rawA + rawB) * 100

	label := fmt.Sprintf("%s before %s", sideLabel(d.SideA), sideLabel(d.SideB))
	rationale := "Competing-hazards race over per-season sequences, renormalized so the two orderings sum to one."
	assumptions := []string{
		fmt.Sprintf("horizon %d seasons", minInt(len(seqA), len(seqB))),
		"independent sides",
	}

	return models.Resolved(buildEstimate(pct, models.ConfidenceLow, models.SourceStatisticalModel,
		label, rationale, assumptions, d.EventKey(), rctx.Calib.Bounds)), true
}

func sideLabel(d *models.OutcomeDescriptor) string {
	name := d.EntityName()
	switch d.Kind {
	case models.KindPlayerAward:
		return fmt.Sprintf("%s wins %s", name, awardWord(d.Award))
	case models.KindTeamMarket:
		return fmt.Sprintf("%s wins the %s", name, marketWord(d.Market))
	case models.KindTeamPlayoff:
		if d.Playoff == models.PlayoffMiss {
			return fmt.Sprintf("%s misses the playoffs", name)
		}
		return fmt.Sprintf("%s makes the playoffs", name)
	}
	return d.String()
}

func marketWord(m models.Market) string {
	switch m {
	case models.MarketSuperBowl:
		return "Super Bowl"
	case models.MarketConference:
		return "conference"
	case models.MarketDivision:
		return "division"
	}
	return string(m)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
