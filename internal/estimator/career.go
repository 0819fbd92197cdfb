package estimator

import (
	"context"
	"fmt"

	"github.com/yourusername/longshot/internal/calibration"
	"github.com/yourusername/longshot/internal/models"
)

// CareerAccumulationResolver prices "wins N awards/titles" descriptors.
// Season-scoped prompts use the first element of the per-season sequence;
// career-scoped prompts evaluate at-least-k over the remaining-career
// sequence with the Poisson-binomial recurrence.
type CareerAccumulationResolver struct{}

// Name returns the resolver name
func (r *CareerAccumulationResolver) Name() string { return "career_accumulation" }

// TryResolve prices a player-award descriptor, or a team's multi-season
// championship accumulation ("the chiefs win 3 consecutive super bowls").
func (r *CareerAccumulationResolver) TryResolve(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) (models.Outcome, bool) {
	playerAward := d.Kind == models.KindPlayerAward && d.Player != nil
	teamRepeat := d.Kind == models.KindTeamMarket && d.Team != nil && (d.AllTime || d.Count > 1)
	if !playerAward && !teamRepeat {
		return models.Outcome{}, false
	}

	count := d.Count
	if count < 1 {
		count = 1
	}

	if !d.AllTime && count > 1 {
		return models.Declined(models.SourceConstraintViolation,
			fmt.Sprintf("%d %s wins cannot fit in a single season", count, subjectWord(d))), true
	}

	seq, decline := seasonSequence(ctx, d, rctx)
	if decline != nil {
		return models.Outcome{Declined: decline}, true
	}

	var pct float64
	var scope string
	if d.AllTime {
		pct = poissonBinomialAtLeast(seq, count) * 100
		scope = "career"
	} else {
		pct = seq[0] * 100
		scope = "season"
	}

	conf := models.ConfidenceLow
	if d.Player != nil && tierFor(d.Player) == calibration.TierElite {
		conf = models.ConfidenceMedium
	}
	if d.Team != nil {
		scope = "multi-season"
	}

	label := fmt.Sprintf("%s wins %d %s (%s)", d.EntityName(), count, subjectWord(d), scope)
	rationale := fmt.Sprintf("Per-season %s probability decays with career stage and league parity; the %s total uses an exact at-least-%d accumulation.",
		subjectWord(d), scope, count)
	assumptions := []string{
		fmt.Sprintf("%d seasons in the accumulation window", len(seq)),
		fmt.Sprintf("first-season rate %.1f%%", seq[0]*100),
	}

	return models.Resolved(buildEstimate(pct, conf, models.SourceStatisticalModel,
		label, rationale, assumptions, d.EventKey(), rctx.Calib.Bounds)), true
}

// subjectWord names what is accumulated, for labels and rationales
func subjectWord(d *models.OutcomeDescriptor) string {
	if d.Kind == models.KindTeamMarket {
		return "championship"
	}
	return awardWord(d.Award)
}

func awardWord(a models.AwardType) string {
	switch a {
	case models.AwardMVP:
		return "MVP"
	case models.AwardOPOY:
		return "Offensive Player of the Year"
	case models.AwardDPOY:
		return "Defensive Player of the Year"
	case models.AwardROY:
		return "Rookie of the Year"
	case models.AwardChampionship:
		return "championship"
	}
	return string(a)
}
