package estimator

import (
	"context"
	"fmt"

	"github.com/yourusername/longshot/internal/models"
)

// seasonSequence builds the per-season success probabilities (0..1) for a
// descriptor over the relevant horizon. Per-season strength varies with
// career stage and league parity, which is why accumulation and race
// models never collapse the sequence into a shared-p binomial.
func seasonSequence(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) ([]float64, *models.Decline) {
	switch d.Kind {
	case models.KindPlayerAward:
		return awardSequence(d, rctx)
	case models.KindTeamMarket:
		return teamMarketSequence(ctx, d, rctx)
	case models.KindTeamPlayoff:
		return playoffSequence(ctx, d, rctx)
	}
	return nil, &models.Decline{
		Reason: models.SourceUnsupported,
		Detail: fmt.Sprintf("no per-season model for %s", d.Kind),
	}
}

func awardSequence(d *models.OutcomeDescriptor, rctx *Context) ([]float64, *models.Decline) {
	if d.Player == nil {
		return nil, &models.Decline{Reason: models.SourceInvalidEntity, Detail: "award descriptor without a player"}
	}

	tier := tierFor(d.Player)
	base, eligible := rctx.Calib.AwardRate(string(d.Award), d.Player.Position, tier)
	if !eligible {
		return nil, &models.Decline{
			Reason: models.SourceIneligibleEntity,
			Detail: fmt.Sprintf("%s (%s) is not in the voter pool for %s", d.Player.Name, d.Player.Position, d.Award),
		}
	}

	decay := rctx.Calib.Decay
	horizon := remainingSeasons(d.Player, decay)

	perSeason := decay.CareerStageDecay
	if d.SingleWinnerEvent() {
		perSeason *= decay.LeagueParity
	}

	seq := make([]float64, horizon)
	p := base
	for i := 0; i < horizon; i++ {
		seq[i] = p
		p *= perSeason
	}
	return seq, nil
}

func teamMarketSequence(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) ([]float64, *models.Decline) {
	if d.Team == nil {
		return nil, &models.Decline{Reason: models.SourceInvalidEntity, Detail: "team market descriptor without a team"}
	}

	base := baselineMarketPct(d.Market) / 100
	if rctx.Markets != nil {
		if ref, err := rctx.Markets.GetReference(ctx, string(d.Market), d.Team.Name); err == nil && ref != nil {
			base = ref.ImpliedProbabilityPct / 100
		}
	}

	decay := rctx.Calib.Decay
	seq := make([]float64, decay.HorizonSeasons)
	p := base
	for i := 0; i < decay.HorizonSeasons; i++ {
		seq[i] = p
		// team strength reverts toward the field in later seasons
		p = p*decay.LeagueParity + (1-decay.LeagueParity)*baselineMarketPct(d.Market)/100
	}
	return seq, nil
}

func playoffSequence(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) ([]float64, *models.Decline) {
	if d.Team == nil {
		return nil, &models.Decline{Reason: models.SourceInvalidEntity, Detail: "playoff descriptor without a team"}
	}

	base := baselinePlayoffPct(d.Playoff) / 100
	decay := rctx.Calib.Decay
	seq := make([]float64, decay.HorizonSeasons)
	for i := 0; i < decay.HorizonSeasons; i++ {
		seq[i] = base
	}
	return seq, nil
}

// baselineMarketPct is the field-neutral prior for a futures market
func baselineMarketPct(m models.Market) float64 {
	switch m {
	case models.MarketSuperBowl:
		return 100.0 / 32
	case models.MarketConference:
		return 100.0 / 16
	case models.MarketDivision:
		return 100.0 / 4
	}
	return 100.0 / 32
}

// baselinePlayoffPct reflects the 14-of-32 playoff format
func baselinePlayoffPct(o models.PlayoffOutcome) float64 {
	makePct := 100.0 * 14 / 32
	if o == models.PlayoffMiss {
		return 100 - makePct
	}
	return makePct
}
