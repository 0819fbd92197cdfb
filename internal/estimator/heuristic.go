package estimator

import (
	"fmt"

	"github.com/yourusername/longshot/internal/calibration"
	"github.com/yourusername/longshot/internal/models"
)

// coarse notable-outcome priors for the degraded path, by player tier
const (
	heuristicElitePct   = 10.0
	heuristicStarterPct = 3.0
	heuristicDepthPct   = 1.0
)

// PriorHeuristic prices prompts no resolver family recognized when the
// generative provider cannot serve them: a coarse structural prior keyed on
// the strongest resolved entity. Always Low confidence, and never cached
// beyond the short tiers.
type PriorHeuristic struct {
	Calib *calibration.Bundle
}

// Estimate returns a prior-based estimate for the primary entity, or nil
// when no entity anchors one.
func (h *PriorHeuristic) Estimate(text string, entities []models.Entity) *models.ProbabilityEstimate {
	var player *models.Player
	var team *models.Team
	for i := range entities {
		e := entities[i]
		if e.Kind == models.EntityPlayer && player == nil {
			player = e.Player
		}
		if e.Kind == models.EntityTeam && team == nil {
			team = e.Team
		}
	}

	var pct float64
	var subject string
	switch {
	case player != nil:
		switch tierFor(player) {
		case calibration.TierElite:
			pct = heuristicElitePct
		case calibration.TierStarter:
			pct = heuristicStarterPct
		default:
			pct = heuristicDepthPct
		}
		subject = player.Name
	case team != nil:
		pct = baselineMarketPct(models.MarketSuperBowl)
		subject = team.Name
	default:
		return nil
	}

	rationale := "Generative provider unavailable; priced from a coarse structural prior for the named entity."
	assumptions := []string{
		fmt.Sprintf("prior anchored on %s, not on the specific outcome asked about", subject),
	}

	return buildEstimate(pct, models.ConfidenceLow, models.SourceHistoricalBaseline,
		text, rationale, assumptions, "heuristic", h.Calib.Bounds)
}
