package estimator

import (
	"context"
	"fmt"

	"github.com/yourusername/longshot/internal/models"
)

// HistoricalBaselineResolver is the last resort: field-neutral structural
// priors for team markets when no anchor and no statistical model applies.
// Always the lowest confidence tier.
type HistoricalBaselineResolver struct{}

// Name returns the resolver name
func (r *HistoricalBaselineResolver) Name() string { return "historical_baseline" }

// TryResolve prices a team market or playoff descriptor from structural priors
func (r *HistoricalBaselineResolver) TryResolve(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) (models.Outcome, bool) {
	if d.Team == nil {
		return models.Outcome{}, false
	}

	var pct float64
	var label string

	switch d.Kind {
	case models.KindTeamMarket:
		pct = baselineMarketPct(d.Market)
		label = fmt.Sprintf("%s wins the %s", d.Team.Name, marketWord(d.Market))
	case models.KindTeamPlayoff:
		pct = baselinePlayoffPct(d.Playoff)
		label = fmt.Sprintf("%s %s", d.Team.Name, targetWord(d, "playoffs"))
	default:
		return models.Outcome{}, false
	}

	rationale := "Field-neutral structural prior; no live line or statistical model applied."
	assumptions := []string{"every franchise treated as league-average"}

	return models.Resolved(buildEstimate(pct, models.ConfidenceLow, models.SourceHistoricalBaseline,
		label, rationale, assumptions, d.EventKey(), rctx.Calib.Bounds)), true
}
