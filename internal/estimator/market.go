package estimator

import (
	"context"
	"fmt"

	"github.com/yourusername/longshot/internal/models"
)

// MarketAnchoredResolver prices team futures from a live reference line
// when the odds provider carries the same market, or derives one from a
// related market through a fixed scaling factor. Direct anchors are the
// highest-confidence source in the engine.
type MarketAnchoredResolver struct{}

// Name returns the resolver name
func (r *MarketAnchoredResolver) Name() string { return "market_anchored" }

// related markets to try, in preference order, when deriving
var derivationOrder = []string{"super_bowl", "conference", "division"}

// TryResolve prices a team market or playoff descriptor from reference lines
func (r *MarketAnchoredResolver) TryResolve(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) (models.Outcome, bool) {
	if d.Kind != models.KindTeamMarket && d.Kind != models.KindTeamPlayoff {
		return models.Outcome{}, false
	}
	if d.Team == nil || rctx.Markets == nil {
		return models.Outcome{}, false
	}

	target := string(d.Market)
	if d.Kind == models.KindTeamPlayoff {
		target = "playoffs"
	}

	// Direct anchor
	if d.Kind == models.KindTeamMarket {
		if ref, err := rctx.Markets.GetReference(ctx, target, d.Team.Name); err == nil && ref != nil {
			rctx.Trace.Add(fmt.Sprintf("market anchor %s %s %s", target, d.Team.Name, ref.ProviderLabel))
			return models.Resolved(r.fromReference(d, ref, rctx)), true
		}
	}

	// Derived anchor via a related market's line
	for _, from := range derivationOrder {
		if from == target {
			continue
		}
		factor, ok := rctx.Calib.ScalingFactor(from, target)
		if !ok {
			continue
		}
		ref, err := rctx.Markets.GetReference(ctx, from, d.Team.Name)
		if err != nil || ref == nil {
			continue
		}

		pct := ref.ImpliedProbabilityPct * factor
		if d.Kind == models.KindTeamPlayoff && d.Playoff == models.PlayoffMiss {
			pct = 100 - pct
		}

		label := fmt.Sprintf("%s %s", d.Team.Name, targetWord(d, target))
		rationale := fmt.Sprintf("Derived from the %s %s line (%s) via a fixed related-market factor.",
			d.Team.Name, marketWord(models.Market(from)), ref.ProviderLabel)
		assumptions := []string{fmt.Sprintf("scaling %s -> %s x%.2f", from, target, factor)}

		return models.Resolved(buildEstimate(pct, models.ConfidenceMedium, models.SourceMarketAnchor,
			label, rationale, assumptions, d.EventKey(), rctx.Calib.Bounds)), true
	}

	// No anchor available; later tiers take over
	return models.Outcome{}, false
}

func (r *MarketAnchoredResolver) fromReference(d *models.OutcomeDescriptor, ref *models.MarketReference, rctx *Context) *models.ProbabilityEstimate {
	label := fmt.Sprintf("%s wins the %s", d.Team.Name, marketWord(d.Market))
	rationale := fmt.Sprintf("Anchored to the live %s line from %s as of %s.",
		marketWord(d.Market), ref.ProviderLabel, ref.AsOfDate.Format("2006-01-02"))
	assumptions := []string{"reference line reflects current market consensus"}

	return buildEstimate(ref.ImpliedProbabilityPct, models.ConfidenceHigh, models.SourceMarketAnchor,
		label, rationale, assumptions, d.EventKey(), rctx.Calib.Bounds)
}

func targetWord(d *models.OutcomeDescriptor, target string) string {
	if d.Kind == models.KindTeamPlayoff {
		if d.Playoff == models.PlayoffMiss {
			return "misses the playoffs"
		}
		return "makes the playoffs"
	}
	return "wins the " + marketWord(models.Market(target))
}
