package estimator

import (
	"context"
	"fmt"
	"math"

	"github.com/yourusername/longshot/internal/calibration"
	"github.com/yourusername/longshot/internal/models"
)

// CountingStatResolver prices season counting-stat thresholds (touchdowns,
// interceptions, receptions) from a Poisson or negative-binomial tail with
// a position/tier prior mean. Dispersion and sample depth modulate the
// confidence tag, not the point estimate.
type CountingStatResolver struct{}

// Name returns the resolver name
func (r *CountingStatResolver) Name() string { return "counting_stat" }

// TryResolve prices a counting-stat threshold descriptor
func (r *CountingStatResolver) TryResolve(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) (models.Outcome, bool) {
	if d.Kind != models.KindPlayerStatThreshold || d.Player == nil {
		return models.Outcome{}, false
	}
	model, ok := rctx.Calib.Stats[d.Metric]
	if !ok || model.Kind != calibration.StatCounting {
		return models.Outcome{}, false
	}

	tier := tierFor(d.Player)
	mean, plausible := rctx.Calib.StatMean(d.Metric, d.Player.Position, tier)
	if !plausible {
		return models.Declined(models.SourceConstraintViolation,
			fmt.Sprintf("%s does not accrue %s from the %s position",
				d.Player.Name, d.Metric, d.Player.Position)), true
	}

	k := int(math.Ceil(d.Threshold))
	tail := negBinomTailAtLeast(mean, model.Dispersion, k)

	pct := tail * 100
	switch d.Comparator {
	case models.CmpAtMost:
		pct = (1 - negBinomTailAtLeast(mean, model.Dispersion, k+1)) * 100
	case models.CmpExactly:
		atLeastK := negBinomTailAtLeast(mean, model.Dispersion, k)
		atLeastK1 := negBinomTailAtLeast(mean, model.Dispersion, k+1)
		pct = (atLeastK - atLeastK1) * 100
	}

	conf := models.ConfidenceMedium
	if tier == calibration.TierDepth || model.Dispersion > 1.8 {
		conf = models.ConfidenceLow
	}

	label := fmt.Sprintf("%s %s %s %.0f (season)", d.Player.Name, d.Metric, comparatorWord(d.Comparator), d.Threshold)
	rationale := fmt.Sprintf("Season %s modeled as an overdispersed count around a %s-tier prior mean of %.0f.",
		d.Metric, tier, mean)
	assumptions := []string{
		fmt.Sprintf("prior mean %.1f for %s at %s", mean, d.Player.Position, tier),
		fmt.Sprintf("dispersion %.1f", model.Dispersion),
	}

	return models.Resolved(buildEstimate(pct, conf, models.SourceStatisticalModel,
		label, rationale, assumptions, d.EventKey(), rctx.Calib.Bounds)), true
}

func comparatorWord(c models.Comparator) string {
	switch c {
	case models.CmpAtMost:
		return "at most"
	case models.CmpExactly:
		return "exactly"
	default:
		return "at least"
	}
}
