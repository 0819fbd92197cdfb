package estimator

import (
	"context"
	"fmt"
	"math"

	"github.com/yourusername/longshot/internal/calibration"
	"github.com/yourusername/longshot/internal/models"
)

// ContinuousStatResolver prices yardage-type season thresholds from a
// continuity-corrected normal tail with a tier-derived mean and a standard
// deviation that scales with that mean.
type ContinuousStatResolver struct{}

// Name returns the resolver name
func (r *ContinuousStatResolver) Name() string { return "continuous_stat" }

// TryResolve prices a continuous-stat threshold descriptor
func (r *ContinuousStatResolver) TryResolve(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) (models.Outcome, bool) {
	if d.Kind != models.KindPlayerStatThreshold || d.Player == nil {
		return models.Outcome{}, false
	}
	model, ok := rctx.Calib.Stats[d.Metric]
	if !ok || model.Kind != calibration.StatContinuous {
		return models.Outcome{}, false
	}

	tier := tierFor(d.Player)
	mean, plausible := rctx.Calib.StatMean(d.Metric, d.Player.Position, tier)
	if !plausible {
		return models.Declined(models.SourceConstraintViolation,
			fmt.Sprintf("%s does not accrue %s from the %s position",
				d.Player.Name, d.Metric, d.Player.Position)), true
	}

	sd := model.VarCoef * mean
	tail := normalTailAtLeast(mean, sd, d.Threshold)

	pct := tail * 100
	if d.Comparator == models.CmpAtMost {
		pct = (1 - tail) * 100
	}

	conf := models.ConfidenceMedium
	z := math.Abs(d.Threshold-mean) / math.Max(sd, 1)
	if tier == calibration.TierDepth || z > 2 {
		conf = models.ConfidenceLow
	}

	label := fmt.Sprintf("%s %s %s %.0f (season)", d.Player.Name, d.Metric, comparatorWord(d.Comparator), d.Threshold)
	rationale := fmt.Sprintf("Season %s modeled as normal around a %s-tier prior mean of %.0f with spread scaling with volume.",
		d.Metric, tier, mean)
	assumptions := []string{
		fmt.Sprintf("prior mean %.0f, sd %.0f for %s at %s", mean, sd, d.Player.Position, tier),
	}

	return models.Resolved(buildEstimate(pct, conf, models.SourceStatisticalModel,
		label, rationale, assumptions, d.EventKey(), rctx.Calib.Bounds)), true
}
