package estimator

import (
	"context"
	"fmt"
	"math"

	"github.com/yourusername/longshot/internal/models"
)

// TeamWinTotalResolver prices season win-total thresholds from a normal
// approximation whose mean shifts with the team's futures strength when a
// reference line is available.
type TeamWinTotalResolver struct{}

// Name returns the resolver name
func (r *TeamWinTotalResolver) Name() string { return "team_win_total" }

const (
	seasonGames     = 17
	neutralWinMean  = 8.5
	winTotalStdDev  = 2.8
	winsPerSBPoint  = 0.22 // extra mean wins per Super Bowl implied pct point
	maxWinMeanShift = 4.0
)

// TryResolve prices a team win-total descriptor
func (r *TeamWinTotalResolver) TryResolve(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) (models.Outcome, bool) {
	if d.Kind != models.KindTeamWinTotal || d.Team == nil {
		return models.Outcome{}, false
	}

	if d.Wins > seasonGames {
		return models.Declined(models.SourceConstraintViolation,
			fmt.Sprintf("%d wins exceeds the %d-game season", d.Wins, seasonGames)), true
	}

	mean := neutralWinMean
	anchored := false
	if rctx.Markets != nil {
		if ref, err := rctx.Markets.GetReference(ctx, "super_bowl", d.Team.Name); err == nil && ref != nil {
			shift := (ref.ImpliedProbabilityPct - 100.0/32) * winsPerSBPoint
			shift = math.Max(-maxWinMeanShift, math.Min(maxWinMeanShift, shift))
			mean += shift
			anchored = true
		}
	}

	tail := normalTailAtLeast(mean, winTotalStdDev, float64(d.Wins))
	pct := tail * 100
	if d.Comparator == models.CmpAtMost {
		pct = (1 - normalTailAtLeast(mean, winTotalStdDev, float64(d.Wins+1))) * 100
	}

	conf := models.ConfidenceLow
	if anchored {
		conf = models.ConfidenceMedium
	}

	label := fmt.Sprintf("%s wins %s %d games", d.Team.Name, comparatorWord(d.Comparator), d.Wins)
	rationale := fmt.Sprintf("Season win total modeled as normal around a mean of %.1f wins.", mean)
	assumptions := []string{fmt.Sprintf("win-total sd %.1f", winTotalStdDev)}
	if anchored {
		assumptions = append(assumptions, "mean shifted by the live Super Bowl line")
	}

	return models.Resolved(buildEstimate(pct, conf, models.SourceStatisticalModel,
		label, rationale, assumptions, d.EventKey(), rctx.Calib.Bounds)), true
}
