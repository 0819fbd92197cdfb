package estimator

import (
	"context"
	"fmt"
	"math"

	"github.com/yourusername/longshot/internal/models"
)

// CohortResolver prices league-wide "any team/player" propositions from
// calibrated per-season cohort rates. An all-time scope compounds the
// per-season rate across the horizon, so the any-time probability always
// dominates its season-bounded version.
type CohortResolver struct{}

// Name returns the resolver name
func (r *CohortResolver) Name() string { return "wildcard_cohort" }

// TryResolve prices a wildcard cohort descriptor
func (r *CohortResolver) TryResolve(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) (models.Outcome, bool) {
	if d.Kind != models.KindWildcardCohort {
		return models.Outcome{}, false
	}

	seasonPct, ok := rctx.Calib.CohortRates[string(d.Cohort)]
	if !ok {
		return models.Declined(models.SourceUnsupported,
			fmt.Sprintf("no cohort rate for %s", d.Cohort)), true
	}

	pct := seasonPct
	scope := "this season"
	if d.AllTime {
		horizon := rctx.Calib.Decay.HorizonSeasons
		pct = (1 - math.Pow(1-seasonPct/100, float64(horizon))) * 100
		scope = fmt.Sprintf("within %d seasons", horizon)
	}

	label := fmt.Sprintf("%s (%s)", cohortWord(d.Cohort), scope)
	rationale := fmt.Sprintf("League-wide base rate of %.1f%% per season applied across the cohort.", seasonPct)
	assumptions := []string{"independent seasons"}

	return models.Resolved(buildEstimate(pct, models.ConfidenceLow, models.SourceCohortBaseline,
		label, rationale, assumptions, d.EventKey(), rctx.Calib.Bounds)), true
}

func cohortWord(c models.CohortKind) string {
	switch c {
	case models.CohortPerfectSeason:
		return "a team goes 17-0"
	case models.CohortWinlessSeason:
		return "a team goes 0-17"
	case models.CohortQBFiftyTD:
		return "a quarterback throws 50 touchdowns"
	case models.CohortTwoThousandRB:
		return "a running back rushes for 2000 yards"
	}
	return string(c)
}
