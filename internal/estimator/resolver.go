package estimator

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/longshot/internal/calibration"
	"github.com/yourusername/longshot/internal/metrics"
	"github.com/yourusername/longshot/internal/models"
	"github.com/yourusername/longshot/internal/oddsmath"
)

// MarketSource supplies live reference lines for the market-anchored
// resolver. Lookups carry their own timeout; a failed lookup is not an
// error for the caller, just "no anchor available".
type MarketSource interface {
	GetReference(ctx context.Context, market, entity string) (*models.MarketReference, error)
}

// Context carries per-request resolution inputs shared by all resolvers
type Context struct {
	AsOf    time.Time
	Calib   *calibration.Bundle
	Markets MarketSource
	Logger  logrus.FieldLogger
	Trace   *models.Trace
}

// Resolver prices one atomic outcome descriptor. TryResolve returns
// applicable=false when the descriptor is outside the resolver's family;
// the chain then moves to the next entry.
type Resolver interface {
	Name() string
	TryResolve(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) (models.Outcome, bool)
}

// Chain evaluates resolvers in declared priority order; the first
// applicable resolver wins. The order itself is data, not control flow.
type Chain struct {
	resolvers []Resolver
	logger    logrus.FieldLogger
}

// NewChain builds the default resolver chain in priority order
func NewChain(logger logrus.FieldLogger) *Chain {
	return &Chain{
		resolvers: []Resolver{
			&CountingStatResolver{},
			&ContinuousStatResolver{},
			&CareerAccumulationResolver{},
			&RaceResolver{},
			&MarketAnchoredResolver{},
			&TeamWinTotalResolver{},
			&CohortResolver{},
			&HistoricalBaselineResolver{},
		},
		logger: logger,
	}
}

// Resolve runs the chain for one descriptor. Declines and hard
// ineligibility both surface as tagged outcomes, never as errors.
func (c *Chain) Resolve(ctx context.Context, d *models.OutcomeDescriptor, rctx *Context) models.Outcome {
	if decline := CheckConstraints(d); decline != nil {
		rctx.Trace.Add(fmt.Sprintf("constraint: %s", decline.Detail))
		return models.Outcome{Declined: decline}
	}

	for _, r := range c.resolvers {
		outcome, applicable := r.TryResolve(ctx, d, rctx)
		if !applicable {
			continue
		}
		rctx.Trace.Add(fmt.Sprintf("resolver=%s descriptor=%s", r.Name(), d))
		metrics.RecordResolverHit(r.Name())
		if outcome.OK() {
			c.logger.WithFields(logrus.Fields{
				"resolver":   r.Name(),
				"descriptor": d.String(),
				"pct":        outcome.Resolved.ProbabilityPct,
			}).Debug("Descriptor resolved")
		}
		return outcome
	}

	return models.Declined(models.SourceUnsupported,
		fmt.Sprintf("no resolver applies to %s", d))
}

// CheckConstraints gates hard impossibilities before any resolver runs:
// retired or deceased players cannot accrue active-career events, and a
// role mismatch (a kicker's passing-touchdown season) is not priceable.
func CheckConstraints(d *models.OutcomeDescriptor) *models.Decline {
	if d.Player != nil {
		switch d.Player.Status {
		case models.StatusDeceased:
			return &models.Decline{
				Reason: models.SourceConstraintViolation,
				Detail: fmt.Sprintf("%s is deceased and cannot accrue new outcomes", d.Player.Name),
			}
		case models.StatusRetired:
			if d.Kind == models.KindPlayerStatThreshold || d.Kind == models.KindPlayerAward {
				return &models.Decline{
					Reason: models.SourceIneligibleEntity,
					Detail: fmt.Sprintf("%s is retired; active-career events are off the board", d.Player.Name),
				}
			}
		}
	}

	if d.Kind == models.KindPlayerStatThreshold && d.Threshold < 0 {
		return &models.Decline{
			Reason: models.SourceConstraintViolation,
			Detail: "negative stat thresholds are not measurable",
		}
	}

	if d.Kind == models.KindRaceBefore {
		if dec := CheckConstraints(d.SideA); dec != nil {
			return dec
		}
		if dec := CheckConstraints(d.SideB); dec != nil {
			return dec
		}
	}

	return nil
}

// clampPct keeps probabilities in the configured open interval; estimates
// are never exactly 0% or 100%.
func clampPct(pct float64, b calibration.Bounds) float64 {
	if pct < b.ClampMinPct {
		return b.ClampMinPct
	}
	if pct > b.ClampMaxPct {
		return b.ClampMaxPct
	}
	return pct
}

// buildEstimate assembles a ProbabilityEstimate with derived odds
func buildEstimate(pct float64, conf models.Confidence, source models.SourceType,
	label, rationale string, assumptions []string, eventKey string,
	bounds calibration.Bounds) *models.ProbabilityEstimate {

	pct = oddsmath.RoundPct(clampPct(pct, bounds))
	american, err := oddsmath.PctToAmerican(pct)
	if err != nil {
		american = 10000
	}

	return &models.ProbabilityEstimate{
		ProbabilityPct: pct,
		Odds:           oddsmath.FormatAmerican(american),
		Confidence:     conf,
		SourceType:     source,
		Label:          label,
		Rationale:      rationale,
		Assumptions:    assumptions,
		EventKey:       eventKey,
	}
}
