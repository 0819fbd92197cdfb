package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/longshot/internal/cache"
	"github.com/yourusername/longshot/internal/calibration"
	"github.com/yourusername/longshot/internal/combine"
	"github.com/yourusername/longshot/internal/consistency"
	"github.com/yourusername/longshot/internal/estimator"
	"github.com/yourusername/longshot/internal/fallback"
	"github.com/yourusername/longshot/internal/intent"
	"github.com/yourusername/longshot/internal/metrics"
	"github.com/yourusername/longshot/internal/models"
	"github.com/yourusername/longshot/internal/normalize"
	"github.com/yourusername/longshot/internal/oddsmath"
	"github.com/yourusername/longshot/internal/roster"
)

// sentinel declines all quote the same extreme longshot line so the odds
// and probability stay mutually derivable
const sentinelOdds = 25000

// MarketFeed is the engine's view of the live odds provider: reference
// lookups for resolvers plus the current implied-probability fingerprint
// for snapshots. Nil means no provider is wired and resolvers use modeled
// baselines only.
type MarketFeed interface {
	estimator.MarketSource
	MarketProbs() map[string]float64
}

// StableStore persists stable-tier entries across restarts. Best effort:
// persistence failures are logged, never surfaced to the asker.
type StableStore interface {
	Save(ctx context.Context, entry *models.CacheEntry) error
}

// Engine runs the full estimation pipeline: normalize, cache consult,
// classify, resolve, combine, enforce, cache write. Estimate never returns
// an error; every failure mode maps onto a sentinel estimate.
type Engine struct {
	normalizer *normalize.Normalizer
	roster     *roster.Index
	classifier *intent.Classifier
	chain      *estimator.Chain
	combiner   *combine.Combiner
	enforcer   *consistency.Enforcer
	cache      *cache.Manager
	calib      *calibration.Bundle
	markets    MarketFeed
	gateway    *fallback.Gateway
	store      StableStore
	logger     logrus.FieldLogger
	clock      func() time.Time
}

// Options carries the optional collaborators
type Options struct {
	Markets MarketFeed
	Gateway *fallback.Gateway
	Store   StableStore
	Clock   func() time.Time
}

// New assembles an engine around a roster index and calibration bundle
func New(ix *roster.Index, calib *calibration.Bundle, cacheMgr *cache.Manager, logger logrus.FieldLogger, opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	if opts.Gateway != nil {
		opts.Gateway.SetHeuristic(&estimator.PriorHeuristic{Calib: calib})
	}
	return &Engine{
		normalizer: normalize.New(),
		roster:     ix,
		classifier: intent.NewClassifier(ix, logger),
		chain:      estimator.NewChain(logger),
		combiner:   combine.NewCombiner(calib, logger),
		enforcer:   consistency.NewEnforcer(calib, logger),
		cache:      cacheMgr,
		calib:      calib,
		markets:    opts.Markets,
		gateway:    opts.Gateway,
		store:      opts.Store,
		logger:     logger.WithField("component", "engine"),
		clock:      clock,
	}
}

// Estimate prices one free-text hypothetical. The same prompt against the
// same roster, calibration, and market state always yields the same answer.
func (e *Engine) Estimate(ctx context.Context, raw string) *models.ProbabilityEstimate {
	start := time.Now()
	est := e.estimate(ctx, raw)
	metrics.RecordEstimate(string(est.SourceType), time.Since(start).Seconds())
	return est
}

func (e *Engine) estimate(ctx context.Context, raw string) *models.ProbabilityEstimate {
	trace := models.NewTrace()

	prompt := e.normalizer.Normalize(raw)
	if prompt.Text == "" {
		return e.sentinel(models.SourceNeedsClarification, "the prompt is empty", raw, trace)
	}
	trace.Add("normalized: " + prompt.Text)

	if est := e.cache.GetEphemeral(prompt.CanonicalKey); est != nil {
		trace.Add("cache hit: ephemeral")
		est.Trace = trace
		return est
	}
	if est := e.cache.GetCanonical(prompt.CanonicalKey); est != nil {
		trace.Add("cache hit: canonical")
		est.Trace = trace
		return est
	}

	res := e.classifier.Classify(prompt.Text)
	snap := e.snapshot(res.Entities)

	if est := e.cache.GetStable(prompt.CanonicalKey, snap); est != nil {
		trace.Add("cache hit: stable")
		est.Trace = trace
		return est
	}

	if res.Clarify != "" {
		return e.sentinel(models.SourceNeedsClarification, res.Clarify, prompt.Text, trace)
	}
	if res.Subjective {
		return e.sentinel(models.SourceUnsupported, "subjective judgments are not measurable events", prompt.Text, trace)
	}

	rctx := &estimator.Context{
		AsOf:    e.clock(),
		Calib:   e.calib,
		Markets: e.markets,
		Logger:  e.logger,
		Trace:   trace,
	}

	var outcome models.Outcome
	switch {
	case res.Single != nil:
		outcome = e.resolveSingle(ctx, res.Single, rctx)
	case res.Composite != nil:
		outcome = e.resolveComposite(ctx, res.Composite, rctx)
	default:
		outcome = models.Declined(models.SourceUnsupported, "no recognizable outcome shape")
	}

	if outcome.Declined != nil && outcome.Declined.Reason == models.SourceUnsupported {
		if e.gateway != nil && fallback.Eligible(prompt.Text, res.Entities, res.Subjective) {
			trace.Add("escalated to generative fallback")
			outcome = e.gateway.Estimate(ctx, prompt.Text, res.Entities)
			switch {
			case outcome.OK() && outcome.Resolved.SourceType != models.SourceGenerativeFallback:
				trace.Add("degraded to heuristic prior")
				metrics.RecordFallbackCall("degraded")
			case outcome.OK():
				metrics.RecordFallbackCall("resolved")
			default:
				metrics.RecordFallbackCall("declined")
			}
		}
	}

	if outcome.Declined != nil {
		return e.sentinel(outcome.Declined.Reason, outcome.Declined.Detail, prompt.Text, trace)
	}

	est := outcome.Resolved
	if est.Label == "" {
		est.Label = prompt.Text
	}
	e.enforcer.FinalizeContract(est)
	est.Trace = trace

	e.cache.Store(prompt.CanonicalKey, est, snap, lowVolatility(res, est))
	e.persistStable(ctx, prompt.CanonicalKey)

	return est
}

// resolveSingle prices an atomic descriptor and applies the cross-estimate
// ordering invariants that need a second pricing: an n-fold accumulation
// stays below its damped single occurrence, and an open-horizon estimate
// never drops below its single-season counterpart.
func (e *Engine) resolveSingle(ctx context.Context, d *models.OutcomeDescriptor, rctx *estimator.Context) models.Outcome {
	outcome := e.chain.Resolve(ctx, d, rctx)
	if outcome.Declined != nil {
		return outcome
	}

	if d.Count > 1 {
		single := *d
		single.Count = 1
		if so := e.chain.Resolve(ctx, &single, rctx); so.OK() {
			e.enforcer.CapMultiplicity(outcome.Resolved, so.Resolved)
		}
	}

	if d.AllTime && d.Count <= 1 {
		season := *d
		season.AllTime = false
		if so := e.chain.Resolve(ctx, &season, rctx); so.OK() {
			e.enforcer.FloorOpenScope(outcome.Resolved, so.Resolved)
		}
	}

	return outcome
}

func (e *Engine) resolveComposite(ctx context.Context, comp *intent.Composite, rctx *estimator.Context) models.Outcome {
	if decline := e.enforcer.CheckContradiction(comp); decline != nil {
		return models.Outcome{Declined: decline}
	}

	outcomes := make([]models.Outcome, len(comp.Clauses))
	for i, clause := range comp.Clauses {
		outcomes[i] = e.resolveSingle(ctx, clause, rctx)
	}
	return e.combiner.Combine(comp, outcomes)
}

// snapshot fingerprints the external state this request depends on
func (e *Engine) snapshot(entities []models.Entity) *models.Snapshot {
	snap := &models.Snapshot{
		TakenAt:              e.clock(),
		RosterDigest:         e.roster.Digest(),
		CalibrationSignature: e.calib.Signature(),
	}

	for _, ent := range entities {
		if ent.Kind != models.EntityPlayer || ent.Player == nil {
			continue
		}
		if state, ok := e.roster.PlayerState(ent.Player.Name); ok {
			if snap.PlayerStates == nil {
				snap.PlayerStates = make(map[string]string)
			}
			snap.PlayerStates[ent.Player.Name] = state
		}
	}

	if e.markets != nil {
		if probs := e.markets.MarketProbs(); len(probs) > 0 {
			snap.MarketProbs = probs
		}
	}
	return snap
}

func (e *Engine) persistStable(ctx context.Context, key string) {
	if e.store == nil {
		return
	}
	entry, ok := e.cache.StableEntry(key)
	if !ok {
		return
	}
	if err := e.store.Save(ctx, entry); err != nil {
		e.logger.WithError(err).Warn("failed to persist stable entry")
	}
}

// lowVolatility decides stable-tier eligibility. Structural baselines and
// open-horizon league-wide rates barely move between seasons; anything
// anchored to live markets or a specific player's season does. A result
// for an unrecognized shape came through the fallback ladder and is never
// stable, whatever its source tag.
func lowVolatility(res intent.Result, est *models.ProbabilityEstimate) bool {
	if res.Single == nil && res.Composite == nil {
		return false
	}
	switch est.SourceType {
	case models.SourceHistoricalBaseline, models.SourceCohortBaseline:
		return true
	}
	if res.Single != nil && res.Single.Kind == models.KindWildcardCohort {
		return true
	}
	return false
}

// sentinel builds the uniform decline estimate: fixed extreme odds, Low
// confidence, and the reason in the source-type field.
func (e *Engine) sentinel(reason models.SourceType, detail, label string, trace *models.Trace) *models.ProbabilityEstimate {
	trace.Add("declined: " + string(reason))
	pct, err := oddsmath.AmericanToImpliedPct(sentinelOdds)
	if err != nil {
		pct = 0.4
	}
	return &models.ProbabilityEstimate{
		ProbabilityPct: oddsmath.RoundPct(pct),
		Odds:           oddsmath.FormatAmerican(sentinelOdds),
		Confidence:     models.ConfidenceLow,
		SourceType:     reason,
		Label:          label,
		Rationale:      detail,
		Trace:          trace,
	}
}
