package engine

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/longshot/internal/cache"
	"github.com/yourusername/longshot/internal/calibration"
	"github.com/yourusername/longshot/internal/fallback"
	"github.com/yourusername/longshot/internal/models"
	"github.com/yourusername/longshot/internal/oddsmath"
	"github.com/yourusername/longshot/internal/provider"
	"github.com/yourusername/longshot/internal/roster"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testRoster() *roster.Index {
	ix := roster.NewIndex(nil, testLogger())
	ix.SetPlayers([]models.Player{
		{ID: "p1", Name: "Patrick Mahomes", Team: "Kansas City Chiefs", Position: "QB", Status: models.StatusActive, ExperienceYears: 9, Age: 30, PopularityRank: 1},
		{ID: "p2", Name: "Josh Allen", Team: "Buffalo Bills", Position: "QB", Status: models.StatusActive, ExperienceYears: 8, Age: 30, PopularityRank: 2},
		{ID: "p3", Name: "Tom Brady", Team: "", Position: "QB", Status: models.StatusRetired, ExperienceYears: 23, Age: 49, PopularityRank: 8},
	})
	return ix
}

func newTestEngine(opts Options) *Engine {
	logger := testLogger()
	cacheMgr := cache.NewManager(cache.DefaultConfig(), opts.Clock, logger)
	return New(testRoster(), calibration.Default(), cacheMgr, logger, opts)
}

func TestEstimateNeverReturnsNil(t *testing.T) {
	e := newTestEngine(Options{})
	prompts := []string{
		"",
		"Mahomes throws 40 touchdowns",
		"the chiefs win the super bowl",
		"what is the meaning of football",
		"Patrick Mahomes is the GOAT",
	}

	for _, p := range prompts {
		est := e.Estimate(context.Background(), p)
		require.NotNilf(t, est, "prompt %q", p)
		assert.Greaterf(t, est.ProbabilityPct, 0.0, "prompt %q", p)
		assert.NotEmptyf(t, est.Odds, "prompt %q", p)
	}
}

func TestEstimateStatPrompt(t *testing.T) {
	e := newTestEngine(Options{})
	est := e.Estimate(context.Background(), "Patrick Mahomes throws 40 touchdowns this season")

	assert.Equal(t, models.SourceStatisticalModel, est.SourceType)
	assert.False(t, est.IsSentinel())
	assert.Greater(t, est.ProbabilityPct, 1.0)
	assert.Less(t, est.ProbabilityPct, 50.0)
}

func TestEstimateDeterministic(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) }
	prompt := "the chiefs win the super bowl"

	a := newTestEngine(Options{Clock: clock}).Estimate(context.Background(), prompt)
	b := newTestEngine(Options{Clock: clock}).Estimate(context.Background(), prompt)

	assert.Equal(t, a.ProbabilityPct, b.ProbabilityPct)
	assert.Equal(t, a.Odds, b.Odds)
	assert.Equal(t, a.SourceType, b.SourceType)
}

func TestEstimateCacheHit(t *testing.T) {
	e := newTestEngine(Options{})
	first := e.Estimate(context.Background(), "Josh Allen throws 35 touchdowns")
	second := e.Estimate(context.Background(), "Josh Allen throws 35 touchdowns")

	assert.Equal(t, first.ProbabilityPct, second.ProbabilityPct)
	require.NotNil(t, second.Trace)
	assert.Contains(t, second.Trace.Steps, "cache hit: ephemeral")
}

func TestEstimateEphemeralCacheAcrossPhrasings(t *testing.T) {
	e := newTestEngine(Options{})
	e.Estimate(context.Background(), "the chiefs win the super bowl")
	second := e.Estimate(context.Background(), "The Chiefs   win the Super Bowl!")

	// tiers share the canonical key space, so a rephrasing hits the
	// freshest tier first
	require.NotNil(t, second.Trace)
	assert.Contains(t, second.Trace.Steps, "cache hit: ephemeral")
}

func TestEstimateCanonicalCacheOutlivesEphemeral(t *testing.T) {
	logger := testLogger()
	cfg := cache.DefaultConfig()
	cfg.EphemeralTTL = time.Millisecond
	cacheMgr := cache.NewManager(cfg, nil, logger)
	e := New(testRoster(), calibration.Default(), cacheMgr, logger, Options{})

	e.Estimate(context.Background(), "the chiefs win the super bowl")
	time.Sleep(10 * time.Millisecond)
	second := e.Estimate(context.Background(), "The Chiefs   win the Super Bowl!")

	require.NotNil(t, second.Trace)
	assert.Contains(t, second.Trace.Steps, "cache hit: canonical")
}

func TestEmptyPromptSentinel(t *testing.T) {
	e := newTestEngine(Options{})
	est := e.Estimate(context.Background(), "   ")

	assert.Equal(t, models.SourceNeedsClarification, est.SourceType)
	assert.True(t, est.IsSentinel())
}

func TestSubjectivePromptSentinel(t *testing.T) {
	e := newTestEngine(Options{})
	est := e.Estimate(context.Background(), "Patrick Mahomes is the greatest of all time")

	assert.Equal(t, models.SourceUnsupported, est.SourceType)
}

func TestUnknownPlayerSentinel(t *testing.T) {
	e := newTestEngine(Options{})
	est := e.Estimate(context.Background(), "Zorblax Nine throws 40 touchdowns")

	assert.True(t, est.IsSentinel())
}

func TestRetiredPlayerSentinel(t *testing.T) {
	e := newTestEngine(Options{})
	est := e.Estimate(context.Background(), "Tom Brady throws 40 touchdowns this season")

	assert.Equal(t, models.SourceIneligibleEntity, est.SourceType)
	assert.Equal(t, models.ConfidenceLow, est.Confidence)
}

func TestSentinelOddsDerivable(t *testing.T) {
	e := newTestEngine(Options{})
	est := e.Estimate(context.Background(), "")

	line, err := oddsmath.ParseAmerican(est.Odds)
	require.NoError(t, err)
	assert.True(t, oddsmath.Consistent(line, est.ProbabilityPct, oddsmath.DefaultTolerancePct))
}

func TestEverScopeAtLeastSeasonScope(t *testing.T) {
	e := newTestEngine(Options{})
	season := e.Estimate(context.Background(), "Josh Allen wins the mvp this season")
	ever := e.Estimate(context.Background(), "Josh Allen ever wins the mvp")

	require.False(t, season.IsSentinel())
	require.False(t, ever.IsSentinel())
	assert.GreaterOrEqual(t, ever.ProbabilityPct, season.ProbabilityPct)
}

func TestRepeatCappedBelowSingle(t *testing.T) {
	e := newTestEngine(Options{})
	single := e.Estimate(context.Background(), "the chiefs ever win the super bowl")
	triple := e.Estimate(context.Background(), "the chiefs win 3 consecutive super bowls")

	require.False(t, single.IsSentinel())
	require.False(t, triple.IsSentinel())
	assert.Less(t, triple.ProbabilityPct, single.ProbabilityPct)
}

func TestContradictionDeclined(t *testing.T) {
	e := newTestEngine(Options{})
	est := e.Estimate(context.Background(), "the chiefs win the super bowl and the bills win the super bowl")

	assert.Equal(t, models.SourceInconsistent, est.SourceType)
}

func TestCompositeConjunction(t *testing.T) {
	e := newTestEngine(Options{})
	joint := e.Estimate(context.Background(), "Patrick Mahomes wins the mvp and the chiefs win the super bowl")
	solo := e.Estimate(context.Background(), "Patrick Mahomes wins the mvp")

	require.False(t, joint.IsSentinel())
	assert.Equal(t, models.SourceComposite, joint.SourceType)
	assert.Less(t, joint.ProbabilityPct, solo.ProbabilityPct)
}

func TestCohortPromptStableCached(t *testing.T) {
	e := newTestEngine(Options{})
	est := e.Estimate(context.Background(), "a team ever goes 17-0")

	require.False(t, est.IsSentinel())
	assert.Equal(t, models.SourceCohortBaseline, est.SourceType)
}

type recordingStore struct {
	saved []*models.CacheEntry
}

func (s *recordingStore) Save(_ context.Context, entry *models.CacheEntry) error {
	s.saved = append(s.saved, entry)
	return nil
}

func TestStablePersistence(t *testing.T) {
	store := &recordingStore{}
	e := newTestEngine(Options{Store: store})

	e.Estimate(context.Background(), "a team goes 17-0")

	require.NotEmpty(t, store.saved)
	assert.Equal(t, models.TierStable, store.saved[0].Tier)
}

func unreachableGateway(t *testing.T) *fallback.Gateway {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	logger := testLogger()
	cfg := fallback.DefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = srv.URL
	cfg.APIKey = "test-key"

	clientCfg := provider.DefaultHTTPClientConfig()
	clientCfg.MaxRetries = 0

	return fallback.NewGateway(cfg, provider.NewRateLimitedHTTPClient(clientCfg, logger), logger)
}

func TestFallbackOutageDegradesToHeuristicPrior(t *testing.T) {
	store := &recordingStore{}
	e := newTestEngine(Options{Gateway: unreachableGateway(t), Store: store})

	est := e.Estimate(context.Background(), "Patrick Mahomes converts 9 fourth downs")

	require.False(t, est.IsSentinel())
	assert.Equal(t, models.SourceHistoricalBaseline, est.SourceType)
	assert.Equal(t, models.ConfidenceLow, est.Confidence)
	assert.InDelta(t, 10.0, est.ProbabilityPct, 0.01)
	require.NotNil(t, est.Trace)
	assert.Contains(t, est.Trace.Steps, "degraded to heuristic prior")
	// a degraded answer never reaches the stable tier
	assert.Empty(t, store.saved)
}

func TestFinalizedOddsMatchProbability(t *testing.T) {
	e := newTestEngine(Options{})
	est := e.Estimate(context.Background(), "the chiefs win their division")

	require.False(t, est.IsSentinel())
	line, err := oddsmath.ParseAmerican(est.Odds)
	require.NoError(t, err)
	assert.True(t, oddsmath.Consistent(line, est.ProbabilityPct, oddsmath.DefaultTolerancePct))
}
