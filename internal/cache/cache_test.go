package cache

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/longshot/internal/models"
)

func newTestManager(clock Clock) *Manager {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewManager(DefaultConfig(), clock, logger)
}

func sampleEstimate() *models.ProbabilityEstimate {
	return &models.ProbabilityEstimate{
		ProbabilityPct: 12.5,
		Odds:           "+700",
		Confidence:     models.ConfidenceMedium,
		SourceType:     models.SourceStatisticalModel,
		Label:          "sample",
	}
}

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		RosterDigest:         "abc123",
		CalibrationSignature: "2025.1",
		PlayerStates:         map[string]string{"Patrick Mahomes": "active|Kansas City Chiefs"},
		MarketProbs:          map[string]float64{"super_bowl:Kansas City Chiefs": 15.0},
	}
}

func TestEphemeralAndCanonicalShareKeySpace(t *testing.T) {
	m := newTestManager(nil)
	m.Store("canon-key", sampleEstimate(), nil, false)

	require.NotNil(t, m.GetEphemeral("canon-key"))
	require.NotNil(t, m.GetCanonical("canon-key"))
	assert.Nil(t, m.GetEphemeral("other-key"))
	assert.Nil(t, m.GetCanonical("other-key"))
}

func TestHitsReturnCopies(t *testing.T) {
	m := newTestManager(nil)
	m.Store("canon", sampleEstimate(), nil, false)

	first := m.GetCanonical("canon")
	require.NotNil(t, first)
	first.ProbabilityPct = 99

	second := m.GetCanonical("canon")
	require.NotNil(t, second)
	assert.InDelta(t, 12.5, second.ProbabilityPct, 1e-9)
}

func TestStableTierRequiresLowVolatility(t *testing.T) {
	m := newTestManager(nil)
	snap := sampleSnapshot()

	m.Store("volatile", sampleEstimate(), snap, false)
	assert.Nil(t, m.GetStable("volatile", snap))

	m.Store("stable", sampleEstimate(), snap, true)
	assert.NotNil(t, m.GetStable("stable", snap))
}

func TestStableExpiryUsesInjectedClock(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := newTestManager(clock)
	snap := sampleSnapshot()

	m.Store("key", sampleEstimate(), snap, true)
	require.NotNil(t, m.GetStable("key", snap))

	now = now.Add(31 * 24 * time.Hour)
	assert.Nil(t, m.GetStable("key", snap))
	// expired entries are evicted, not just skipped
	_, found := m.StableEntry("key")
	assert.False(t, found)
}

func TestStableDriftCalibrationChange(t *testing.T) {
	m := newTestManager(nil)
	m.Store("key", sampleEstimate(), sampleSnapshot(), true)

	current := sampleSnapshot()
	current.CalibrationSignature = "2026.1"

	assert.Nil(t, m.GetStable("key", current))
}

func TestStableDriftPlayerStateChange(t *testing.T) {
	m := newTestManager(nil)
	m.Store("key", sampleEstimate(), sampleSnapshot(), true)

	current := sampleSnapshot()
	current.PlayerStates["Patrick Mahomes"] = "retired|Kansas City Chiefs"

	assert.Nil(t, m.GetStable("key", current))
}

func TestStableDriftMarketUnavailable(t *testing.T) {
	m := newTestManager(nil)
	m.Store("key", sampleEstimate(), sampleSnapshot(), true)

	current := sampleSnapshot()
	delete(current.MarketProbs, "super_bowl:Kansas City Chiefs")

	assert.Nil(t, m.GetStable("key", current))
}

func TestStableDriftMarketMove(t *testing.T) {
	m := newTestManager(nil)
	m.Store("key", sampleEstimate(), sampleSnapshot(), true)

	// must exceed both the absolute and relative tolerances
	current := sampleSnapshot()
	current.MarketProbs["super_bowl:Kansas City Chiefs"] = 25.0

	assert.Nil(t, m.GetStable("key", current))
}

func TestStableToleratesSmallMarketMove(t *testing.T) {
	m := newTestManager(nil)
	m.Store("key", sampleEstimate(), sampleSnapshot(), true)

	// one point of movement is inside the absolute tolerance
	current := sampleSnapshot()
	current.MarketProbs["super_bowl:Kansas City Chiefs"] = 16.0

	assert.NotNil(t, m.GetStable("key", current))
}

func TestRosterDigestAloneIsNotDrift(t *testing.T) {
	m := newTestManager(nil)
	snap := sampleSnapshot()
	snap.PlayerStates = nil
	m.Store("key", sampleEstimate(), snap, true)

	current := sampleSnapshot()
	current.PlayerStates = nil
	current.RosterDigest = "changed"

	assert.NotNil(t, m.GetStable("key", current))
}

func TestSeedStableRestoresEntries(t *testing.T) {
	m := newTestManager(nil)
	snap := sampleSnapshot()

	m.SeedStable(&models.CacheEntry{
		Key:       "restored",
		CreatedAt: time.Now(),
		Tier:      models.TierStable,
		Snapshot:  snap,
		Value:     *sampleEstimate(),
	})

	got := m.GetStable("restored", snap)
	require.NotNil(t, got)
	assert.InDelta(t, 12.5, got.ProbabilityPct, 1e-9)
}

func TestSeedStableIgnoresEmpty(t *testing.T) {
	m := newTestManager(nil)

	m.SeedStable(nil)
	m.SeedStable(&models.CacheEntry{Key: ""})

	assert.Nil(t, m.GetStable("", sampleSnapshot()))
}

func TestStableEntryForPersistence(t *testing.T) {
	m := newTestManager(nil)
	m.Store("key", sampleEstimate(), sampleSnapshot(), true)

	entry, found := m.StableEntry("key")
	require.True(t, found)
	assert.Equal(t, models.TierStable, entry.Tier)
	require.NotNil(t, entry.Snapshot)
	assert.Equal(t, "abc123", entry.Snapshot.RosterDigest)
}

func TestFlushDropsAllTiers(t *testing.T) {
	m := newTestManager(nil)
	snap := sampleSnapshot()
	m.Store("key", sampleEstimate(), snap, true)

	m.Flush()

	assert.Nil(t, m.GetEphemeral("key"))
	assert.Nil(t, m.GetCanonical("key"))
	assert.Nil(t, m.GetStable("key", snap))
}
