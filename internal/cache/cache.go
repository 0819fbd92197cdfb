package cache

import (
	"math"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/longshot/internal/metrics"
	"github.com/yourusername/longshot/internal/models"
)

// Clock abstracts time for the cache so tests can move it
type Clock func() time.Time

// Config controls tier TTLs and drift tolerances
type Config struct {
	EphemeralTTL time.Duration `mapstructure:"ephemeral_ttl"`
	CanonicalTTL time.Duration `mapstructure:"canonical_ttl"`
	StableTTL    time.Duration `mapstructure:"stable_ttl"`

	// market drift tolerances; a move must exceed both to stay cached
	AbsoluteTolerancePct float64 `mapstructure:"absolute_tolerance_pct"`
	RelativeTolerance    float64 `mapstructure:"relative_tolerance"`
}

// DefaultConfig returns the tier TTLs and tolerances used when the config
// file leaves the cache section empty.
func DefaultConfig() Config {
	return Config{
		EphemeralTTL:         5 * time.Minute,
		CanonicalTTL:         6 * time.Hour,
		StableTTL:            30 * 24 * time.Hour,
		AbsoluteTolerancePct: 1.5,
		RelativeTolerance:    0.25,
	}
}

// Manager is the three-tier estimation cache. All tiers share the canonical
// prompt key space and differ in lifetime: ephemeral entries turn over
// quickly, canonical entries outlive them, and the stable tier holds
// low-volatility results whose validity is re-checked against a fresh
// snapshot on every read.
type Manager struct {
	cfg    Config
	clock  Clock
	logger logrus.FieldLogger

	ephemeral *gocache.Cache
	canonical *gocache.Cache
	stable    *gocache.Cache
}

func NewManager(cfg Config, clock Clock, logger logrus.FieldLogger) *Manager {
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		cfg:       cfg,
		clock:     clock,
		logger:    logger.WithField("component", "cache"),
		ephemeral: gocache.New(cfg.EphemeralTTL, cfg.EphemeralTTL*2),
		canonical: gocache.New(cfg.CanonicalTTL, cfg.CanonicalTTL*2),
		// stable expiry is age-checked against the injected clock instead
		stable: gocache.New(gocache.NoExpiration, 0),
	}
}

// GetEphemeral looks up a canonical key in the short-lived tier
func (m *Manager) GetEphemeral(key string) *models.ProbabilityEstimate {
	return m.get(m.ephemeral, "ephemeral", key)
}

// GetCanonical looks up a canonical key
func (m *Manager) GetCanonical(key string) *models.ProbabilityEstimate {
	return m.get(m.canonical, "canonical", key)
}

func (m *Manager) get(c *gocache.Cache, tier, key string) *models.ProbabilityEstimate {
	if v, found := c.Get(key); found {
		if entry, ok := v.(*models.CacheEntry); ok {
			metrics.RecordCacheLookup(tier, "hit")
			est := entry.Value
			return &est
		}
	}
	metrics.RecordCacheLookup(tier, "miss")
	return nil
}

// GetStable looks up a canonical key in the stable tier, validating the
// stored snapshot against the current one. A drifted or aged entry is
// evicted and reported as a miss.
func (m *Manager) GetStable(key string, current *models.Snapshot) *models.ProbabilityEstimate {
	v, found := m.stable.Get(key)
	if !found {
		metrics.RecordCacheLookup("stable", "miss")
		return nil
	}
	entry, ok := v.(*models.CacheEntry)
	if !ok {
		m.stable.Delete(key)
		metrics.RecordCacheLookup("stable", "miss")
		return nil
	}

	if m.clock().Sub(entry.CreatedAt) > m.cfg.StableTTL {
		m.stable.Delete(key)
		metrics.RecordCacheLookup("stable", "expired")
		return nil
	}

	if signal := m.drifted(entry.Snapshot, current); signal != "" {
		m.stable.Delete(key)
		metrics.RecordCacheDrift(signal)
		metrics.RecordCacheLookup("stable", "drift")
		m.logger.WithFields(logrus.Fields{"key": key, "signal": signal}).
			Debug("stable entry invalidated by drift")
		return nil
	}

	metrics.RecordCacheLookup("stable", "hit")
	est := entry.Value
	return &est
}

// Store writes a result under its canonical key into the ephemeral and
// canonical tiers, and into the stable tier as well when the prompt was
// classified low-volatility.
func (m *Manager) Store(key string, est *models.ProbabilityEstimate, snap *models.Snapshot, lowVolatility bool) {
	now := m.clock()

	m.ephemeral.Set(key, &models.CacheEntry{
		Key: key, CreatedAt: now, Tier: models.TierEphemeral, Value: *est,
	}, m.cfg.EphemeralTTL)

	m.canonical.Set(key, &models.CacheEntry{
		Key: key, CreatedAt: now, Tier: models.TierCanonical, Value: *est,
	}, m.cfg.CanonicalTTL)

	if lowVolatility {
		m.stable.Set(key, &models.CacheEntry{
			Key: key, CreatedAt: now, Tier: models.TierStable, Snapshot: snap, Value: *est,
		}, gocache.NoExpiration)
	}
}

// StableEntry exposes a stable-tier entry with its snapshot, for
// persistence of the tier across restarts.
func (m *Manager) StableEntry(key string) (*models.CacheEntry, bool) {
	v, found := m.stable.Get(key)
	if !found {
		return nil, false
	}
	entry, ok := v.(*models.CacheEntry)
	return entry, ok
}

// SeedStable loads a previously persisted stable entry. Drift checks still
// apply on the next read, so seeding stale state is harmless.
func (m *Manager) SeedStable(entry *models.CacheEntry) {
	if entry == nil || entry.Key == "" {
		return
	}
	m.stable.Set(entry.Key, entry, gocache.NoExpiration)
}

// Flush drops every tier
func (m *Manager) Flush() {
	m.ephemeral.Flush()
	m.canonical.Flush()
	m.stable.Flush()
}

// drifted compares the snapshot an entry was computed under against the
// current one and names the first signal that moved, or "" when none did.
// A roster digest change with no recorded player states is not drift:
// entries without player dependencies survive unrelated roster churn.
func (m *Manager) drifted(stored, current *models.Snapshot) string {
	if stored == nil || current == nil {
		return ""
	}

	if stored.CalibrationSignature != current.CalibrationSignature {
		return "calibration"
	}

	for name, state := range stored.PlayerStates {
		if cur, ok := current.PlayerStates[name]; !ok || cur != state {
			return "player_state"
		}
	}

	for market, old := range stored.MarketProbs {
		cur, ok := current.MarketProbs[market]
		if !ok {
			return "market_unavailable"
		}
		abs := math.Abs(cur - old)
		rel := abs / math.Max(old, 0.1)
		if abs > m.cfg.AbsoluteTolerancePct && rel > m.cfg.RelativeTolerance {
			return "market_move"
		}
	}

	return ""
}
