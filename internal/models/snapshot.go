package models

import "time"

// Snapshot fingerprints the external state an estimate depended on.
// Stable-tier cache entries store one at write time; a freshly computed
// snapshot is compared against it on every read.
type Snapshot struct {
	TakenAt              time.Time          `json:"taken_at"`
	RosterDigest         string             `json:"roster_digest"`
	CalibrationSignature string             `json:"calibration_signature"`
	PlayerStates         map[string]string  `json:"player_states,omitempty"` // name -> status|team
	MarketProbs          map[string]float64 `json:"market_probs,omitempty"`  // market:entity -> implied pct
}

// CacheTier names the estimation cache tiers
type CacheTier string

const (
	TierEphemeral CacheTier = "ephemeral"
	TierCanonical CacheTier = "canonical"
	TierStable    CacheTier = "stable"
)

// CacheEntry is a memoized estimation result. Stable-tier entries carry a
// snapshot for drift detection; the other tiers expire by TTL alone.
type CacheEntry struct {
	Key       string              `json:"key"`
	CreatedAt time.Time           `json:"created_at"`
	Tier      CacheTier           `json:"tier"`
	Snapshot  *Snapshot           `json:"snapshot,omitempty"`
	Value     ProbabilityEstimate `json:"value"`
}
