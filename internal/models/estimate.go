package models

import (
	"time"

	"github.com/google/uuid"
)

// Confidence tags an estimate's reliability
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// rank orders confidence tags so composites can propagate the weakest
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// WeakerOf returns the weaker of two confidence tags
func WeakerOf(a, b Confidence) Confidence {
	if a.rank() <= b.rank() {
		return a
	}
	return b
}

// SourceType identifies how a result was produced. Sentinel members of the
// decline taxonomy share this type so callers can branch on one field.
type SourceType string

const (
	SourceMarketAnchor       SourceType = "market_anchor"
	SourceStatisticalModel   SourceType = "statistical_model"
	SourceHistoricalBaseline SourceType = "historical_baseline"
	SourceCohortBaseline     SourceType = "cohort_baseline"
	SourceComposite          SourceType = "composite"
	SourceGenerativeFallback SourceType = "generative_fallback"

	SourceUnsupported          SourceType = "unsupported"
	SourceUnsupportedComposite SourceType = "unsupported_composite"
	SourceNeedsClarification   SourceType = "needs_clarification"
	SourceInvalidEntity        SourceType = "invalid_entity"
	SourceIneligibleEntity     SourceType = "ineligible_entity"
	SourceInconsistent         SourceType = "inconsistent"
	SourceConstraintViolation  SourceType = "constraint_violation"
)

// IsSentinel reports whether the source type belongs to the decline taxonomy
func (s SourceType) IsSentinel() bool {
	switch s {
	case SourceUnsupported, SourceUnsupportedComposite, SourceNeedsClarification,
		SourceInvalidEntity, SourceIneligibleEntity, SourceInconsistent,
		SourceConstraintViolation:
		return true
	}
	return false
}

// Trace carries diagnostic breadcrumbs for one estimation request
type Trace struct {
	ID    uuid.UUID `json:"id"`
	Steps []string  `json:"steps,omitempty"`
}

// NewTrace creates an empty trace with a fresh identifier
func NewTrace() *Trace {
	return &Trace{ID: uuid.New()}
}

// Add appends a breadcrumb to the trace
func (t *Trace) Add(step string) {
	if t != nil {
		t.Steps = append(t.Steps, step)
	}
}

// ProbabilityEstimate is the engine's result shape. Odds and
// ProbabilityPct are mutually derivable within the oddsmath tolerance.
type ProbabilityEstimate struct {
	ProbabilityPct float64    `json:"probability_pct"`
	Odds           string     `json:"odds"`
	Confidence     Confidence `json:"confidence"`
	SourceType     SourceType `json:"source_type"`
	Label          string     `json:"label"`
	Rationale      string     `json:"rationale"`
	Assumptions    []string   `json:"assumptions,omitempty"`
	EventKey       string     `json:"event_key,omitempty"`
	Trace          *Trace     `json:"trace,omitempty"`
}

// IsSentinel reports whether the estimate is an engine-declined placeholder
func (e *ProbabilityEstimate) IsSentinel() bool {
	return e.SourceType.IsSentinel()
}

// Decline explains why the engine declined to price a prompt
type Decline struct {
	Reason SourceType
	Detail string
}

// Outcome is the internal tagged result of a resolution step: exactly one
// of Resolved/Declined is set. Conversion to the uniform external sentinel
// shape happens only at the engine boundary.
type Outcome struct {
	Resolved *ProbabilityEstimate
	Declined *Decline
}

// Resolved wraps a successful estimate
func Resolved(e *ProbabilityEstimate) Outcome {
	return Outcome{Resolved: e}
}

// Declined wraps a decline reason
func Declined(reason SourceType, detail string) Outcome {
	return Outcome{Declined: &Decline{Reason: reason, Detail: detail}}
}

// OK reports whether the outcome carries a resolved estimate
func (o Outcome) OK() bool {
	return o.Resolved != nil
}

// MarketReference is a read-only snapshot of a live reference line pulled
// from the market-odds provider. Never persisted beyond the reference TTL.
type MarketReference struct {
	Market                string    `json:"market"`
	Entity                string    `json:"entity"`
	AmericanOdds          int       `json:"american_odds"`
	ImpliedProbabilityPct float64   `json:"implied_probability_pct"`
	AsOfDate              time.Time `json:"as_of_date"`
	ProviderLabel         string    `json:"provider_label"`
}
