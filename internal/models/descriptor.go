package models

import (
	"fmt"
	"strings"
)

// DescriptorKind identifies which outcome resolver family applies to a
// descriptor. A descriptor is immutable once built.
type DescriptorKind string

const (
	KindTeamMarket          DescriptorKind = "team_market"
	KindPlayerStatThreshold DescriptorKind = "player_stat_threshold"
	KindPlayerAward         DescriptorKind = "player_award"
	KindTeamWinTotal        DescriptorKind = "team_win_total"
	KindTeamPlayoff         DescriptorKind = "team_playoff"
	KindRaceBefore          DescriptorKind = "race_before"
	KindWildcardCohort      DescriptorKind = "wildcard_cohort"
)

// Market identifies a team futures market
type Market string

const (
	MarketSuperBowl  Market = "super_bowl"
	MarketConference Market = "conference"
	MarketDivision   Market = "division"
)

// Comparator expresses a threshold direction
type Comparator string

const (
	CmpAtLeast Comparator = "at_least"
	CmpAtMost  Comparator = "at_most"
	CmpExactly Comparator = "exactly"
)

// AwardType identifies a single-winner seasonal award
type AwardType string

const (
	AwardMVP          AwardType = "mvp"
	AwardOPOY         AwardType = "opoy"
	AwardDPOY         AwardType = "dpoy"
	AwardROY          AwardType = "roy"
	AwardChampionship AwardType = "championship"
)

// PlayoffOutcome distinguishes make/miss playoff descriptors
type PlayoffOutcome string

const (
	PlayoffMake PlayoffOutcome = "make"
	PlayoffMiss PlayoffOutcome = "miss"
)

// CohortKind identifies a league-wide "any team/player" proposition
type CohortKind string

const (
	CohortPerfectSeason CohortKind = "any_team_perfect_season"
	CohortWinlessSeason CohortKind = "any_team_winless_season"
	CohortQBFiftyTD     CohortKind = "any_qb_fifty_td"
	CohortTwoThousandRB CohortKind = "any_rb_two_thousand_yards"
)

// OutcomeDescriptor is a tagged variant describing one atomic outcome.
// Kind determines which of the remaining fields are meaningful.
type OutcomeDescriptor struct {
	Kind DescriptorKind

	Team   *Team
	Player *Player

	Market     Market
	Metric     string
	Threshold  float64
	Comparator Comparator

	Award AwardType
	Count int // n-fold accumulation, 1 for a single occurrence

	Wins    int
	Playoff PlayoffOutcome

	Cohort  CohortKind
	AllTime bool // "ever" scope instead of this season

	// race_before sides, each itself an atomic descriptor
	SideA *OutcomeDescriptor
	SideB *OutcomeDescriptor
}

// EventKey returns a stable key identifying the underlying market event.
// Descriptors sharing an event key for a single-winner market are treated
// as mutually exclusive by the combiner.
func (d *OutcomeDescriptor) EventKey() string {
	switch d.Kind {
	case KindTeamMarket:
		return fmt.Sprintf("market:%s", d.Market)
	case KindPlayerAward:
		return fmt.Sprintf("award:%s", d.Award)
	case KindPlayerStatThreshold:
		return fmt.Sprintf("stat:%s", d.Metric)
	case KindTeamWinTotal:
		return "wins"
	case KindTeamPlayoff:
		return "playoffs"
	case KindWildcardCohort:
		return fmt.Sprintf("cohort:%s", d.Cohort)
	case KindRaceBefore:
		return "race"
	}
	return string(d.Kind)
}

// EntityName returns the primary entity the descriptor is about, if any
func (d *OutcomeDescriptor) EntityName() string {
	if d.Player != nil {
		return d.Player.Name
	}
	if d.Team != nil {
		return d.Team.Name
	}
	return ""
}

// SingleWinnerEvent reports whether the descriptor's market admits exactly
// one winner per season (award races, outright futures markets).
func (d *OutcomeDescriptor) SingleWinnerEvent() bool {
	switch d.Kind {
	case KindPlayerAward:
		return d.Award != AwardChampionship
	case KindTeamMarket:
		return true
	}
	return false
}

// String returns a compact human-readable form used in traces
func (d *OutcomeDescriptor) String() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	if name := d.EntityName(); name != "" {
		b.WriteString("/")
		b.WriteString(name)
	}
	switch d.Kind {
	case KindTeamMarket:
		fmt.Fprintf(&b, "/%s", d.Market)
	case KindPlayerStatThreshold:
		fmt.Fprintf(&b, "/%s %s %.1f", d.Metric, d.Comparator, d.Threshold)
	case KindPlayerAward:
		fmt.Fprintf(&b, "/%s x%d", d.Award, d.Count)
	case KindTeamWinTotal:
		fmt.Fprintf(&b, "/%s %d", d.Comparator, d.Wins)
	case KindTeamPlayoff:
		fmt.Fprintf(&b, "/%s", d.Playoff)
	case KindWildcardCohort:
		fmt.Fprintf(&b, "/%s", d.Cohort)
	case KindRaceBefore:
		fmt.Fprintf(&b, "(%s, %s)", d.SideA, d.SideB)
	}
	return b.String()
}
