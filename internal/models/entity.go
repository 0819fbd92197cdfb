// Package models defines the core domain types for the estimation engine.
package models

import "strings"

// PlayerStatus represents a player's roster status
type PlayerStatus string

const (
	StatusActive   PlayerStatus = "active"
	StatusRetired  PlayerStatus = "retired"
	StatusDeceased PlayerStatus = "deceased"
	StatusUnknown  PlayerStatus = "unknown"
)

// Player represents a player entry from the roster index
type Player struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Team            string       `json:"team"`
	Position        string       `json:"position"`
	Status          PlayerStatus `json:"status"`
	ExperienceYears int          `json:"experience_years"`
	Age             int          `json:"age"`
	PopularityRank  int          `json:"popularity_rank"`
}

// LastName returns the final token of the player's name
func (p *Player) LastName() string {
	parts := strings.Fields(p.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// FirstName returns the leading token of the player's name
func (p *Player) FirstName() string {
	parts := strings.Fields(p.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// IsActive reports whether the player can still accrue on-field outcomes
func (p *Player) IsActive() bool {
	return p.Status == StatusActive
}

// Team represents a team entry from the roster index
type Team struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Division     string `json:"division"`
	Conference   string `json:"conference"`
}

// EntityKind distinguishes resolved mention types
type EntityKind string

const (
	EntityPlayer EntityKind = "player"
	EntityTeam   EntityKind = "team"
)

// Entity is a resolved mention of a player or team, ordered by its
// position in the normalized prompt. Exactly one of Player/Team is set.
type Entity struct {
	Kind       EntityKind `json:"kind"`
	Player     *Player    `json:"player,omitempty"`
	Team       *Team      `json:"team,omitempty"`
	MentionPos int        `json:"mention_pos"`
}

// DisplayName returns the canonical name of the underlying entity
func (e Entity) DisplayName() string {
	switch e.Kind {
	case EntityPlayer:
		if e.Player != nil {
			return e.Player.Name
		}
	case EntityTeam:
		if e.Team != nil {
			return e.Team.Name
		}
	}
	return ""
}
