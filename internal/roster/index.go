package roster

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/longshot/internal/models"
)

// Index holds the in-memory name lookup structures. Lookups are read-only;
// Refresh swaps the structures wholesale under the write lock.
type Index struct {
	mu          sync.RWMutex
	provider    *Provider
	logger      logrus.FieldLogger
	players     []models.Player
	byFullName  map[string][]*models.Player
	byLastName  map[string][]*models.Player
	teamByToken map[string]*models.Team
	digest      string
	refreshedAt time.Time
}

// NewIndex creates an empty index bound to a provider. Call Refresh (or
// SetPlayers in tests) before resolving.
func NewIndex(p *Provider, logger logrus.FieldLogger) *Index {
	ix := &Index{
		provider: p,
		logger:   logger,
	}
	ix.rebuild(nil)
	return ix
}

// Refresh pulls the player list from the provider and rebuilds the index
func (ix *Index) Refresh(ctx context.Context) error {
	if ix.provider == nil {
		return fmt.Errorf("roster index has no provider")
	}

	players, err := ix.provider.ListPlayers(ctx)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		return models.ErrRosterEmpty
	}

	ix.mu.Lock()
	ix.rebuild(players)
	ix.mu.Unlock()

	ix.logger.WithFields(logrus.Fields{
		"players": len(players),
		"digest":  ix.Digest(),
	}).Info("Roster index refreshed")
	return nil
}

// SetPlayers replaces the indexed players directly
func (ix *Index) SetPlayers(players []models.Player) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.rebuild(players)
}

// rebuild recomputes all lookup structures. Caller holds the write lock.
func (ix *Index) rebuild(players []models.Player) {
	ix.players = players
	ix.byFullName = make(map[string][]*models.Player, len(players))
	ix.byLastName = make(map[string][]*models.Player, len(players))

	for i := range ix.players {
		p := &ix.players[i]
		full := strings.ToLower(p.Name)
		last := strings.ToLower(p.LastName())
		ix.byFullName[full] = append(ix.byFullName[full], p)
		if last != "" {
			ix.byLastName[last] = append(ix.byLastName[last], p)
		}
	}

	ix.teamByToken = buildTeamTokens()
	ix.digest = computeDigest(ix.players)
	ix.refreshedAt = time.Now()
}

// buildTeamTokens indexes team full names, nicknames and unambiguous city
// names. Tokens shared by more than one franchise are dropped.
func buildTeamTokens() map[string]*models.Team {
	tokens := make(map[string]*models.Team)
	ambiguous := make(map[string]bool)

	add := func(token string, t *models.Team) {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			return
		}
		if existing, ok := tokens[token]; ok && existing.Name != t.Name {
			ambiguous[token] = true
			return
		}
		tokens[token] = t
	}

	for i := range leagueTeams {
		t := &leagueTeams[i]
		full := strings.ToLower(t.Name)
		add(full, t)

		parts := strings.Fields(full)
		nickname := parts[len(parts)-1]
		city := strings.Join(parts[:len(parts)-1], " ")
		add(nickname, t)
		add(city, t)
	}

	for token := range ambiguous {
		delete(tokens, token)
	}
	return tokens
}

func computeDigest(players []models.Player) string {
	lines := make([]string, 0, len(players))
	for i := range players {
		p := &players[i]
		lines = append(lines, fmt.Sprintf("%s|%s|%s|%s", p.ID, p.Name, p.Team, p.Status))
	}
	sort.Strings(lines)

	h := sha256.Sum256([]byte(strings.Join(lines, ";")))
	return hex.EncodeToString(h[:])[:16]
}

// Digest returns a short fingerprint of the indexed roster, used by the
// stable cache tier's drift snapshots.
func (ix *Index) Digest() string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.digest
}

// RefreshedAt returns the time of the last successful rebuild
func (ix *Index) RefreshedAt() time.Time {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.refreshedAt
}

// PlayerState returns "status|team" for a player name, for drift snapshots
func (ix *Index) PlayerState(name string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	entries, ok := ix.byFullName[strings.ToLower(name)]
	if !ok || len(entries) == 0 {
		return "", false
	}
	p := entries[0]
	return fmt.Sprintf("%s|%s", p.Status, p.Team), true
}

// TeamByName returns the team matching a name, nickname or city token
func (ix *Index) TeamByName(token string) (*models.Team, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	t, ok := ix.teamByToken[strings.ToLower(token)]
	return t, ok
}

// Teams returns the full league team table
func (ix *Index) Teams() []models.Team {
	return leagueTeams
}
