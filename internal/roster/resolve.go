package roster

import (
	"sort"
	"strings"

	"github.com/yourusername/longshot/internal/models"
)

// Hints carry optional team/position context extracted from the prompt,
// used to disambiguate shared names.
type Hints struct {
	Team     string
	Position string
}

const (
	maxWindow = 5
	minWindow = 2

	// edit-distance budget per name component
	maxNameDistance = 2
)

// Resolve finds player and team mentions in normalized text, ordered by
// mention position. An empty result is a valid outcome, not an error.
func (ix *Index) Resolve(text string, hints Hints) []models.Entity {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	tokens := strings.Fields(stripTokenPunct(text))
	consumed := make([]bool, len(tokens))
	var found []models.Entity

	// Pass 1: exact n-gram lookup, longest window wins
	for window := maxWindow; window >= minWindow; window-- {
		for start := 0; start+window <= len(tokens); start++ {
			if anyConsumed(consumed, start, window) {
				continue
			}
			gram := strings.Join(tokens[start:start+window], " ")

			if entries, ok := ix.byFullName[gram]; ok {
				p := disambiguate(entries, hints)
				found = append(found, models.Entity{
					Kind: models.EntityPlayer, Player: p, MentionPos: start,
				})
				markConsumed(consumed, start, window)
				continue
			}
			if t, ok := ix.teamByToken[gram]; ok {
				found = append(found, models.Entity{
					Kind: models.EntityTeam, Team: t, MentionPos: start,
				})
				markConsumed(consumed, start, window)
			}
		}
	}

	// Pass 2: single tokens, team nicknames then player last names
	for i, tok := range tokens {
		if consumed[i] {
			continue
		}
		if t, ok := ix.teamByToken[tok]; ok {
			found = append(found, models.Entity{
				Kind: models.EntityTeam, Team: t, MentionPos: i,
			})
			consumed[i] = true
			continue
		}
		if entries, ok := ix.byLastName[tok]; ok {
			p := disambiguate(entries, hints)
			found = append(found, models.Entity{
				Kind: models.EntityPlayer, Player: p, MentionPos: i,
			})
			consumed[i] = true
		}
	}

	// Pass 3: fuzzy two-token windows, only when nothing matched exactly
	if len(found) == 0 {
		if ent, ok := ix.fuzzyResolve(tokens, hints); ok {
			found = append(found, ent)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].MentionPos < found[j].MentionPos
	})
	return dedupe(found)
}

// fuzzyResolve scores first-name and last-name edit distances separately
// against every indexed player, rejecting matches over the per-component
// budget. Ties break on popularity rank.
func (ix *Index) fuzzyResolve(tokens []string, hints Hints) (models.Entity, bool) {
	var best *models.Player
	bestDist := 2*maxNameDistance + 1
	bestPos := 0

	for start := 0; start+2 <= len(tokens); start++ {
		first, last := tokens[start], tokens[start+1]
		if len(first) < 3 || len(last) < 3 {
			continue
		}

		for fullName, entries := range ix.byFullName {
			parts := strings.Fields(fullName)
			if len(parts) < 2 {
				continue
			}
			df := editDistance(first, parts[0])
			dl := editDistance(last, parts[len(parts)-1])
			if df > maxNameDistance || dl > maxNameDistance || df+dl == 0 {
				continue
			}

			total := df + dl
			cand := disambiguate(entries, hints)
			if total < bestDist ||
				(total == bestDist && best != nil && cand.PopularityRank < best.PopularityRank) {
				best = cand
				bestDist = total
				bestPos = start
			}
		}
	}

	if best == nil {
		return models.Entity{}, false
	}
	return models.Entity{Kind: models.EntityPlayer, Player: best, MentionPos: bestPos}, true
}

// disambiguate picks the roster entry for a shared name: explicit hint
// match first, then active status, then popularity rank.
func disambiguate(entries []*models.Player, hints Hints) *models.Player {
	if len(entries) == 1 {
		return entries[0]
	}

	if hints.Team != "" {
		for _, p := range entries {
			if strings.EqualFold(p.Team, hints.Team) {
				return p
			}
		}
	}
	if hints.Position != "" {
		for _, p := range entries {
			if strings.EqualFold(p.Position, hints.Position) {
				return p
			}
		}
	}

	var active []*models.Player
	for _, p := range entries {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	pool := entries
	if len(active) == 1 {
		return active[0]
	} else if len(active) > 1 {
		pool = active
	}

	best := pool[0]
	for _, p := range pool[1:] {
		if p.PopularityRank > 0 && (best.PopularityRank == 0 || p.PopularityRank < best.PopularityRank) {
			best = p
		}
	}
	return best
}

func stripTokenPunct(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func anyConsumed(consumed []bool, start, window int) bool {
	for i := start; i < start+window; i++ {
		if consumed[i] {
			return true
		}
	}
	return false
}

func markConsumed(consumed []bool, start, window int) {
	for i := start; i < start+window; i++ {
		consumed[i] = true
	}
}

func dedupe(ents []models.Entity) []models.Entity {
	seen := make(map[string]bool, len(ents))
	out := ents[:0]
	for _, e := range ents {
		key := string(e.Kind) + ":" + e.DisplayName()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

// editDistance is a standard Levenshtein distance over bytes
func editDistance(a, b string) int {
	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
