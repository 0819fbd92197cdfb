// Package normalize canonicalizes raw prompt text ahead of entity
// resolution and intent classification. Normalization is pure, total and
// idempotent: any input maps to some canonical key, and normalizing an
// already-normalized prompt is a no-op.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Prompt is the normalizer's output: display text plus the canonical key
// used across all cache tiers.
type Prompt struct {
	Raw          string `json:"raw"`
	Text         string `json:"text"`
	CanonicalKey string `json:"canonical_key"`
}

// Normalizer applies the declarative rewrite tables in tables.go.
type Normalizer struct{}

// New creates a Normalizer
func New() *Normalizer {
	return &Normalizer{}
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	keyStripRe   = regexp.MustCompile(`[^a-z0-9 ]+`)
	// digit groups with thousands separators, e.g. 1,000 or 12,345,678
	thousandsRe = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})+\b`)
)

// Normalize converts raw text into its canonical form
func (n *Normalizer) Normalize(raw string) Prompt {
	text := strings.TrimSpace(raw)
	text = normalizeTypography(text)
	text = strings.ToLower(text)
	text = whitespaceRe.ReplaceAllString(text, " ")

	text = stripThousandsSeparators(text)
	text = rewriteIdioms(text)
	text = convertNumberWords(text)
	text = substituteAliases(text)
	text = insertSeasonScope(text)

	return Prompt{
		Raw:          raw,
		Text:         text,
		CanonicalKey: CanonicalKey(text),
	}
}

// CanonicalKey derives the cache key for already-normalized text
func CanonicalKey(text string) string {
	key := strings.ToLower(text)
	key = keyStripRe.ReplaceAllString(key, " ")
	key = whitespaceRe.ReplaceAllString(key, " ")
	return strings.TrimSpace(key)
}

// normalizeTypography unifies smart quotes and dash variants
func normalizeTypography(s string) string {
	r := strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
		"–", "-", "—", "-",
	)
	return r.Replace(s)
}

func stripThousandsSeparators(s string) string {
	return thousandsRe.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ReplaceAll(m, ",", "")
	})
}

func rewriteIdioms(s string) string {
	for _, rule := range idiomRules {
		s = rule.pattern.ReplaceAllString(s, rule.replacement)
	}
	return s
}

func substituteAliases(s string) string {
	for _, rule := range aliasRules {
		s = rule.pattern.ReplaceAllString(s, rule.replacement)
	}
	return s
}

// convertNumberWords rewrites spelled-out cardinals into digits, including
// compounds like "forty five" and "two thousand".
func convertNumberWords(s string) string {
	words := strings.Split(s, " ")
	out := make([]string, 0, len(words))

	for i := 0; i < len(words); {
		value, consumed, ok := parseNumberWords(words[i:])
		if ok {
			out = append(out, strconv.Itoa(value))
			i += consumed
			continue
		}
		out = append(out, words[i])
		i++
	}

	return strings.Join(out, " ")
}

// parseNumberWords consumes a leading run of number words and returns its
// value. Bare "a"/"one" only count when followed by a scale word so that
// articles survive ("a thousand yards" converts, "a team" does not).
func parseNumberWords(words []string) (value int, consumed int, ok bool) {
	total := 0
	current := 0
	i := 0

	for i < len(words) {
		w := strings.Trim(words[i], ",.")
		if small, found := smallNumberWords[w]; found {
			current += small
			i++
			continue
		}
		if tens, found := tensNumberWords[w]; found {
			current += tens
			i++
			continue
		}
		if w == "hundred" || w == "thousand" {
			base := current
			if base == 0 {
				// "a hundred", bare "thousand"
				if i == 0 && len(words) > 0 && (words[0] == "a" || words[0] == "an") {
					return 0, 0, false
				}
				base = 1
			}
			if w == "hundred" {
				current = base * 100
			} else {
				total += base * 1000
				current = 0
			}
			i++
			continue
		}
		if (w == "a" || w == "an") && i+1 < len(words) &&
			(words[i+1] == "hundred" || words[i+1] == "thousand") {
			current = 1
			i++
			continue
		}
		break
	}

	total += current
	if i == 0 || total == 0 {
		return 0, 0, false
	}
	return total, i, true
}

// insertSeasonScope appends "this season" to season-shaped prompts that
// omit an explicit horizon, so "throws 40 touchdowns" and "throws 40
// touchdowns this season" share a canonical key.
func insertSeasonScope(s string) string {
	if horizonRe.MatchString(s) {
		return s
	}
	if !seasonShapedRe.MatchString(s) {
		return s
	}
	return s + " this season"
}
