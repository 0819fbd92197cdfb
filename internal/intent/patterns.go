package intent

import "regexp"

// Pattern tables drive all classification. Matching is pure: handlers in
// classifier.go map capture groups onto descriptors and never touch
// external state, so the matching technology can be swapped without
// touching resolver logic.

// comparator protection, applied before any splitting
var (
	orMoreRe   = regexp.MustCompile(`(\d+(?:\.\d+)?) or (?:more|better)\b`)
	orFewerRe  = regexp.MustCompile(`(\d+(?:\.\d+)?) or (?:fewer|less)\b`)
	andAHalfRe = regexp.MustCompile(`(\d+) and a half\b`)
	exactlyRe  = regexp.MustCompile(`\bexactly (\d+(?:\.\d+)?)`)
)

// composite detection
var (
	raceSplitRe        = regexp.MustCompile(`\s+(?:before|prior to|ahead of)\s+`)
	conditionalArrowRe = regexp.MustCompile(`^(.*\S)\s*(?:->|=>|→)\s*(\S.*)$`)
	conditionalIfRe    = regexp.MustCompile(`^if\s+(.*\S)\s*,?\s+then\s+(\S.*)$`)
)

// atomic outcome shapes
var (
	superBowlRe  = regexp.MustCompile(`wins? (?:the )?super bowl\b`)
	conferenceRe = regexp.MustCompile(`wins? (?:the )?(?:afc|nfc)(?: championship| title)?\b|wins? (?:the |their )?conference\b`)
	divisionRe   = regexp.MustCompile(`wins? (?:the |their )?(?:(?:afc|nfc) (?:east|west|north|south)\b|division\b)`)

	makePlayoffsRe = regexp.MustCompile(`(?:makes?|reach(?:es)?) the playoffs\b`)
	missPlayoffsRe = regexp.MustCompile(`miss(?:es)? (?:the )?playoffs\b`)

	winTotalRe = regexp.MustCompile(`wins? (\d+)(ormore|orfewer|exactly)? games\b`)
	recordRe   = regexp.MustCompile(`goes (\d+)-(\d+)\b`)

	awardRe = regexp.MustCompile(`wins? (?:the )?(\d+ )?(consecutive )?(mvps?|opoys?|dpoys?|offensive player of the year|defensive player of the year|rookie of the year|roys?|championships?|titles?|rings?|super bowls?)\b`)

	statRes = []statPattern{
		{regexp.MustCompile(`(?:throws?|passes) for (\d+(?:\.\d+)?)(ormore|orfewer|exactly)? yards\b`), "passing_yards"},
		{regexp.MustCompile(`throws? (\d+(?:\.\d+)?)(ormore|orfewer|exactly)? (?:passing )?(?:touchdowns?|tds?)\b`), "passing_touchdowns"},
		{regexp.MustCompile(`throws? (\d+(?:\.\d+)?)(ormore|orfewer|exactly)? (?:interceptions?|picks?)\b`), "interceptions_thrown"},
		{regexp.MustCompile(`(?:rushes?|runs?) for (\d+(?:\.\d+)?)(ormore|orfewer|exactly)? yards\b`), "rushing_yards"},
		{regexp.MustCompile(`(?:rushes? for|scores?) (\d+(?:\.\d+)?)(ormore|orfewer|exactly)? rushing touchdowns?\b`), "rushing_touchdowns"},
		{regexp.MustCompile(`catches (\d+(?:\.\d+)?)(ormore|orfewer|exactly)? (?:passes|balls|receptions)\b`), "receptions"},
		{regexp.MustCompile(`(?:racks? up|records?|has) (\d+(?:\.\d+)?)(ormore|orfewer|exactly)? receiving yards\b`), "receiving_yards"},
		{regexp.MustCompile(`(?:catches|scores?) (\d+(?:\.\d+)?)(ormore|orfewer|exactly)? (?:receiving )?touchdowns?\b`), "receiving_touchdowns"},
		{regexp.MustCompile(`(?:records?|racks? up|gets?) (\d+(?:\.\d+)?)(ormore|orfewer|exactly)? sacks\b`), "sacks"},
	}

	// stat verb without a number: ambiguous threshold
	danglingStatRe = regexp.MustCompile(`\b(?:throws?|rushes? for|passes for|catches|records?)\s+(?:a lot of |many |some )?(?:yards|touchdowns|passes|sacks)\b`)

	cohortRes = []cohortPattern{
		{regexp.MustCompile(`(?:a|any) team (?:ever )?goes 17-0\b`), "any_team_perfect_season"},
		{regexp.MustCompile(`(?:a|any) team (?:ever )?goes 0-17\b`), "any_team_winless_season"},
		{regexp.MustCompile(`(?:a|any) (?:qb|quarterback) (?:ever )?throws? 50(ormore)? (?:touchdowns?|tds?)\b`), "any_qb_fifty_td"},
		{regexp.MustCompile(`(?:a|any) (?:rb|running back) (?:ever )?(?:rushes?|runs?) for 2000(ormore)? yards\b`), "any_rb_two_thousand_yards"},
	}

	careerScopeRe = regexp.MustCompile(`\b(?:career|ever|all[ -]time|lifetime|consecutive)\b`)

	// outcome verb marking where an any_of shared suffix begins
	outcomeVerbRe = regexp.MustCompile(`\b(?:wins?|throws?|rushes?|runs?|passes|catches|records?|makes?|miss(?:es)?|goes|reach(?:es)?|scores?)\b`)

	entityListSplitRe = regexp.MustCompile(`\s*,\s*`)

	// known-unsupportable shapes never reach the generative fallback
	subjectiveRe = regexp.MustCompile(`\b(?:greatest of all time|goat\b|best ever|better than|overrated|underrated|deserves?)\b`)
)

type statPattern struct {
	re     *regexp.Regexp
	metric string
}

type cohortPattern struct {
	re   *regexp.Regexp
	kind string
}
