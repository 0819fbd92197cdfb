package normalize

import "regexp"

// rewriteRule is one declarative pattern substitution. Rules are applied in
// order; replacements must never reintroduce their own trigger text.
type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// idiomRules collapse sports idioms into literal propositions before
// classification.
var idiomRules = []rewriteRule{
	{regexp.MustCompile(`\bthree[ -]peat(s|ed|ing)?\b`), "wins 3 consecutive championships"},
	{regexp.MustCompile(`\bback[ -]to[ -]back\b`), "2 consecutive"},
	{regexp.MustCompile(`\bgo(?:es)? all the way\b`), "wins the super bowl"},
	{regexp.MustCompile(`\b(hoists?|lifts?) the lombardi( trophy)?\b`), "wins the super bowl"},
	{regexp.MustCompile(`\bwins? it all\b`), "wins the super bowl"},
	{regexp.MustCompile(`\bundefeated season\b`), "goes 17-0"},
	{regexp.MustCompile(`\bperfect season\b`), "goes 17-0"},
	{regexp.MustCompile(`\bgets? a ring\b`), "wins the super bowl"},
}

// aliasRules expand player nicknames, team slang and division shorthand to
// the names the roster index carries.
var aliasRules = []rewriteRule{
	// player nicknames
	{regexp.MustCompile(`\bpat mahomes\b`), "patrick mahomes"},
	{regexp.MustCompile(`\bshowtime mahomes\b`), "patrick mahomes"},
	{regexp.MustCompile(`\bjosh?ua allen\b`), "josh allen"},
	{regexp.MustCompile(`\bcmc\b`), "christian mccaffrey"},
	{regexp.MustCompile(`\bt\.? ?law\b`), "trevor lawrence"},
	// team slang
	{regexp.MustCompile(`\bniners\b`), "49ers"},
	{regexp.MustCompile(`\bthe pats\b`), "the patriots"},
	{regexp.MustCompile(`\bbucs\b`), "buccaneers"},
	{regexp.MustCompile(`\bjax\b`), "jaguars"},
	{regexp.MustCompile(`\bphilly\b`), "eagles"},
	{regexp.MustCompile(`\bkc\b`), "chiefs"},
	// division shorthand
	{regexp.MustCompile(`\bthe east\b`), "the afc east"},
	{regexp.MustCompile(`\bnfc no\b`), "nfc north"},
}

// smallNumberWords maps unit words to values
var smallNumberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
	"nineteen": 19,
}

// tensNumberWords maps tens words to values
var tensNumberWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// horizonRe matches prompts that already carry a time horizon
var horizonRe = regexp.MustCompile(
	`\b(this season|next season|this year|next year|career|ever|all[ -]time|lifetime|before|prior to|ahead of|in \d{4}|consecutive)\b`)

// seasonShapedRe matches single-season statistical or market propositions
// that imply a "this season" horizon when none is stated.
var seasonShapedRe = regexp.MustCompile(
	`\b(throws?|rushes?|catches|scores?|records?|racks? up|passes for|runs for|goes \d+-\d+|wins (the|\d+)|makes? the playoffs|misses (the )?playoffs|leads? the league)\b`)
