package intent

import "strings"

// protect rewrites comparator phrases into single tokens so that clause
// splitting on "and"/"or" cannot tear them apart. The rewritten tokens are
// consumed by the threshold patterns and never leave this package.
func protect(text string) string {
	text = orMoreRe.ReplaceAllString(text, "${1}ormore")
	text = orFewerRe.ReplaceAllString(text, "${1}orfewer")
	text = andAHalfRe.ReplaceAllString(text, "${1}.5")
	text = exactlyRe.ReplaceAllString(text, "${1}exactly")
	return text
}

func splitConditional(text string) (left, right string, ok bool) {
	if m := conditionalIfRe.FindStringSubmatch(text); m != nil {
		return m[1], m[2], true
	}
	if m := conditionalArrowRe.FindStringSubmatch(text); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

// splitTopLevel splits on a connective, dropping empty fragments. The
// comparator protection pass has already run, so every remaining
// occurrence of the connective separates genuine clauses.
func splitTopLevel(text, sep string) []string {
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expandCommaLists flattens "a, b, or c ..." into per-item units while
// leaving ordinary clauses untouched.
func expandCommaLists(clauses []string) []string {
	out := make([]string, 0, len(clauses))
	for _, clause := range clauses {
		for _, unit := range entityListSplitRe.Split(clause, -1) {
			unit = strings.TrimSpace(unit)
			if unit != "" {
				out = append(out, unit)
			}
		}
	}
	return out
}
