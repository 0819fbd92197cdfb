package intent

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/longshot/internal/models"
	"github.com/yourusername/longshot/internal/roster"
)

// CompositeOp identifies how a multi-clause prompt combines its clauses
type CompositeOp string

const (
	OpAnd         CompositeOp = "and"
	OpOr          CompositeOp = "or"
	OpConditional CompositeOp = "conditional"
	OpAnyOf       CompositeOp = "any_of"
)

// Composite holds the decomposed clauses of a compound prompt. For
// OpConditional, Clauses[0] is the condition and Clauses[1] the consequent.
type Composite struct {
	Op      CompositeOp
	Clauses []*models.OutcomeDescriptor
	Labels  []string
}

// Result is the classifier's verdict on one normalized prompt. Exactly one
// of Single, Composite, Clarify, or Subjective is meaningful; when all are
// zero the prompt had a recognizable shape nowhere in the pattern tables.
type Result struct {
	Single     *models.OutcomeDescriptor
	Composite  *Composite
	Entities   []models.Entity
	Clarify    string
	Subjective bool
}

// Classifier maps normalized prompt text onto outcome descriptors. It owns
// no estimation logic: it only decides what is being asked.
type Classifier struct {
	roster *roster.Index
	logger logrus.FieldLogger
}

func NewClassifier(ix *roster.Index, logger logrus.FieldLogger) *Classifier {
	return &Classifier{roster: ix, logger: logger.WithField("component", "intent")}
}

// Classify decomposes a normalized prompt. Decomposition runs in a fixed
// priority: comparator protection, conditionals, races, or-splits (with
// enumerated any_of detection), and-splits, then atomic classification.
func (c *Classifier) Classify(text string) Result {
	protected := protect(text)

	entities := c.roster.Resolve(protected, roster.Hints{})

	if subjectiveRe.MatchString(protected) {
		return Result{Entities: entities, Subjective: true}
	}

	if left, right, ok := splitConditional(protected); ok {
		return c.classifyConditional(left, right, entities)
	}

	if sides := raceSplitRe.Split(protected, 2); len(sides) == 2 {
		return c.classifyRace(sides[0], sides[1], entities)
	}

	if clauses := splitTopLevel(protected, " or "); len(clauses) > 1 {
		return c.classifyDisjunction(clauses, entities)
	}

	if clauses := splitTopLevel(protected, " and "); len(clauses) > 1 {
		return c.classifyConjunction(clauses, entities)
	}

	desc, clarify := c.classifyAtomic(protected)
	if clarify != "" {
		return Result{Entities: entities, Clarify: clarify}
	}
	return Result{Single: desc, Entities: entities}
}

func (c *Classifier) classifyConditional(left, right string, entities []models.Entity) Result {
	condDesc, clarify := c.classifyAtomic(left)
	if clarify != "" {
		return Result{Entities: entities, Clarify: clarify}
	}
	consDesc, clarify := c.classifyAtomic(right)
	if clarify != "" {
		return Result{Entities: entities, Clarify: clarify}
	}
	if condDesc == nil || consDesc == nil {
		return Result{Entities: entities}
	}
	return Result{
		Composite: &Composite{
			Op:      OpConditional,
			Clauses: []*models.OutcomeDescriptor{condDesc, consDesc},
			Labels:  []string{strings.TrimSpace(left), strings.TrimSpace(right)},
		},
		Entities: entities,
	}
}

func (c *Classifier) classifyRace(first, second string, entities []models.Entity) Result {
	sideA, clarify := c.classifyAtomic(first)
	if clarify != "" {
		return Result{Entities: entities, Clarify: clarify}
	}
	sideB, clarify := c.classifyAtomic(second)
	if clarify != "" {
		return Result{Entities: entities, Clarify: clarify}
	}
	if sideA == nil || sideB == nil {
		return Result{Entities: entities}
	}
	return Result{
		Single:   &models.OutcomeDescriptor{Kind: models.KindRaceBefore, SideA: sideA, SideB: sideB},
		Entities: entities,
	}
}

// classifyDisjunction handles both genuine or-composites and enumerated
// any_of lists of the shape "a, b, or c wins the mvp". A clause with no
// outcome verb that resolves to a single entity is an enumeration item
// borrowing the shared predicate from the final clause.
func (c *Classifier) classifyDisjunction(clauses []string, entities []models.Entity) Result {
	units := expandCommaLists(clauses)

	if comp, ok, clarify := c.tryAnyOf(units); clarify != "" {
		return Result{Entities: entities, Clarify: clarify}
	} else if ok {
		return Result{Composite: comp, Entities: entities}
	}

	return c.classifyClauseList(OpOr, clauses, entities)
}

func (c *Classifier) tryAnyOf(units []string) (*Composite, bool, string) {
	if len(units) < 2 {
		return nil, false, ""
	}
	last := units[len(units)-1]
	verbLoc := outcomeVerbRe.FindStringIndex(last)
	if verbLoc == nil {
		return nil, false, ""
	}
	for _, u := range units[:len(units)-1] {
		if outcomeVerbRe.MatchString(u) {
			return nil, false, ""
		}
		if len(c.roster.Resolve(u, roster.Hints{})) != 1 {
			return nil, false, ""
		}
	}

	suffix := strings.TrimSpace(last[verbLoc[0]:])
	clauses := make([]*models.OutcomeDescriptor, 0, len(units))
	labels := make([]string, 0, len(units))
	for i, u := range units {
		text := strings.TrimSpace(u)
		if i < len(units)-1 {
			text = text + " " + suffix
		}
		desc, clarify := c.classifyAtomic(text)
		if clarify != "" {
			return nil, false, clarify
		}
		if desc == nil {
			return nil, false, ""
		}
		clauses = append(clauses, desc)
		labels = append(labels, text)
	}
	return &Composite{Op: OpAnyOf, Clauses: clauses, Labels: labels}, true, ""
}

func (c *Classifier) classifyConjunction(clauses []string, entities []models.Entity) Result {
	return c.classifyClauseList(OpAnd, clauses, entities)
}

func (c *Classifier) classifyClauseList(op CompositeOp, clauses []string, entities []models.Entity) Result {
	descs := make([]*models.OutcomeDescriptor, 0, len(clauses))
	labels := make([]string, 0, len(clauses))
	var subject *models.OutcomeDescriptor
	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		desc, clarify := c.classifyAtomic(clause)
		// an entity-less later clause inherits the subject of the first,
		// as in "the bills win the division and make the playoffs"
		if (desc == nil || clarify != "") && subject != nil {
			desc, clarify = c.classifyAtomic(strings.ToLower(subject.EntityName()) + " " + clause)
		}
		if clarify != "" {
			return Result{Entities: entities, Clarify: clarify}
		}
		if desc == nil {
			return Result{Entities: entities, Clarify: "could not interpret the clause: " + clause}
		}
		if desc.EntityName() == "" && subject != nil {
			desc.Team, desc.Player = subject.Team, subject.Player
		}
		if subject == nil && desc.EntityName() != "" {
			subject = desc
		}
		descs = append(descs, desc)
		labels = append(labels, clause)
	}
	return Result{
		Composite: &Composite{Op: op, Clauses: descs, Labels: labels},
		Entities:  entities,
	}
}

// classifyAtomic maps a single clause onto a descriptor. A non-empty
// clarify return means the clause looked like a supportable shape but is
// missing a detail only the asker can supply.
func (c *Classifier) classifyAtomic(clause string) (*models.OutcomeDescriptor, string) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil, ""
	}

	for _, cp := range cohortRes {
		if cp.re.MatchString(clause) {
			return &models.OutcomeDescriptor{
				Kind:    models.KindWildcardCohort,
				Cohort:  models.CohortKind(cp.kind),
				AllTime: careerScopeRe.MatchString(clause),
			}, ""
		}
	}

	entities := c.roster.Resolve(clause, roster.Hints{})
	player, team := primaryEntities(entities)
	allTime := careerScopeRe.MatchString(clause)

	for _, sp := range statRes {
		m := sp.re.FindStringSubmatch(clause)
		if m == nil {
			continue
		}
		if player == nil {
			return nil, "which player is the " + strings.ReplaceAll(sp.metric, "_", " ") + " threshold about?"
		}
		threshold, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, ""
		}
		return &models.OutcomeDescriptor{
			Kind:       models.KindPlayerStatThreshold,
			Player:     player,
			Metric:     sp.metric,
			Threshold:  threshold,
			Comparator: comparatorFromSuffix(m[2]),
			AllTime:    allTime,
		}, ""
	}

	if m := awardRe.FindStringSubmatch(clause); m != nil {
		return c.classifyAward(m, player, team, allTime)
	}

	if d := c.classifyTeamMarket(clause, player, team); d != nil {
		return d, ""
	}

	if makePlayoffsRe.MatchString(clause) || missPlayoffsRe.MatchString(clause) {
		resolved := c.teamFor(player, team)
		if resolved == nil {
			return nil, "which team's playoff chances?"
		}
		outcome := models.PlayoffMake
		if missPlayoffsRe.MatchString(clause) {
			outcome = models.PlayoffMiss
		}
		return &models.OutcomeDescriptor{Kind: models.KindTeamPlayoff, Team: resolved, Playoff: outcome}, ""
	}

	if d, clarify := c.classifyWinTotal(clause, player, team); d != nil || clarify != "" {
		return d, clarify
	}

	if danglingStatRe.MatchString(clause) {
		return nil, "a numeric threshold is needed for the statistic in: " + clause
	}

	return nil, ""
}

func (c *Classifier) classifyAward(m []string, player *models.Player, team *models.Team, allTime bool) (*models.OutcomeDescriptor, string) {
	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(strings.TrimSpace(m[1]))
		if err != nil || n < 1 {
			return nil, ""
		}
		count = n
	}
	if count > 1 || m[2] != "" {
		allTime = true
	}
	award := awardFromToken(m[3])

	// championships are outright team futures, possibly accumulated over
	// multiple seasons; a player mention reads through to the player's team
	if award == models.AwardChampionship {
		resolved := c.teamFor(player, team)
		if resolved == nil {
			if player != nil {
				return nil, ""
			}
			return nil, "whose championships?"
		}
		return &models.OutcomeDescriptor{
			Kind:    models.KindTeamMarket,
			Team:    resolved,
			Market:  models.MarketSuperBowl,
			Count:   count,
			AllTime: allTime || count > 1,
		}, ""
	}

	if player == nil {
		return nil, "which player is the " + string(award) + " question about?"
	}
	return &models.OutcomeDescriptor{
		Kind:    models.KindPlayerAward,
		Player:  player,
		Award:   award,
		Count:   count,
		AllTime: allTime,
	}, ""
}

func (c *Classifier) classifyTeamMarket(clause string, player *models.Player, team *models.Team) *models.OutcomeDescriptor {
	var market models.Market
	switch {
	case superBowlRe.MatchString(clause):
		market = models.MarketSuperBowl
	case divisionRe.MatchString(clause):
		market = models.MarketDivision
	case conferenceRe.MatchString(clause):
		market = models.MarketConference
	default:
		return nil
	}
	resolved := c.teamFor(player, team)
	if resolved == nil {
		return nil
	}
	return &models.OutcomeDescriptor{
		Kind:    models.KindTeamMarket,
		Team:    resolved,
		Market:  market,
		Count:   1,
		AllTime: careerScopeRe.MatchString(clause),
	}
}

func (c *Classifier) classifyWinTotal(clause string, player *models.Player, team *models.Team) (*models.OutcomeDescriptor, string) {
	var wins int
	cmp := models.CmpAtLeast
	if m := winTotalRe.FindStringSubmatch(clause); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, ""
		}
		wins = n
		cmp = comparatorFromSuffix(m[2])
	} else if m := recordRe.FindStringSubmatch(clause); m != nil {
		w, errW := strconv.Atoi(m[1])
		l, errL := strconv.Atoi(m[2])
		if errW != nil || errL != nil {
			return nil, ""
		}
		wins = w
		_ = l
	} else {
		return nil, ""
	}
	resolved := c.teamFor(player, team)
	if resolved == nil {
		return nil, "which team's win total?"
	}
	return &models.OutcomeDescriptor{
		Kind:       models.KindTeamWinTotal,
		Team:       resolved,
		Wins:       wins,
		Comparator: cmp,
	}, ""
}

// teamFor resolves a team-level descriptor's subject, reading through a
// player mention to the player's current team when no team was named.
func (c *Classifier) teamFor(player *models.Player, team *models.Team) *models.Team {
	if team != nil {
		return team
	}
	if player != nil {
		if t, ok := c.roster.TeamByName(strings.ToLower(player.Team)); ok {
			return t
		}
	}
	return nil
}

func primaryEntities(entities []models.Entity) (*models.Player, *models.Team) {
	var player *models.Player
	var team *models.Team
	for i := range entities {
		e := entities[i]
		if e.Kind == models.EntityPlayer && player == nil {
			player = e.Player
		}
		if e.Kind == models.EntityTeam && team == nil {
			team = e.Team
		}
	}
	return player, team
}

func awardFromToken(token string) models.AwardType {
	switch {
	case strings.HasPrefix(token, "mvp"):
		return models.AwardMVP
	case strings.HasPrefix(token, "opoy"), token == "offensive player of the year":
		return models.AwardOPOY
	case strings.HasPrefix(token, "dpoy"), token == "defensive player of the year":
		return models.AwardDPOY
	case strings.HasPrefix(token, "roy"), token == "rookie of the year":
		return models.AwardROY
	default:
		return models.AwardChampionship
	}
}

func comparatorFromSuffix(suffix string) models.Comparator {
	switch suffix {
	case "orfewer":
		return models.CmpAtMost
	case "exactly":
		return models.CmpExactly
	default:
		return models.CmpAtLeast
	}
}
