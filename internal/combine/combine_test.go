package combine

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/longshot/internal/calibration"
	"github.com/yourusername/longshot/internal/intent"
	"github.com/yourusername/longshot/internal/models"
)

func newTestCombiner() *Combiner {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewCombiner(calibration.Default(), logger)
}

func est(pct float64, conf models.Confidence, label, eventKey string) models.Outcome {
	return models.Resolved(&models.ProbabilityEstimate{
		ProbabilityPct: pct,
		Odds:           "+100",
		Confidence:     conf,
		SourceType:     models.SourceStatisticalModel,
		Label:          label,
		EventKey:       eventKey,
	})
}

func mahomes() *models.Player {
	return &models.Player{ID: "p1", Name: "Patrick Mahomes", Team: "Kansas City Chiefs", Position: "QB", Status: models.StatusActive, PopularityRank: 1}
}

func allen() *models.Player {
	return &models.Player{ID: "p2", Name: "Josh Allen", Team: "Buffalo Bills", Position: "QB", Status: models.StatusActive, PopularityRank: 2}
}

func chiefsTeam() *models.Team {
	return &models.Team{Name: "Kansas City Chiefs", Abbreviation: "KC", Division: "AFC West", Conference: "AFC"}
}

func awardClause(p *models.Player) *models.OutcomeDescriptor {
	return &models.OutcomeDescriptor{Kind: models.KindPlayerAward, Player: p, Award: models.AwardMVP, Count: 1}
}

func TestAndIndependentClauses(t *testing.T) {
	c := newTestCombiner()
	comp := &intent.Composite{
		Op: intent.OpAnd,
		Clauses: []*models.OutcomeDescriptor{
			awardClause(mahomes()),
			awardClause(allen()),
		},
	}

	out := c.Combine(comp, []models.Outcome{
		est(20, models.ConfidenceMedium, "Mahomes wins MVP", "award:mvp"),
		est(30, models.ConfidenceMedium, "Allen wins MVP", "award:mvp"),
	})

	require.True(t, out.OK())
	assert.Equal(t, models.SourceComposite, out.Resolved.SourceType)
	// distinct entities in the same award market carry no dependence rule
	assert.InDelta(t, 6.0, out.Resolved.ProbabilityPct, 0.01)
	assert.Contains(t, out.Resolved.Label, " and ")
}

func TestAndSameEntityDependenceLift(t *testing.T) {
	c := newTestCombiner()
	p := mahomes()
	comp := &intent.Composite{
		Op: intent.OpAnd,
		Clauses: []*models.OutcomeDescriptor{
			awardClause(p),
			{Kind: models.KindTeamMarket, Team: chiefsTeam(), Market: models.MarketSuperBowl, Count: 1},
		},
	}

	out := c.Combine(comp, []models.Outcome{
		est(20, models.ConfidenceMedium, "Mahomes wins MVP", "award:mvp"),
		est(15, models.ConfidenceHigh, "Chiefs win the Super Bowl", "market:super_bowl"),
	})

	require.True(t, out.OK())
	// player award and the same player's team market: joint lifted by 1.35
	assert.InDelta(t, 20*0.15*1.35, out.Resolved.ProbabilityPct, 0.01)
	assert.Contains(t, out.Resolved.Assumptions[len(out.Resolved.Assumptions)-1], "dependence factor 1.35")
}

func TestAndJointNeverExceedsCertainty(t *testing.T) {
	c := newTestCombiner()
	p := mahomes()
	comp := &intent.Composite{
		Op: intent.OpAnd,
		Clauses: []*models.OutcomeDescriptor{
			awardClause(p),
			{Kind: models.KindTeamMarket, Team: chiefsTeam(), Market: models.MarketSuperBowl, Count: 1},
		},
	}

	out := c.Combine(comp, []models.Outcome{
		est(99, models.ConfidenceHigh, "a", "award:mvp"),
		est(99, models.ConfidenceHigh, "b", "market:super_bowl"),
	})

	require.True(t, out.OK())
	assert.LessOrEqual(t, out.Resolved.ProbabilityPct, 99.0)
}

func TestOrExclusiveAlternativesAdd(t *testing.T) {
	c := newTestCombiner()
	comp := &intent.Composite{
		Op: intent.OpAnyOf,
		Clauses: []*models.OutcomeDescriptor{
			awardClause(mahomes()),
			awardClause(allen()),
		},
	}

	out := c.Combine(comp, []models.Outcome{
		est(12, models.ConfidenceMedium, "Mahomes wins MVP", "award:mvp"),
		est(10, models.ConfidenceMedium, "Allen wins MVP", "award:mvp"),
	})

	require.True(t, out.OK())
	assert.InDelta(t, 22.0, out.Resolved.ProbabilityPct, 0.01)
	assert.Contains(t, out.Resolved.Rationale, "mutually exclusive")
}

func TestOrMixedEventsUseUnion(t *testing.T) {
	c := newTestCombiner()
	comp := &intent.Composite{
		Op: intent.OpOr,
		Clauses: []*models.OutcomeDescriptor{
			awardClause(mahomes()),
			{Kind: models.KindTeamWinTotal, Team: chiefsTeam(), Wins: 12, Comparator: models.CmpAtLeast},
		},
	}

	out := c.Combine(comp, []models.Outcome{
		est(12, models.ConfidenceMedium, "Mahomes wins MVP", "award:mvp"),
		est(30, models.ConfidenceLow, "Chiefs win 12 or more", "wins"),
	})

	require.True(t, out.OK())
	// independence union, not a sum
	assert.InDelta(t, (1-0.88*0.70)*100, out.Resolved.ProbabilityPct, 0.01)
}

func TestOrSameEntityTwiceNotExclusive(t *testing.T) {
	c := newTestCombiner()
	p := mahomes()
	comp := &intent.Composite{
		Op: intent.OpOr,
		Clauses: []*models.OutcomeDescriptor{
			awardClause(p),
			awardClause(p),
		},
	}

	out := c.Combine(comp, []models.Outcome{
		est(12, models.ConfidenceMedium, "Mahomes wins MVP", "award:mvp"),
		est(12, models.ConfidenceMedium, "Mahomes wins MVP", "award:mvp"),
	})

	require.True(t, out.OK())
	assert.InDelta(t, (1-0.88*0.88)*100, out.Resolved.ProbabilityPct, 0.01)
}

func TestConditionalDividesJointByCondition(t *testing.T) {
	c := newTestCombiner()
	p := mahomes()
	comp := &intent.Composite{
		Op: intent.OpConditional,
		Clauses: []*models.OutcomeDescriptor{
			{Kind: models.KindTeamMarket, Team: chiefsTeam(), Market: models.MarketSuperBowl, Count: 1},
			awardClause(p),
		},
	}

	out := c.Combine(comp, []models.Outcome{
		est(15, models.ConfidenceHigh, "Chiefs win the Super Bowl", "market:super_bowl"),
		est(20, models.ConfidenceMedium, "Mahomes wins MVP", "award:mvp"),
	})

	require.True(t, out.OK())
	// joint (with the shared-entity 1.35 lift) over the condition
	want := 15 * 0.20 * 1.35 / 15 * 100
	assert.InDelta(t, want, out.Resolved.ProbabilityPct, 0.1)
	assert.Contains(t, out.Resolved.Label, " given ")
}

func TestConditionalBounded(t *testing.T) {
	c := newTestCombiner()
	comp := &intent.Composite{
		Op: intent.OpConditional,
		Clauses: []*models.OutcomeDescriptor{
			awardClause(mahomes()),
			awardClause(allen()),
		},
	}

	out := c.Combine(comp, []models.Outcome{
		est(0.1, models.ConfidenceLow, "condition", "award:mvp"),
		est(95, models.ConfidenceLow, "consequent", "award:mvp"),
	})

	require.True(t, out.OK())
	assert.GreaterOrEqual(t, out.Resolved.ProbabilityPct, 1.0)
	assert.LessOrEqual(t, out.Resolved.ProbabilityPct, 99.0)
}

func TestCompositeTakesWeakestConfidence(t *testing.T) {
	c := newTestCombiner()
	comp := &intent.Composite{
		Op: intent.OpAnd,
		Clauses: []*models.OutcomeDescriptor{
			awardClause(mahomes()),
			awardClause(allen()),
		},
	}

	out := c.Combine(comp, []models.Outcome{
		est(20, models.ConfidenceHigh, "a", "award:mvp"),
		est(30, models.ConfidenceLow, "b", "award:mvp"),
	})

	require.True(t, out.OK())
	assert.Equal(t, models.ConfidenceLow, out.Resolved.Confidence)
}

func TestDeclinedClauseDeclinesComposite(t *testing.T) {
	c := newTestCombiner()
	comp := &intent.Composite{
		Op: intent.OpAnd,
		Clauses: []*models.OutcomeDescriptor{
			awardClause(mahomes()),
			awardClause(allen()),
		},
	}

	out := c.Combine(comp, []models.Outcome{
		est(20, models.ConfidenceMedium, "a", "award:mvp"),
		models.Declined(models.SourceConstraintViolation, "retired"),
	})

	require.False(t, out.OK())
	assert.Equal(t, models.SourceConstraintViolation, out.Declined.Reason)
	assert.Contains(t, out.Declined.Detail, "clause 2")
}

func TestUnsupportedClauseUpgradedToComposite(t *testing.T) {
	c := newTestCombiner()
	comp := &intent.Composite{
		Op: intent.OpAnd,
		Clauses: []*models.OutcomeDescriptor{
			awardClause(mahomes()),
			awardClause(allen()),
		},
	}

	out := c.Combine(comp, []models.Outcome{
		est(20, models.ConfidenceMedium, "a", "award:mvp"),
		models.Declined(models.SourceUnsupported, "no resolver applies"),
	})

	require.False(t, out.OK())
	assert.Equal(t, models.SourceUnsupportedComposite, out.Declined.Reason)
}

func TestClauseCountMismatch(t *testing.T) {
	c := newTestCombiner()
	comp := &intent.Composite{
		Op:      intent.OpAnd,
		Clauses: []*models.OutcomeDescriptor{awardClause(mahomes())},
	}

	out := c.Combine(comp, nil)

	require.False(t, out.OK())
	assert.Equal(t, models.SourceUnsupportedComposite, out.Declined.Reason)
}
