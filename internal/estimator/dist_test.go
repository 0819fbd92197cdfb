package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoissonTailBounds(t *testing.T) {
	assert.Equal(t, 1.0, poissonTailAtLeast(5, 0))
	assert.Equal(t, 0.0, poissonTailAtLeast(0, 3))
	assert.Equal(t, 1.0, poissonTailAtLeast(0, 0))

	// tail shrinks as k grows
	prev := 1.0
	for k := 1; k <= 20; k++ {
		tail := poissonTailAtLeast(6, k)
		assert.LessOrEqual(t, tail, prev)
		assert.GreaterOrEqual(t, tail, 0.0)
		prev = tail
	}
}

func TestNegBinomFallsBackToPoisson(t *testing.T) {
	assert.InDelta(t, poissonTailAtLeast(10, 12), negBinomTailAtLeast(10, 1.0, 12), 1e-12)
	assert.InDelta(t, poissonTailAtLeast(10, 12), negBinomTailAtLeast(10, 0.8, 12), 1e-12)
}

func TestNegBinomOverdispersionFattensTail(t *testing.T) {
	// far above the mean, extra variance means more tail mass
	poisson := negBinomTailAtLeast(20, 1.0, 30)
	overdispersed := negBinomTailAtLeast(20, 2.0, 30)
	assert.Greater(t, overdispersed, poisson)
}

func TestNormalTailAtLeast(t *testing.T) {
	// continuity correction puts the threshold-at-mean tail just above half
	assert.InDelta(t, 0.5, normalTailAtLeast(100, 15, 100), 0.02)
	assert.Greater(t, normalTailAtLeast(100, 15, 80), normalTailAtLeast(100, 15, 120))
	assert.Equal(t, 1.0, normalTailAtLeast(100, 0, 90))
	assert.Equal(t, 0.0, normalTailAtLeast(100, 0, 110))
}

func TestPoissonBinomialAtLeast(t *testing.T) {
	probs := []float64{0.5, 0.5, 0.5}

	assert.Equal(t, 1.0, poissonBinomialAtLeast(probs, 0))
	assert.Equal(t, 0.0, poissonBinomialAtLeast(probs, 4))
	// symmetric fair trials: P(>=1) = 1 - 0.125, P(>=3) = 0.125
	assert.InDelta(t, 0.875, poissonBinomialAtLeast(probs, 1), 1e-9)
	assert.InDelta(t, 0.125, poissonBinomialAtLeast(probs, 3), 1e-9)
}

func TestPoissonBinomialUnevenTrials(t *testing.T) {
	// one strong season and two weak ones
	probs := []float64{0.4, 0.05, 0.05}

	// P(>=1) = 1 - 0.6*0.95*0.95
	assert.InDelta(t, 1-0.6*0.95*0.95, poissonBinomialAtLeast(probs, 1), 1e-9)
	// P(=3) is the product of all three
	assert.InDelta(t, 0.4*0.05*0.05, poissonBinomialAtLeast(probs, 3), 1e-9)
}

func TestRaceBeforeFavorsStrongerSequence(t *testing.T) {
	strong := []float64{0.3, 0.25, 0.2}
	weak := []float64{0.05, 0.05, 0.05}

	assert.Greater(t, raceBefore(strong, weak), raceBefore(weak, strong))

	// the two orderings plus "neither" cannot exceed certainty
	sum := raceBefore(strong, weak) + raceBefore(weak, strong)
	assert.LessOrEqual(t, sum, 1.0)
	assert.Greater(t, sum, 0.0)
}

func TestRaceBeforeEmptySequence(t *testing.T) {
	assert.Equal(t, 0.0, raceBefore(nil, []float64{0.5}))
	assert.Equal(t, 0.0, raceBefore([]float64{0.5}, nil))
}
