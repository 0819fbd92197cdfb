// Package estimator implements the ordered family of outcome resolvers
// that turn one atomic outcome descriptor into a probability estimate.
package estimator

import "math"

// poissonTailAtLeast returns P(X >= k) for X ~ Poisson(mean).
// Computed from the PMF recurrence in log space to stay stable for large
// means and far tails.
func poissonTailAtLeast(mean float64, k int) float64 {
	if mean <= 0 {
		if k <= 0 {
			return 1
		}
		return 0
	}
	if k <= 0 {
		return 1
	}

	// cdf(k-1) via pmf recurrence
	logPMF := -mean // log pmf(0)
	cdf := math.Exp(logPMF)
	for i := 1; i < k; i++ {
		logPMF += math.Log(mean / float64(i))
		cdf += math.Exp(logPMF)
	}

	tail := 1 - cdf
	if tail < 0 {
		return 0
	}
	return tail
}

// negBinomTailAtLeast returns P(X >= k) for an overdispersed count with
// the given mean and dispersion (variance/mean). Dispersion <= 1 falls
// back to the Poisson tail.
func negBinomTailAtLeast(mean, dispersion float64, k int) float64 {
	if dispersion <= 1.0 {
		return poissonTailAtLeast(mean, k)
	}
	if mean <= 0 {
		if k <= 0 {
			return 1
		}
		return 0
	}
	if k <= 0 {
		return 1
	}

	// variance = mean * dispersion; standard NB(r, p) with
	// r = mean / (dispersion - 1), p = r / (r + mean)
	r := mean / (dispersion - 1)
	p := r / (r + mean)

	logPMF := r * math.Log(p) // log pmf(0)
	cdf := math.Exp(logPMF)
	for i := 1; i < k; i++ {
		logPMF += math.Log((float64(i-1) + r) / float64(i) * (1 - p))
		cdf += math.Exp(logPMF)
	}

	tail := 1 - cdf
	if tail < 0 {
		return 0
	}
	return tail
}

// normalTailAtLeast returns P(X >= threshold) for X ~ Normal(mean, sd)
// with a half-unit continuity correction.
func normalTailAtLeast(mean, sd, threshold float64) float64 {
	if sd <= 0 {
		if threshold <= mean {
			return 1
		}
		return 0
	}
	z := (threshold - 0.5 - mean) / sd
	return 1 - normalCDF(z)
}

// normalCDF is the standard normal CDF
func normalCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}

// poissonBinomialAtLeast returns P(successes >= k) over independent trials
// with non-identical probabilities, via the standard DP recurrence
// dp[j] = dp[j]*(1-p) + dp[j-1]*p. A shared-p binomial would misprice
// sequences whose per-season strength varies.
func poissonBinomialAtLeast(probs []float64, k int) float64 {
	if k <= 0 {
		return 1
	}
	if k > len(probs) {
		return 0
	}

	dp := make([]float64, len(probs)+1)
	dp[0] = 1
	for _, p := range probs {
		for j := len(probs); j >= 1; j-- {
			dp[j] = dp[j]*(1-p) + dp[j-1]*p
		}
		dp[0] *= (1 - p)
	}

	tail := 0.0
	for j := k; j <= len(probs); j++ {
		tail += dp[j]
	}
	return tail
}

// raceBefore returns P(A occurs before B) for two independent per-season
// probability sequences: sum_i survive_i * pA[i] * (1-pB[i]), where
// survive is the probability neither has occurred in earlier seasons.
// The discrete formulation is not exactly symmetric; two-sided callers
// renormalize the pair so they sum to one.
func raceBefore(pA, pB []float64) float64 {
	n := len(pA)
	if len(pB) < n {
		n = len(pB)
	}

	survive := 1.0
	total := 0.0
	for i := 0; i < n; i++ {
		total += survive * pA[i] * (1 - pB[i])
		survive *= (1 - pA[i]) * (1 - pB[i])
	}
	return total
}

// unionIndependent returns 1 - prod(1-p) for an independence-approximated
// union over probabilities given in percent.
func unionIndependentPct(pcts []float64) float64 {
	miss := 1.0
	for _, p := range pcts {
		miss *= 1 - p/100.0
	}
	return (1 - miss) * 100.0
}
