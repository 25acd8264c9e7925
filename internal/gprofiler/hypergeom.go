package gprofiler

import "math"

// hypergeomSF returns P(X >= k) for X ~ Hypergeometric(N, K, n): the
// probability of drawing at least k annotated genes when n genes are drawn
// from a domain of N genes, K of which carry the annotation.
func hypergeomSF(k, N, K, n int) float64 {
	if k <= 0 {
		return 1
	}
	if N <= 0 || K <= 0 || n <= 0 || K > N || n > N {
		return math.NaN()
	}
	lo, hi := max(0, n-(N-K)), min(n, K)
	if k <= lo {
		return 1
	}
	if k > hi {
		return 0
	}

	// Sum the pmf in log space, anchored on the first term.
	first := logPMF(k, N, K, n)
	sum := 0.0
	for i := k; i <= hi; i++ {
		sum += math.Exp(logPMF(i, N, K, n) - first)
	}
	return math.Min(1, math.Exp(first+math.Log(sum)))
}

func logPMF(k, N, K, n int) float64 {
	return logChoose(K, k) + logChoose(N-K, n-k) - logChoose(N, n)
}

func logChoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}
