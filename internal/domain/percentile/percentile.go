// Package percentile implements pool-relative normalization: mean-rank
// percentiles with exact tie handling, and z-scores for pool-size-stable
// comparisons.
package percentile

import (
	"math"
	"sort"
)

// neutralRank is returned for pools too small to rank within.
const neutralRank = 50.0

// Pool ranks raw values within one position pool. The zero value is not
// usable; build one with New so the backing slice is sorted exactly once.
type Pool struct {
	sorted []float64
	mean   float64
	stdev  float64
}

// New copies and sorts values into a Pool.
func New(values []float64) *Pool {
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)

	var sum float64
	for _, v := range s {
		sum += v
	}
	mean := 0.0
	if len(s) > 0 {
		mean = sum / float64(len(s))
	}
	var ss float64
	for _, v := range s {
		d := v - mean
		ss += d * d
	}
	stdev := 0.0
	if len(s) > 0 {
		stdev = math.Sqrt(ss / float64(len(s)))
	}
	return &Pool{sorted: s, mean: mean, stdev: stdev}
}

// Size returns the number of values in the pool.
func (p *Pool) Size() int { return len(p.sorted) }

// Rank returns the mean-rank percentile of v within the pool:
//
//	100 * (less + (equal-1)/2) / (n-1)
//
// Tied values all receive the average of their ranks; a naive <= count
// would bias ties upward. Pools of size <= 1 return the neutral 50.
func (p *Pool) Rank(v float64) float64 {
	n := len(p.sorted)
	if n <= 1 {
		return neutralRank
	}
	less := sort.SearchFloat64s(p.sorted, v)
	upper := sort.Search(n, func(i int) bool { return p.sorted[i] > v })
	equal := upper - less
	if equal < 1 {
		// v is not a member of the pool; rank it as if inserted.
		equal = 1
	}
	return 100 * (float64(less) + (float64(equal)-1)/2) / float64(n-1)
}

// Z returns the population z-score of v. A degenerate pool (stdev 0)
// yields 0 rather than dividing by zero.
func (p *Pool) Z(v float64) float64 {
	if p.stdev == 0 {
		return 0
	}
	return (v - p.mean) / p.stdev
}

// Mean returns the pool mean.
func (p *Pool) Mean() float64 { return p.mean }

// Stdev returns the population standard deviation of the pool.
func (p *Pool) Stdev() float64 { return p.stdev }
