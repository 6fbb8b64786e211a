package learning

import (
	"math"
	"sort"
)

// pearson returns the Pearson correlation coefficient of the two series, 0
// when either series has no variance or the series are empty.
func pearson(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) == 0 {
		return 0
	}
	n := float64(len(xs))

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}

	r := cov / math.Sqrt(varX*varY)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// bucketCount partitions component scores into fifths of [0,1].
const bucketCount = 5

// bucketIndex maps a [0,1] score to its fifth; 1.0 lands in the top bucket.
func bucketIndex(v float64) int {
	idx := int(v * bucketCount)
	if idx >= bucketCount {
		idx = bucketCount - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// bucketMeans returns the mean of ys grouped by their x's bucket. Empty
// buckets read as -1 so they are distinguishable from a true zero mean.
func bucketMeans(xs, ys []float64) [bucketCount]float64 {
	var sums [bucketCount]float64
	var counts [bucketCount]int
	for i := range xs {
		b := bucketIndex(xs[i])
		sums[b] += ys[i]
		counts[b]++
	}

	var means [bucketCount]float64
	for b := range means {
		if counts[b] == 0 {
			means[b] = -1
			continue
		}
		means[b] = sums[b] / float64(counts[b])
	}
	return means
}

// percentile returns the p-th percentile (0..1) of the values using
// nearest-rank on a sorted copy.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
