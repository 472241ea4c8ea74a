package lib

import "math"
import "strconv"

// HistogramInt64 accumulates int64 samples into fixed width buckets
// between from and till, with spill buckets on either side.
type HistogramInt64 struct {
	n         int64
	minval    int64
	maxval    int64
	sum       int64
	sumsq     float64
	histogram []int64
	init      bool
	from      int64
	till      int64
	width     int64
}

// NewhistogramInt64 returns a new histogram with buckets of width
// covering [from, till).
func NewhistogramInt64(from, till, width int64) *HistogramInt64 {
	from = (from / width) * width
	till = (till / width) * width
	h := &HistogramInt64{from: from, till: till, width: width}
	h.histogram = make([]int64, 1+((till-from)/width)+1)
	return h
}

// Add a sample to the histogram.
func (h *HistogramInt64) Add(sample int64) {
	h.n++
	h.sum += sample
	f := float64(sample)
	h.sumsq += f * f
	if h.init == false || sample < h.minval {
		h.minval = sample
		h.init = true
	}
	if h.maxval < sample {
		h.maxval = sample
	}

	if sample < h.from {
		h.histogram[0]++
	} else if sample >= h.till {
		h.histogram[len(h.histogram)-1]++
	} else {
		h.histogram[((sample-h.from)/h.width)+1]++
	}
}

// Min value from sample set.
func (h *HistogramInt64) Min() int64 {
	return h.minval
}

// Max value from sample set.
func (h *HistogramInt64) Max() int64 {
	return h.maxval
}

// Samples counted so far.
func (h *HistogramInt64) Samples() int64 {
	return h.n
}

// Sum of all samples.
func (h *HistogramInt64) Sum() int64 {
	return h.sum
}

// Mean of all samples.
func (h *HistogramInt64) Mean() int64 {
	if h.n == 0 {
		return 0
	}
	return int64(float64(h.sum) / float64(h.n))
}

// Variance of the sample set.
func (h *HistogramInt64) Variance() int64 {
	if h.n == 0 {
		return 0
	}
	nF, meanF := float64(h.n), float64(h.Mean())
	return int64((h.sumsq / nF) - (meanF * meanF))
}

// SD is the standard-deviation of the sample set.
func (h *HistogramInt64) SD() int64 {
	if h.n == 0 {
		return 0
	}
	return int64(math.Sqrt(float64(h.Variance())))
}

// Buckets returns the non-empty buckets keyed by their lower bound,
// with "-" and "+" for the spill buckets.
func (h *HistogramInt64) Buckets() map[string]int64 {
	m := make(map[string]int64)
	for i, v := range h.histogram {
		if v == 0 {
			continue
		}
		switch i {
		case 0:
			m["-"] = v
		case len(h.histogram) - 1:
			m["+"] = v
		default:
			m[strconv.Itoa(int(h.from+int64(i-1)*h.width))] = v
		}
	}
	return m
}

// Fullstats returns buckets along with mean, variance and
// stddeviance as a stats map.
func (h *HistogramInt64) Fullstats() map[string]interface{} {
	return map[string]interface{}{
		"samples":     h.Samples(),
		"min":         h.Min(),
		"max":         h.Max(),
		"mean":        h.Mean(),
		"variance":    h.Variance(),
		"stddeviance": h.SD(),
		"histogram":   h.Buckets(),
	}
}
