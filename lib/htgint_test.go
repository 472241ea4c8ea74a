package lib

import "testing"

func TestHistogramInt64(t *testing.T) {
	h := NewhistogramInt64(0, 100, 10)

	for i := -10; i < 120; i++ {
		h.Add(int64(i))
	}

	if x, y := int64(-10), h.Min(); x != y {
		t.Errorf("Min() expected %v, got %v", x, y)
	} else if x, y := int64(119), h.Max(); x != y {
		t.Errorf("Max() expected %v, got %v", x, y)
	} else if x, y := int64(130), h.Samples(); x != y {
		t.Errorf("Samples() expected %v, got %v", x, y)
	}

	buckets := h.Buckets()
	if x, y := int64(10), buckets["-"]; x != y {
		t.Errorf("underflow bucket expected %v, got %v", x, y)
	} else if x, y := int64(20), buckets["+"]; x != y {
		t.Errorf("overflow bucket expected %v, got %v", x, y)
	} else if x, y := int64(10), buckets["0"]; x != y {
		t.Errorf("bucket 0 expected %v, got %v", x, y)
	} else if x, y := int64(10), buckets["90"]; x != y {
		t.Errorf("bucket 90 expected %v, got %v", x, y)
	}

	stats := h.Fullstats()
	if x, y := int64(130), stats["samples"].(int64); x != y {
		t.Errorf("stats samples expected %v, got %v", x, y)
	}
	if _, ok := stats["histogram"].(map[string]int64); ok == false {
		t.Errorf("expected histogram buckets in stats")
	}
}

func TestHistogramEmpty(t *testing.T) {
	h := NewhistogramInt64(0, 16, 1)
	if x, y := int64(0), h.Mean(); x != y {
		t.Errorf("Mean() expected %v, got %v", x, y)
	} else if x, y := int64(0), h.Variance(); x != y {
		t.Errorf("Variance() expected %v, got %v", x, y)
	} else if x, y := int64(0), h.SD(); x != y {
		t.Errorf("SD() expected %v, got %v", x, y)
	}
}
