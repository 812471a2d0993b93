package chunk

import (
	"math"
	"testing"
)

func TestRelevance_Cosine(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 1},
		{0.05, 0.95},
		{0.12, 0.88},
		{1, 0},
		{1.5, 0}, // cosine distance beyond 1 clamps instead of going negative
	}
	for _, c := range cases {
		if got := Relevance(MetricCosine, c.distance); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Relevance(cosine, %f) = %f, want %f", c.distance, got, c.want)
		}
	}
}

func TestRelevance_L2(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 1},
		{1, 0.5},
		{3, 0.25},
	}
	for _, c := range cases {
		if got := Relevance(MetricL2, c.distance); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Relevance(l2, %f) = %f, want %f", c.distance, got, c.want)
		}
	}
}

func TestRelevance_UnknownMetricBehavesLikeCosine(t *testing.T) {
	if got := Relevance(Metric("dot"), 0.2); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("unexpected fallback relevance: %f", got)
	}
}
