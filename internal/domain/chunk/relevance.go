package chunk

// Metric identifies the distance metric of the backing vector index.
// The relevance transform depends on the metric's range, so it is
// configuration, not an assumption.
type Metric string

const (
	// MetricCosine is cosine distance in [0, 2]; relevance is 1 - d.
	MetricCosine Metric = "cosine"
	// MetricL2 is unnormalized Euclidean distance in [0, +inf);
	// relevance is 1 / (1 + d).
	MetricL2 Metric = "l2"
)

// Relevance maps a raw index distance to a score in [0, 1], higher
// meaning more relevant. The result is clamped explicitly: cosine
// distances above 1 would otherwise go negative.
func Relevance(m Metric, distance float64) float64 {
	var r float64
	switch m {
	case MetricL2:
		r = 1 / (1 + distance)
	default:
		r = 1 - distance
	}
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
