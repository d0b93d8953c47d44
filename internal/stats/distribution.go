package stats

import "sort"

// Distribution is a five-number summary of a sample of values.
// An empty sample yields the zero value (all fields 0).
type Distribution struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// NewDistribution computes the summary of the given values.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	n := len(sorted)
	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return Distribution{
		Count:  n,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Mean:   sum / float64(n),
		Median: median,
	}
}
