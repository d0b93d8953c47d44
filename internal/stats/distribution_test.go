package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDistribution(t *testing.T) {
	testCases := []struct {
		name     string
		values   []float64
		expected Distribution
	}{
		{
			name:     "empty sample yields zero distribution",
			values:   nil,
			expected: Distribution{},
		},
		{
			name:   "single value",
			values: []float64{5.0},
			expected: Distribution{
				Count: 1, Min: 5.0, Max: 5.0, Mean: 5.0, Median: 5.0,
			},
		},
		{
			name:   "odd number of values uses middle element as median",
			values: []float64{9.0, 1.0, 5.0, 3.0, 7.0},
			expected: Distribution{
				Count: 5, Min: 1.0, Max: 9.0, Mean: 5.0, Median: 5.0,
			},
		},
		{
			name:   "even number of values uses midpoint median",
			values: []float64{4.0, 1.0, 3.0, 2.0},
			expected: Distribution{
				Count: 4, Min: 1.0, Max: 4.0, Mean: 2.5, Median: 2.5,
			},
		},
		{
			name:   "unsorted input",
			values: []float64{10.0, 2.0},
			expected: Distribution{
				Count: 2, Min: 2.0, Max: 10.0, Mean: 6.0, Median: 6.0,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := NewDistribution(tc.values)
			assert.Equal(t, tc.expected, result, "distribution should match expected summary")
		})
	}
}

func TestNewDistributionDoesNotMutateInput(t *testing.T) {
	values := []float64{3.0, 1.0, 2.0}

	NewDistribution(values)

	assert.Equal(t, []float64{3.0, 1.0, 2.0}, values, "input slice should stay in original order")
}
