package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prstats/internal/models"
	"prstats/internal/stats"
)

func TestConfirmOverride(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		confirmed bool
	}{
		{name: "yes short", input: "y\n", confirmed: true},
		{name: "yes long", input: "yes\n", confirmed: true},
		{name: "uppercase", input: "Y\n", confirmed: true},
		{name: "no", input: "n\n", confirmed: false},
		{name: "empty defaults to no", input: "\n", confirmed: false},
		{name: "eof defaults to no", input: "", confirmed: false},
		{name: "garbage", input: "maybe\n", confirmed: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out strings.Builder
			confirmed, err := confirmOverride(&out, strings.NewReader(tc.input))

			require.NoError(t, err)
			assert.Equal(t, tc.confirmed, confirmed)
			assert.Contains(t, out.String(), "[y/N]")
		})
	}
}

func TestFilterUsers(t *testing.T) {
	all := map[string]stats.UserStats{
		"alice":   {},
		"bob":     {},
		"charlie": {},
	}

	filtered := filterUsers(all, []string{"alice", "charlie", "unknown"})
	assert.Len(t, filtered, 2)
	assert.Contains(t, filtered, "alice")
	assert.Contains(t, filtered, "charlie")
	assert.NotContains(t, filtered, "bob")

	assert.Equal(t, all, filterUsers(all, nil), "empty list keeps everyone")
}

func TestComputeRepositoryStatsCoversEmptyRepos(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	merged := created.Add(48 * time.Hour)
	pullRequests := []models.PullRequest{
		{
			Number:     1,
			Author:     "alice",
			CreatedAt:  created,
			State:      models.PRStateClosed,
			MergedAt:   &merged,
			ClosedAt:   &merged,
			Repository: "org/repo1",
		},
	}
	opts := &RunOptions{Repositories: []string{"org/repo1", "org/repo2"}}

	result := computeRepositoryStats(pullRequests, opts)

	require.Len(t, result, 2)
	assert.Equal(t, 1, result["org/repo1"].MergedPRDuration.Count)
	assert.InDelta(t, 2.0, result["org/repo1"].MergedPRDuration.Mean, 1e-9)
	assert.Equal(t, 0, result["org/repo2"].MergedPRDuration.Count, "repositories without pull requests still get an entry")
}
