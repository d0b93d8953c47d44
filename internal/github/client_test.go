package github

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBaseURL(t *testing.T) {
	testCases := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "public API root", baseURL: "https://api.github.com", wantErr: false},
		{name: "enterprise API root", baseURL: "https://github.mycompany.com/api/v3", wantErr: false},
		{name: "github.com web URL", baseURL: "https://github.com/api/v3", wantErr: true},
		{name: "www.github.com", baseURL: "https://www.github.com", wantErr: true},
		{name: "unsupported scheme", baseURL: "ftp://github.example.com", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBaseURL(tc.baseURL)

			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBaseURLSuggestsPublicAPI(t *testing.T) {
	err := ValidateBaseURL("https://github.com/api/v3")

	require.Error(t, err)
	assert.Contains(t, err.Error(), PublicBaseURL, "error should point at the public API root")
}

func TestParseRepoFullName(t *testing.T) {
	owner, repo, err := ParseRepoFullName("org/project")

	require.NoError(t, err)
	assert.Equal(t, "org", owner)
	assert.Equal(t, "project", repo)

	_, _, err = ParseRepoFullName("not-a-full-name")
	assert.Error(t, err)
}

func TestNewAPIClientRejectsBadBaseURL(t *testing.T) {
	_, err := NewAPIClient(Options{BaseURL: "https://github.com/api/v3", Token: "t", VerifySSL: true})

	assert.Error(t, err)
}

func fakePR(number int, createdAt time.Time) *github.PullRequest {
	return &github.PullRequest{
		Number:    github.Int(number),
		CreatedAt: &github.Timestamp{Time: createdAt},
	}
}

func TestFakeClientWindowFiltering(t *testing.T) {
	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)
	client := &FakeClient{
		PullRequests: []*github.PullRequest{fakePR(1, dec), fakePR(2, jan), fakePR(3, feb)},
	}

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name            string
		since, until    *time.Time
		expectedNumbers []int
	}{
		{name: "no bounds returns everything", expectedNumbers: []int{1, 2, 3}},
		{name: "since only", since: &since, expectedNumbers: []int{2, 3}},
		{name: "until only", until: &until, expectedNumbers: []int{1, 2}},
		{name: "both bounds", since: &since, until: &until, expectedNumbers: []int{2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prs, err := client.ListPullRequests(context.Background(), "owner", "repo", tc.since, tc.until)

			require.NoError(t, err)
			var numbers []int
			for _, pr := range prs {
				numbers = append(numbers, pr.GetNumber())
			}
			assert.Equal(t, tc.expectedNumbers, numbers)
		})
	}
}

func TestFakeClientKeyedLookups(t *testing.T) {
	client := &FakeClient{
		PullRequests: []*github.PullRequest{fakePR(1, time.Now()), fakePR(2, time.Now())},
		Commits: map[int][]*github.RepositoryCommit{
			1: {{SHA: github.String("abc")}},
		},
	}

	pr, err := client.GetPullRequest(context.Background(), "owner", "repo", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, pr.GetNumber())

	commits, err := client.ListPullRequestCommits(context.Background(), "owner", "repo", 1)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "abc", commits[0].GetSHA())

	commits, err = client.ListPullRequestCommits(context.Background(), "owner", "repo", 2)
	require.NoError(t, err)
	assert.Empty(t, commits)
}
