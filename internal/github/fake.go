package github

import (
	"context"
	"time"

	"github.com/google/go-github/v57/github"
)

// FakeClient is an in-memory Client for tests. Per-PR data is keyed by
// pull request number.
type FakeClient struct {
	PullRequests   []*github.PullRequest
	Files          map[int][]*github.CommitFile
	Commits        map[int][]*github.RepositoryCommit
	Reviews        map[int][]*github.PullRequestReview
	ReviewComments map[int][]*github.PullRequestComment
	IssueComments  map[int][]*github.IssueComment
	TimelineEvents map[int][]*github.Timeline

	Err error
}

var _ Client = (*FakeClient)(nil)

func (f *FakeClient) ListPullRequests(_ context.Context, _, _ string, since, until *time.Time) ([]*github.PullRequest, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var result []*github.PullRequest
	for _, pr := range f.PullRequests {
		if createdInWindow(pr.GetCreatedAt().Time, since, until) {
			result = append(result, pr)
		}
	}
	return result, nil
}

func (f *FakeClient) GetPullRequest(_ context.Context, _, _ string, number int) (*github.PullRequest, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	for _, pr := range f.PullRequests {
		if pr.GetNumber() == number {
			return pr, nil
		}
	}
	return nil, nil
}

func (f *FakeClient) ListPullRequestFiles(_ context.Context, _, _ string, number int) ([]*github.CommitFile, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Files[number], nil
}

func (f *FakeClient) ListPullRequestCommits(_ context.Context, _, _ string, number int) ([]*github.RepositoryCommit, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Commits[number], nil
}

func (f *FakeClient) ListPullRequestReviews(_ context.Context, _, _ string, number int) ([]*github.PullRequestReview, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Reviews[number], nil
}

func (f *FakeClient) ListPullRequestComments(_ context.Context, _, _ string, number int) ([]*github.PullRequestComment, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.ReviewComments[number], nil
}

func (f *FakeClient) ListIssueComments(_ context.Context, _, _ string, number int) ([]*github.IssueComment, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.IssueComments[number], nil
}

func (f *FakeClient) ListIssueTimeline(_ context.Context, _, _ string, number int) ([]*github.Timeline, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.TimelineEvents[number], nil
}
