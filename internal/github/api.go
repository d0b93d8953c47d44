package github

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

const perPage = 100

// Options configures the API-backed client.
type Options struct {
	BaseURL        string
	Token          string
	VerifySSL      bool
	RequestLogPath string
}

// APIClient implements Client against the GitHub REST API.
type APIClient struct {
	client     *github.Client
	requestLog *RequestLog
}

// NewAPIClient builds an authenticated client for the given API root.
// Enterprise roots (anything other than api.github.com) get the
// enterprise URL layout.
func NewAPIClient(opts Options) (*APIClient, error) {
	if err := ValidateBaseURL(opts.BaseURL); err != nil {
		return nil, err
	}

	var requestLog *RequestLog
	if opts.RequestLogPath != "" {
		var err error
		requestLog, err = OpenRequestLog(opts.RequestLogPath)
		if err != nil {
			return nil, err
		}
	}

	transport := http.DefaultTransport
	if !opts.VerifySSL {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	httpClient := &http.Client{
		Transport: &loggingTransport{next: transport, requestLog: requestLog},
		Timeout:   2 * time.Minute,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	authClient := oauth2.NewClient(ctx, ts)

	client := github.NewClient(authClient)
	if opts.BaseURL != PublicBaseURL {
		var err error
		client, err = client.WithEnterpriseURLs(opts.BaseURL, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise base URL %s: %w", opts.BaseURL, err)
		}
	}

	return &APIClient{client: client, requestLog: requestLog}, nil
}

// Close releases the request log, if one was opened.
func (c *APIClient) Close() error {
	if c.requestLog != nil {
		return c.requestLog.Close()
	}
	return nil
}

// ListPullRequests fetches every pull request of the repository and
// filters client-side on creation time. The API has no server-side
// created-at filter for pull requests.
func (c *APIClient) ListPullRequests(ctx context.Context, owner, repo string, since, until *time.Time) ([]*github.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:     "all",
		Sort:      "created",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	var result []*github.PullRequest
	for {
		prs, resp, err := c.client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests for %s/%s: %w", owner, repo, err)
		}

		stop := false
		for _, pr := range prs {
			createdAt := pr.GetCreatedAt().Time
			// Results are newest first, so everything after the first
			// PR older than the window is out of range too.
			if since != nil && createdAt.Before(*since) {
				stop = true
				break
			}
			if createdInWindow(createdAt, since, until) {
				result = append(result, pr)
			}
		}
		if stop || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

func (c *APIClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request %s/%s#%d: %w", owner, repo, number, err)
	}
	return pr, nil
}

func (c *APIClient) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]*github.CommitFile, error) {
	opts := &github.ListOptions{PerPage: perPage}
	var result []*github.CommitFile
	for {
		files, resp, err := c.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list files for %s/%s#%d: %w", owner, repo, number, err)
		}
		result = append(result, files...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

func (c *APIClient) ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]*github.RepositoryCommit, error) {
	opts := &github.ListOptions{PerPage: perPage}
	var result []*github.RepositoryCommit
	for {
		commits, resp, err := c.client.PullRequests.ListCommits(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list commits for %s/%s#%d: %w", owner, repo, number, err)
		}
		result = append(result, commits...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

func (c *APIClient) ListPullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestReview, error) {
	opts := &github.ListOptions{PerPage: perPage}
	var result []*github.PullRequestReview
	for {
		reviews, resp, err := c.client.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews for %s/%s#%d: %w", owner, repo, number, err)
		}
		result = append(result, reviews...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

func (c *APIClient) ListPullRequestComments(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestComment, error) {
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var result []*github.PullRequestComment
	for {
		comments, resp, err := c.client.PullRequests.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list review comments for %s/%s#%d: %w", owner, repo, number, err)
		}
		result = append(result, comments...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

func (c *APIClient) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]*github.IssueComment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	var result []*github.IssueComment
	for {
		comments, resp, err := c.client.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issue comments for %s/%s#%d: %w", owner, repo, number, err)
		}
		result = append(result, comments...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

func (c *APIClient) ListIssueTimeline(ctx context.Context, owner, repo string, number int) ([]*github.Timeline, error) {
	opts := &github.ListOptions{PerPage: perPage}
	var result []*github.Timeline
	for {
		events, resp, err := c.client.Issues.ListIssueTimeline(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list timeline for %s/%s#%d: %w", owner, repo, number, err)
		}
		result = append(result, events...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}
