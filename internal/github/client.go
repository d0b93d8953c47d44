package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
)

// Client is the read-only GitHub API surface the collector needs.
// Implementations return go-github types; mapping to domain models
// happens in the collector.
type Client interface {
	ListPullRequests(ctx context.Context, owner, repo string, since, until *time.Time) ([]*github.PullRequest, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]*github.CommitFile, error)
	ListPullRequestCommits(ctx context.Context, owner, repo string, number int) ([]*github.RepositoryCommit, error)
	ListPullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestReview, error)
	ListPullRequestComments(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestComment, error)
	ListIssueComments(ctx context.Context, owner, repo string, number int) ([]*github.IssueComment, error)
	ListIssueTimeline(ctx context.Context, owner, repo string, number int) ([]*github.Timeline, error)
}

// PublicBaseURL is the API root for github.com.
const PublicBaseURL = "https://api.github.com"

// ValidateBaseURL rejects base URLs that look like a github.com web URL
// instead of an API root. Enterprise instances expose the API under
// /api/v3; public GitHub uses api.github.com.
func ValidateBaseURL(baseURL string) error {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid base_url %q: scheme must be http or https", baseURL)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "github.com" || host == "www.github.com" {
		return fmt.Errorf("invalid base_url %q: for public GitHub use %s", baseURL, PublicBaseURL)
	}
	return nil
}

// ParseRepoFullName splits an owner/repo reference.
func ParseRepoFullName(fullName string) (owner, repo string, err error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository full name: %s", fullName)
	}
	return parts[0], parts[1], nil
}

// createdInWindow reports whether a PR creation time falls inside the
// inclusive [since, until] window. Nil bounds are open-ended.
func createdInWindow(createdAt time.Time, since, until *time.Time) bool {
	if since != nil && createdAt.Before(*since) {
		return false
	}
	if until != nil && createdAt.After(*until) {
		return false
	}
	return true
}
