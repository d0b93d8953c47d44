package models

import "time"

// Pull request states as reported by the GitHub API.
const (
	PRStateOpen   = "open"
	PRStateClosed = "closed"
)

// PullRequest represents a pull request with all collected detail:
// commits, comments, reviews and review request events.
type PullRequest struct {
	Number           int                  `json:"number"`
	Title            string               `json:"title"`
	Author           string               `json:"author"`
	CreatedAt        time.Time            `json:"created_at"`
	State            string               `json:"state"`
	Additions        int                  `json:"additions"`
	Deletions        int                  `json:"deletions"`
	ClosedAt         *time.Time           `json:"closed_at"`
	MergedAt         *time.Time           `json:"merged_at"`
	Commits          []CommitInfo         `json:"commits"`
	Comments         []CommentInfo        `json:"comments"`
	Reviews          []ReviewEvent        `json:"reviews"`
	ReviewRequests   []ReviewRequestEvent `json:"review_requests"`
	ReadyForReviewAt *time.Time           `json:"ready_for_review_at"`
	Repository       string               `json:"repository"`
}

// IsMerged reports whether the pull request was merged.
func (pr *PullRequest) IsMerged() bool {
	return pr.MergedAt != nil
}

// TotalLOC returns the total changed lines of code (additions plus deletions).
func (pr *PullRequest) TotalLOC() int {
	return pr.Additions + pr.Deletions
}
