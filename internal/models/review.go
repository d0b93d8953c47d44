package models

import "time"

// Review states as reported by the GitHub API.
const (
	ReviewStateApproved         = "APPROVED"
	ReviewStateChangesRequested = "CHANGES_REQUESTED"
	ReviewStateCommented        = "COMMENTED"
	ReviewStateDismissed        = "DISMISSED"
)

// ReviewEvent represents a submitted review on a pull request
type ReviewEvent struct {
	Reviewer    string    `json:"reviewer"`
	SubmittedAt time.Time `json:"submitted_at"`
	State       string    `json:"state"`
}

// ReviewRequestEvent represents a review_requested timeline event
type ReviewRequestEvent struct {
	RequestedReviewer string    `json:"requested_reviewer"`
	RequestedAt       time.Time `json:"requested_at"`
}
