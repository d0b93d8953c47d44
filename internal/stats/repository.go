package stats

import (
	"sort"
	"time"

	"prstats/internal/models"
)

const (
	secondsPerDay  = 86400.0
	secondsPerHour = 3600.0
)

// RepositoryStats holds the per-repository metric distributions.
// Durations are in fractional days.
type RepositoryStats struct {
	OpenPRDuration                  Distribution `json:"open_pr_duration"`
	ClosedPRDuration                Distribution `json:"closed_pr_duration"`
	MergedPRDuration                Distribution `json:"merged_pr_duration"`
	TimeToFirstReview               Distribution `json:"time_to_first_review"`
	CommitsPerPR                    Distribution `json:"commits_per_pr"`
	CommentsPer100LOC               Distribution `json:"comments_per_100_loc"`
	ReReviewsPerPR                  Distribution `json:"re_reviews_per_pr"`
	TimeChangesRequestedToRerequest Distribution `json:"time_between_changes_requested_and_re_request"`

	RequestedCommits   int `json:"requested_commits"`
	UnrequestedCommits int `json:"unrequested_commits"`
}

func daysBetween(start, end time.Time) float64 {
	return end.Sub(start).Seconds() / secondsPerDay
}

func hoursBetween(start, end time.Time) float64 {
	return end.Sub(start).Seconds() / secondsPerHour
}

// ComputeRepositoryStats computes metric distributions for one repository's
// pull requests. Open PR durations are measured up to until; pass the zero
// time to measure against the current wall clock.
func ComputeRepositoryStats(pullRequests []models.PullRequest, until time.Time) RepositoryStats {
	if until.IsZero() {
		until = time.Now().UTC()
	}

	var openDurations, closedDurations, mergedDurations []float64
	for i := range pullRequests {
		pr := &pullRequests[i]
		switch {
		case pr.State == models.PRStateOpen:
			openDurations = append(openDurations, daysBetween(pr.CreatedAt, until))
		case pr.MergedAt != nil:
			mergedDurations = append(mergedDurations, daysBetween(pr.CreatedAt, *pr.MergedAt))
		case pr.ClosedAt != nil:
			closedDurations = append(closedDurations, daysBetween(pr.CreatedAt, *pr.ClosedAt))
		}
	}

	var firstReviewTimes []float64
	for i := range pullRequests {
		pr := &pullRequests[i]
		if len(pr.Reviews) == 0 {
			continue
		}
		first := pr.Reviews[0].SubmittedAt
		for _, r := range pr.Reviews[1:] {
			if r.SubmittedAt.Before(first) {
				first = r.SubmittedAt
			}
		}
		firstReviewTimes = append(firstReviewTimes, daysBetween(pr.CreatedAt, first))
	}

	var commitCounts []float64
	for i := range pullRequests {
		commitCounts = append(commitCounts, float64(len(pullRequests[i].Commits)))
	}

	// PRs with zero changed lines are excluded from the comment density metric.
	var commentDensities []float64
	for i := range pullRequests {
		pr := &pullRequests[i]
		if loc := pr.TotalLOC(); loc > 0 {
			commentDensities = append(commentDensities, float64(len(pr.Comments))/float64(loc)*100.0)
		}
	}

	var reReviewCounts []float64
	for i := range pullRequests {
		pr := &pullRequests[i]
		perReviewer := make(map[string]int)
		for _, r := range pr.Reviews {
			perReviewer[r.Reviewer]++
		}
		reReviews := 0
		for _, count := range perReviewer {
			if count > 1 {
				reReviews += count - 1
			}
		}
		if reReviews > 0 {
			reReviewCounts = append(reReviewCounts, float64(reReviews))
		}
	}

	var changesToRerequest []float64
	for i := range pullRequests {
		pr := &pullRequests[i]
		for _, review := range pr.Reviews {
			if review.State != models.ReviewStateChangesRequested {
				continue
			}
			var next *time.Time
			for _, rr := range pr.ReviewRequests {
				if rr.RequestedReviewer != review.Reviewer || !rr.RequestedAt.After(review.SubmittedAt) {
					continue
				}
				if next == nil || rr.RequestedAt.Before(*next) {
					t := rr.RequestedAt
					next = &t
				}
			}
			if next != nil {
				changesToRerequest = append(changesToRerequest, daysBetween(review.SubmittedAt, *next))
			}
		}
	}

	requested, unrequested := 0, 0
	for i := range pullRequests {
		req, unreq := ClassifyCommits(&pullRequests[i])
		requested += req
		unrequested += unreq
	}

	return RepositoryStats{
		OpenPRDuration:                  NewDistribution(openDurations),
		ClosedPRDuration:                NewDistribution(closedDurations),
		MergedPRDuration:                NewDistribution(mergedDurations),
		TimeToFirstReview:               NewDistribution(firstReviewTimes),
		CommitsPerPR:                    NewDistribution(commitCounts),
		CommentsPer100LOC:               NewDistribution(commentDensities),
		ReReviewsPerPR:                  NewDistribution(reReviewCounts),
		TimeChangesRequestedToRerequest: NewDistribution(changesToRerequest),
		RequestedCommits:                requested,
		UnrequestedCommits:              unrequested,
	}
}

// GroupByRepository buckets pull requests by their repository name.
// Keys are returned sorted so callers iterate deterministically.
func GroupByRepository(pullRequests []models.PullRequest) (map[string][]models.PullRequest, []string) {
	byRepo := make(map[string][]models.PullRequest)
	for _, pr := range pullRequests {
		byRepo[pr.Repository] = append(byRepo[pr.Repository], pr)
	}
	names := make([]string, 0, len(byRepo))
	for name := range byRepo {
		names = append(names, name)
	}
	sort.Strings(names)
	return byRepo, names
}
