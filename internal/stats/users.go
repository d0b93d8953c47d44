package stats

import (
	"sort"
	"time"

	"prstats/internal/models"
)

// UserStats holds review behavior metrics for one user.
// Review latency is in hours, rates are percentages.
type UserStats struct {
	TimeToSubmitReview          Distribution `json:"time_to_submit_review"`
	ChangesRequestedRate        float64      `json:"changes_requested_rate"`
	DirectApprovalRate          float64      `json:"direct_approval_rate"`
	LOCPerCreatedPR             Distribution `json:"loc_per_created_pr"`
	CommentsPer100LOCAsReviewer Distribution `json:"comments_per_100_loc_as_reviewer"`
	CommentsPer100LOCAsAuthor   Distribution `json:"comments_per_100_loc_as_author"`
}

// userBuckets are the raw per-user samples that user and group stats
// are derived from.
type userBuckets struct {
	reviewTimes             []float64
	prsReviewed             int
	prsWithChangesRequested int
	directApprovalCount     int
	locValues               []float64
	commentsAsReviewer      []float64
	commentsAsAuthor        []float64
}

func collectUserBuckets(pullRequests []models.PullRequest) map[string]*userBuckets {
	buckets := make(map[string]*userBuckets)
	get := func(username string) *userBuckets {
		b, ok := buckets[username]
		if !ok {
			b = &userBuckets{}
			buckets[username] = b
		}
		return b
	}

	for i := range pullRequests {
		pr := &pullRequests[i]
		author := get(pr.Author)

		totalLOC := pr.TotalLOC()
		author.locValues = append(author.locValues, float64(totalLOC))

		if totalLOC > 0 {
			authorComments := 0
			for _, c := range pr.Comments {
				if c.Author == pr.Author {
					authorComments++
				}
			}
			if authorComments > 0 {
				author.commentsAsAuthor = append(author.commentsAsAuthor,
					float64(authorComments)/float64(totalLOC)*100.0)
			}
		}

		// Latency from each review request to the reviewer's first
		// review submitted after that request.
		for _, rr := range pr.ReviewRequests {
			reviewer := get(rr.RequestedReviewer)
			var next *time.Time
			for _, r := range pr.Reviews {
				if r.Reviewer != rr.RequestedReviewer || !r.SubmittedAt.After(rr.RequestedAt) {
					continue
				}
				if next == nil || r.SubmittedAt.Before(*next) {
					t := r.SubmittedAt
					next = &t
				}
			}
			if next != nil {
				reviewer.reviewTimes = append(reviewer.reviewTimes, hoursBetween(rr.RequestedAt, *next))
			}
		}

		reviewsByReviewer := make(map[string][]models.ReviewEvent)
		for _, r := range pr.Reviews {
			reviewsByReviewer[r.Reviewer] = append(reviewsByReviewer[r.Reviewer], r)
		}
		for reviewer, reviews := range reviewsByReviewer {
			b := get(reviewer)
			b.prsReviewed++

			sorted := make([]models.ReviewEvent, len(reviews))
			copy(sorted, reviews)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i].SubmittedAt.Before(sorted[j].SubmittedAt)
			})
			if sorted[0].State == models.ReviewStateApproved {
				b.directApprovalCount++
			}
			for _, r := range reviews {
				if r.State == models.ReviewStateChangesRequested {
					b.prsWithChangesRequested++
					break
				}
			}
		}

		if totalLOC > 0 {
			commentCounts := make(map[string]int)
			for _, c := range pr.Comments {
				if c.Author != pr.Author {
					commentCounts[c.Author]++
				}
			}
			for commenter, count := range commentCounts {
				b := get(commenter)
				b.commentsAsReviewer = append(b.commentsAsReviewer,
					float64(count)/float64(totalLOC)*100.0)
			}
		}
	}

	return buckets
}

func ratesFromCounts(prsReviewed, withChangesRequested, directApprovals int) (changesRate, approvalRate float64) {
	if prsReviewed == 0 {
		return 0, 0
	}
	changesRate = float64(withChangesRequested) / float64(prsReviewed) * 100.0
	approvalRate = float64(directApprovals) / float64(prsReviewed) * 100.0
	return changesRate, approvalRate
}

// ComputeUserStats computes per-user review metrics across all pull requests.
func ComputeUserStats(pullRequests []models.PullRequest) map[string]UserStats {
	buckets := collectUserBuckets(pullRequests)

	result := make(map[string]UserStats, len(buckets))
	for username, b := range buckets {
		changesRate, approvalRate := ratesFromCounts(b.prsReviewed, b.prsWithChangesRequested, b.directApprovalCount)
		result[username] = UserStats{
			TimeToSubmitReview:          NewDistribution(b.reviewTimes),
			ChangesRequestedRate:        changesRate,
			DirectApprovalRate:          approvalRate,
			LOCPerCreatedPR:             NewDistribution(b.locValues),
			CommentsPer100LOCAsReviewer: NewDistribution(b.commentsAsReviewer),
			CommentsPer100LOCAsAuthor:   NewDistribution(b.commentsAsAuthor),
		}
	}
	return result
}
