package stats

import (
	"sort"
	"time"

	"prstats/internal/models"
)

// reviewCycle marks the window opened by a CHANGES_REQUESTED review.
// A nil end means the cycle never closed.
type reviewCycle struct {
	reviewer string
	start    time.Time
	end      *time.Time
}

// ClassifyCommits splits the PR author's commits made after the
// ready-for-review event into requested and unrequested counts.
//
// A CHANGES_REQUESTED review opens a cycle for its reviewer. The cycle
// closes at the earlier of the same reviewer's next review request or
// the same reviewer's APPROVED review. Commits strictly inside any open
// cycle count as requested, everything else as unrequested. Cycles from
// different reviewers are independent and may overlap.
//
// Without a ready-for-review event nothing can be classified and both
// counts are zero.
func ClassifyCommits(pr *models.PullRequest) (requested, unrequested int) {
	if pr.ReadyForReviewAt == nil {
		return 0, 0
	}
	ready := *pr.ReadyForReviewAt

	var commits []models.CommitInfo
	for _, c := range pr.Commits {
		if c.Author == pr.Author && c.CommittedAt.After(ready) {
			commits = append(commits, c)
		}
	}
	if len(commits) == 0 {
		return 0, 0
	}
	sort.Slice(commits, func(i, j int) bool {
		return commits[i].CommittedAt.Before(commits[j].CommittedAt)
	})

	var cycles []reviewCycle
	for _, review := range pr.Reviews {
		if review.State != models.ReviewStateChangesRequested {
			continue
		}
		cycle := reviewCycle{reviewer: review.Reviewer, start: review.SubmittedAt}

		for _, rr := range pr.ReviewRequests {
			if rr.RequestedReviewer != review.Reviewer || !rr.RequestedAt.After(cycle.start) {
				continue
			}
			if cycle.end == nil || rr.RequestedAt.Before(*cycle.end) {
				t := rr.RequestedAt
				cycle.end = &t
			}
		}
		for _, r := range pr.Reviews {
			if r.Reviewer != review.Reviewer || r.State != models.ReviewStateApproved {
				continue
			}
			if !r.SubmittedAt.After(cycle.start) {
				continue
			}
			if cycle.end == nil || r.SubmittedAt.Before(*cycle.end) {
				t := r.SubmittedAt
				cycle.end = &t
			}
		}
		cycles = append(cycles, cycle)
	}

	for _, c := range commits {
		inCycle := false
		for _, cycle := range cycles {
			if c.CommittedAt.After(cycle.start) && (cycle.end == nil || c.CommittedAt.Before(*cycle.end)) {
				inCycle = true
				break
			}
		}
		if inCycle {
			requested++
		} else {
			unrequested++
		}
	}
	return requested, unrequested
}
