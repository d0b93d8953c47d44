package stats

import "prstats/internal/models"

// GroupStats holds aggregated review metrics for a configured user group.
// Samples are the union of the member samples and rates are recomputed
// from the summed counts.
type GroupStats struct {
	MemberCount                 int          `json:"member_count"`
	ActiveMemberCount           int          `json:"active_member_count"`
	TimeToSubmitReview          Distribution `json:"time_to_submit_review"`
	ChangesRequestedRate        float64      `json:"changes_requested_rate"`
	DirectApprovalRate          float64      `json:"direct_approval_rate"`
	LOCPerCreatedPR             Distribution `json:"loc_per_created_pr"`
	CommentsPer100LOCAsReviewer Distribution `json:"comments_per_100_loc_as_reviewer"`
	CommentsPer100LOCAsAuthor   Distribution `json:"comments_per_100_loc_as_author"`
}

// ComputeGroupStats aggregates member-level samples into group metrics.
// activeGroupCounts supplies the active member count per group; a nil
// map leaves all active counts at zero.
func ComputeGroupStats(pullRequests []models.PullRequest, userGroups map[string][]string, activeGroupCounts map[string]int) map[string]GroupStats {
	buckets := collectUserBuckets(pullRequests)
	result := make(map[string]GroupStats, len(userGroups))

	for groupName, members := range userGroups {
		agg := userBuckets{}
		for _, member := range members {
			b, ok := buckets[member]
			if !ok {
				continue
			}
			agg.reviewTimes = append(agg.reviewTimes, b.reviewTimes...)
			agg.locValues = append(agg.locValues, b.locValues...)
			agg.commentsAsReviewer = append(agg.commentsAsReviewer, b.commentsAsReviewer...)
			agg.commentsAsAuthor = append(agg.commentsAsAuthor, b.commentsAsAuthor...)
			agg.prsReviewed += b.prsReviewed
			agg.prsWithChangesRequested += b.prsWithChangesRequested
			agg.directApprovalCount += b.directApprovalCount
		}

		changesRate, approvalRate := ratesFromCounts(agg.prsReviewed, agg.prsWithChangesRequested, agg.directApprovalCount)
		result[groupName] = GroupStats{
			MemberCount:                 len(members),
			ActiveMemberCount:           activeGroupCounts[groupName],
			TimeToSubmitReview:          NewDistribution(agg.reviewTimes),
			ChangesRequestedRate:        changesRate,
			DirectApprovalRate:          approvalRate,
			LOCPerCreatedPR:             NewDistribution(agg.locValues),
			CommentsPer100LOCAsReviewer: NewDistribution(agg.commentsAsReviewer),
			CommentsPer100LOCAsAuthor:   NewDistribution(agg.commentsAsAuthor),
		}
	}
	return result
}
