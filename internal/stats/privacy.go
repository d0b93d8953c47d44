package stats

import (
	"fmt"
	"sort"
	"time"

	"prstats/internal/models"
)

// DefaultMinimumActiveMembers is the minimum number of active members a
// scope must have before person-level aggregates may be reported.
const DefaultMinimumActiveMembers = 5

// Violation scope types.
const (
	ViolationTypeGroup           = "group"
	ViolationTypeRepositoryScope = "repository_scope"
)

// DataProtectionViolation describes one scope falling below the
// active-member threshold.
type DataProtectionViolation struct {
	ViolationType string `json:"violation_type"`
	Scope         string `json:"scope"`
	ActiveCount   int    `json:"active_count"`
	Threshold     int    `json:"threshold"`
	Message       string `json:"message"`
}

// DataProtectionResult is the outcome of the threshold evaluation.
// Evaluation never aborts a run by itself; callers decide what a
// failed check means.
type DataProtectionResult struct {
	Passed                     bool                      `json:"passed"`
	GroupActiveCounts          map[string]int            `json:"group_active_counts"`
	RepositoryScopeActiveCount int                       `json:"repository_scope_active_count"`
	Threshold                  int                       `json:"threshold"`
	Violations                 []DataProtectionViolation `json:"violations"`
}

func inPeriod(t time.Time, since, until *time.Time) bool {
	if since != nil && t.Before(*since) {
		return false
	}
	if until != nil && t.After(*until) {
		return false
	}
	return true
}

// ActiveUsersInPeriod returns the users with at least one commit inside
// the inclusive [since, until] window. A nil bound is open-ended. When
// repositories is non-empty only commits from those repositories count.
func ActiveUsersInPeriod(pullRequests []models.PullRequest, since, until *time.Time, repositories []string) map[string]struct{} {
	var repoFilter map[string]struct{}
	if len(repositories) > 0 {
		repoFilter = make(map[string]struct{}, len(repositories))
		for _, repo := range repositories {
			repoFilter[repo] = struct{}{}
		}
	}

	active := make(map[string]struct{})
	for i := range pullRequests {
		pr := &pullRequests[i]
		if repoFilter != nil {
			if _, ok := repoFilter[pr.Repository]; !ok {
				continue
			}
		}
		for _, c := range pr.Commits {
			if inPeriod(c.CommittedAt, since, until) {
				active[c.Author] = struct{}{}
			}
		}
	}
	return active
}

// ComputeActiveGroupCounts counts how many members of each group are in
// the active user set.
func ComputeActiveGroupCounts(userGroups map[string][]string, activeUsers map[string]struct{}) map[string]int {
	counts := make(map[string]int, len(userGroups))
	for groupName, members := range userGroups {
		seen := make(map[string]struct{}, len(members))
		count := 0
		for _, member := range members {
			if _, dup := seen[member]; dup {
				continue
			}
			seen[member] = struct{}{}
			if _, ok := activeUsers[member]; ok {
				count++
			}
		}
		counts[groupName] = count
	}
	return counts
}

// EvaluateDataProtection checks every configured group and the overall
// repository scope against the active-member threshold. A threshold of
// zero or less falls back to the default.
func EvaluateDataProtection(pullRequests []models.PullRequest, userGroups map[string][]string, repositories []string, since, until *time.Time, threshold int) DataProtectionResult {
	if threshold <= 0 {
		threshold = DefaultMinimumActiveMembers
	}

	activeUsers := ActiveUsersInPeriod(pullRequests, since, until, repositories)
	groupCounts := ComputeActiveGroupCounts(userGroups, activeUsers)

	groupNames := make([]string, 0, len(groupCounts))
	for groupName := range groupCounts {
		groupNames = append(groupNames, groupName)
	}
	sort.Strings(groupNames)

	var violations []DataProtectionViolation
	for _, groupName := range groupNames {
		count := groupCounts[groupName]
		if count < threshold {
			violations = append(violations, DataProtectionViolation{
				ViolationType: ViolationTypeGroup,
				Scope:         groupName,
				ActiveCount:   count,
				Threshold:     threshold,
				Message:       fmt.Sprintf("Group '%s' has %d active members, minimum required is %d", groupName, count, threshold),
			})
		}
	}

	scopeCount := len(activeUsers)
	if scopeCount < threshold {
		violations = append(violations, DataProtectionViolation{
			ViolationType: ViolationTypeRepositoryScope,
			Scope:         "run_scope",
			ActiveCount:   scopeCount,
			Threshold:     threshold,
			Message:       fmt.Sprintf("Repository scope has %d active members, minimum required is %d", scopeCount, threshold),
		})
	}

	return DataProtectionResult{
		Passed:                     len(violations) == 0,
		GroupActiveCounts:          groupCounts,
		RepositoryScopeActiveCount: scopeCount,
		Threshold:                  threshold,
		Violations:                 violations,
	}
}
