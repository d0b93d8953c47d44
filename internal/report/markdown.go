package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"prstats/internal/stats"
)

// Metadata describes the run a report was generated from.
type Metadata struct {
	RunID                      string
	Since                      *time.Time
	Until                      *time.Time
	Repositories               []string
	Users                      []string
	GroupsConfigured           bool
	DataProtectionOverrideUsed bool
}

func formatDistribution(dist stats.Distribution, unit string) string {
	if dist.Count == 0 {
		return "no data"
	}
	unitStr := ""
	if unit != "" {
		unitStr = " " + unit
	}
	return fmt.Sprintf("count: %d, min: %.2f%s, median: %.2f%s, mean: %.2f%s, max: %.2f%s",
		dist.Count, dist.Min, unitStr, dist.Median, unitStr, dist.Mean, unitStr, dist.Max, unitStr)
}

func formatPercentage(value float64) string {
	return fmt.Sprintf("%.2f%%", value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RenderMarkdown produces the full Markdown report. When user groups
// are configured the person-level section shows groups only; otherwise
// individual users are listed.
func RenderMarkdown(repoStats map[string]stats.RepositoryStats, userStats map[string]stats.UserStats, groupStats map[string]stats.GroupStats, meta Metadata) string {
	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format, args...)
		b.WriteString("\n")
	}

	line("# GitHub Statistics Report")
	line("")
	line("## Metadata")
	line("")
	if meta.RunID != "" {
		line("- **Run ID:** %s", meta.RunID)
	}
	if meta.Since != nil {
		line("- **Time range start:** %s", meta.Since.Format("2006-01-02"))
	} else {
		line("- **Time range start:** (no filter)")
	}
	if meta.Until != nil {
		line("- **Time range end:** %s", meta.Until.Format("2006-01-02"))
	} else {
		line("- **Time range end:** (no filter)")
	}
	line("- **Repositories analyzed:** %d", len(meta.Repositories))
	line("- **Users analyzed:** %d", len(meta.Users))
	line("")

	if meta.DataProtectionOverrideUsed {
		line("> **WARNING:** this report was generated with the data-protection override enabled.")
		line("> Person-level aggregates below the minimum active-member threshold are included.")
		line("")
	}

	line("## Repositories")
	line("")
	if len(repoStats) == 0 {
		line("No repository statistics available.")
		line("")
	} else {
		for _, repoName := range sortedKeys(repoStats) {
			rs := repoStats[repoName]
			line("### %s", repoName)
			line("")
			line("- **Duration open pull requests (days):** %s", formatDistribution(rs.OpenPRDuration, ""))
			line("- **Duration closed pull requests (days):** %s", formatDistribution(rs.ClosedPRDuration, ""))
			line("- **Duration merged pull requests (days):** %s", formatDistribution(rs.MergedPRDuration, ""))
			line("- **Time to first review (days):** %s", formatDistribution(rs.TimeToFirstReview, ""))
			line("- **Time between changes requested and re-request (days):** %s", formatDistribution(rs.TimeChangesRequestedToRerequest, ""))
			line("- **Commits per PR:** %s", formatDistribution(rs.CommitsPerPR, ""))
			line("- **Re-reviews per PR:** %s", formatDistribution(rs.ReReviewsPerPR, ""))
			line("- **Comments per 100 LOC:** %s", formatDistribution(rs.CommentsPer100LOC, ""))
			line("- **Commits after ready for review:** requested: %d, unrequested: %d", rs.RequestedCommits, rs.UnrequestedCommits)
			line("")
		}
	}

	if meta.GroupsConfigured {
		renderGroups(line, groupStats)
	} else {
		renderUsers(line, userStats)
	}

	return b.String()
}

func renderGroups(line func(string, ...interface{}), groupStats map[string]stats.GroupStats) {
	line("## Groups")
	line("")
	if len(groupStats) == 0 {
		line("No group statistics available.")
		line("")
		return
	}
	for _, groupName := range sortedKeys(groupStats) {
		gs := groupStats[groupName]
		line("### %s", groupName)
		line("")
		line("- **Active members:** %d / %d", gs.ActiveMemberCount, gs.MemberCount)
		line("- **Time between requested and submitting review (hours):** %s", formatDistribution(gs.TimeToSubmitReview, ""))
		line("- **Request for changes rate:** %s", formatPercentage(gs.ChangesRequestedRate))
		line("- **Direct approval rate:** %s", formatPercentage(gs.DirectApprovalRate))
		line("- **Changed lines of code per created PR:** %s", formatDistribution(gs.LOCPerCreatedPR, ""))
		line("- **Comments per 100 LOC (as reviewer):** %s", formatDistribution(gs.CommentsPer100LOCAsReviewer, ""))
		line("- **Comments per 100 LOC (as author):** %s", formatDistribution(gs.CommentsPer100LOCAsAuthor, ""))
		line("")
	}
}

func renderUsers(line func(string, ...interface{}), userStats map[string]stats.UserStats) {
	line("## Users")
	line("")
	if len(userStats) == 0 {
		line("No user statistics available.")
		line("")
		return
	}
	for _, username := range sortedKeys(userStats) {
		us := userStats[username]
		line("### %s", username)
		line("")
		line("- **Time between requested and submitting review (hours):** %s", formatDistribution(us.TimeToSubmitReview, ""))
		line("- **Request for changes rate:** %s", formatPercentage(us.ChangesRequestedRate))
		line("- **Direct approval rate:** %s", formatPercentage(us.DirectApprovalRate))
		line("- **Changed lines of code per created PR:** %s", formatDistribution(us.LOCPerCreatedPR, ""))
		line("- **Comments per 100 LOC (as reviewer):** %s", formatDistribution(us.CommentsPer100LOCAsReviewer, ""))
		line("- **Comments per 100 LOC (as author):** %s", formatDistribution(us.CommentsPer100LOCAsAuthor, ""))
		line("")
	}
}
