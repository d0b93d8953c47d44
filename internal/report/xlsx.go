package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"prstats/internal/stats"
)

const (
	repoSheet  = "Repositories"
	userSheet  = "Users"
	groupSheet = "Groups"
)

func distributionCells(dist stats.Distribution) []interface{} {
	return []interface{}{dist.Count, dist.Min, dist.Median, dist.Mean, dist.Max}
}

// WriteXLSX exports the same statistics as the Markdown report into a
// spreadsheet with one sheet per section.
func WriteXLSX(path string, repoStats map[string]stats.RepositoryStats, userStats map[string]stats.UserStats, groupStats map[string]stats.GroupStats, meta Metadata) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeRepoSheet(f, repoStats); err != nil {
		return err
	}
	if meta.GroupsConfigured {
		if err := writeGroupSheet(f, groupStats); err != nil {
			return err
		}
	} else {
		if err := writeUserSheet(f, userStats); err != nil {
			return err
		}
	}

	// excelize starts with a default sheet named Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write spreadsheet %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeRepoSheet(f *excelize.File, repoStats map[string]stats.RepositoryStats) error {
	if _, err := f.NewSheet(repoSheet); err != nil {
		return err
	}
	header := []interface{}{"Repository", "Metric", "Count", "Min", "Median", "Mean", "Max"}
	if err := writeRow(f, repoSheet, 1, header); err != nil {
		return err
	}

	row := 2
	for _, repoName := range sortedKeys(repoStats) {
		rs := repoStats[repoName]
		metrics := []struct {
			name string
			dist stats.Distribution
		}{
			{"Duration open pull requests (days)", rs.OpenPRDuration},
			{"Duration closed pull requests (days)", rs.ClosedPRDuration},
			{"Duration merged pull requests (days)", rs.MergedPRDuration},
			{"Time to first review (days)", rs.TimeToFirstReview},
			{"Time between changes requested and re-request (days)", rs.TimeChangesRequestedToRerequest},
			{"Commits per PR", rs.CommitsPerPR},
			{"Re-reviews per PR", rs.ReReviewsPerPR},
			{"Comments per 100 LOC", rs.CommentsPer100LOC},
		}
		for _, m := range metrics {
			values := append([]interface{}{repoName, m.name}, distributionCells(m.dist)...)
			if err := writeRow(f, repoSheet, row, values); err != nil {
				return err
			}
			row++
		}
		values := []interface{}{repoName, "Commits after ready for review (requested/unrequested)", rs.RequestedCommits, rs.UnrequestedCommits}
		if err := writeRow(f, repoSheet, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeUserSheet(f *excelize.File, userStats map[string]stats.UserStats) error {
	if _, err := f.NewSheet(userSheet); err != nil {
		return err
	}
	header := []interface{}{
		"User", "Review latency count", "Review latency min (h)", "Review latency median (h)",
		"Review latency mean (h)", "Review latency max (h)", "Request for changes rate (%)",
		"Direct approval rate (%)", "LOC per PR mean", "Comments per 100 LOC as reviewer mean",
		"Comments per 100 LOC as author mean",
	}
	if err := writeRow(f, userSheet, 1, header); err != nil {
		return err
	}

	row := 2
	for _, username := range sortedKeys(userStats) {
		us := userStats[username]
		values := append([]interface{}{username}, distributionCells(us.TimeToSubmitReview)...)
		values = append(values,
			us.ChangesRequestedRate,
			us.DirectApprovalRate,
			us.LOCPerCreatedPR.Mean,
			us.CommentsPer100LOCAsReviewer.Mean,
			us.CommentsPer100LOCAsAuthor.Mean,
		)
		if err := writeRow(f, userSheet, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeGroupSheet(f *excelize.File, groupStats map[string]stats.GroupStats) error {
	if _, err := f.NewSheet(groupSheet); err != nil {
		return err
	}
	header := []interface{}{
		"Group", "Members", "Active members", "Review latency count", "Review latency min (h)",
		"Review latency median (h)", "Review latency mean (h)", "Review latency max (h)",
		"Request for changes rate (%)", "Direct approval rate (%)", "LOC per PR mean",
		"Comments per 100 LOC as reviewer mean", "Comments per 100 LOC as author mean",
	}
	if err := writeRow(f, groupSheet, 1, header); err != nil {
		return err
	}

	row := 2
	for _, groupName := range sortedKeys(groupStats) {
		gs := groupStats[groupName]
		values := append([]interface{}{groupName, gs.MemberCount, gs.ActiveMemberCount}, distributionCells(gs.TimeToSubmitReview)...)
		values = append(values,
			gs.ChangesRequestedRate,
			gs.DirectApprovalRate,
			gs.LOCPerCreatedPR.Mean,
			gs.CommentsPer100LOCAsReviewer.Mean,
			gs.CommentsPer100LOCAsAuthor.Mean,
		)
		if err := writeRow(f, groupSheet, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}
