package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"prstats/internal/collector"
	ghclient "prstats/internal/github"
	"prstats/internal/models"
	"prstats/internal/report"
	"prstats/internal/stats"
	"prstats/pkg/config"
	"prstats/pkg/logger"
)

// errDataProtection marks runs refused because of unresolved
// data-protection violations.
var errDataProtection = errors.New("data protection thresholds not met")

func run(cmd *cobra.Command, configPath string, flags Flags, in io.Reader) error {
	logger.Init()
	if flags.Verbose {
		logger.SetVerbose()
	}
	runID := uuid.New().String()
	log := logger.WithField("run_id", runID)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration loaded")

	opts, err := NewRunOptions(cfg, configPath, flags)
	if err != nil {
		return err
	}

	token, err := cfg.ResolveToken()
	if err != nil {
		return err
	}

	client, err := ghclient.NewAPIClient(ghclient.Options{
		BaseURL:        cfg.GitHub.BaseURL,
		Token:          token,
		VerifySSL:      cfg.GitHub.VerifySSL,
		RequestLogPath: opts.RequestLogPath,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	log.WithField("repositories", len(opts.Repositories)).Info("collecting pull requests")
	pullRequests, err := collector.New(client, opts.MaxWorkers).Collect(cmd.Context(), opts.Repositories, opts.Since, opts.Until)
	if err != nil {
		return fmt.Errorf("failed to collect pull request data: %w", err)
	}
	log.WithField("pull_requests", len(pullRequests)).Info("collection finished")

	groupsConfigured := len(cfg.UserGroups) > 0
	overrideUsed := false

	// The repository-scope check applies to every run; group checks
	// only when groups are configured.
	policy := stats.EvaluateDataProtection(pullRequests, cfg.UserGroups, opts.Repositories,
		opts.Since, opts.Until, cfg.DataProtection.MinimumActiveMembers)
	if !policy.Passed {
		for _, v := range policy.Violations {
			fmt.Fprintln(cmd.ErrOrStderr(), v.Message)
		}
		if !opts.OverrideDataProtection {
			return errDataProtection
		}
		confirmed, err := confirmOverride(cmd.OutOrStdout(), in)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("aborted: %w", errDataProtection)
		}
		printOverrideDisclaimer(cmd.OutOrStdout())
		overrideUsed = true
	}

	repoStats := computeRepositoryStats(pullRequests, opts)
	var userStats map[string]stats.UserStats
	var groupStats map[string]stats.GroupStats
	if groupsConfigured {
		groupStats = stats.ComputeGroupStats(pullRequests, cfg.UserGroups, policy.GroupActiveCounts)
	} else {
		userStats = filterUsers(stats.ComputeUserStats(pullRequests), opts.Users)
	}

	meta := report.Metadata{
		RunID:                      runID,
		Since:                      opts.Since,
		Until:                      opts.Until,
		Repositories:               opts.Repositories,
		Users:                      opts.Users,
		GroupsConfigured:           groupsConfigured,
		DataProtectionOverrideUsed: overrideUsed,
	}

	markdown := report.RenderMarkdown(repoStats, userStats, groupStats, meta)
	if err := os.WriteFile(opts.Output, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", opts.Output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", opts.Output)

	if opts.XLSX {
		if err := report.WriteXLSX(opts.XLSXPath, repoStats, userStats, groupStats, meta); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Spreadsheet written to %s\n", opts.XLSXPath)
	}

	return nil
}

// computeRepositoryStats builds a stats entry for every repository in
// scope, so repositories without matching pull requests still show up
// in the report.
func computeRepositoryStats(pullRequests []models.PullRequest, opts *RunOptions) map[string]stats.RepositoryStats {
	byRepo, _ := stats.GroupByRepository(pullRequests)

	var until time.Time
	if opts.Until != nil {
		until = *opts.Until
	}

	result := make(map[string]stats.RepositoryStats, len(opts.Repositories))
	for _, repo := range opts.Repositories {
		result[repo] = stats.ComputeRepositoryStats(byRepo[repo], until)
	}
	return result
}

// filterUsers narrows user statistics to the requested user list. An
// empty list reports everyone seen in the data.
func filterUsers(userStats map[string]stats.UserStats, users []string) map[string]stats.UserStats {
	if len(users) == 0 {
		return userStats
	}
	filtered := make(map[string]stats.UserStats, len(users))
	for _, user := range users {
		if s, ok := userStats[user]; ok {
			filtered[user] = s
		}
	}
	return filtered
}

func confirmOverride(out io.Writer, in io.Reader) (bool, error) {
	fmt.Fprint(out, "Data-protection thresholds were not met. Proceed anyway? [y/N]: ")
	reader := bufio.NewReader(in)
	answer, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func printOverrideDisclaimer(out io.Writer) {
	fmt.Fprintln(out, "Disclaimer: the data-protection override is enabled for this run.")
	fmt.Fprintln(out, "The report contains person-level aggregates computed from groups below")
	fmt.Fprintln(out, "the minimum active-member threshold. Handle and share it accordingly.")
}
