package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

const defaultMaxWorkers = 4

// NewRootCommand builds the prstats command. Input is read from in
// when the data-protection override needs confirmation; output streams
// are taken from the command itself.
func NewRootCommand(in io.Reader) *cobra.Command {
	flags := Flags{}

	cmd := &cobra.Command{
		Use:   "prstats <config.yaml>",
		Short: "Collect pull request review statistics from GitHub",
		Long: `prstats collects pull request data from a GitHub or GitHub Enterprise
instance for the repositories named in a YAML config file, computes
repository and review statistics for a time window, and writes a
Markdown report.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], flags, in)
		},
	}

	cmd.Flags().StringVar(&flags.Since, "since", "", "only include pull requests created on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.Until, "until", "", "only include pull requests created on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.Users, "users", "", "comma-separated user list, overrides the configured users")
	cmd.Flags().StringVar(&flags.Repos, "repos", "", "comma-separated repository list, narrows the configured repositories")
	cmd.Flags().StringVar(&flags.Output, "output", "", "report output path (default: <config>_statistics.md)")
	cmd.Flags().IntVar(&flags.MaxWorkers, "max-workers", defaultMaxWorkers, "number of repositories fetched in parallel")
	cmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "debug logging plus an API request log next to the config")
	cmd.Flags().BoolVar(&flags.OverrideDataProtection, "overwrite-data-protection", false, "ask for confirmation to proceed despite data-protection violations")
	cmd.Flags().BoolVar(&flags.XLSX, "xlsx", false, "also export the statistics as a spreadsheet")

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand(os.Stdin)
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
