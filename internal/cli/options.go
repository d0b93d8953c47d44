package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"prstats/pkg/config"
)

const dateLayout = "2006-01-02"

// Flags holds the raw command line flag values.
type Flags struct {
	Since                  string
	Until                  string
	Users                  string
	Repos                  string
	Output                 string
	MaxWorkers             int
	Verbose                bool
	OverrideDataProtection bool
	XLSX                   bool
}

// RunOptions is the fully resolved runtime configuration: config file
// values merged with command line overrides.
type RunOptions struct {
	Config                 *config.Config
	ConfigPath             string
	Since                  *time.Time
	Until                  *time.Time
	Repositories           []string
	Users                  []string
	Output                 string
	MaxWorkers             int
	Verbose                bool
	RequestLogPath         string
	OverrideDataProtection bool
	XLSX                   bool
	XLSXPath               string
}

func parseDateFlag(value, flagName string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date format for --%s: %q, expected YYYY-MM-DD", flagName, value)
	}
	t = t.UTC()
	return &t, nil
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// configBasePath strips the extension from the config path, keeping
// the directory. Derived file names are built from it.
func configBasePath(configPath string) string {
	base := filepath.Base(configPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(configPath), base)
}

// NewRunOptions merges the loaded config with command line flags.
// --users replaces the configured user list; --repos narrows the
// configured repositories, silently dropping entries the config does
// not know.
func NewRunOptions(cfg *config.Config, configPath string, flags Flags) (*RunOptions, error) {
	since, err := parseDateFlag(flags.Since, "since")
	if err != nil {
		return nil, err
	}
	until, err := parseDateFlag(flags.Until, "until")
	if err != nil {
		return nil, err
	}

	opts := &RunOptions{
		Config:                 cfg,
		ConfigPath:             configPath,
		Since:                  since,
		Until:                  until,
		Repositories:           cfg.Repositories,
		Users:                  cfg.Users,
		MaxWorkers:             flags.MaxWorkers,
		Verbose:                flags.Verbose,
		OverrideDataProtection: flags.OverrideDataProtection,
		XLSX:                   flags.XLSX,
	}

	if users := splitCSV(flags.Users); users != nil {
		opts.Users = users
	}

	if repoFilter := splitCSV(flags.Repos); repoFilter != nil {
		allowed := make(map[string]struct{}, len(repoFilter))
		for _, repo := range repoFilter {
			normalized, err := config.NormalizeRepository(repo)
			if err != nil {
				return nil, fmt.Errorf("invalid --repos entry: %w", err)
			}
			allowed[normalized] = struct{}{}
		}
		var narrowed []string
		for _, repo := range cfg.Repositories {
			if _, ok := allowed[repo]; ok {
				narrowed = append(narrowed, repo)
			}
		}
		opts.Repositories = narrowed
	}

	base := configBasePath(configPath)
	opts.Output = flags.Output
	if opts.Output == "" {
		opts.Output = base + "_statistics.md"
	}
	if flags.Verbose {
		opts.RequestLogPath = base + "_requests.log"
	}
	if flags.XLSX {
		opts.XLSXPath = strings.TrimSuffix(opts.Output, filepath.Ext(opts.Output)) + ".xlsx"
	}
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = defaultMaxWorkers
	}

	return opts, nil
}
