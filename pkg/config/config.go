package config

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultTokenEnv is the environment variable consulted for the API
// token when the config does not name another one.
const DefaultTokenEnv = "GITHUB_TOKEN"

// DefaultMinimumActiveMembers mirrors the data-protection default used
// when the config does not set a threshold.
const DefaultMinimumActiveMembers = 5

// ValidationError reports a structural problem with the config file.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: %s: %s", e.Field, e.Message)
}

// GitHubConfig holds connection settings for the GitHub API.
type GitHubConfig struct {
	BaseURL   string `yaml:"base_url"`
	TokenEnv  string `yaml:"token_env"`
	APIToken  string `yaml:"api_token"`
	VerifySSL bool   `yaml:"verify_ssl"`
}

// DataProtectionConfig holds the active-member threshold settings.
type DataProtectionConfig struct {
	MinimumActiveMembers int `yaml:"minimum_active_members"`
}

// Config is the fully validated run configuration. Repository entries
// are normalized to owner/repo form.
type Config struct {
	GitHub         GitHubConfig
	Repositories   []string
	Users          []string
	UserGroups     map[string][]string
	DataProtection DataProtectionConfig
}

type fileConfig struct {
	GitHub *struct {
		BaseURL   string `yaml:"base_url"`
		TokenEnv  string `yaml:"token_env"`
		APIToken  string `yaml:"api_token"`
		VerifySSL *bool  `yaml:"verify_ssl"`
	} `yaml:"github"`
	Repositories   *[]string           `yaml:"repositories"`
	Users          []string            `yaml:"users"`
	UserGroups     map[string][]string `yaml:"user_groups"`
	DataProtection *struct {
		MinimumActiveMembers int `yaml:"minimum_active_members"`
	} `yaml:"data_protection"`
}

// Load reads and validates a YAML config file. A .env file next to the
// process, if present, is loaded first so token_env lookups can find
// values from it.
func Load(path string) (*Config, error) {
	// A missing .env file is fine, the token may come from the real environment.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if raw.GitHub == nil {
		return nil, &ValidationError{Field: "github", Message: "github section is required"}
	}
	if raw.GitHub.BaseURL == "" {
		return nil, &ValidationError{Field: "github.base_url", Message: "base_url is required"}
	}
	if raw.Repositories == nil {
		return nil, &ValidationError{Field: "repositories", Message: "repositories list is required"}
	}
	if len(*raw.Repositories) == 0 {
		return nil, &ValidationError{Field: "repositories", Message: "repositories list must not be empty"}
	}

	cfg := &Config{
		GitHub: GitHubConfig{
			BaseURL:   raw.GitHub.BaseURL,
			TokenEnv:  raw.GitHub.TokenEnv,
			APIToken:  raw.GitHub.APIToken,
			VerifySSL: true,
		},
		Users:      raw.Users,
		UserGroups: raw.UserGroups,
		DataProtection: DataProtectionConfig{
			MinimumActiveMembers: DefaultMinimumActiveMembers,
		},
	}
	if cfg.GitHub.TokenEnv == "" {
		cfg.GitHub.TokenEnv = DefaultTokenEnv
	}
	if raw.GitHub.VerifySSL != nil {
		cfg.GitHub.VerifySSL = *raw.GitHub.VerifySSL
	}
	if raw.DataProtection != nil && raw.DataProtection.MinimumActiveMembers > 0 {
		cfg.DataProtection.MinimumActiveMembers = raw.DataProtection.MinimumActiveMembers
	}
	if cfg.Users == nil {
		cfg.Users = []string{}
	}

	for _, repo := range *raw.Repositories {
		normalized, err := NormalizeRepository(repo)
		if err != nil {
			return nil, &ValidationError{Field: "repositories", Message: err.Error()}
		}
		cfg.Repositories = append(cfg.Repositories, normalized)
	}

	if err := validateUserGroups(cfg.UserGroups, cfg.DataProtection.MinimumActiveMembers); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateUserGroups enforces the minimum group size at load time.
// Each group needs at least minSize unique, non-empty member names so
// no group can be configured below the disclosure threshold.
func validateUserGroups(userGroups map[string][]string, minSize int) error {
	names := make([]string, 0, len(userGroups))
	for name := range userGroups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := "user_groups." + name
		members := userGroups[name]
		seen := make(map[string]struct{}, len(members))
		for _, member := range members {
			if strings.TrimSpace(member) == "" {
				return &ValidationError{Field: field, Message: "member names must not be empty"}
			}
			if _, dup := seen[member]; dup {
				return &ValidationError{Field: field, Message: fmt.Sprintf("duplicate member %q", member)}
			}
			seen[member] = struct{}{}
		}
		if len(seen) < minSize {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("group has %d members, minimum required is %d", len(seen), minSize),
			}
		}
	}
	return nil
}

// NormalizeRepository converts a repository reference to owner/repo
// form. Accepts plain owner/repo, https URLs with an optional trailing
// slash, and git@host:owner/repo.git remotes.
func NormalizeRepository(repo string) (string, error) {
	repo = strings.TrimSpace(repo)
	repo = strings.TrimSuffix(repo, "/")

	if strings.HasPrefix(repo, "git@") {
		_, after, found := strings.Cut(repo, ":")
		if !found {
			return "", fmt.Errorf("invalid repository reference: %s", repo)
		}
		repo = strings.TrimSuffix(after, ".git")
	} else if strings.HasPrefix(repo, "http://") || strings.HasPrefix(repo, "https://") {
		parsed, err := url.Parse(repo)
		if err != nil {
			return "", fmt.Errorf("invalid repository URL %s: %w", repo, err)
		}
		repo = strings.TrimSuffix(strings.Trim(parsed.Path, "/"), ".git")
	}

	parts := strings.Split(repo, "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid repository reference: %s, expected owner/repo", repo)
	}
	owner := parts[len(parts)-2]
	name := parts[len(parts)-1]
	if owner == "" || name == "" {
		return "", fmt.Errorf("invalid repository reference: %s, expected owner/repo", repo)
	}
	return owner + "/" + name, nil
}

// ResolveToken returns the API token for the run. An inline api_token
// wins over the environment variable named by token_env.
func (c *Config) ResolveToken() (string, error) {
	if c.GitHub.APIToken != "" {
		return c.GitHub.APIToken, nil
	}
	token := os.Getenv(c.GitHub.TokenEnv)
	if token == "" {
		return "", fmt.Errorf("environment variable %s is not set", c.GitHub.TokenEnv)
	}
	return token, nil
}
