package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMinimalConfig(t *testing.T) {
	path := writeConfig(t, `
github:
  base_url: https://github.mycompany.com/api/v3
repositories:
  - org1/repo1
users:
  - user1
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://github.mycompany.com/api/v3", cfg.GitHub.BaseURL)
	assert.Equal(t, DefaultTokenEnv, cfg.GitHub.TokenEnv, "token_env should default to GITHUB_TOKEN")
	assert.True(t, cfg.GitHub.VerifySSL, "verify_ssl should default to true")
	assert.Equal(t, []string{"org1/repo1"}, cfg.Repositories)
	assert.Equal(t, []string{"user1"}, cfg.Users)
	assert.Equal(t, DefaultMinimumActiveMembers, cfg.DataProtection.MinimumActiveMembers)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
github:
  base_url: https://github.example.com/api/v3
  token_env: MY_GITHUB_TOKEN
  api_token: inline-token
  verify_ssl: false
repositories:
  - owner1/repo1
  - owner2/repo2
users:
  - alice
  - bob
user_groups:
  team_alpha:
    - alice
    - bob
    - carol
data_protection:
  minimum_active_members: 3
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "MY_GITHUB_TOKEN", cfg.GitHub.TokenEnv)
	assert.Equal(t, "inline-token", cfg.GitHub.APIToken)
	assert.False(t, cfg.GitHub.VerifySSL)
	assert.Equal(t, []string{"owner1/repo1", "owner2/repo2"}, cfg.Repositories)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Users)
	assert.Equal(t, map[string][]string{"team_alpha": {"alice", "bob", "carol"}}, cfg.UserGroups)
	assert.Equal(t, 3, cfg.DataProtection.MinimumActiveMembers)
}

func TestLoadNormalizesRepositories(t *testing.T) {
	path := writeConfig(t, `
github:
  base_url: https://github.mycompany.com/api/v3
repositories:
  - org1/repo1
  - https://github.mycompany.com/org2/repo2
  - https://github.mycompany.com/org3/repo3/
  - git@github.mycompany.com:org4/repo4.git
users: []
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"org1/repo1", "org2/repo2", "org3/repo3", "org4/repo4"}, cfg.Repositories)
}

func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name          string
		content       string
		expectedField string
	}{
		{
			name: "missing github section",
			content: `
repositories:
  - org1/repo1
`,
			expectedField: "github",
		},
		{
			name: "missing base_url",
			content: `
github:
  token_env: GITHUB_TOKEN
repositories:
  - org1/repo1
`,
			expectedField: "github.base_url",
		},
		{
			name: "missing repositories",
			content: `
github:
  base_url: https://github.mycompany.com/api/v3
`,
			expectedField: "repositories",
		},
		{
			name: "empty repositories",
			content: `
github:
  base_url: https://github.mycompany.com/api/v3
repositories: []
`,
			expectedField: "repositories",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)

			_, err := Load(path)

			require.Error(t, err)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.expectedField, validationErr.Field)
		})
	}
}

func TestLoadUserGroupValidation(t *testing.T) {
	header := `
github:
  base_url: https://github.mycompany.com/api/v3
repositories:
  - org1/repo1
`

	testCases := []struct {
		name            string
		groups          string
		expectedField   string
		expectedMessage string
	}{
		{
			name: "group below default minimum",
			groups: `
user_groups:
  small_team:
    - alice
    - bob
`,
			expectedField:   "user_groups.small_team",
			expectedMessage: "minimum required is 5",
		},
		{
			name: "group below configured minimum",
			groups: `
user_groups:
  small_team:
    - alice
    - bob
data_protection:
  minimum_active_members: 3
`,
			expectedField:   "user_groups.small_team",
			expectedMessage: "minimum required is 3",
		},
		{
			name: "duplicate member",
			groups: `
user_groups:
  team:
    - alice
    - bob
    - carol
    - dave
    - alice
data_protection:
  minimum_active_members: 3
`,
			expectedField:   "user_groups.team",
			expectedMessage: "duplicate member",
		},
		{
			name: "empty member name",
			groups: `
user_groups:
  team:
    - alice
    - ""
    - carol
data_protection:
  minimum_active_members: 3
`,
			expectedField:   "user_groups.team",
			expectedMessage: "must not be empty",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, header+tc.groups)

			_, err := Load(path)

			require.Error(t, err)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.expectedField, validationErr.Field)
			assert.Contains(t, validationErr.Message, tc.expectedMessage)
		})
	}
}

func TestLoadUserGroupAtMinimumSize(t *testing.T) {
	path := writeConfig(t, `
github:
  base_url: https://github.mycompany.com/api/v3
repositories:
  - org1/repo1
user_groups:
  team:
    - alice
    - bob
    - carol
    - dave
    - erin
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Len(t, cfg.UserGroups["team"], 5)
}

func TestLoadMissingUsersDefaultsToEmpty(t *testing.T) {
	path := writeConfig(t, `
github:
  base_url: https://github.mycompany.com/api/v3
repositories:
  - org1/repo1
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.NotNil(t, cfg.Users)
	assert.Empty(t, cfg.Users)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.yaml")

	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: yaml: content: [unclosed")

	_, err := Load(path)

	assert.Error(t, err)
}

func TestNormalizeRepository(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "plain owner repo", input: "org/repo", expected: "org/repo"},
		{name: "https url", input: "https://github.example.com/org/repo", expected: "org/repo"},
		{name: "https url with trailing slash", input: "https://github.example.com/org/repo/", expected: "org/repo"},
		{name: "ssh remote", input: "git@github.example.com:org/repo.git", expected: "org/repo"},
		{name: "bare name is invalid", input: "just-a-repo", wantErr: true},
		{name: "empty string is invalid", input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := NormalizeRepository(tc.input)

			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestResolveToken(t *testing.T) {
	t.Run("inline token wins over environment", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "env-token")
		cfg := &Config{GitHub: GitHubConfig{APIToken: "inline-token", TokenEnv: "GITHUB_TOKEN"}}

		token, err := cfg.ResolveToken()

		require.NoError(t, err)
		assert.Equal(t, "inline-token", token)
	})

	t.Run("falls back to named environment variable", func(t *testing.T) {
		t.Setenv("MY_TOKEN", "env-token")
		cfg := &Config{GitHub: GitHubConfig{TokenEnv: "MY_TOKEN"}}

		token, err := cfg.ResolveToken()

		require.NoError(t, err)
		assert.Equal(t, "env-token", token)
	})

	t.Run("missing token names the variable", func(t *testing.T) {
		t.Setenv("MISSING_TOKEN_VAR", "")
		cfg := &Config{GitHub: GitHubConfig{TokenEnv: "MISSING_TOKEN_VAR"}}

		_, err := cfg.ResolveToken()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "MISSING_TOKEN_VAR")
		assert.Contains(t, err.Error(), "not set")
	})
}
