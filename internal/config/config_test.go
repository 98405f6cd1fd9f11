package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func validConfig() *Config {
	cfg := &Config{
		Token:          "token",
		Template:       "template.md",
		MasterTemplate: "master.md",
		Repositories:   []string{"acme/widgets"},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestLoad(t *testing.T) {
	testCases := []struct {
		name     string
		yaml     string
		expected *Config
		errSub   string
	}{
		{
			name: "full configuration with repository list",
			yaml: `
token: "abc"
template: "template.md"
master_template: "master.md"
timezone: "Asia/Tokyo"
duration_format: "h'h' m'm'"
users_aliases: '{"alice": ["alice-work"]}'
repositories:
  - https://github.com/acme/widgets
  - acme/gears
request_timeout: "10s"
close_issues: true
push: true
push_branch: "development"
xlsx: true
log_level: "debug"
`,
			expected: &Config{
				Token:          "abc",
				Template:       "template.md",
				MasterTemplate: "master.md",
				TemplateDir:    ".github",
				OutputDir:      ".",
				Timezone:       "Asia/Tokyo",
				DurationFormat: "h'h' m'm'",
				UsersAliases:   `{"alice": ["alice-work"]}`,
				Repositories:   []string{"https://github.com/acme/widgets", "acme/gears"},
				RequestTimeout: 10 * time.Second,
				CloseIssues:    true,
				Push:           true,
				PushBranch:     "development",
				XLSX:           true,
				LogLevel:       "debug",
			},
		},
		{
			name: "repositories as a whitespace separated string",
			yaml: "repositories: \"acme/widgets\\nacme/gears  acme/bolts\"\n",
			expected: &Config{
				TemplateDir:    ".github",
				OutputDir:      ".",
				Timezone:       "UTC",
				DurationFormat: "hh:mm:ss",
				Repositories:   []string{"acme/widgets", "acme/gears", "acme/bolts"},
				RequestTimeout: 30 * time.Second,
				LogLevel:       "warn",
			},
		},
		{
			name: "empty document yields defaults",
			yaml: "",
			expected: &Config{
				TemplateDir:    ".github",
				OutputDir:      ".",
				Timezone:       "UTC",
				DurationFormat: "hh:mm:ss",
				RequestTimeout: 30 * time.Second,
				LogLevel:       "warn",
			},
		},
		{
			name:   "unknown key",
			yaml:   "tokn: abc\n",
			errSub: "field tokn not found",
		},
		{
			name:   "invalid timeout",
			yaml:   "request_timeout: soon\n",
			errSub: "parse request_timeout",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(strings.NewReader(tc.yaml))
			if tc.errSub != "" {
				assert.ErrorContains(t, err, tc.errSub)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg)
		})
	}
}

func TestLoad_InlineAliases(t *testing.T) {
	cfg, err := Load(strings.NewReader(`
users_aliases:
  bob: [bobby]
  alice: [alice-work, al]
`))
	require.NoError(t, err)

	mapper, err := cfg.Mapper()
	require.NoError(t, err)
	assert.Equal(t, "alice", mapper.Map("al"))
	assert.Equal(t, "bob", mapper.Map("bobby"))
	assert.Equal(t, "bob", mapper.Aliases()[0].Name, "document order is kept")
}

func TestLoad_NilReader(t *testing.T) {
	_, err := Load(nil)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "timesheet.yaml")
	require.NoError(t, os.WriteFile(name, []byte("template: t.md\n"), 0o600))

	cfg, err := LoadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "t.md", cfg.Template)

	cfg, err = LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Timezone)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to open config file")
}

func TestApplyEnv(t *testing.T) {
	testCases := []struct {
		name   string
		env    map[string]string
		check  func(t *testing.T, cfg *Config)
		errSub string
	}{
		{
			name: "overrides options",
			env: map[string]string{
				"TIMESHEET_TOKEN":           "env-token",
				"TIMESHEET_REPOSITORIES":    "acme/a acme/b",
				"TIMESHEET_CLOSE_ISSUES":    "true",
				"TIMESHEET_APP_ID":          "0",
				"TIMESHEET_REQUEST_TIMEOUT": "5s",
				"TIMESHEET_TIMEZONE":        "Europe/Paris",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "env-token", cfg.Token)
				assert.Equal(t, []string{"acme/a", "acme/b"}, cfg.Repositories)
				assert.True(t, cfg.CloseIssues)
				assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
				assert.Equal(t, "Europe/Paris", cfg.Timezone)
			},
		},
		{
			name: "falls back to GITHUB_TOKEN",
			env:  map[string]string{"GITHUB_TOKEN": "gh-token"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "gh-token", cfg.Token)
			},
		},
		{
			name: "configured token wins over GITHUB_TOKEN",
			env:  map[string]string{"GITHUB_TOKEN": "gh-token", "TIMESHEET_TOKEN": "mine"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "mine", cfg.Token)
			},
		},
		{
			name:   "invalid values are all reported",
			env:    map[string]string{"TIMESHEET_PUSH": "maybe", "TIMESHEET_APP_ID": "x", "TIMESHEET_REQUEST_TIMEOUT": "soon"},
			errSub: "TIMESHEET_APP_ID must be an integer; TIMESHEET_PUSH must be a boolean; TIMESHEET_REQUEST_TIMEOUT must be a duration",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			ApplyDefaults(cfg)

			err := cfg.ApplyEnv(lookupFrom(tc.env))
			if tc.errSub != "" {
				assert.ErrorContains(t, err, tc.errSub)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name       string
		mutate     func(cfg *Config)
		errSubstrs []string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name: "github app instead of token",
			mutate: func(cfg *Config) {
				cfg.Token = ""
				cfg.AppID = 1
				cfg.InstallationID = 2
				cfg.PrivateKeyPath = "key.pem"
			},
		},
		{
			name: "missing credentials and templates",
			mutate: func(cfg *Config) {
				cfg.Token = ""
				cfg.Template = ""
				cfg.MasterTemplate = ""
				cfg.Repositories = nil
			},
			errSubstrs: []string{
				"token is required",
				"template is required",
				"master_template is required",
				"repositories must contain at least one repository",
			},
		},
		{
			name: "incomplete github app",
			mutate: func(cfg *Config) {
				cfg.AppID = 1
			},
			errSubstrs: []string{"installation_id must be > 0", "private_key_path is required"},
		},
		{
			name: "invalid values",
			mutate: func(cfg *Config) {
				cfg.Timezone = "Mars/Olympus"
				cfg.UsersAliases = "[1, 2]"
				cfg.CurrentRepository = "nope"
				cfg.Push = true
				cfg.LogLevel = "trace"
				cfg.RequestTimeout = -time.Second
			},
			errSubstrs: []string{
				"timezone must be a valid IANA time zone",
				"users_aliases is invalid",
				"current_repository is invalid",
				"push_branch is required when push=true",
				"log_level must be one of",
				"request_timeout must be > 0",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if len(tc.errSubstrs) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, sub := range tc.errSubstrs {
				assert.Contains(t, err.Error(), sub)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "Asia/Tokyo"

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}
