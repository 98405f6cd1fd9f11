// Package config loads the run configuration from a YAML file, TIMESHEET_* environment
// variables and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/naka-gawa/timesheet/internal/domain"
	"github.com/naka-gawa/timesheet/internal/identity"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the configuration reads.
const EnvPrefix = "TIMESHEET_"

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config is the configuration of one report run.
type Config struct {
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
	APIBaseURL     string

	Template       string
	MasterTemplate string
	TemplateDir    string
	OutputDir      string
	Timezone       string
	DurationFormat string
	UsersAliases   string

	Repositories      []string
	CurrentRepository string

	RequestTimeout time.Duration
	CloseIssues    bool
	Push           bool
	PushBranch     string
	XLSX           bool
	LogLevel       string
}

type rawConfig struct {
	Token             string       `yaml:"token"`
	AppID             int64        `yaml:"app_id"`
	InstallationID    int64        `yaml:"installation_id"`
	PrivateKeyPath    string       `yaml:"private_key_path"`
	APIBaseURL        string       `yaml:"api_base_url"`
	Template          string       `yaml:"template"`
	MasterTemplate    string       `yaml:"master_template"`
	TemplateDir       string       `yaml:"template_dir"`
	OutputDir         string       `yaml:"output_dir"`
	Timezone          string       `yaml:"timezone"`
	DurationFormat    string       `yaml:"duration_format"`
	UsersAliases      aliases      `yaml:"users_aliases"`
	Repositories      repositories `yaml:"repositories"`
	CurrentRepository string       `yaml:"current_repository"`
	RequestTimeout    string       `yaml:"request_timeout"`
	CloseIssues       bool         `yaml:"close_issues"`
	Push              bool         `yaml:"push"`
	PushBranch        string       `yaml:"push_branch"`
	XLSX              bool         `yaml:"xlsx"`
	LogLevel          string       `yaml:"log_level"`
}

// repositories accepts either a whitespace separated string or a list.
type repositories []string

func (r *repositories) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*r = domain.SplitRepositories(value.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return fmt.Errorf("decode repositories: %w", err)
		}
		*r = list
		return nil
	default:
		return fmt.Errorf("repositories must be a string or a list")
	}
}

// aliases accepts either a JSON string or an inline mapping. It is kept as text so the
// identity package decodes it with its key order intact.
type aliases string

func (a *aliases) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*a = aliases(value.Value)
		return nil
	}
	out, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode users_aliases: %w", err)
	}
	*a = aliases(out)
	return nil
}

// Load decodes YAML configuration and applies defaults. Unknown keys are rejected.
func Load(reader io.Reader) (*Config, error) {
	if reader == nil {
		return nil, fmt.Errorf("config reader is nil")
	}

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var raw rawConfig
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	cfg, err := raw.toConfig()
	if err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadFile loads the configuration file at path. An empty path yields the defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		cfg := &Config{}
		ApplyDefaults(cfg)
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func (r rawConfig) toConfig() (*Config, error) {
	cfg := &Config{
		Token:             r.Token,
		AppID:             r.AppID,
		InstallationID:    r.InstallationID,
		PrivateKeyPath:    r.PrivateKeyPath,
		APIBaseURL:        r.APIBaseURL,
		Template:          r.Template,
		MasterTemplate:    r.MasterTemplate,
		TemplateDir:       r.TemplateDir,
		OutputDir:         r.OutputDir,
		Timezone:          r.Timezone,
		DurationFormat:    r.DurationFormat,
		UsersAliases:      string(r.UsersAliases),
		Repositories:      r.Repositories,
		CurrentRepository: r.CurrentRepository,
		CloseIssues:       r.CloseIssues,
		Push:              r.Push,
		PushBranch:        r.PushBranch,
		XLSX:              r.XLSX,
		LogLevel:          r.LogLevel,
	}
	if strings.TrimSpace(r.RequestTimeout) != "" {
		timeout, err := time.ParseDuration(r.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse request_timeout %q: %w", r.RequestTimeout, err)
		}
		cfg.RequestTimeout = timeout
	}
	return cfg, nil
}

// ApplyDefaults fills every unset option that has a default.
func ApplyDefaults(cfg *Config) {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = ".github"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}
	if cfg.DurationFormat == "" {
		cfg.DurationFormat = "hh:mm:ss"
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
}

// ApplyEnv overrides options with the TIMESHEET_* variables returned by lookup.
// GITHUB_TOKEN is used when no token is configured at all.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []string

	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, EnvPrefix+key+" must be a boolean")
				return
			}
			*dst = parsed
		}
	}
	integer := func(key string, dst *int64) {
		if v, ok := lookup(EnvPrefix + key); ok {
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, EnvPrefix+key+" must be an integer")
				return
			}
			*dst = parsed
		}
	}

	str("TOKEN", &c.Token)
	integer("APP_ID", &c.AppID)
	integer("INSTALLATION_ID", &c.InstallationID)
	str("PRIVATE_KEY_PATH", &c.PrivateKeyPath)
	str("API_BASE_URL", &c.APIBaseURL)
	str("TEMPLATE", &c.Template)
	str("MASTER_TEMPLATE", &c.MasterTemplate)
	str("TEMPLATE_DIR", &c.TemplateDir)
	str("OUTPUT_DIR", &c.OutputDir)
	str("TIMEZONE", &c.Timezone)
	str("DURATION_FORMAT", &c.DurationFormat)
	str("USERS_ALIASES", &c.UsersAliases)
	str("CURRENT_REPOSITORY", &c.CurrentRepository)
	boolean("CLOSE_ISSUES", &c.CloseIssues)
	boolean("PUSH", &c.Push)
	str("PUSH_BRANCH", &c.PushBranch)
	boolean("XLSX", &c.XLSX)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup(EnvPrefix + "REPOSITORIES"); ok {
		c.Repositories = domain.SplitRepositories(v)
	}
	if v, ok := lookup(EnvPrefix + "REQUEST_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, EnvPrefix+"REQUEST_TIMEOUT must be a duration")
		} else {
			c.RequestTimeout = timeout
		}
	}

	if c.Token == "" && c.AppID == 0 {
		if v, ok := lookup("GITHUB_TOKEN"); ok {
			c.Token = v
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate reports every invalid option at once.
func (c *Config) Validate() error {
	var errs []string

	if c.AppID == 0 && c.Token == "" {
		errs = append(errs, "token is required unless app_id is set")
	}
	if c.AppID != 0 {
		if c.AppID < 0 {
			errs = append(errs, "app_id must be > 0")
		}
		if c.InstallationID <= 0 {
			errs = append(errs, "installation_id must be > 0 when app_id is set")
		}
		if c.PrivateKeyPath == "" {
			errs = append(errs, "private_key_path is required when app_id is set")
		}
	}
	if c.Template == "" {
		errs = append(errs, "template is required")
	}
	if c.MasterTemplate == "" {
		errs = append(errs, "master_template is required")
	}
	if len(c.Repositories) == 0 {
		errs = append(errs, "repositories must contain at least one repository")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, "timezone must be a valid IANA time zone: "+c.Timezone)
	}
	if strings.TrimSpace(c.DurationFormat) == "" {
		errs = append(errs, "duration_format must not be empty")
	}
	if _, err := identity.ParseAliases(c.UsersAliases); err != nil {
		errs = append(errs, "users_aliases is invalid: "+err.Error())
	}
	if c.CurrentRepository != "" {
		if _, err := domain.ParseRepository(c.CurrentRepository); err != nil {
			errs = append(errs, "current_repository is invalid: "+err.Error())
		}
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, "request_timeout must be > 0")
	}
	if c.Push && c.PushBranch == "" {
		errs = append(errs, "push_branch is required when push=true")
	}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		errs = append(errs, "log_level must be one of debug|info|warn|error")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

// Mapper returns the identity mapper built from users_aliases.
func (c *Config) Mapper() (*identity.Mapper, error) {
	return identity.ParseAliases(c.UsersAliases)
}
