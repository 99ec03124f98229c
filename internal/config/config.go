// internal/config/config.go
//
// This package handles configuration and the .teamshuffle directory structure.
// Every project directory that runs teamshuffle gets a .teamshuffle/ folder
// holding the config file, logs and exported artifacts.
//
// Precedence, lowest to highest: built-in defaults, .teamshuffle/config.yaml,
// environment (a .env file in the project directory is loaded first).

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// StateDir is the name of the directory we create in each project
	StateDir = ".teamshuffle"

	// Identity providers.
	ProviderGenAI = "genai"
	ProviderLocal = "local"
	ProviderNone  = "none"

	defaultPlayersPerTeam  = 2
	defaultNumberOfTeams   = 2
	defaultPasses          = 10
	defaultIdentityTimeout = 20 * time.Second
	defaultModel           = "gemini-2.5-flash"
)

const defaultProjectConfigYAML = `# teamshuffle project configuration
version: 1

# Values pre-filled on the configuration screen.
defaults:
  players_per_team: 2
  number_of_teams: 2

shuffle:
  # Fisher-Yates passes per generation.
  passes: 10

identity:
  # genai (Gemini, needs GEMINI_API_KEY), local (offline word lists) or none.
  provider: genai
  model: gemini-2.5-flash
  timeout: 20s

export:
  # Relative paths resolve against the project directory.
  dir: .teamshuffle/exports
`

// GeneratorDefaults pre-fills the configuration screen.
type GeneratorDefaults struct {
	PlayersPerTeam int `yaml:"players_per_team"`
	NumberOfTeams  int `yaml:"number_of_teams"`
}

// ShuffleConfig tunes the shuffle engine.
type ShuffleConfig struct {
	Passes int `yaml:"passes"`
}

// IdentityConfig selects how teams get their names.
type IdentityConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

// ExportConfig controls where artifacts are written.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// ProjectConfig models .teamshuffle/config.yaml.
type ProjectConfig struct {
	Version  int               `yaml:"version"`
	Defaults GeneratorDefaults `yaml:"defaults"`
	Shuffle  ShuffleConfig     `yaml:"shuffle"`
	Identity IdentityConfig    `yaml:"identity"`
	Export   ExportConfig      `yaml:"export"`
}

// envOverrides lists the environment variables that win over config.yaml.
type envOverrides struct {
	APIKey    string `env:"GEMINI_API_KEY"`
	Provider  string `env:"TEAMSHUFFLE_IDENTITY_PROVIDER"`
	Model     string `env:"TEAMSHUFFLE_GENAI_MODEL"`
	ExportDir string `env:"TEAMSHUFFLE_EXPORT_DIR"`
	Passes    int    `env:"TEAMSHUFFLE_PASSES"`
	Debug     bool   `env:"TEAMSHUFFLE_DEBUG"`
}

// Config holds the runtime configuration for teamshuffle.
type Config struct {
	// ProjectDir is the directory where the user ran `teamshuffle` from
	ProjectDir string

	// StateProjectDir is ProjectDir/.teamshuffle
	StateProjectDir string

	Project ProjectConfig

	// APIKey authenticates the GenAI identity provider. Never read from config.yaml.
	APIKey string

	// Debug enables debug-level logging.
	Debug bool
}

// InitDir creates the .teamshuffle directory structure in the given project
// directory and writes a default config.yaml if none exists.
//
// Structure created:
// .teamshuffle/
// ├── config.yaml
// ├── logs/       <- diagnostics (the TUI owns the terminal)
// └── exports/    <- PNG / PDF results
func InitDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, StateDir)
	dirs := []string{
		filepath.Join(stateDir, "logs"),
		filepath.Join(stateDir, "exports"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return ensureProjectConfig(filepath.Join(stateDir, "config.yaml"))
}

// NewConfig loads defaults, config.yaml and environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:      projectDir,
		StateProjectDir: filepath.Join(projectDir, StateDir),
		Project:         defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateProjectDir, "logs")
}

// ExportDir returns the absolute directory exports are written to.
func (c *Config) ExportDir() string {
	return resolvePath(c.ProjectDir, c.Project.Export.Dir)
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateProjectDir, "config.yaml")
}

// Passes returns the configured shuffle pass count.
func (c *Config) Passes() int {
	return c.Project.Shuffle.Passes
}

// IdentityProvider returns the effective provider. GenAI without an API key
// degrades to the local provider.
func (c *Config) IdentityProvider() string {
	provider := c.Project.Identity.Provider
	if provider == ProviderGenAI && strings.TrimSpace(c.APIKey) == "" {
		return ProviderLocal
	}
	return provider
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func (c *Config) applyEnv() error {
	dotenv := filepath.Join(c.ProjectDir, ".env")
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load %s: %w", dotenv, err)
	}
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("config: parse environment: %w", err)
	}
	c.APIKey = strings.TrimSpace(overrides.APIKey)
	c.Debug = overrides.Debug
	if v := strings.TrimSpace(overrides.Provider); v != "" {
		c.Project.Identity.Provider = v
	}
	if v := strings.TrimSpace(overrides.Model); v != "" {
		c.Project.Identity.Model = v
	}
	if v := strings.TrimSpace(overrides.ExportDir); v != "" {
		c.Project.Export.Dir = v
	}
	if overrides.Passes != 0 {
		c.Project.Shuffle.Passes = overrides.Passes
	}
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Defaults: GeneratorDefaults{
			PlayersPerTeam: defaultPlayersPerTeam,
			NumberOfTeams:  defaultNumberOfTeams,
		},
		Shuffle: ShuffleConfig{Passes: defaultPasses},
		Identity: IdentityConfig{
			Provider: ProviderGenAI,
			Model:    defaultModel,
			Timeout:  defaultIdentityTimeout,
		},
		Export: ExportConfig{Dir: filepath.Join(StateDir, "exports")},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Identity.Timeout <= 0 {
		pc.Identity.Timeout = defaultIdentityTimeout
	}
	if strings.TrimSpace(pc.Identity.Model) == "" {
		pc.Identity.Model = defaultModel
	}
	if strings.TrimSpace(pc.Export.Dir) == "" {
		pc.Export.Dir = filepath.Join(StateDir, "exports")
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Identity.Provider = strings.ToLower(strings.TrimSpace(pc.Identity.Provider))
	if pc.Identity.Provider == "" {
		pc.Identity.Provider = ProviderGenAI
	}
	pc.Identity.Model = strings.TrimSpace(pc.Identity.Model)
	pc.Export.Dir = strings.TrimSpace(pc.Export.Dir)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version != 1 {
		return fmt.Errorf("unsupported config version %d", pc.Version)
	}
	if pc.Defaults.PlayersPerTeam < 1 {
		return fmt.Errorf("defaults.players_per_team must be >= 1")
	}
	if pc.Defaults.NumberOfTeams < 2 {
		return fmt.Errorf("defaults.number_of_teams must be >= 2")
	}
	if pc.Shuffle.Passes < 1 {
		return fmt.Errorf("shuffle.passes must be >= 1")
	}
	switch pc.Identity.Provider {
	case ProviderGenAI, ProviderLocal, ProviderNone:
	default:
		return fmt.Errorf("identity.provider must be '%s', '%s' or '%s'", ProviderGenAI, ProviderLocal, ProviderNone)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
