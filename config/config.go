package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/m4xw311/nexus/errors"
	"gopkg.in/yaml.v3"
)

// Defaults for the goal execution loop. Replan budget and failure threshold
// are policy, not protocol; both are overridable per install.
const (
	DefaultReplanBudget     = 1
	DefaultFailureThreshold = 3
	DefaultMaxActions       = 20
)

type FilesystemAccess struct {
	Hidden   []string `yaml:"hidden"`
	ReadOnly []string `yaml:"read_only"`
}

type MCPServer struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type Toolset struct {
	Name  string   `yaml:"name"`
	Tools []string `yaml:"tools"`
}

// GoalConfig bounds the autonomous goal loop.
type GoalConfig struct {
	SandboxRoot      string `yaml:"sandbox_root"`
	ReplanBudget     int    `yaml:"replan_budget"`
	FailureThreshold int    `yaml:"failure_threshold"`
	MaxActions       int    `yaml:"max_actions"`
}

type Config struct {
	LLMClient            string           `yaml:"llm"`
	Model                string           `yaml:"model"`
	Temperature          float64          `yaml:"temperature"`
	Toolsets             []Toolset        `yaml:"toolsets"`
	AdditionalMCPServers []MCPServer      `yaml:"additional_mcp_servers"`
	FilesystemAccess     FilesystemAccess `yaml:"filesystem_access"`
	Goal                 GoalConfig       `yaml:"goal"`
}

// LoadConfig loads configuration from the user's home directory and the current
// working directory, with the latter taking precedence, then applies
// environment variable overrides. A .env file in the working directory is
// loaded first so it can feed the overrides.
func LoadConfig() (*Config, error) {
	// Missing .env is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Temperature: 0.7,
		Goal: GoalConfig{
			ReplanBudget:     DefaultReplanBudget,
			FailureThreshold: DefaultFailureThreshold,
			MaxActions:       DefaultMaxActions,
		},
	}

	// Default .nexus directory to be hidden from the file tools.
	cfg.FilesystemAccess.Hidden = append(cfg.FilesystemAccess.Hidden, ".nexus", ".nexus/**")

	// Load user-level config first
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, ".nexus", "config.yaml")
		if _, err := os.Stat(userConfigPath); err == nil {
			if err := loadFromFile(userConfigPath, cfg); err != nil {
				return nil, errors.Wrapf(err, "error loading user config")
			}
		}
	}

	// Load project-level config, overriding user-level
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrapf(err, "could not get working directory")
	}
	projectConfigPath := filepath.Join(wd, ".nexus", "config.yaml")
	if _, err := os.Stat(projectConfigPath); err == nil {
		if err := loadFromFile(projectConfigPath, cfg); err != nil {
			return nil, errors.Wrapf(err, "error loading project config")
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Goal.SandboxRoot == "" {
		cfg.Goal.SandboxRoot = wd
	}
	if cfg.Goal.ReplanBudget < 0 {
		cfg.Goal.ReplanBudget = DefaultReplanBudget
	}
	if cfg.Goal.FailureThreshold <= 0 {
		cfg.Goal.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.Goal.MaxActions <= 0 {
		cfg.Goal.MaxActions = DefaultMaxActions
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Note: Unmarshal will overwrite fields present in the YAML. This provides
	// a simple merge where project-level config replaces user-level.
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides lets environment variables (typically from .env) win over
// YAML. Variable names follow the original deployment's .env contract.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NEXUS_LLM"); v != "" {
		cfg.LLMClient = v
	}
	if v := os.Getenv("MODEL_NAME"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("NEXUS_SANDBOX_ROOT"); v != "" {
		cfg.Goal.SandboxRoot = v
	}
	if v := os.Getenv("MAX_GOAL_ACTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Goal.MaxActions = n
		}
	}
	if v := os.Getenv("NEXUS_REPLAN_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Goal.ReplanBudget = n
		}
	}
	if v := os.Getenv("NEXUS_FAILURE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Goal.FailureThreshold = n
		}
	}
}

// GetToolset finds a toolset by name. Returns the "default" toolset if the
// named one is not found or if an empty name is provided. A configuration
// with no toolsets at all yields an implicit default containing the builtin
// file tools.
func (c *Config) GetToolset(name string) (*Toolset, error) {
	if name == "" {
		name = "default"
	}
	for _, ts := range c.Toolsets {
		if ts.Name == name {
			return &ts, nil
		}
	}
	if name == "default" {
		if len(c.Toolsets) == 0 {
			return &Toolset{
				Name:  "default",
				Tools: []string{"read_file", "write_file", "list_dir"},
			}, nil
		}
		return nil, errors.New("mandatory 'default' toolset not found in configuration")
	}
	// Fallback to default if a specific toolset was requested but not found
	return c.GetToolset("default")
}
