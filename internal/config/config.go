package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModuleName           = "SmartechReactNative"
	DefaultDeeplinkNotification = "SmartechDeeplinkNotification"
	DefaultLocationProvider     = "Smartech"
)

// Config represents the complete configuration for smtbridge
type Config struct {
	ModuleName string         `yaml:"module_name"`
	Events     EventsConfig   `yaml:"events"`
	Location   LocationConfig `yaml:"location"`
	Methods    MethodsConfig  `yaml:"methods"`
	Logging    LoggingConfig  `yaml:"logging"`
	Output     OutputConfig   `yaml:"output"`
}

// EventsConfig names the events emitted to the runtime
type EventsConfig struct {
	DeeplinkNotification string `yaml:"deeplink_notification"`
}

// LocationConfig controls user location updates
type LocationConfig struct {
	Provider string `yaml:"provider"`
}

// MethodsConfig controls which bridge methods may be dispatched
type MethodsConfig struct {
	Deny []MethodRule `yaml:"deny"`
}

// MethodRule is a pattern matched against canonical method names such as "trackEvent"
type MethodRule struct {
	Pattern string `yaml:"pattern"`
	Reason  string `yaml:"reason,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// OutputConfig controls how converted values are printed
type OutputConfig struct {
	Indent  string `yaml:"indent"`
	Compact bool   `yaml:"compact"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		ModuleName: DefaultModuleName,
		Events: EventsConfig{
			DeeplinkNotification: DefaultDeeplinkNotification,
		},
		Location: LocationConfig{
			Provider: DefaultLocationProvider,
		},
		Methods: MethodsConfig{
			Deny: []MethodRule{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			Indent:  "  ",
			Compact: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".smtbridge.yml", ".smtbridge.yaml", "smtbridge.yml", "smtbridge.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

func (c *Config) compilePatterns() error {
	for i := range c.Methods.Deny {
		rule := &c.Methods.Deny[i]
		regex, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("invalid method deny pattern '%s': %w", rule.Pattern, err)
		}
		rule.regex = regex
	}
	return nil
}

// MatchesMethod checks if this rule matches the given method name
func (r *MethodRule) MatchesMethod(method string) bool {
	if r.regex == nil {
		// Try to compile if not already compiled (fallback)
		regex, err := regexp.Compile(r.Pattern)
		if err != nil {
			return false
		}
		r.regex = regex
	}
	return r.regex.MatchString(method)
}

// FindDenyRule returns the first deny rule matching the canonical method name
func (c *Config) FindDenyRule(method string) (MethodRule, bool) {
	for i := range c.Methods.Deny {
		if c.Methods.Deny[i].MatchesMethod(method) {
			return c.Methods.Deny[i], true
		}
	}
	return MethodRule{}, false
}

// Indent returns the indentation to print with, empty for compact output.
func (c *Config) Indent() string {
	if c.Output.Compact {
		return ""
	}
	return c.Output.Indent
}

// MergeConfigs merges CLI overrides into a base config
// Non-empty values from override take precedence over base values
func MergeConfigs(base, override *Config) *Config {
	merged := *base

	if override.ModuleName != "" {
		merged.ModuleName = override.ModuleName
	}
	if override.Events.DeeplinkNotification != "" {
		merged.Events.DeeplinkNotification = override.Events.DeeplinkNotification
	}
	if override.Location.Provider != "" {
		merged.Location.Provider = override.Location.Provider
	}
	if override.Logging.Level != "" {
		merged.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		merged.Logging.Format = override.Logging.Format
	}
	if override.Output.Indent != "" {
		merged.Output.Indent = override.Output.Indent
	}
	if len(override.Methods.Deny) > 0 {
		merged.Methods.Deny = append(append([]MethodRule{}, base.Methods.Deny...), override.Methods.Deny...)
	}

	// An override can only switch compact output on
	if override.Output.Compact {
		merged.Output.Compact = true
	}

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath, cliLogLevel, cliLogFormat string, cliCompact bool) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	// Default-valued CLI flags leave the config file values in place
	overrides := &Config{}
	if cliLogLevel != "info" {
		overrides.Logging.Level = cliLogLevel
	}
	if cliLogFormat != "console" {
		overrides.Logging.Format = cliLogFormat
	}
	overrides.Output.Compact = cliCompact

	return MergeConfigs(cfg, overrides), nil
}
