package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"p12kdf/pkg/kdf"
)

// Parser handles profile file parsing and validation
type Parser struct {
	configPath string
	config     *Config
}

// NewParser creates a new profile file parser
func NewParser(configPath string) *Parser {
	return &Parser{
		configPath: configPath,
	}
}

// Load reads and parses the profile file
func (p *Parser) Load() (*Config, error) {
	data, err := os.ReadFile(p.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", p.configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	p.setDefaults(&config)

	if err := p.validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	p.config = &config
	return &config, nil
}

// setDefaults applies default values to configuration
func (p *Parser) setDefaults(config *Config) {
	if config.Tool.LogLevel == "" {
		config.Tool.LogLevel = "info"
	}

	for name, profile := range config.Profiles {
		if profile.Name == "" {
			profile.Name = name
		}
		if profile.Hash == "" {
			profile.Hash = "sha256"
		}
		if profile.Iterations == 0 {
			profile.Iterations = 2048
		}
		if profile.KeyLength == 0 {
			profile.KeyLength = 32
		}
		if profile.Purpose == "" {
			profile.Purpose = "key"
		}
		if profile.SaltLength == 0 {
			profile.SaltLength = 8
		}
		config.Profiles[name] = profile
	}
}

// validate checks every profile and collects all problems at once
func (p *Parser) validate(config *Config) error {
	var errors []string

	if len(config.Profiles) == 0 {
		errors = append(errors, "at least one profile must be defined")
	}

	for name, profile := range config.Profiles {
		if _, err := kdf.ParseHash(profile.Hash); err != nil {
			errors = append(errors, fmt.Sprintf("profile '%s': unsupported hash '%s'", name, profile.Hash))
		}
		if _, err := kdf.ParsePurpose(profile.Purpose); err != nil {
			errors = append(errors, fmt.Sprintf("profile '%s': invalid purpose '%s'", name, profile.Purpose))
		}
		if profile.Iterations < 1 {
			errors = append(errors, fmt.Sprintf("profile '%s': iterations must be at least 1, got %d", name, profile.Iterations))
		}
		if profile.KeyLength < 1 {
			errors = append(errors, fmt.Sprintf("profile '%s': key_length must be at least 1, got %d", name, profile.KeyLength))
		}
		if profile.SaltLength < 1 {
			errors = append(errors, fmt.Sprintf("profile '%s': salt_length must be at least 1, got %d", name, profile.SaltLength))
		}
	}

	if !isValidLogLevel(config.Tool.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", config.Tool.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func isValidLogLevel(level string) bool {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return true
		}
	}
	return false
}

// Profile returns the named profile from the loaded configuration
func (c *Config) Profile(name string) (Profile, error) {
	profile, exists := c.Profiles[name]
	if !exists {
		return Profile{}, fmt.Errorf("profile not found: %s", name)
	}
	return profile, nil
}

// Reload reloads the configuration from file
func (p *Parser) Reload() (*Config, error) {
	return p.Load()
}

// GetConfig returns the currently loaded configuration
func (p *Parser) GetConfig() *Config {
	return p.config
}
