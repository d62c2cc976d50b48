package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for jsoncodable
type Config struct {
	RootName string        `yaml:"root_name"`
	Query    string        `yaml:"query"`
	Types    TypesConfig   `yaml:"types"`
	Naming   NamingConfig  `yaml:"naming"`
	Output   OutputConfig  `yaml:"output"`
	Inputs   InputsConfig  `yaml:"inputs"`
	Logging  LoggingConfig `yaml:"logging"`
}

// TypesConfig controls type inference and the scalar names used when rendering
type TypesConfig struct {
	StrictNumbers bool   `yaml:"strict_numbers"`
	FloatName     string `yaml:"float_name"`
	MaxDepth      int    `yaml:"max_depth"`
}

// NamingConfig controls how nested record types are named
type NamingConfig struct {
	PascalCaseTypes          bool              `yaml:"pascal_case_types"`
	SingularizeArrayElements bool              `yaml:"singularize_array_elements"`
	TypeNames                map[string]string `yaml:"type_names"`
}

// OutputConfig controls the shape of the rendered declaration
type OutputConfig struct {
	IndentWidth  int    `yaml:"indent_width"`
	Conformance  string `yaml:"conformance"`
	FieldKeyword string `yaml:"field_keyword"`
	Header       string `yaml:"header"`
	Format       string `yaml:"format"`
}

// InputsConfig controls how several input documents are processed
type InputsConfig struct {
	Workers    int  `yaml:"workers"`
	FromSchema bool `yaml:"from_schema"`
}

// LoggingConfig controls diagnostic logging
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// EnvOverrides holds settings read from JSONCODABLE_* environment variables.
type EnvOverrides struct {
	RootName      string `env:"JSONCODABLE_ROOT_NAME"`
	Query         string `env:"JSONCODABLE_QUERY"`
	StrictNumbers string `env:"JSONCODABLE_STRICT_NUMBERS"`
	LogLevel      string `env:"JSONCODABLE_LOG_LEVEL"`
	LogFile       string `env:"JSONCODABLE_LOG_FILE"`
	Format        string `env:"JSONCODABLE_FORMAT"`
}

// Output formats
const (
	FormatSwift      = "swift"
	FormatJSONSchema = "jsonschema"
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		RootName: "NewType",
		Types: TypesConfig{
			StrictNumbers: false,
			FloatName:     "Double",
			MaxDepth:      512,
		},
		Naming: NamingConfig{
			PascalCaseTypes:          false,
			SingularizeArrayElements: true,
			TypeNames:                make(map[string]string),
		},
		Output: OutputConfig{
			IndentWidth:  4,
			Conformance:  "Codable",
			FieldKeyword: "let",
			Format:       FormatSwift,
		},
		Inputs: InputsConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigFileFrom(currentDir)
}

func findConfigFileFrom(dir string) string {
	configNames := []string{".jsoncodable.yml", ".jsoncodable.yaml", "jsoncodable.yml", "jsoncodable.yaml"}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			// Reached root directory
			break
		}
		dir = parentDir
	}

	return ""
}

// Validate checks that the configuration can drive a render
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RootName) == "" {
		return fmt.Errorf("root_name must not be empty")
	}
	if strings.TrimSpace(c.Types.FloatName) == "" {
		return fmt.Errorf("types.float_name must not be empty")
	}
	if c.Types.MaxDepth < 1 {
		return fmt.Errorf("types.max_depth must be positive, got %d", c.Types.MaxDepth)
	}
	if c.Output.IndentWidth < 1 || c.Output.IndentWidth > 16 {
		return fmt.Errorf("output.indent_width must be between 1 and 16, got %d", c.Output.IndentWidth)
	}
	if strings.TrimSpace(c.Output.FieldKeyword) == "" {
		return fmt.Errorf("output.field_keyword must not be empty")
	}
	if c.Output.Format != FormatSwift && c.Output.Format != FormatJSONSchema {
		return fmt.Errorf("output.format must be '%s' or '%s', got '%s'", FormatSwift, FormatJSONSchema, c.Output.Format)
	}
	if c.Inputs.Workers < 1 {
		return fmt.Errorf("inputs.workers must be positive, got %d", c.Inputs.Workers)
	}
	for key, name := range c.Naming.TypeNames {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("naming.type_names entry for '%s' is empty", key)
		}
	}
	return nil
}

// ApplyEnv overlays JSONCODABLE_* environment variables onto the config
func (c *Config) ApplyEnv() error {
	var env EnvOverrides
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.RootName != "" {
		c.RootName = env.RootName
	}
	if env.Query != "" {
		c.Query = env.Query
	}
	if env.StrictNumbers != "" {
		strict, err := strconv.ParseBool(env.StrictNumbers)
		if err != nil {
			return fmt.Errorf("invalid JSONCODABLE_STRICT_NUMBERS value '%s': %w", env.StrictNumbers, err)
		}
		c.Types.StrictNumbers = strict
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	if env.LogFile != "" {
		c.Logging.File = env.LogFile
	}
	if env.Format != "" {
		c.Output.Format = env.Format
	}
	return nil
}

// GetTypeName returns a configured name override for the type nested under jsonKey
func (c *Config) GetTypeName(jsonKey string) (string, bool) {
	name, ok := c.Naming.TypeNames[jsonKey]
	return name, ok
}

// CLIOverrides carries command-line values. Empty strings and nil pointers leave the config untouched.
type CLIOverrides struct {
	RootName      string
	Query         string
	StrictNumbers *bool
	LogLevel      string
	LogFile       string
	Format        string
	FromSchema    *bool
}

// LoadConfigWithCLI loads config with CLI argument precedence:
// CLI flags, then environment, then the config file, then defaults.
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath == "" {
		configPath = FindConfigFile()
	}
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if cli.RootName != "" {
		cfg.RootName = cli.RootName
	}
	if cli.Query != "" {
		cfg.Query = cli.Query
	}
	if cli.StrictNumbers != nil {
		cfg.Types.StrictNumbers = *cli.StrictNumbers
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.LogFile != "" {
		cfg.Logging.File = cli.LogFile
	}
	if cli.Format != "" {
		cfg.Output.Format = cli.Format
	}
	if cli.FromSchema != nil {
		cfg.Inputs.FromSchema = *cli.FromSchema
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
