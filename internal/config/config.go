package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"
)

// Config represents the complete logfix configuration (v2 schema)
type Config struct {
	Version int    `json:"version" mapstructure:"version"`
	Root    string `json:"root" mapstructure:"root"`

	Rewrite RewriteConfig `json:"rewrite" mapstructure:"rewrite"`
	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Backup  BackupConfig  `json:"backup" mapstructure:"backup"`
	Rules   RulesConfig   `json:"rules" mapstructure:"rules"`
	History HistoryConfig `json:"history" mapstructure:"history"`
	Workers int           `json:"workers" mapstructure:"workers"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// RewriteConfig controls the template-call rewrite engine
type RewriteConfig struct {
	// Methods is the set of method names whose calls are candidates
	Methods []string `json:"methods" mapstructure:"methods"`
	// PlaceholderPattern is the regexp matching one placeholder token;
	// the first capture group is the placeholder name
	PlaceholderPattern string `json:"placeholderPattern" mapstructure:"placeholderPattern"`
	// AuxiliaryIdents are argument texts preserved as a trailing argument
	AuxiliaryIdents []string `json:"auxiliaryIdents" mapstructure:"auxiliaryIdents"`
	// Marker is prefixed to rewritten templates (C# interpolation)
	Marker string `json:"marker" mapstructure:"marker"`
}

// ScanConfig controls file discovery
type ScanConfig struct {
	Extensions  []string `json:"extensions" mapstructure:"extensions"`
	ExcludeDirs []string `json:"excludeDirs" mapstructure:"excludeDirs"`
}

// BackupConfig controls backup file handling
type BackupConfig struct {
	// SuffixBase is combined with the run ID: <path>.<suffixBase>_<runID>
	SuffixBase string `json:"suffixBase" mapstructure:"suffixBase"`
	// Compress writes zstd-compressed backups
	Compress bool `json:"compress" mapstructure:"compress"`
}

// RulesConfig points at an optional substitution rules file
type RulesConfig struct {
	Path string `json:"path,omitempty" mapstructure:"path"`
}

// HistoryConfig controls the run history database
type HistoryConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 2,
		Root:    ".",
		Rewrite: RewriteConfig{
			Methods: []string{
				"LogError", "LogWarning", "LogInfo", "LogDebug", "LogTrace",
			},
			PlaceholderPattern: `\{([^{}]+)\}`,
			AuxiliaryIdents:    []string{"ex", "exception", "e"},
			Marker:             "$",
		},
		Scan: ScanConfig{
			Extensions: []string{".cs"},
			ExcludeDirs: []string{
				".git", ".vs", "bin", "obj", "packages", "node_modules", ".logfix",
			},
		},
		Backup: BackupConfig{
			SuffixBase: "bak",
			Compress:   false,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Workers: 1,
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .logfix/config.json under root
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("version", 2)
	v.SetDefault("root", ".")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".logfix"))

	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .logfix/config.json under root
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".logfix")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 2 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if len(c.Rewrite.Methods) == 0 {
		return &ConfigError{Field: "rewrite.methods", Message: "at least one method name required"}
	}
	if c.Rewrite.Marker == "" {
		return &ConfigError{Field: "rewrite.marker", Message: "interpolation marker required"}
	}
	re, err := regexp.Compile(c.Rewrite.PlaceholderPattern)
	if err != nil {
		return &ConfigError{Field: "rewrite.placeholderPattern", Message: "invalid regexp: " + err.Error()}
	}
	if re.NumSubexp() < 1 {
		return &ConfigError{Field: "rewrite.placeholderPattern", Message: "pattern needs a capture group for the name"}
	}
	if c.Workers < 0 {
		return &ConfigError{Field: "workers", Message: "workers must be >= 0"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
