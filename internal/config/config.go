package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ironsheep/map-shapes-mcp/internal/logging"
)

// Environment variables read by Load.
const (
	EnvConfigPath = "MAP_SHAPES_CONFIG"
	EnvLogLevel   = "MAP_SHAPES_LOG_LEVEL"
)

// Config holds the application configuration
type Config struct {
	Detection DetectionConfig `json:"detection"`
	Output    OutputConfig    `json:"output"`
	Log       LogConfig       `json:"log"`
}

// DetectionConfig holds configuration for shape detection and validation
type DetectionConfig struct {
	MinShapeSize      int  `json:"min_shape_size"`
	MaxDimensionRatio int  `json:"max_dimension_ratio"`
	DebugStages       bool `json:"debug_stages"`
}

// OutputConfig holds configuration for exported files
type OutputConfig struct {
	Dir      string `json:"dir"`
	WritePNG bool   `json:"write_png"`
	Prefix   string `json:"prefix"`
}

// LogConfig holds configuration for diagnostics
type LogConfig struct {
	Level string `json:"level"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Detection: DetectionConfig{
			MinShapeSize:      8,
			MaxDimensionRatio: 8,
			DebugStages:       false,
		},
		Output: OutputConfig{
			Dir:      "./output",
			WritePNG: false,
			Prefix:   "",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from
// the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads the file named by MAP_SHAPES_CONFIG, or GetConfigPath when it
// is unset, falling back to defaults when the file does not exist.
// MAP_SHAPES_LOG_LEVEL overrides log.level. The result is validated.
func Load() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		path = GetConfigPath()
	}

	config, err := LoadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		config, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		config.Log.Level = level
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Detection.MinShapeSize < 0 {
		return fmt.Errorf("detection.min_shape_size must not be negative")
	}

	if c.Detection.MaxDimensionRatio < 1 {
		return fmt.Errorf("detection.max_dimension_ratio must be at least 1")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir cannot be empty")
	}

	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "map-shapes-mcp", "config.json")
}
