package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// BudgetConfig tunes the request packer.
type BudgetConfig struct {
	// SafetyMarginPercent is the share of the context window held back from
	// the budget. Zero keeps no margin.
	SafetyMarginPercent int `toml:"safety_margin_percent"`
	// ReservedOutput overrides the model's default output reservation when
	// greater than zero.
	ReservedOutput int `toml:"reserved_output"`
}

type DebugConfig struct {
	LogBudget    bool   `toml:"log_budget"`
	LogDirectory string `toml:"log_directory"`
}

type Config struct {
	DataDir      string       `toml:"data_dir"`
	DefaultModel string       `toml:"default_model"`
	Budget       BudgetConfig `toml:"budget"`
	Debug        DebugConfig  `toml:"debug"`
}

const fallbackModel = "claude-sonnet-4"

func Default() Config {
	dataDir := defaultDataDir()

	return Config{
		DataDir:      dataDir,
		DefaultModel: fallbackModel,
		Budget: BudgetConfig{
			SafetyMarginPercent: 2,
		},
		Debug: DebugConfig{
			LogBudget:    false,
			LogDirectory: filepath.Join(dataDir, "debug"),
		},
	}
}

// DefaultPath is where the config file lives unless the caller says
// otherwise.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()

	if homeDir == "" {
		return filepath.Join(".ridgectx", "config.toml")
	}

	return filepath.Join(homeDir, ".ridgectx", "config.toml")
}

// LoadOrCreate reads the config at path, writing the defaults there first
// when the file does not exist yet.
func LoadOrCreate(path string) (Config, error) {
	config := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return config, err
			}

			configData, err := toml.Marshal(config)
			if err != nil {
				return config, err
			}

			if err := os.WriteFile(path, configData, 0o644); err != nil {
				return config, err
			}

			return config, nil
		}

		return config, err
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := toml.Unmarshal(configData, &config); err != nil {
		return config, err
	}

	config.DataDir = expandPath(config.DataDir)
	config.Debug.LogDirectory = expandPath(config.Debug.LogDirectory)
	config.DefaultModel = strings.TrimSpace(config.DefaultModel)

	if config.DataDir == "" {
		config.DataDir = defaultDataDir()
	}

	if config.DefaultModel == "" {
		config.DefaultModel = fallbackModel
	}

	if config.Budget.SafetyMarginPercent < 0 {
		config.Budget.SafetyMarginPercent = 0
	}

	return config, nil
}

func defaultDataDir() string {
	homeDir, _ := os.UserHomeDir()

	if homeDir == "" {
		return ".ridgectx"
	}

	return filepath.Join(homeDir, ".ridgectx")
}

func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()

		if homeDir != "" {
			trimmed := strings.TrimPrefix(path, "~")
			trimmed = strings.TrimPrefix(trimmed, string(os.PathSeparator))

			return filepath.Join(homeDir, trimmed)
		}
	}

	return path
}
