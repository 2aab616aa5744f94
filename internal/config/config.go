package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// FileName is the config file at the root of a ledger repo.
const FileName = "farmledger.yaml"

// Config represents the top-level farmledger.yaml configuration.
type Config struct {
	Farm       FarmConfig       `yaml:"farm"`
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Validation ValidationConfig `yaml:"validation"`
	Log        LogConfig        `yaml:"log"`
	Git        GitConfig        `yaml:"git"`
}

// FarmConfig identifies the operation.
type FarmConfig struct {
	Name string `yaml:"name"`
}

// InputConfig says where account sheets are read from.
type InputConfig struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"` // file extensions without the dot, e.g. "csv", "xlsx"
}

// OutputConfig says where exported ledgers are written.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // "csv" or "xlsx"
}

// ValidationConfig tunes balance comparisons.
type ValidationConfig struct {
	Epsilon string `yaml:"epsilon"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// GitConfig sets the identity used when committing exports.
type GitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a farmledger.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// LoadRepo reads the config of the ledger repo rooted at dir.
func LoadRepo(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger repo.
func Default(farmName string) *Config {
	return &Config{
		Farm: FarmConfig{
			Name: farmName,
		},
		Input: InputConfig{
			Dir:     "accounts",
			Formats: []string{"xlsx", "csv"},
		},
		Output: OutputConfig{
			Dir:    "exports",
			Format: "xlsx",
		},
		Validation: ValidationConfig{
			Epsilon: "0.01",
		},
		Log: LogConfig{
			Level: "info",
		},
		Git: GitConfig{
			AuthorName:  "farmledger",
			AuthorEmail: "farmledger@localhost",
		},
	}
}

// Epsilon returns the balance tolerance, 0.01 when unset.
func (c *Config) Epsilon() (decimal.Decimal, error) {
	if c.Validation.Epsilon == "" {
		return decimal.RequireFromString("0.01"), nil
	}
	eps, err := decimal.NewFromString(c.Validation.Epsilon)
	if err != nil {
		return decimal.Zero, fmt.Errorf("validation.epsilon %q: %w", c.Validation.Epsilon, err)
	}
	if !eps.IsPositive() {
		return decimal.Zero, fmt.Errorf("validation.epsilon must be positive, got %s", eps)
	}
	return eps, nil
}

// LogLevel maps log.level to a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
