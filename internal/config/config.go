package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "worldforge.yaml"

type ProjectConfig struct {
	Project  string         `yaml:"project" validate:"required"`
	Version  int            `yaml:"version" validate:"required"`
	Database DatabaseConfig `yaml:"database"`
	Output   string         `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
	Sources  SourcesConfig  `yaml:"sources,omitempty"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" validate:"required"`
}

// SourcesConfig lists the text notation directories ingest reads by default.
type SourcesConfig struct {
	Paths   []string `yaml:"paths,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	// File, when set, also receives JSON log records.
	File string `yaml:"file,omitempty"`
}

// Default is the configuration used when no project file exists.
func Default() *ProjectConfig {
	return &ProjectConfig{
		Project:  "worldforge",
		Version:  1,
		Database: DatabaseConfig{DSN: "sqlite://./worldforge.db"},
		Output:   "worldbook.json",
		Log:      LogConfig{Level: "info"},
	}
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file is absent.
func LoadOrDefault(path string) (*ProjectConfig, error) {
	cfg, err := LoadProjectConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Render encodes cfg the way init writes it to disk.
func Render(cfg *ProjectConfig) ([]byte, error) {
	if err := validateProjectConfig(cfg); err != nil {
		return nil, fmt.Errorf("rendering project config: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("rendering project config: %w", err)
	}
	return data, nil
}

func applyDefaults(cfg *ProjectConfig) {
	defaults := Default()
	if strings.TrimSpace(cfg.Output) == "" {
		cfg.Output = defaults.Output
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if !IsSupportedDSN(cfg.Database.DSN) {
		return fmt.Errorf("unsupported database dsn %q: expected sqlite:// or postgres://", cfg.Database.DSN)
	}
	return nil
}

func IsSupportedDSN(dsn string) bool {
	for _, prefix := range []string{"sqlite://", "postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return true
		}
	}
	return false
}
