package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"agentcage/pkg/logger"
	"agentcage/sandbox/executor"

	"gopkg.in/yaml.v3"
)

const (
	defaultProfileDir  = "configs/profiles"
	defaultProfileName = "standard"
)

// AppConfig holds agentcage config.
type AppConfig struct {
	Logger         logger.Config   `yaml:"logger"`
	Executor       executor.Config `yaml:"executor"`
	ProfileDir     string          `yaml:"profileDir"`
	DefaultProfile string          `yaml:"defaultProfile"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

// loadAppConfig reads the config file when present; a missing file at the
// default path means run with defaults.
func loadAppConfig(path string, required bool) (*AppConfig, error) {
	var cfg AppConfig
	if err := loadYAML(path, &cfg); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.OutputPath == "" {
		cfg.Logger.OutputPath = "stderr"
	}
	if cfg.ProfileDir == "" {
		cfg.ProfileDir = defaultProfileDir
	}
	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = defaultProfileName
	}
	return &cfg, nil
}
