package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// BMSConfig holds the connection parameters for the building management system REST endpoint.
// The bearer token is deliberately absent: it comes from the .env file, never from the TOML file.
type BMSConfig struct {
	URL                     string `toml:"URL"`
	RequestTimeoutInSeconds uint32 `toml:"RequestTimeoutInSeconds"`
}

// APIConfig holds the HTTP API parameters
type APIConfig struct {
	ListenAddress string `toml:"ListenAddress"`
}

// InfluxConfig holds the optional time-series database sink parameters. A disabled sink
// turns the collector into a live-view-only process without affecting polling.
type InfluxConfig struct {
	Enabled               bool   `toml:"Enabled"`
	URL                   string `toml:"URL"`
	Org                   string `toml:"Org"`
	Bucket                string `toml:"Bucket"`
	WriteTimeoutInSeconds uint32 `toml:"WriteTimeoutInSeconds"`
}

// FilterRuleConfig defines a single wildcard rule inside a stage
type FilterRuleConfig struct {
	Pattern string `toml:"Pattern"`
	Invert  bool   `toml:"Invert"`
	Enabled bool   `toml:"Enabled"`
}

// FilterStageConfig defines a named group of rules
type FilterStageConfig struct {
	Name  string             `toml:"Name"`
	Rules []FilterRuleConfig `toml:"Rules"`
}

// FiltersConfig maps the label filtering section of the config file
type FiltersConfig struct {
	DatabasePath  string              `toml:"DatabasePath"`
	BlockerStages []FilterStageConfig `toml:"BlockerStages"`
	TargetStage   FilterStageConfig   `toml:"TargetStage"`
}

// Config maps to the config.toml file for the collector service
type Config struct {
	InstallationID        string        `toml:"InstallationID"`
	PollIntervalInSeconds uint32        `toml:"PollIntervalInSeconds"`
	HistoryCapacity       uint32        `toml:"HistoryCapacity"`
	BMS                   BMSConfig     `toml:"BMS"`
	API                   APIConfig     `toml:"API"`
	Influx                InfluxConfig  `toml:"Influx"`
	Filters               FiltersConfig `toml:"Filters"`
}

// LoadConfig parses a TOML file into the Config struct
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration invariants that must hold before the poll loop is ever started
func (cfg *Config) Validate() error {
	if len(cfg.InstallationID) == 0 {
		return errors.New("empty InstallationID")
	}
	if len(cfg.BMS.URL) == 0 {
		return errors.New("empty BMS URL")
	}
	if cfg.BMS.RequestTimeoutInSeconds == 0 {
		return errors.New("BMS RequestTimeoutInSeconds must be greater than 0")
	}
	if cfg.PollIntervalInSeconds == 0 {
		return errors.New("PollIntervalInSeconds must be greater than 0")
	}
	if cfg.HistoryCapacity == 0 {
		return errors.New("HistoryCapacity must be greater than 0")
	}
	if cfg.Influx.Enabled {
		if len(cfg.Influx.URL) == 0 || len(cfg.Influx.Org) == 0 || len(cfg.Influx.Bucket) == 0 {
			return errors.New("Influx sink is enabled but URL, Org or Bucket is missing")
		}
		if cfg.Influx.WriteTimeoutInSeconds == 0 {
			return errors.New("Influx WriteTimeoutInSeconds must be greater than 0")
		}
	}

	return nil
}
