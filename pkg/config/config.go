// Package config holds the explicit configuration object passed into every
// service at construction. Nothing in the pipeline reads ambient process
// state; the CLI loads one Config and hands it down.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/auroralab/allsky/pkg/mission"
)

var (
	// ErrDataDirRequired is returned when the local data root is not set
	ErrDataDirRequired = errors.New("data directory is required")
	// ErrBaseURLRequired is returned when a mission archive base URL is not set
	ErrBaseURLRequired = errors.New("archive base URL is required for every mission")
	// ErrInvalidRequestTimeout is returned when the HTTP request timeout is not positive
	ErrInvalidRequestTimeout = errors.New("request timeout must be positive")
)

// Config represents the complete application configuration
type Config struct {
	// Logging level
	Logging string `yaml:"logging" default:"info" validate:"oneof=panic fatal warn info debug trace"`

	// DataDir is the local data root image and skymap files are cached under
	DataDir string `yaml:"dataDir" default:"./data"`

	// SuppressWarnings silences non-fatal warnings (unknown stations, missing skymaps)
	SuppressWarnings bool `yaml:"suppressWarnings"`

	// Archive holds the remote archive settings
	Archive ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig represents remote archive configuration
type ArchiveConfig struct {
	REGOBaseURL    string        `yaml:"regoBaseURL" default:"https://data.phys.ucalgary.ca/sort_by_project/GO-Canada/REGO/"`
	THEMISBaseURL  string        `yaml:"themisBaseURL" default:"https://data.phys.ucalgary.ca/sort_by_project/THEMIS/asi/"`
	RequestTimeout time.Duration `yaml:"requestTimeout" default:"30s"`
}

// BaseURL returns the archive base URL for a mission.
func (a ArchiveConfig) BaseURL(m mission.Mission) string {
	if m == mission.THEMIS {
		return a.THEMISBaseURL
	}

	return a.REGOBaseURL
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirRequired
	}

	if c.Archive.REGOBaseURL == "" || c.Archive.THEMISBaseURL == "" {
		return ErrBaseURLRequired
	}

	if c.Archive.RequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}

	return nil
}

// Load loads configuration from a YAML file. A missing file is not an
// error: defaults apply so the tool works without any setup step.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	config := &Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, err
	}

	return config, nil
}
