// Package config loads and persists the daemon configuration and notifies
// registered listeners when it changes.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/probeq/profiledb/pkg/validation"
)

// Config is the whole on-disk configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Gauges GaugesConfig `yaml:"gauges"`
	UI     UIConfig     `yaml:"ui"`
}

// StoreConfig configures the capped block store.
type StoreConfig struct {
	Path                 string `yaml:"path" validate:"required"`
	SizeKb               int    `yaml:"sizeKb" validate:"required,min=1"`
	FlushIntervalSeconds int    `yaml:"flushIntervalSeconds" validate:"min=1,max=3600"`
}

// GaugesConfig configures the periodic gauge collection.
type GaugesConfig struct {
	IntervalSeconds      int           `yaml:"intervalSeconds" validate:"min=1,max=3600"`
	NotFoundDelaySeconds int           `yaml:"notFoundDelaySeconds" validate:"min=0,max=3600"`
	Definitions          []GaugeConfig `yaml:"definitions" validate:"dive"`
}

// GaugeConfig is one configured gauge.
type GaugeConfig struct {
	Name       string   `yaml:"name" validate:"required,max=100"`
	ObjectName string   `yaml:"objectName" validate:"required,max=100"`
	Attributes []string `yaml:"attributes" validate:"required,min=1,max=20,dive,required"`
}

// UIConfig configures admin UI authentication.
type UIConfig struct {
	PasswordHash          string `yaml:"passwordHash"`
	SessionSecret         string `yaml:"sessionSecret"`
	SessionTimeoutMinutes int    `yaml:"sessionTimeoutMinutes" validate:"min=1,max=1440"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path:                 "profiledb.capped",
			SizeKb:               10 * 1024,
			FlushIntervalSeconds: 1,
		},
		Gauges: GaugesConfig{
			IntervalSeconds:      5,
			NotFoundDelaySeconds: 60,
			Definitions: []GaugeConfig{
				{
					Name:       "go.runtime",
					ObjectName: "go.runtime",
					Attributes: []string{"goroutines", "memstats.heapAlloc", "memstats.numGC"},
				},
			},
		},
		UI: UIConfig{
			SessionTimeoutMinutes: 30,
		},
	}
}

// Validate applies struct-tag rules plus the name/size checks yaml tags
// cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := validation.ValidateStoreSizeKb(c.Store.SizeKb); err != nil {
		return err
	}
	for _, gauge := range c.Gauges.Definitions {
		if err := validation.ValidateGaugeName(gauge.Name); err != nil {
			return fmt.Errorf("gauge %q: %w", gauge.Name, err)
		}
		if err := validation.ValidateGaugeName(gauge.ObjectName); err != nil {
			return fmt.Errorf("gauge %q object: %w", gauge.Name, err)
		}
	}
	return nil
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as yaml.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
