// Package config loads the YAML configuration shared by the folio commands.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendNATS   = "nats"
)

type Config struct {
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"text" validate:"oneof=text json"`
	} `yaml:"log"`
	Store struct {
		Backend    string `yaml:"backend" default:"file" validate:"oneof=memory file nats"`
		Collection string `yaml:"collection" default:"calendars" validate:"required,alphanum"`
		File       struct {
			Dir string `yaml:"dir" default:".folio" validate:"required"`
		} `yaml:"file"`
		NATS struct {
			URL    string `yaml:"url" default:"nats://127.0.0.1:4222" validate:"omitempty,url"`
			Bucket string `yaml:"bucket" default:"folio" validate:"required"`
		} `yaml:"nats"`
	} `yaml:"store"`
	Repository struct {
		CacheSize int           `yaml:"cache_size" default:"128" validate:"gte=0"`
		CacheTTL  time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	} `yaml:"repository"`
	Metrics struct {
		// Textfile is written on exit when set.
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

var validate = validator.New()

// Default returns the configuration used without a config file.
func Default() *Config {
	c, err := Parse(nil)
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads path, applies defaults and environment overrides, and validates
// the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML data. Empty data is valid and yields the defaults.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("NATS_URL"); v != "" {
		c.Store.NATS.URL = v
	}
	if v := os.Getenv("FOLIO_STORE"); v != "" {
		c.Store.Backend = v
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("validate config: %s failed on %q (value %v)", e.Namespace(), e.Tag(), e.Value())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Logger builds the slog logger described by the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(c.Log.Level))
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
