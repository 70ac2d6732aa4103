package cmd

import (
	"flag"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the settings shared by every subcommand. Environment
// variables use the WFH_ prefix; command-line flags override them.
type Config struct {
	Data         string        `envconfig:"DATA" default:"data/WFHdata_October24.zip" validate:"required"`
	Port         int           `envconfig:"PORT" default:"8501" validate:"min=1,max=65535"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s" validate:"gt=0"`
}

const envPrefix = "WFH"

var validate = validator.New()

// loadConfig reads the environment. Call Validate after flags are parsed.
func loadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// bindFlags registers the flags common to every subcommand, defaulting to the
// values already read from the environment.
func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Data, "data", c.Data, "path to the survey zip archive (env WFH_DATA)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error (env WFH_LOG_LEVEL)")
}

// bindServerFlags registers the flags only the web command uses.
func (c *Config) bindServerFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Port, "port", c.Port, "HTTP server port (env WFH_PORT)")
	fs.DurationVar(&c.ReadTimeout, "read-timeout", c.ReadTimeout, "HTTP read timeout (env WFH_READ_TIMEOUT)")
	fs.DurationVar(&c.WriteTimeout, "write-timeout", c.WriteTimeout, "HTTP write timeout (env WFH_WRITE_TIMEOUT)")
}
