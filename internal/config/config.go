// Package config loads scanner settings from defaults, an optional config
// file and ADO_AUDIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix      = "ADO_AUDIT"
	configBaseName = ".ado-audit"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "md"
	FormatCSV      = "csv"
)

type Config struct {
	// Program is the Azure CLI executable.
	Program string `mapstructure:"program"`
	// Timeout bounds every single CLI invocation.
	Timeout time.Duration `mapstructure:"timeout"`
	// Branch is the branch whose policies are evaluated.
	Branch          string        `mapstructure:"branch"`
	AdminGroup      string        `mapstructure:"adminGroup"`
	SpinnerInterval time.Duration `mapstructure:"spinnerInterval"`
	// CallsPerSecond throttles CLI invocations. Zero disables throttling.
	CallsPerSecond float64  `mapstructure:"callsPerSecond"`
	OutDir         string   `mapstructure:"outDir"`
	Formats        []string `mapstructure:"formats"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("program", "az")
	v.SetDefault("timeout", 60*time.Second)
	v.SetDefault("branch", "main")
	v.SetDefault("adminGroup", "Project Administrators")
	v.SetDefault("spinnerInterval", 100*time.Millisecond)
	v.SetDefault("callsPerSecond", 0)
	v.SetDefault("outDir", "")
	v.SetDefault("formats", []string{FormatJSON, FormatMarkdown})
}

// Load reads configuration. When path is empty the file is optional and
// looked up as .ado-audit.{yaml,json,toml} in the working directory and $HOME.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(configBaseName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Formats = normalizeFormats(cfg.Formats)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalizeFormats accepts both list values and a single comma separated
// string coming from the environment.
func normalizeFormats(in []string) []string {
	var out []string
	for _, f := range in {
		for _, part := range strings.Split(f, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "markdown" {
				part = FormatMarkdown
			}
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Program) == "" {
		errs = append(errs, errors.New("program must not be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if strings.TrimSpace(c.Branch) == "" {
		errs = append(errs, errors.New("branch must not be empty"))
	}
	if strings.TrimSpace(c.AdminGroup) == "" {
		errs = append(errs, errors.New("adminGroup must not be empty"))
	}
	if c.SpinnerInterval <= 0 {
		errs = append(errs, fmt.Errorf("spinnerInterval must be positive, got %s", c.SpinnerInterval))
	}
	if c.CallsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("callsPerSecond must not be negative, got %v", c.CallsPerSecond))
	}
	for _, f := range c.Formats {
		switch f {
		case FormatJSON, FormatYAML, FormatMarkdown, FormatCSV:
		default:
			errs = append(errs, fmt.Errorf("unknown export format %q", f))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HasFormat reports whether format f was requested.
func (c *Config) HasFormat(f string) bool {
	for _, x := range c.Formats {
		if x == f {
			return true
		}
	}
	return false
}
