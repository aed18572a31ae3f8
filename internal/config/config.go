package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. HOURWATCH_MAX_RESULTS.
const EnvPrefix = "HOURWATCH"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds every runtime setting for hourwatch.
type Config struct {
	CredentialsFile string        `mapstructure:"credentials_file"`
	Subject         string        `mapstructure:"subject"`
	MaxResults      int           `mapstructure:"max_results"`
	RPS             int           `mapstructure:"rps"`
	Interval        time.Duration `mapstructure:"interval"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	Format          string        `mapstructure:"format"`
	JSONOut         string        `mapstructure:"json_out"`
	LogLevel        string        `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("credentials_file", "")
	v.SetDefault("subject", "")
	v.SetDefault("max_results", 20)
	v.SetDefault("rps", 4)
	v.SetDefault("interval", 5*time.Minute)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("format", FormatText)
	v.SetDefault("json_out", "")
	v.SetDefault("log_level", "info")
}

// Load merges defaults, the optional YAML file at path, HOURWATCH_*
// environment variables and any changed flags, in increasing precedence.
// A missing file is not an error.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
			}
		})
		if bindErr != nil {
			return Config{}, bindErr
		}
	}

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			var pathErr *os.PathError
			if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	return cfg, nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.CredentialsFile) == "" {
		return errors.New("credentials_file is required")
	}
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("unknown format %q (want %s or %s)", c.Format, FormatText, FormatJSON)
	}
	if c.RPS < 0 {
		return fmt.Errorf("rps must not be negative, got %d", c.RPS)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	return nil
}
