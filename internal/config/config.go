// Package config loads the exporter settings from NZBGET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingEnv is matched by every MissingEnvError.
var ErrMissingEnv = errors.New("required environment variable not set")

// MissingEnvError reports a required variable that is absent or empty.
type MissingEnvError struct {
	Name string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("Oops, looks like you haven't set %s, please do that and then try running the script again", e.Name)
}

func (e *MissingEnvError) Is(target error) bool { return target == ErrMissingEnv }

const (
	envPrefix        = "NZBGET"
	defaultTimeoutMS = 10000
)

// Config holds the runtime configuration. It is never mutated after Load.
type Config struct {
	URL      string
	Username string
	Password string

	// Debug is true when NZBGET_DEBUG holds any non-empty value.
	Debug bool

	TimeoutMS     int
	LogFile       string
	ExporterToken string
}

// Timeout is the upstream HTTP client timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// required keys in the order they are checked.
var required = []string{"username", "password", "url"}

// Load reads the NZBGET_* variables. A missing required variable yields a
// *MissingEnvError naming it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)

	for _, k := range []string{"url", "username", "password", "debug", "timeout_ms", "log_file", "exporter_token"} {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}
	v.SetDefault("timeout_ms", defaultTimeoutMS)

	for _, k := range required {
		if !v.IsSet(k) || v.GetString(k) == "" {
			return nil, &MissingEnvError{Name: envName(k)}
		}
	}

	ms := v.GetInt("timeout_ms")
	if ms <= 0 {
		ms = defaultTimeoutMS
	}

	return &Config{
		URL:           v.GetString("url"),
		Username:      v.GetString("username"),
		Password:      v.GetString("password"),
		Debug:         v.GetString("debug") != "",
		TimeoutMS:     ms,
		LogFile:       v.GetString("log_file"),
		ExporterToken: v.GetString("exporter_token"),
	}, nil
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(key)
}
