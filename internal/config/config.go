// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"stevedore-cli/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "stevedore"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
)

type (
	// BuildConfig holds image assembly defaults.
	BuildConfig struct {
		// NoCache forces rebuilds by default.
		NoCache bool `mapstructure:"no_cache" toml:"no_cache"`

		// TagPrefix namespaces derived image tags.
		TagPrefix string `mapstructure:"tag_prefix" toml:"tag_prefix"`
	}

	// RunConfig holds launch defaults.
	RunConfig struct {
		// HostPort is the default host port published to the container
		// port. Zero reuses the container port number.
		HostPort uint16 `mapstructure:"host_port" toml:"host_port"`
	}

	// Config is stevedore's tool configuration.
	Config struct {
		// ContainerEngine prefers "docker" or "podman". Empty means
		// auto-detect.
		ContainerEngine string `mapstructure:"container_engine" toml:"container_engine"`

		// Verbose enables verbose output by default.
		Verbose bool `mapstructure:"verbose" toml:"verbose"`

		Build BuildConfig `mapstructure:"build" toml:"build"`
		Run   RunConfig   `mapstructure:"run" toml:"run"`
	}
)

// configFilePathOverride is set by the --config flag.
var configFilePathOverride string

// SetConfigFilePathOverride points Load at a specific config file instead of
// the platform default location.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ContainerEngine: "",
		Verbose:         false,
		Build: BuildConfig{
			NoCache:   false,
			TagPrefix: "stevedore/",
		},
		Run: RunConfig{
			HostPort: 0,
		},
	}
}

// ConfigDir returns the stevedore configuration directory using
// platform-specific conventions: %APPDATA% on Windows, ~/Library/Application
// Support on macOS, $XDG_CONFIG_HOME (default ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultConfigFilePath returns the platform-default config file path.
func DefaultConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// Load reads the configuration: defaults, then the config file (if any),
// then STEVEDORE_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("container_engine", defaults.ContainerEngine)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("build.no_cache", defaults.Build.NoCache)
	v.SetDefault("build.tag_prefix", defaults.Build.TagPrefix)
	v.SetDefault("run.host_port", defaults.Run.HostPort)

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFilePathOverride != "" {
		if _, err := os.Stat(configFilePathOverride); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(configFilePathOverride).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'stevedore config init' to create a config file").
				Wrap(err).
				BuildError()
		}
		v.SetConfigFile(configFilePathOverride)
		if err := v.ReadInConfig(); err != nil {
			return nil, issue.WrapWithContext(err, "parse configuration", configFilePathOverride)
		}
	} else {
		if dir, err := ConfigDir(); err == nil {
			v.SetConfigName(ConfigFileName)
			v.SetConfigType(ConfigFileExt)
			v.AddConfigPath(dir)
			if err := v.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return nil, issue.WrapWithContext(err, "parse configuration", v.ConfigFileUsed())
				}
				// No config file is fine; defaults apply.
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, issue.WrapWithOperation(err, "decode configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, issue.WrapWithContext(err, "validate configuration", v.ConfigFileUsed())
	}

	return &cfg, nil
}

// Validate rejects configurations that would only fail later and further
// from the cause.
func (c *Config) Validate() error {
	switch c.ContainerEngine {
	case "", "docker", "podman":
	default:
		return fmt.Errorf("invalid container_engine %q (valid: docker, podman, or empty for auto-detect)", c.ContainerEngine)
	}
	return nil
}

// WriteDefault writes the default configuration as TOML to path, creating
// parent directories as needed. Refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	data, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
