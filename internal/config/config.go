// Package config loads gitlet settings from an optional config file and
// GITLET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "GITLET"
	ConfigFileName = ".gitletrc"
	ConfigFileType = "yaml"

	DefaultBranch    = "master"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config holds the resolved settings.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Init struct {
		DefaultBranch string `mapstructure:"default_branch"`
	} `mapstructure:"init"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("init.default_branch", DefaultBranch)
}

// Load reads configuration. When file is empty, $HOME/.gitletrc is used if it
// exists; a missing default file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, key := range []string{"log.level", "log.format", "init.default_branch"} {
		// GITLET_LOG_LEVEL etc.
		if err := v.BindEnv(key, envName(key)); err != nil {
			return nil, err
		}
	}

	if file != "" {
		expanded, err := homedir.Expand(file)
		if err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileType)
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if cfg.Init.DefaultBranch == "" {
		cfg.Init.DefaultBranch = DefaultBranch
	}
	return &cfg, nil
}

func envName(key string) string {
	b := []byte(EnvPrefix + "_" + key)
	for i, c := range b {
		switch {
		case c == '.':
			b[i] = '_'
		case c >= 'a' && c <= 'z':
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// DefaultPath returns the location Load reads when no file is given.
func DefaultPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ConfigFileName)
}
