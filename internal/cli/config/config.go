// Package config loads the project configuration from ais.yml in the
// project root, with AIS_* environment overrides. The database
// password is deliberately not part of the file; commands take it from
// AIS_PASSWORD or prompt for it.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the project configuration.
type Config struct {
	// Connection is the Oracle connect string, host:port/service.
	Connection string `mapstructure:"connection"`
	// Username is the schema to sync as.
	Username string `mapstructure:"username"`

	Options Options `mapstructure:"options"`
	Paths   Paths   `mapstructure:"paths"`

	v    *viper.Viper
	root string
}

// Options are sync behavior switches.
type Options struct {
	// PublicPackages are synonym names mirrored as PUBLIC packages.
	PublicPackages []string `mapstructure:"public_packages"`

	// LoadApexPackages requests a full refresh of the shared APEX
	// library cache on the next sync. One-shot: cleared after the
	// refresh succeeds.
	LoadApexPackages bool `mapstructure:"load_apex_packages"`
}

// Paths override storage locations.
type Paths struct {
	// CacheDir is the metadata directory, relative to the project
	// root unless absolute.
	CacheDir string `mapstructure:"cache_dir"`

	// ApexCacheFile points at a pre-built shared APEX library
	// document instead of the one in CacheDir.
	ApexCacheFile string `mapstructure:"apex_cache_file"`
}

// Load reads ais.yml (or ais.yaml) from root. A missing file yields
// the defaults; a malformed one is an error.
func Load(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("paths.cache_dir", ".ais")
	v.SetDefault("options.load_apex_packages", true)

	v.SetConfigName("ais")
	v.SetConfigType("yaml")
	v.AddConfigPath(root)

	v.SetEnvPrefix("AIS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.v = v
	cfg.root = root
	return &cfg, nil
}

// MetadataDir resolves the cache directory against the project root.
func (c *Config) MetadataDir() string {
	dir := c.Paths.CacheDir
	if dir == "" {
		dir = ".ais"
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.root, dir)
}

// Password returns the database password from the environment, or
// empty when the caller has to prompt.
func Password() string {
	return os.Getenv("AIS_PASSWORD")
}

// SetLoadApexPackages persists the one-shot library refresh flag back
// to the config file.
func (c *Config) SetLoadApexPackages(enabled bool) error {
	c.Options.LoadApexPackages = enabled
	c.v.Set("options.load_apex_packages", enabled)
	if err := c.v.WriteConfig(); err != nil {
		// No config file yet: create one so the flag sticks.
		return c.v.WriteConfigAs(filepath.Join(c.root, "ais.yml"))
	}
	return nil
}
