package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/rfit/pkg/cache"
	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/errors"
	"github.com/matzehuels/rfit/pkg/store"
)

// configEnv names the environment variable that points at a config file.
const configEnv = "RFIT_CONFIG"

// defaultAddr is where "rfit serve" listens unless told otherwise.
const defaultAddr = ":8080"

// Config is the contents of rfit.toml.
//
//	[cache]
//	backend = "redis"
//	redis_addr = "redis://localhost:6379/0"
//	ttl = "72h"
//
//	[run]
//	jobs = 8
//
//	[defaults]
//	correction_factor = 0.5
//	interior_finish_in = 0.625
//
//	[server]
//	addr = ":9090"
//
//	[store]
//	path = "/var/lib/rfit/history.db"
//	keep = 100
type Config struct {
	Cache    CacheConfig     `toml:"cache"`
	Run      RunConfig       `toml:"run"`
	Defaults catalog.Options `toml:"defaults"`
	Server   ServerConfig    `toml:"server"`
	Store    StoreConfig     `toml:"store"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
}

// RunConfig tunes batch runs.
type RunConfig struct {
	Jobs int `toml:"jobs"`
}

// ServerConfig configures "rfit serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig locates the run history database.
type StoreConfig struct {
	Path string `toml:"path"`

	// Keep prunes the history to the newest Keep runs after each
	// "rfit run --save". Zero keeps everything.
	Keep int `toml:"keep"`
}

func (c CacheConfig) backend() cache.Config {
	backend := c.Backend
	if backend == "" {
		backend = cache.BackendFile
	}
	return cache.Config{Backend: backend, Dir: c.Dir, RedisAddr: c.RedisAddr}
}

// LoadConfig reads the config file at path. With an empty path it tries
// $RFIT_CONFIG and then the XDG config directory; a missing default file
// yields the defaults, a missing explicit file is an error.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = os.Getenv(configEnv)
		explicit = path != ""
	}
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(dir, appName+".toml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return &Config{}, nil
	}
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache backend %q (want %s, %s or %s)",
			c.Cache.Backend, cache.BackendFile, cache.BackendRedis, cache.BackendNone)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	if c.Run.Jobs < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "run jobs must not be negative")
	}
	if c.Store.Keep < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "store keep must not be negative")
	}
	return c.Defaults.WithDefaults().Validate()
}

// addr returns the configured listen address.
func (c *Config) addr() string {
	if c.Server.Addr != "" {
		return c.Server.Addr
	}
	return defaultAddr
}

// storePath returns the configured history database, defaulting to the XDG
// data directory.
func (c *Config) storePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	path, err := store.DefaultPath(appName)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "get data dir")
	}
	return path, nil
}

// configDir returns the XDG config directory (~/.config/rfit/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
