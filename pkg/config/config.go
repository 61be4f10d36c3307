// Package config loads arbor settings from a TOML file, a .env file and
// ARBOR_* environment variables, in increasing order of precedence. Command
// line flags are applied last by the CLI.
//
// A complete file:
//
//	[analysis]
//	metrics = ["sholl", "flow", "strahler"]
//	sholl_increment = 2000.0
//	radial_increment = 1000.0
//	sigma = 200.0
//	normalize = true
//	collapse = true
//
//	[cache]
//	backend = "redis"          # file, memory, redis, mongo or none
//	redis_url = "redis://localhost:6379/0"
//	prefix = "arbor:"
//
//	[server]
//	addr = ":8080"
//	timeout = "30s"
//	max_body_bytes = 67108864
//
//	[log]
//	level = "debug"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	errs "github.com/matzehuels/arbor/pkg/errors"
)

const appName = "arbor"

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// ValidBackends is the set of supported cache backends.
var ValidBackends = map[string]bool{
	BackendFile:   true,
	BackendMemory: true,
	BackendRedis:  true,
	BackendMongo:  true,
	BackendNone:   true,
}

// Config is the full configuration.
type Config struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// AnalysisConfig holds defaults for analysis options.
type AnalysisConfig struct {
	Metrics         []string `toml:"metrics"`
	ShollIncrement  float64  `toml:"sholl_increment"`
	RadialIncrement float64  `toml:"radial_increment"`
	Sigma           float64  `toml:"sigma"`
	Normalize       bool     `toml:"normalize"`
	Collapse        bool     `toml:"collapse"`
}

// CacheConfig selects and configures the report cache.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Size    int    `toml:"size"`
	Prefix  string `toml:"prefix"`

	RedisURL string `toml:"redis_url"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	Timeout      time.Duration `toml:"timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Backend:         BackendFile,
			Dir:             DefaultCacheDir(),
			Size:            1024,
			MongoDatabase:   appName,
			MongoCollection: "reports",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			Timeout:      30 * time.Second,
			MaxBodyBytes: 64 << 20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Path returns the configuration file location: $ARBOR_CONFIG, else
// $XDG_CONFIG_HOME/arbor/config.toml, else ~/.config/arbor/config.toml.
func Path() string {
	if p := os.Getenv("ARBOR_CONFIG"); p != "" {
		return p
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// Load reads the TOML file at path (Path() when empty) on top of Default().
// A missing file is not an error. Variables from envFile (".env" when empty)
// are exported unless already set, then ARBOR_* variables override the file.
func Load(path, envFile string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// applyEnv overrides cfg from ARBOR_* variables found by lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	str("ARBOR_CACHE_BACKEND", &cfg.Cache.Backend)
	str("ARBOR_CACHE_DIR", &cfg.Cache.Dir)
	str("ARBOR_CACHE_PREFIX", &cfg.Cache.Prefix)
	str("ARBOR_REDIS_URL", &cfg.Cache.RedisURL)
	str("ARBOR_MONGO_URI", &cfg.Cache.MongoURI)
	str("ARBOR_MONGO_DATABASE", &cfg.Cache.MongoDatabase)
	str("ARBOR_ADDR", &cfg.Server.Addr)
	str("ARBOR_LOG_LEVEL", &cfg.Log.Level)

	if v, ok := lookup("ARBOR_METRICS"); ok && v != "" {
		cfg.Analysis.Metrics = splitList(v)
	}
	if v, ok := lookup("ARBOR_SHOLL_INCREMENT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ARBOR_SHOLL_INCREMENT: %w", err)
		}
		cfg.Analysis.ShollIncrement = f
	}
	if v, ok := lookup("ARBOR_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ARBOR_TIMEOUT: %w", err)
		}
		cfg.Server.Timeout = d
	}
	return nil
}

// Validate checks the settings that can be checked without connecting to
// anything.
func (c Config) Validate() error {
	if !ValidBackends[c.Cache.Backend] {
		return fmt.Errorf("invalid cache backend %q (must be one of: file, memory, redis, mongo, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisURL == "" {
		return errors.New("cache backend redis requires redis_url")
	}
	if c.Cache.Backend == BackendMongo && c.Cache.MongoURI == "" {
		return errors.New("cache backend mongo requires mongo_uri")
	}
	if c.Cache.Prefix != "" {
		if err := errs.ValidateName("cache prefix", c.Cache.Prefix); err != nil {
			return err
		}
	}
	if c.Analysis.ShollIncrement < 0 || c.Analysis.RadialIncrement < 0 || c.Analysis.Sigma < 0 {
		return errors.New("analysis increments and sigma must not be negative")
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DefaultCacheDir follows the XDG convention (~/.cache/arbor).
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}
