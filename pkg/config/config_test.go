package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/arbor/pkg/cache"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func missingEnv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.toml", `
[analysis]
metrics = ["sholl", "flow"]
sholl_increment = 2000.0
collapse = true

[cache]
backend = "memory"
size = 16

[server]
addr = "127.0.0.1:9000"
timeout = "5s"

[log]
level = "debug"
`)
	cfg, err := Load(path, missingEnv(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"sholl", "flow"}, cfg.Analysis.Metrics)
	assert.Equal(t, 2000.0, cfg.Analysis.ShollIncrement)
	assert.True(t, cfg.Analysis.Collapse)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 16, cfg.Cache.Size)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.Equal(t, log.DebugLevel, cfg.Log.Level())

	// Unset keys keep their defaults.
	assert.Equal(t, int64(64<<20), cfg.Server.MaxBodyBytes)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"), missingEnv(t))
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeFile(t, "config.toml", "[cache]\nbackned = \"memory\"\n")
	_, err := Load(path, missingEnv(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.backned")
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, "config.toml", "[cache]\nbackend = \"etcd\"\n")
	_, err := Load(path, missingEnv(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "etcd")
}

func TestLoad_DotEnv(t *testing.T) {
	t.Setenv("ARBOR_ADDR", "")
	os.Unsetenv("ARBOR_ADDR")
	t.Cleanup(func() { os.Unsetenv("ARBOR_ADDR") })

	env := writeFile(t, ".env", "ARBOR_ADDR=:7070\n")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"), env)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ARBOR_CACHE_BACKEND":   "redis",
		"ARBOR_REDIS_URL":       "redis://localhost:6379/1",
		"ARBOR_METRICS":         "sholl, flow ,",
		"ARBOR_SHOLL_INCREMENT": "250",
		"ARBOR_TIMEOUT":         "1m",
		"ARBOR_LOG_LEVEL":       "warn",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, applyEnv(&cfg, lookup))
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Cache.RedisURL)
	assert.Equal(t, []string{"sholl", "flow"}, cfg.Analysis.Metrics)
	assert.Equal(t, 250.0, cfg.Analysis.ShollIncrement)
	assert.Equal(t, time.Minute, cfg.Server.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_BadNumber(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, func(k string) (string, bool) {
		if k == "ARBOR_SHOLL_INCREMENT" {
			return "wide", true
		}
		return "", false
	})
	assert.ErrorContains(t, err, "ARBOR_SHOLL_INCREMENT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"RedisWithoutURL", func(c *Config) { c.Cache.Backend = BackendRedis }},
		{"MongoWithoutURI", func(c *Config) { c.Cache.Backend = BackendMongo }},
		{"NegativeIncrement", func(c *Config) { c.Analysis.ShollIncrement = -1 }},
		{"BadLevel", func(c *Config) { c.Log.Level = "loud" }},
		{"ControlCharPrefix", func(c *Config) { c.Cache.Prefix = "lab\x00a" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAnalysisOptions(t *testing.T) {
	c := AnalysisConfig{Metrics: []string{"flow"}, ShollIncrement: 10, Normalize: true}
	opts := c.Options()
	assert.Equal(t, []string{"flow"}, opts.Metrics)
	assert.Equal(t, 10.0, opts.ShollIncrement)
	assert.True(t, opts.Normalize)

	opts.Metrics[0] = "sholl"
	assert.Equal(t, "flow", c.Metrics[0])
}

func TestCacheOpen(t *testing.T) {
	ctx := context.Background()

	c, err := CacheConfig{Backend: BackendNone}.Open(ctx)
	require.NoError(t, err)
	assert.IsType(t, &cache.NullCache{}, c)

	c, err = CacheConfig{Backend: BackendMemory, Size: 4}.Open(ctx)
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCache{}, c)

	c, err = CacheConfig{Backend: BackendFile, Dir: t.TempDir()}.Open(ctx)
	require.NoError(t, err)
	assert.IsType(t, &cache.FileCache{}, c)

	c, err = CacheConfig{Backend: BackendRedis, RedisURL: "not a url"}.Open(ctx)
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestCacheKeyer(t *testing.T) {
	plain := CacheConfig{}.Keyer()
	scoped := CacheConfig{Backend: BackendFile, Prefix: "lab1"}.Keyer()
	opts := cache.ReportKeyOpts{Metrics: []string{"sholl"}}
	assert.NotEqual(t, plain.ReportKey("abc", opts), scoped.ReportKey("abc", opts))

	redis := CacheConfig{Backend: BackendRedis, Prefix: "lab1"}.Keyer()
	assert.Equal(t, plain.ReportKey("abc", opts), redis.ReportKey("abc", opts))
}

func TestLoad_Example(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "config.toml"), missingEnv(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"cable", "strahler", "sholl", "flow"}, cfg.Analysis.Metrics)
	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, "lab-a", cfg.Cache.Prefix)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
}
