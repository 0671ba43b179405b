package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotEmpty(t, cfg.Pixiv.UserAgent)
	assert.Empty(t, cfg.Pixiv.Cookie)
	assert.Equal(t, "zh", cfg.Pixiv.Language)

	assert.Equal(t, 500, cfg.Search.TargetCount)
	assert.True(t, cfg.Search.ExcludeManga)
	assert.True(t, cfg.Search.SortByOrientation)

	assert.Equal(t, 15*time.Second, cfg.HTTP.FetchTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.DownloadTimeout)
	assert.Equal(t, 3, cfg.HTTP.MaxAttempts)
	assert.Equal(t, 3*time.Second, cfg.HTTP.RetryDelay)
	assert.Equal(t, time.Second, cfg.HTTP.PageDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.HTTP.ResourceDelay)
	assert.Equal(t, 300*time.Millisecond, cfg.HTTP.ArtworkDelay)

	assert.Equal(t, "pixiv_images", cfg.Output.SaveRoot)
	assert.Equal(t, "pixiv_images", cfg.Process.SourceRoot)
	assert.Equal(t, "api_ready_images", cfg.Process.OutputRoot)
	assert.Equal(t, 1920, cfg.Process.MaxDimension)
	assert.Equal(t, 25, cfg.Process.Quality)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PIXIVCRAWLER_COOKIE", "PHPSESSID=abc")
	t.Setenv("PIXIVCRAWLER_TAG", "風景")
	t.Setenv("PIXIVCRAWLER_TARGET_COUNT", "42")
	t.Setenv("PIXIVCRAWLER_EXCLUDE_MANGA", "false")
	t.Setenv("PIXIVCRAWLER_RETRY_DELAY", "500ms")
	t.Setenv("PIXIVCRAWLER_QUALITY", "80")
	t.Setenv("PIXIVCRAWLER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "PHPSESSID=abc", cfg.Pixiv.Cookie)
	assert.Equal(t, "風景", cfg.Search.Tag)
	assert.Equal(t, 42, cfg.Search.TargetCount)
	assert.False(t, cfg.Search.ExcludeManga)
	assert.Equal(t, 500*time.Millisecond, cfg.HTTP.RetryDelay)
	assert.Equal(t, 80, cfg.Process.Quality)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("PIXIVCRAWLER_TARGET_COUNT", "many")
	t.Setenv("PIXIVCRAWLER_FETCH_TIMEOUT", "soon")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PIXIVCRAWLER_TARGET_COUNT")
	assert.Contains(t, err.Error(), "PIXIVCRAWLER_FETCH_TIMEOUT")
	assert.Equal(t, 500, cfg.Search.TargetCount)
}

func TestLoadFromFile(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
search:
  tag: landscape
  target_count: 10
process:
  quality: 60
http:
  retry_delay: 2s
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(path))

		assert.Equal(t, "landscape", cfg.Search.Tag)
		assert.Equal(t, 10, cfg.Search.TargetCount)
		assert.Equal(t, 60, cfg.Process.Quality)
		assert.Equal(t, 2*time.Second, cfg.HTTP.RetryDelay)
		assert.Equal(t, 1920, cfg.Process.MaxDimension)
		assert.True(t, cfg.Search.SortByOrientation)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("search: [unclosed"), 0644))

		err := DefaultConfig().LoadFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("missing explicit file", func(t *testing.T) {
		err := DefaultConfig().LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero target", func(c *Config) { c.Search.TargetCount = 0 }, "target count"},
		{"zero attempts", func(c *Config) { c.HTTP.MaxAttempts = 0 }, "max attempts"},
		{"negative delay", func(c *Config) { c.HTTP.PageDelay = -time.Second }, "delays"},
		{"quality too high", func(c *Config) { c.Process.Quality = 101 }, "quality"},
		{"negative dimension", func(c *Config) { c.Process.MaxDimension = -1 }, "max dimension"},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }, "invalid log level"},
		{"no resize is valid", func(c *Config) { c.Process.MaxDimension = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFetch(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ValidateFetch()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cookie")
	assert.Contains(t, err.Error(), "tag")

	cfg.Pixiv.Cookie = "PHPSESSID=abc"
	cfg.Search.Tag = "landscape"
	assert.NoError(t, cfg.ValidateFetch())

	cfg.Pixiv.Cookie = "   "
	assert.Error(t, cfg.ValidateFetch())
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Search.Tag = "landscape"

	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var loaded Config
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	assert.Equal(t, *cfg, loaded)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"cookie":        "PHPSESSID=flag",
		"limit":         7,
		"sort":          false,
		"max-dimension": 0,
		"log-level":     "",
	})

	assert.Equal(t, "PHPSESSID=flag", cfg.Pixiv.Cookie)
	assert.Equal(t, 7, cfg.Search.TargetCount)
	assert.False(t, cfg.Search.SortByOrientation)
	assert.Equal(t, 0, cfg.Process.MaxDimension)
	assert.Equal(t, "info", cfg.Logging.Level, "empty strings are ignored")
	assert.True(t, cfg.Search.ExcludeManga, "absent keys are ignored")
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  tag: from-file\n  target_count: 5\nprocess:\n  quality: 40\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PIXIVCRAWLER_TARGET_COUNT=6\nPIXIVCRAWLER_QUALITY=50\n"), 0644))
	t.Setenv("PIXIVCRAWLER_QUALITY", "70")
	// godotenv sets variables for the process; make sure they are removed afterwards
	t.Setenv("PIXIVCRAWLER_TARGET_COUNT", "")
	require.NoError(t, os.Unsetenv("PIXIVCRAWLER_TARGET_COUNT"))

	cfg, err := Load(path, map[string]interface{}{"tag": "from-flag"})
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Search.Tag)
	assert.Equal(t, 6, cfg.Search.TargetCount)
	assert.Equal(t, 70, cfg.Process.Quality)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("process:\n  quality: 0\n"), 0644))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}
