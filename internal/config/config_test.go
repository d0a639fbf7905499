package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDefault_Profiles(t *testing.T) {
	p, err := Default("plugin")
	require.NoError(t, err)
	require.Len(t, p.Symbols, 12)
	require.Equal(t, "Stock-US-DDOG", p.Symbols[0])
	require.Equal(t, 12, p.Display.FontSize)
	require.Equal(t, 829, p.Hours.ClosedUntil)
	require.Equal(t, 1530, p.Hours.ClosedFrom)
	require.Equal(t, 12*time.Hour, p.Hours.MaxCacheAge)
	require.Equal(t, "☾ ", p.Display.StalePrefix)
	require.Equal(t, "warn", p.Log.Level)
	require.Equal(t, "https://api.wsj.net", p.Feed.BaseURL)
	require.NoError(t, Validate(p))

	m, err := Default("marketshare")
	require.NoError(t, err)
	require.Len(t, m.Symbols, 6)
	require.Equal(t, 13, m.Display.FontSize)
	require.Equal(t, 929, m.Hours.ClosedUntil)
	require.Equal(t, 1630, m.Hours.ClosedFrom)
	require.Zero(t, m.Hours.MaxCacheAge)
	require.Equal(t, "green", m.Display.UpColor)
	require.NoError(t, Validate(m))

	_, err = Default("nope")
	require.ErrorContains(t, err, "unknown profile")
}

func TestLoad_MissingFileUsesProfile(t *testing.T) {
	t.Setenv("MARKETBAR_PROFILE", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "")
	require.NoError(t, err)
	require.Equal(t, DefaultProfile, cfg.Profile)
}

func TestLoad_FileSelectsProfileAndOverrides(t *testing.T) {
	t.Setenv("MARKETBAR_PROFILE", "")
	p := writeFile(t, "c.yaml", `
profile: marketshare
symbols: [Stock-US-AAPL, Index-US-DJIA]
hours:
  timezone: UTC
  max_cache_age: 6h
display:
  font_size: 14
  show_range: true
  headline_colors: {from: 600, until: 800, up: "#136417", down: "#901D1D"}
`)
	cfg, err := Load(p, "")
	require.NoError(t, err)
	require.Equal(t, "marketshare", cfg.Profile)
	require.Equal(t, []string{"Stock-US-AAPL", "Index-US-DJIA"}, cfg.Symbols)
	require.Equal(t, 929, cfg.Hours.ClosedUntil)
	require.Equal(t, 6*time.Hour, cfg.Hours.MaxCacheAge)
	require.Equal(t, "UTC", cfg.Hours.Timezone)
	require.Equal(t, 14, cfg.Display.FontSize)
	require.Equal(t, "red", cfg.Display.DownColor)
	require.True(t, cfg.Display.ShowRange)
	require.NotNil(t, cfg.Display.Headline)
	require.Equal(t, 800, cfg.Display.Headline.Until)
}

func TestLoad_ProfileArgumentWins(t *testing.T) {
	t.Setenv("MARKETBAR_PROFILE", "marketshare")
	p := writeFile(t, "c.yaml", "profile: marketshare\n")
	cfg, err := Load(p, "plugin")
	require.NoError(t, err)
	require.Equal(t, "plugin", cfg.Profile)

	cfg, err = Load(p, "")
	require.NoError(t, err)
	require.Equal(t, "marketshare", cfg.Profile)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MARKETBAR_PROFILE", "")
	t.Setenv("MARKETBAR_SYMBOLS", " Stock-US-AAA , ,Stock-US-BBB")
	t.Setenv("MARKETBAR_CACHE_FILE", "/tmp/x.json")
	t.Setenv("MARKETBAR_FONT_SIZE", "9")
	t.Setenv("MARKETBAR_TIMEOUT_SEC", "0")
	t.Setenv("MARKETBAR_LOG_LEVEL", "DEBUG")

	cfg, err := Load("", "")
	require.NoError(t, err)
	require.Equal(t, []string{"Stock-US-AAA", "Stock-US-BBB"}, cfg.Symbols)
	require.Equal(t, "/tmp/x.json", cfg.CacheFile)
	require.Equal(t, 9, cfg.Display.FontSize)
	require.Zero(t, cfg.Feed.RequestTimeoutSec)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("MARKETBAR_PROFILE", "")
	// godotenv never overrides a variable that is already set, even to "".
	t.Setenv("MARKETBAR_FONT_SIZE", "")
	require.NoError(t, os.Unsetenv("MARKETBAR_FONT_SIZE"))
	p := writeFile(t, DefaultEnvFile, "MARKETBAR_FONT_SIZE=20\n")
	require.NoError(t, LoadEnvFile(p))
	require.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")))

	cfg, err := Load("", "")
	require.NoError(t, err)
	require.Equal(t, 20, cfg.Display.FontSize)
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Setenv("MARKETBAR_PROFILE", "")
	p := writeFile(t, "c.yaml", `
symbols: []
hours: {closed_until: 875}
display: {font_size: 0}
feed: {ckey: abc}
`)
	_, err := Load(p, "")
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, "Symbols")
	require.Contains(t, msg, "Hours.ClosedUntil must be a time of day")
	require.Contains(t, msg, "Display.FontSize")
	require.Contains(t, msg, "Feed.EntitlementToken is required together with CKey")
}

func TestLoad_BadTimezone(t *testing.T) {
	t.Setenv("MARKETBAR_PROFILE", "")
	p := writeFile(t, "c.yaml", "hours: {timezone: Mars/Olympus}\n")
	_, err := Load(p, "")
	require.ErrorContains(t, err, "hours.timezone")
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("MARKETBAR_PROFILE", "")
	p := writeFile(t, "c.yaml", "symbols: [unterminated\n")
	_, err := Load(p, "")
	require.ErrorContains(t, err, "parse config")
}
