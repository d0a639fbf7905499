package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProfile  = "plugin"
	DefaultFileName = ".marketbar.yaml"
	DefaultEnvFile  = ".marketbar.env"
)

type Hours struct {
	Timezone    string `yaml:"timezone" default:"Local"`
	ClosedUntil int    `yaml:"closed_until" validate:"hhmm"`
	ClosedFrom  int    `yaml:"closed_from" validate:"hhmm"`
	// MaxCacheAge of zero trusts the cache for the whole closed window.
	MaxCacheAge time.Duration `yaml:"max_cache_age" validate:"gte=0"`
}

type HeadlineColors struct {
	From  int    `yaml:"from" validate:"hhmm"`
	Until int    `yaml:"until" validate:"hhmm,gtfield=From"`
	Up    string `yaml:"up" validate:"required"`
	Down  string `yaml:"down" validate:"required"`
}

type Display struct {
	FontSize    int             `yaml:"font_size" validate:"gt=0"`
	Font        string          `yaml:"font"`
	UpColor     string          `yaml:"up_color" validate:"required"`
	DownColor   string          `yaml:"down_color" validate:"required"`
	StalePrefix string          `yaml:"stale_prefix" default:"☾ "`
	ShowRange   bool            `yaml:"show_range"`
	LinkBase    string          `yaml:"link_base" default:"https://www.marketwatch.com/investing" validate:"url"`
	Headline    *HeadlineColors `yaml:"headline_colors"`
}

type Feed struct {
	BaseURL           string `yaml:"base_url" default:"https://api.wsj.net" validate:"url"`
	EntitlementToken  string `yaml:"entitlement_token" validate:"required_with=CKey"`
	CKey              string `yaml:"ckey" validate:"required_with=EntitlementToken"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec" validate:"gte=0"`
}

type Log struct {
	Level  string `yaml:"level" default:"warn" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
}

type Config struct {
	Profile   string   `yaml:"profile"`
	CacheFile string   `yaml:"cache_file"`
	Symbols   []string `yaml:"symbols" validate:"required,min=1,dive,required"`
	Hours     Hours    `yaml:"hours"`
	Display   Display  `yaml:"display"`
	Feed      Feed     `yaml:"feed"`
	Log       Log      `yaml:"log"`
}

// profiles are the two shipped configurations. Only "plugin" caps the age of
// a cached snapshot.
var profiles = map[string]func() Config{
	"plugin": func() Config {
		return Config{
			Symbols: []string{
				"Stock-US-DDOG", "Stock-US-SPOT", "Stock-US-BMRA", "Stock-US-TSLA", "Stock-US-NFLX",
				"Stock-US-AMZN", "Stock-US-GOOG", "Stock-US-FB", "Stock-US-NEWR",
				"Stock-US-WBA", "Index-US-DJIA", "Future-US-GOLD",
			},
			Hours:   Hours{ClosedUntil: 829, ClosedFrom: 1530, MaxCacheAge: 12 * time.Hour},
			Display: Display{FontSize: 12, UpColor: "#136417", DownColor: "#901D1D"},
		}
	},
	"marketshare": func() Config {
		return Config{
			Symbols: []string{
				"Stock-US-SPOT", "Stock-US-TSLA", "Stock-US-NFLX", "Stock-US-ASML", "Index-US-DJIA", "Future-US-GOLD",
			},
			Hours:   Hours{ClosedUntil: 929, ClosedFrom: 1630},
			Display: Display{FontSize: 13, UpColor: "green", DownColor: "red"},
		}
	},
}

// Profiles lists the built-in profile names.
func Profiles() []string {
	out := make([]string, 0, len(profiles))
	for k := range profiles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Default returns the named built-in profile with ambient defaults applied.
func Default(profile string) (Config, error) {
	mk, ok := profiles[profile]
	if !ok {
		return Config{}, fmt.Errorf("unknown profile %q (have %s)", profile, strings.Join(Profiles(), ", "))
	}
	cfg := mk()
	cfg.Profile = profile
	cfg.Feed.RequestTimeoutSec = 15
	if err := defaults.Set(&cfg); err != nil {
		return cfg, fmt.Errorf("apply defaults: %w", err)
	}
	return cfg, nil
}

// DefaultPath returns <home>/.marketbar.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultFileName)
}

// LoadEnvFile adds variables from a dotenv file to the process environment
// without overriding ones already set. A missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads YAML config from path on top of a built-in profile. If path is
// empty or the file does not exist, the profile is used as is. The profile is
// chosen by the profile argument, then MARKETBAR_PROFILE, then the file's
// "profile" key, then DefaultProfile. Environment variables override select
// fields afterwards.
func Load(path, profile string) (Config, error) {
	var b []byte
	if path != "" {
		var err error
		b, err = os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if profile == "" {
		profile = os.Getenv("MARKETBAR_PROFILE")
	}
	if profile == "" && len(b) > 0 {
		var peek struct {
			Profile string `yaml:"profile"`
		}
		if err := yaml.Unmarshal(b, &peek); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		profile = peek.Profile
	}
	if profile == "" {
		profile = DefaultProfile
	}

	cfg, err := Default(profile)
	if err != nil {
		return cfg, err
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.Profile = profile

	applyEnv(&cfg)
	if err := defaults.Set(&cfg); err != nil {
		return cfg, fmt.Errorf("apply defaults: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MARKETBAR_SYMBOLS"); v != "" {
		cfg.Symbols = splitCSV(v)
	}
	if v := os.Getenv("MARKETBAR_CACHE_FILE"); v != "" {
		cfg.CacheFile = v
	}
	if v := os.Getenv("MARKETBAR_FONT_SIZE"); v != "" {
		if x, err := strconv.Atoi(v); err == nil && x > 0 {
			cfg.Display.FontSize = x
		}
	}
	if v := os.Getenv("MARKETBAR_TIMEOUT_SEC"); v != "" {
		if x, err := strconv.Atoi(v); err == nil && x >= 0 {
			cfg.Feed.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("MARKETBAR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
