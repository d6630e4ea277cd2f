package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/csheth/tripnotes/internal/api"
	"github.com/csheth/tripnotes/internal/notes"
	"github.com/csheth/tripnotes/internal/store"
)

const (
	appName             = "tripnotes"
	defaultAPIBaseURL   = "http://localhost:8000"
	defaultLogRetention = 10
)

// Config holds every runtime setting.
type Config struct {
	DataDir       string        `yaml:"data_dir"`
	StoreDriver   string        `yaml:"store"`
	APIBaseURL    string        `yaml:"api_url"`
	APIToken      string        `yaml:"api_token"`
	AutosaveDelay time.Duration `yaml:"autosave_delay"`
	PlanCacheTTL  time.Duration `yaml:"plan_cache_ttl"`
	Environment   string        `yaml:"environment"`
	NoAltScreen   bool          `yaml:"no_alt_screen"`
	LogRetention  int           `yaml:"log_retention"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		DataDir:       defaultDataDir(),
		StoreDriver:   store.DriverFile,
		APIBaseURL:    defaultAPIBaseURL,
		AutosaveDelay: notes.DefaultAutosaveDelay,
		PlanCacheTTL:  api.DefaultPlanCacheTTL,
		Environment:   "prod",
		LogRetention:  defaultLogRetention,
	}
}

// Load resolves settings from, lowest precedence first: defaults, a YAML
// file, a .env file, the process environment and command-line flags.
func Load(args []string) (Config, error) {
	return load(args, os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (Config, error) {
	flags := flag.NewFlagSet(appName, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	configPath := flags.String("config", "", "path to a YAML config file")
	envFile := flags.String("env-file", ".env", "path to a dotenv file")
	dataDir := flags.String("data-dir", "", "directory for notes, chats and logs")
	driver := flags.String("store", "", "storage driver: file, sqlite or memory")
	apiURL := flags.String("api-url", "", "travel backend base URL (eg. http://localhost:8000)")
	apiToken := flags.String("api-token", "", "bearer token for the travel backend")
	autosave := flags.Duration("autosave", 0, "quiet period before note edits are saved")
	noAltScreen := flags.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	dotenv, err := godotenv.Read(*envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", *envFile, err)
	}
	getEnv := func(key string) string {
		if value, ok := lookup(key); ok {
			return strings.TrimSpace(value)
		}
		return strings.TrimSpace(dotenv[key])
	}

	cfg := Default()
	path := *configPath
	if path == "" {
		path = getEnv("TRIPNOTES_CONFIG")
	}
	if path != "" {
		if err := mergeYAML(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := mergeEnv(&cfg, getEnv); err != nil {
		return Config{}, err
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-dir":
			cfg.DataDir = *dataDir
		case "store":
			cfg.StoreDriver = *driver
		case "api-url":
			cfg.APIBaseURL = *apiURL
		case "api-token":
			cfg.APIToken = *apiToken
		case "autosave":
			cfg.AutosaveDelay = *autosave
		case "no-alt-screen":
			cfg.NoAltScreen = *noAltScreen
		}
	})

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the merged settings.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.StoreDriver,
			validation.Required,
			validation.In(store.DriverFile, store.DriverSQLite, store.DriverMemory),
		),
		validation.Field(&c.APIBaseURL, validation.Required),
		validation.Field(&c.AutosaveDelay, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.PlanCacheTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.LogRetention, validation.Min(1)),
	)
}

// Dev reports whether verbose diagnostics are wanted.
func (c Config) Dev() bool {
	return c.Environment == "dev"
}

// LogDir is where log files are written.
func (c Config) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// CacheDir is where planner responses are cached.
func (c Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache", "plans")
}

func mergeYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func mergeEnv(cfg *Config, getEnv func(string) string) error {
	if v := getEnv("TRIPNOTES_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := getEnv("TRIPNOTES_STORE"); v != "" {
		cfg.StoreDriver = v
	}
	if v := getEnv("TRAVEL_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := getEnv("TRAVEL_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := getEnv("TRIPNOTES_ENV"); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("TRIPNOTES_AUTOSAVE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TRIPNOTES_AUTOSAVE_DELAY: %w", err)
		}
		cfg.AutosaveDelay = d
	}
	if v := getEnv("TRIPNOTES_PLAN_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TRIPNOTES_PLAN_CACHE_TTL: %w", err)
		}
		cfg.PlanCacheTTL = d
	}
	if v := getEnv("TRIPNOTES_LOG_RETENTION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRIPNOTES_LOG_RETENTION: %w", err)
		}
		cfg.LogRetention = n
	}
	return nil
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+appName)
	}
	return filepath.Join(base, appName)
}
