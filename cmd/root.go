package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultBaseURL is the service address used when nothing else is configured.
const DefaultBaseURL = "http://localhost:8080"

// Config holds CLI configuration.
type Config struct {
	BaseURL string        `env:"DINERIGHT_BASE_URL"`
	Timeout time.Duration `env:"DINERIGHT_TIMEOUT" envDefault:"10s"`

	ConfigDir string `env:"DINERIGHT_CONFIG_DIR"`
	LogPath   string `env:"DINERIGHT_LOG_FILE"`
	LogLevel  string `env:"DINERIGHT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"DINERIGHT_LOG_FORMAT" envDefault:"json"`

	// StubAddr, when set, runs the local stub service instead of the TUI.
	StubAddr       string `env:"DINERIGHT_STUB_ADDR"`
	StubDB         string `env:"DINERIGHT_STUB_DB"`
	StubLoginLimit int    `env:"DINERIGHT_STUB_LOGIN_LIMIT" envDefault:"20"`

	ShowVersion bool
}

// ParseFlags loads .env files, the environment and command-line flags, then
// runs first-time onboarding when no service URL is known.
func ParseFlags(version string) (*Config, error) {
	config, err := Load(os.Args[1:])
	if err != nil {
		return nil, err
	}
	if config.ShowVersion {
		fmt.Println("dineright", version)
		os.Exit(0)
	}

	if err := os.MkdirAll(config.ConfigDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// The stub serves; it never talks to a service.
	if config.StubAddr != "" {
		return config, nil
	}

	settings, err := loadOnboardingSettings(config.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding settings: %w", err)
	}

	if config.BaseURL == "" && shouldRunOnboarding(settings) {
		settings, err = runOnboarding(config.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("failed to run onboarding: %w", err)
		}
	}

	if config.BaseURL == "" {
		config.BaseURL = settings.BaseURL
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	return config, nil
}

// Load builds the configuration without side effects beyond reading .env
// files. Flags override the environment, which overrides the defaults.
func Load(args []string) (*Config, error) {
	for _, path := range []string{".env", ".env.local"} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	flags := flag.NewFlagSet("dineright", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&config.BaseURL, "url", config.BaseURL, "DineRight service base URL (or DINERIGHT_BASE_URL)")
	flags.DurationVar(&config.Timeout, "timeout", config.Timeout, "Per-request timeout")
	flags.StringVar(&config.ConfigDir, "config-dir", config.ConfigDir, "Settings directory (default: ~/.dineright)")
	flags.StringVar(&config.LogPath, "log", config.LogPath, "Log file (default: <config-dir>/dineright.log)")
	flags.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level: debug, info, warn, error")
	flags.StringVar(&config.LogFormat, "log-format", config.LogFormat, "Log format: json or console")
	flags.StringVar(&config.StubAddr, "stub", config.StubAddr, "Run the local stub service on this address, e.g. :8080")
	flags.StringVar(&config.StubDB, "stub-db", config.StubDB, "SQLite file for the stub (default: <config-dir>/stub.db)")
	flags.IntVar(&config.StubLoginLimit, "stub-login-limit", config.StubLoginLimit, "Stub login/signup requests per IP per minute, 0 for no limit")
	flags.BoolVar(&config.ShowVersion, "version", false, "Print version and exit")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	config.BaseURL = strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if config.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", config.Timeout)
	}

	if config.ConfigDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		config.ConfigDir = filepath.Join(home, ".dineright")
	}
	if config.LogPath == "" {
		config.LogPath = filepath.Join(config.ConfigDir, "dineright.log")
	}
	if config.StubDB == "" {
		config.StubDB = filepath.Join(config.ConfigDir, "stub.db")
	}
	return config, nil
}
