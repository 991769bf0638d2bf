// Package config loads settings from, in increasing precedence: built-in
// defaults, the INI file, a .env file in the working directory, and TADA_*
// environment variables. Command line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

const (
	AppName        = "tada"
	configFileName = "config.ini"
	envPrefix      = "TADA_"
)

type Backend struct {
	Endpoint string `ini:"endpoint"`
	APIKey   string `ini:"api_key"`
}

type Auth struct {
	AuthURL      string   `ini:"auth_url"`
	TokenURL     string   `ini:"token_url"`
	ClientID     string   `ini:"client_id"`
	ClientSecret string   `ini:"client_secret"`
	Scopes       []string `ini:"scopes" delim:","`
}

type UI struct {
	Theme string `ini:"theme"`
}

type Log struct {
	Level  string `ini:"level"`
	Format string `ini:"format"`
	File   string `ini:"file"`
}

// Config holds the application configuration.
type Config struct {
	Backend Backend `ini:"backend"`
	Auth    Auth    `ini:"auth"`
	UI      UI      `ini:"ui"`
	Log     Log     `ini:"log"`

	// DataDir holds the session database and the TUI log file.
	DataDir string `ini:"-"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Auth: Auth{Scopes: []string{"openid", "profile"}},
		UI:   UI{Theme: "classic"},
		Log:  Log{Level: "warn", Format: "text"},

		DataDir: defaultDataDir(),
	}
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "." + AppName
		}
		return filepath.Join(home, "."+AppName)
	}
	return filepath.Join(dir, AppName)
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), configFileName)
}

// Load layers the INI file at path (DefaultPath when empty), .env and the
// environment on top of the defaults. A missing INI or .env file is fine.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if err := loadINI(path, &cfg); err != nil {
		return cfg, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func loadINI(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config: %w", err)
	}

	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := f.MapTo(cfg); err != nil {
		return fmt.Errorf("map %s: %w", path, err)
	}

	if dir := f.Section("").Key("data_dir").String(); dir != "" {
		cfg.DataDir = dir
	}
	return nil
}

func applyEnv(cfg *Config) {
	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set("ENDPOINT", &cfg.Backend.Endpoint)
	set("API_KEY", &cfg.Backend.APIKey)
	set("AUTH_URL", &cfg.Auth.AuthURL)
	set("TOKEN_URL", &cfg.Auth.TokenURL)
	set("CLIENT_ID", &cfg.Auth.ClientID)
	set("CLIENT_SECRET", &cfg.Auth.ClientSecret)
	set("THEME", &cfg.UI.Theme)
	set("LOG_LEVEL", &cfg.Log.Level)
	set("LOG_FORMAT", &cfg.Log.Format)
	set("LOG_FILE", &cfg.Log.File)
	set("DATA_DIR", &cfg.DataDir)

	if v := strings.TrimSpace(os.Getenv(envPrefix + "SCOPES")); v != "" {
		cfg.Auth.Scopes = splitList(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that the backend can be reached with what was loaded.
func (c Config) Validate() error {
	ep := strings.TrimSpace(c.Backend.Endpoint)
	if ep == "" {
		return errors.New("backend endpoint is not set (TADA_ENDPOINT or [backend] endpoint)")
	}
	if ep == MemoryEndpoint {
		return nil
	}

	u, err := url.Parse(ep)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", ep, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: must be an absolute URL", ep)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("invalid endpoint %q: unsupported scheme %s", ep, u.Scheme)
	}
	return nil
}

// MemoryEndpoint selects the in-process development backend.
const MemoryEndpoint = "memory://"
