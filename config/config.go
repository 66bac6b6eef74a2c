// Package config loads application settings from the environment, with
// optional .env / config.env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config groups every setting of the server.
type Config struct {
	App    AppConfig
	HTTP   HTTPConfig
	Store  StoreConfig
	Auth   AuthConfig
	Sales  SalesConfig
	Expiry ExpiryConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env      string // development, production
	Name     string
	LogLevel string // trace, debug, info, warn, error
}

// HTTPConfig configures the HTTP listener.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig locates the database file.
type StoreConfig struct {
	DataDir string
	DBFile  string
}

// Path returns DataDir/DBFile.
func (c StoreConfig) Path() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// AuthConfig configures the password gate.
type AuthConfig struct {
	Username     string
	Password     string // plaintext; hashed at startup when PasswordHash is empty
	PasswordHash string // bcrypt
	IdleTimeout  time.Duration
	TokenSecret  string // random per process when empty
}

// SalesConfig configures the sale recorder.
type SalesConfig struct {
	RejectOversell bool
}

// ExpiryConfig configures the background expiry monitor.
type ExpiryConfig struct {
	CheckInterval time.Duration // 0 disables the monitor
}

// Load reads configuration from environment variables. Files named .env or
// config.env in the working directory (or ./config) are loaded first;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore a missing .env

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignore a missing config.env

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	dataDir := getString(v, "DATA_DIR", "")
	if dataDir == "" {
		dir, err := defaultDataDir(getString(v, "APP_NAME", "medstock"))
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "medstock"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "127.0.0.1"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			CORSOrigins: getList(v, "CORS_ORIGINS", []string{"http://localhost:*", "http://127.0.0.1:*"}),
		},
		Store: StoreConfig{
			DataDir: dataDir,
			DBFile:  getString(v, "DB_FILE", "inventory.db"),
		},
		Auth: AuthConfig{
			Username:     getString(v, "AUTH_USERNAME", "admin"),
			Password:     getString(v, "AUTH_PASSWORD", ""),
			PasswordHash: getString(v, "AUTH_PASSWORD_HASH", ""),
			IdleTimeout:  time.Duration(getInt(v, "AUTH_IDLE_TIMEOUT_MINUTES", 60)) * time.Minute,
			TokenSecret:  getString(v, "AUTH_TOKEN_SECRET", ""),
		},
		Sales: SalesConfig{
			RejectOversell: getBool(v, "SALES_REJECT_OVERSELL", true),
		},
		Expiry: ExpiryConfig{
			CheckInterval: time.Duration(getInt(v, "EXPIRY_CHECK_INTERVAL_MINUTES", 60)) * time.Minute,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return fmt.Errorf("config: AUTH_PASSWORD or AUTH_PASSWORD_HASH is required")
	}
	if c.Auth.IdleTimeout <= 0 {
		return fmt.Errorf("config: AUTH_IDLE_TIMEOUT_MINUTES must be positive")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: HTTP_PORT %d out of range", c.HTTP.Port)
	}
	if c.Store.DBFile == "" {
		return fmt.Errorf("config: DB_FILE is required")
	}
	return nil
}

func defaultDataDir(app string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve data dir: %w", err)
	}
	return filepath.Join(base, app), nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func getList(v *viper.Viper, key string, def []string) []string {
	if !v.IsSet(key) {
		return def
	}
	var out []string
	for _, s := range strings.Split(v.GetString(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
