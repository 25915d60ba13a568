package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/vestibule/session"
	"go.hackfix.me/vestibule/store"
	stypes "go.hackfix.me/vestibule/web/server/types"
	"go.hackfix.me/vestibule/xtime"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Server  Server
	Session Session
	Store   Store

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}

	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o644); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// Server defines configuration options specific to the HTTP server.
type Server struct {
	// Address is the network address in [host]:port format the server will listen on.
	Address sql.Null[string] `json:"address"`
	// LookupTimeout bounds the time spent loading the session user of a request.
	// It serializes from/to xtime.Duration string values.
	LookupTimeout sql.Null[time.Duration] `json:"lookup_timeout"`
	// ErrorLevel is the detail level of error messages returned to clients.
	ErrorLevel sql.Null[stypes.ErrorLevel] `json:"error_level"`
}

// Session defines the session cookie options.
type Session struct {
	// CookieName is the name of the signed session cookie.
	CookieName sql.Null[string] `json:"cookie_name"`
	// MaxAge is the lifetime of cookies issued with `session sign`. Zero means
	// cookies don't expire.
	MaxAge sql.Null[time.Duration] `json:"max_age"`
}

// Store defines where users are looked up.
type Store struct {
	Type        sql.Null[store.Type] `json:"type"`
	PostgresDSN sql.Null[string]     `json:"postgres_dsn"`
	// RedisURL enables caching of looked up users in Redis.
	RedisURL sql.Null[string]        `json:"redis_url"`
	CacheTTL sql.Null[time.Duration] `json:"cache_ttl"`
}

type cfgWrapper struct {
	Server  srvCfgWrapper     `json:"server"`
	Session sessionCfgWrapper `json:"session"`
	Store   storeCfgWrapper   `json:"store"`
}
type srvCfgWrapper struct {
	Address       string `json:"address,omitempty"`
	LookupTimeout string `json:"lookup_timeout,omitempty"`
	ErrorLevel    string `json:"error_level,omitempty"`
}
type sessionCfgWrapper struct {
	CookieName string `json:"cookie_name,omitempty"`
	MaxAge     string `json:"max_age,omitempty"`
}
type storeCfgWrapper struct {
	Type        string `json:"type,omitempty"`
	PostgresDSN string `json:"postgres_dsn,omitempty"`
	RedisURL    string `json:"redis_url,omitempty"`
	CacheTTL    string `json:"cache_ttl,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Server.Address.Valid {
		w.Server.Address = c.Server.Address.V
	}
	if c.Server.LookupTimeout.Valid {
		w.Server.LookupTimeout = xtime.FormatDuration(c.Server.LookupTimeout.V, time.Millisecond)
	}
	if c.Server.ErrorLevel.Valid {
		w.Server.ErrorLevel = string(c.Server.ErrorLevel.V)
	}

	if c.Session.CookieName.Valid {
		w.Session.CookieName = c.Session.CookieName.V
	}
	if c.Session.MaxAge.Valid {
		w.Session.MaxAge = xtime.FormatDuration(c.Session.MaxAge.V, time.Second)
	}

	if c.Store.Type.Valid {
		w.Store.Type = string(c.Store.Type.V)
	}
	if c.Store.PostgresDSN.Valid {
		w.Store.PostgresDSN = c.Store.PostgresDSN.V
	}
	if c.Store.RedisURL.Valid {
		w.Store.RedisURL = c.Store.RedisURL.V
	}
	if c.Store.CacheTTL.Valid {
		w.Store.CacheTTL = xtime.FormatDuration(c.Store.CacheTTL.V, time.Second)
	}

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types and parse duration strings into time.Duration values.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Server.Address != "" {
		c.Server.Address = sql.Null[string]{V: w.Server.Address, Valid: true}
	}
	if w.Server.LookupTimeout != "" {
		dur, err := xtime.ParseDuration(w.Server.LookupTimeout)
		if err != nil {
			return fmt.Errorf("failed parsing server lookup timeout: %w", err)
		}
		c.Server.LookupTimeout = sql.Null[time.Duration]{V: dur, Valid: true}
	}
	if w.Server.ErrorLevel != "" {
		lvl, err := stypes.ErrorLevelFromString(w.Server.ErrorLevel)
		if err != nil {
			return err
		}
		c.Server.ErrorLevel = sql.Null[stypes.ErrorLevel]{V: lvl, Valid: true}
	}

	if w.Session.CookieName != "" {
		c.Session.CookieName = sql.Null[string]{V: w.Session.CookieName, Valid: true}
	}
	if w.Session.MaxAge != "" {
		dur, err := xtime.ParseDuration(w.Session.MaxAge)
		if err != nil {
			return fmt.Errorf("failed parsing session max age: %w", err)
		}
		c.Session.MaxAge = sql.Null[time.Duration]{V: dur, Valid: true}
	}

	if w.Store.Type != "" {
		st, err := store.TypeFromString(w.Store.Type)
		if err != nil {
			return err
		}
		c.Store.Type = sql.Null[store.Type]{V: st, Valid: true}
	}
	if w.Store.PostgresDSN != "" {
		c.Store.PostgresDSN = sql.Null[string]{V: w.Store.PostgresDSN, Valid: true}
	}
	if w.Store.RedisURL != "" {
		c.Store.RedisURL = sql.Null[string]{V: w.Store.RedisURL, Valid: true}
	}
	if w.Store.CacheTTL != "" {
		dur, err := xtime.ParseDuration(w.Store.CacheTTL)
		if err != nil {
			return fmt.Errorf("failed parsing store cache TTL: %w", err)
		}
		if dur <= 0 {
			return fmt.Errorf("invalid store cache TTL '%s'; it must be positive", w.Store.CacheTTL)
		}
		c.Store.CacheTTL = sql.Null[time.Duration]{V: dur, Valid: true}
	}

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
func (c *Config) SetDefaults() {
	if !c.Server.Address.Valid {
		c.Server.Address = sql.Null[string]{V: "127.0.0.1:8080", Valid: true}
	}
	if !c.Server.LookupTimeout.Valid {
		c.Server.LookupTimeout = sql.Null[time.Duration]{V: 2 * time.Second, Valid: true}
	}
	if !c.Server.ErrorLevel.Valid {
		c.Server.ErrorLevel = sql.Null[stypes.ErrorLevel]{V: stypes.ErrorLevelMinimal, Valid: true}
	}
	if !c.Session.CookieName.Valid {
		c.Session.CookieName = sql.Null[string]{V: session.DefaultCookieName, Valid: true}
	}
	if !c.Session.MaxAge.Valid {
		// ~1 month
		c.Session.MaxAge = sql.Null[time.Duration]{V: 24 * time.Hour * 30, Valid: true}
	}
	if !c.Store.Type.Valid {
		c.Store.Type = sql.Null[store.Type]{V: store.TypeSQLite, Valid: true}
	}
	if !c.Store.CacheTTL.Valid {
		c.Store.CacheTTL = sql.Null[time.Duration]{V: 5 * time.Minute, Valid: true}
	}
}

// StoreConfig returns the user store configuration.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Type:          c.Store.Type.V,
		PostgresDSN:   c.Store.PostgresDSN.V,
		RedisURL:      c.Store.RedisURL.V,
		CacheTTL:      c.Store.CacheTTL.V,
		LookupTimeout: c.Server.LookupTimeout.V,
	}
}
