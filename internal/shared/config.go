package shared

import (
	_ "embed"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Spotify  SpotifyConfig  `toml:"spotify"`
	Session  SessionConfig  `toml:"session"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	RateLimit       float64  `toml:"rate_limit"`
	RateBurst       int      `toml:"rate_burst"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// SpotifyConfig contains Spotify API credentials and the top-items query policy.
type SpotifyConfig struct {
	ClientID         string   `toml:"client_id"`
	ClientSecret     string   `toml:"client_secret"`
	RedirectURI      string   `toml:"redirect_uri"`
	Scope            string   `toml:"scope"`
	TopLimit         int      `toml:"top_limit"`
	TimeRange        string   `toml:"time_range"`
	PlaceholderImage string   `toml:"placeholder_image"`
	RefreshLeeway    Duration `toml:"refresh_leeway"`
	AuthURL          string   `toml:"auth_url"`
	TokenURL         string   `toml:"token_url"`
	APIURL           string   `toml:"api_url"`
}

// SessionConfig contains cookie and backing store settings for user sessions.
type SessionConfig struct {
	Store      string   `toml:"store"`
	Path       string   `toml:"path"`
	CookieName string   `toml:"cookie_name"`
	MaxAge     Duration `toml:"max_age"`
	Secure     bool     `toml:"secure"`
	HashKey    string   `toml:"hash_key"`
	BlockKey   string   `toml:"block_key"`
}

// DatabaseConfig contains connection pool settings for the sqlite session store.
type DatabaseConfig struct {
	MaxOpenConns int `toml:"max_open_conns"`
	MaxIdleConns int `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a [time.Duration] read from TOML strings such as "60s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

var validTimeRanges = map[string]bool{"short_term": true, "medium_term": true, "long_term": true}

var validStores = map[string]bool{"memory": true, "sqlite": true, "bolt": true}

// LoadConfig reads a TOML file on top of the embedded defaults, so keys missing from
// the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides credentials and the listen address from the environment.
//
// lookup is usually [os.LookupEnv]. The unprefixed CLIENT_ID and CLIENT_SECRET
// variables are accepted when the SPOTIFY_ ones are unset.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	first := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}

	if v, ok := first("SPOTIFY_CLIENT_ID", "CLIENT_ID"); ok {
		c.Spotify.ClientID = v
	}
	if v, ok := first("SPOTIFY_CLIENT_SECRET", "CLIENT_SECRET"); ok {
		c.Spotify.ClientSecret = v
	}
	if v, ok := first("SPOTIFY_REDIRECT_URI", "REDIRECT_URI"); ok {
		c.Spotify.RedirectURI = v
	}
	if v, ok := first("TOPLIST_SESSION_KEY"); ok {
		c.Session.HashKey = v
	}
	if v, ok := first("TOPLIST_ADDR"); ok {
		if err := c.SetAddr(v); err != nil {
			return err
		}
	}

	return nil
}

// SetAddr sets the listen host and port from a "host:port" string.
func (c *Config) SetAddr(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%w: address %q: %w", ErrInvalidConfig, addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("%w: port %q: %w", ErrInvalidConfig, portStr, err)
	}
	c.Server.Host = host
	c.Server.Port = port
	return nil
}

// Addr returns the "host:port" listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Validate reports the first configuration problem that would prevent the server from working.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set", ErrMissingCredentials)
	}

	u, err := url.Parse(c.Spotify.RedirectURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: redirect_uri %q must be an absolute URL", ErrInvalidConfig, c.Spotify.RedirectURI)
	}

	if c.Spotify.TopLimit < 1 || c.Spotify.TopLimit > 50 {
		return fmt.Errorf("%w: top_limit must be between 1 and 50, got %d", ErrInvalidConfig, c.Spotify.TopLimit)
	}
	if !validTimeRanges[c.Spotify.TimeRange] {
		return fmt.Errorf("%w: unknown time_range %q", ErrInvalidConfig, c.Spotify.TimeRange)
	}
	if c.Spotify.Scope == "" {
		return fmt.Errorf("%w: scope must not be empty", ErrInvalidConfig)
	}

	if !validStores[c.Session.Store] {
		return fmt.Errorf("%w: unknown session store %q", ErrInvalidConfig, c.Session.Store)
	}
	if c.Session.Store != "memory" && c.Session.Path == "" {
		return fmt.Errorf("%w: session path required for %s store", ErrInvalidConfig, c.Session.Store)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("%w: session cookie_name must not be empty", ErrInvalidConfig)
	}
	if c.Session.MaxAge.Duration <= 0 {
		return fmt.Errorf("%w: session max_age must be positive", ErrInvalidConfig)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, c.Server.Port)
	}

	return nil
}
