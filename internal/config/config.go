// Package config provides layered application configuration. Values are
// resolved from four sources merged in increasing precedence: built-in
// defaults, a YAML config file, command-line overrides, and environment
// variables carrying the AUTHGATE_ prefix.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix shared by all environment variable overrides,
// e.g. AUTHGATE_SERVER_PORT overrides the "server.port" field.
const EnvPrefix = "AUTHGATE_"

// ConfigFileEnv names the environment variable that may carry the config
// file path when the --config flag is not used.
const ConfigFileEnv = "AUTHGATE_CONFIG"

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	// Address is the host address the server will bind to.
	Address string
	// Port is the port number the server will listen on.
	Port int
}

// StoreConfig holds the token store (Redis) connection configuration.
type StoreConfig struct {
	// URI is the Redis connection URI, e.g. redis://127.0.0.1/.
	URI string
	// DialTimeout bounds connection establishment to the store.
	DialTimeout time.Duration
	// ReadTimeout bounds individual read round trips.
	ReadTimeout time.Duration
	// WriteTimeout bounds individual write round trips.
	WriteTimeout time.Duration
}

// DirectoryConfig holds the LDAP directory connection configuration.
type DirectoryConfig struct {
	// URI is the directory server URI, e.g. ldap://127.0.0.1:389.
	URI string
	// User and Pass are reserved for deployments whose directory requires a
	// service bind before user binds are accepted.
	User string
	Pass string
	// BaseDN is the base distinguished name of the directory tree.
	BaseDN string
	// UserPattern is the bind DN template. The %USER% placeholder is
	// replaced with the login username, e.g.
	// "CN=%USER%,OU=people,DC=example,DC=com".
	UserPattern string
	// BindTimeout bounds the dial plus bind round trip per login attempt.
	BindTimeout time.Duration
}

// TokenConfig holds opaque token lifecycle settings.
type TokenConfig struct {
	// TTL is the expiry applied to a token record at issue time. It is
	// never refreshed on validate.
	TTL time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the logging level (e.g., "debug", "info", "warn", "error").
	Level string
}

// RateLimitConfig holds per-IP rate limiting settings for the login endpoint.
type RateLimitConfig struct {
	Enabled        bool
	RequestsPerSec float64
	Burst          int
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	Enabled      bool
	AllowOrigins string
}

// MetricsConfig holds metrics server settings.
type MetricsConfig struct {
	Enabled   bool
	Namespace string
	Port      int
}

// Config holds all application configuration. It is constructed once at
// startup and treated as immutable afterwards; concurrent requests share a
// single read-only value.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Directory DirectoryConfig
	Token     TokenConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Metrics   MetricsConfig
}

// Default returns a fully populated configuration. Every field has a known
// default so partial files or override sets never leave a field undefined.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "localhost",
			Port:    8080,
		},
		Store: StoreConfig{
			URI:          "redis://127.0.0.1/",
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Directory: DirectoryConfig{
			URI:         "ldap://127.0.0.1:389",
			User:        "",
			Pass:        "",
			BaseDN:      "",
			UserPattern: "",
			BindTimeout: 5 * time.Second,
		},
		Token: TokenConfig{
			TTL: 7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			RequestsPerSec: 5.0,
			Burst:          10,
		},
		CORS: CORSConfig{
			Enabled:      false,
			AllowOrigins: "",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "authgate",
			Port:      8081,
		},
	}
}

// Options control how Resolve layers configuration sources.
type Options struct {
	// FilePath is an explicit config file path from the command line. When
	// empty, the AUTHGATE_CONFIG environment variable is consulted; when
	// that is also empty, the file layer is skipped.
	FilePath string
	// Overrides maps leaf field names (e.g. "server.port") to raw values
	// supplied as command-line flags.
	Overrides map[string]string
	// Environ is the process environment as KEY=VALUE pairs. Defaults to
	// os.Environ() when nil.
	Environ []string
}

// Resolve builds the effective configuration. Layers are applied in order of
// increasing precedence: defaults, config file, command-line overrides,
// environment variables. A field untouched by higher layers keeps the value
// from the layer below. An unreadable or unparsable explicitly supplied file
// and any malformed override value are fatal.
func Resolve(opts Options) (*Config, error) {
	loadDotEnv()

	cfg := Default()

	path := opts.FilePath
	if path == "" {
		path = env.GetString(ConfigFileEnv, "")
	}
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyOverrides(cfg, opts.Overrides); err != nil {
		return nil, err
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	if err := applyEnviron(cfg, environ); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load resolves configuration from the process environment only. It is a
// convenience for components that have no command-line surface (tests,
// auxiliary commands).
func Load() (*Config, error) {
	return Resolve(Options{})
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.Log.Level {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// Redacted returns a copy of the configuration safe for logging or display:
// the directory bind password and any password embedded in the store URI are
// masked.
func (c *Config) Redacted() Config {
	out := *c
	if out.Directory.Pass != "" {
		out.Directory.Pass = "********"
	}
	out.Store.URI = redactURI(out.Store.URI)
	return out
}

// redactURI masks the password portion of a URI's userinfo, leaving
// everything else intact. Unparsable input is returned as-is; it never
// carried separable credentials to begin with.
func redactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	if _, hasPass := u.User.Password(); hasPass {
		u.User = url.UserPassword(u.User.Username(), "********")
	}
	return u.String()
}

// fieldSetter parses a raw textual value and assigns it to its config field.
type fieldSetter func(*Config, string) error

func stringField(get func(*Config) *string) fieldSetter {
	return func(c *Config, raw string) error {
		*get(c) = raw
		return nil
	}
}

func intField(get func(*Config) *int) fieldSetter {
	return func(c *Config, raw string) error {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%q is not a valid integer", raw)
		}
		*get(c) = v
		return nil
	}
}

func boolField(get func(*Config) *bool) fieldSetter {
	return func(c *Config, raw string) error {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%q is not a valid boolean", raw)
		}
		*get(c) = v
		return nil
	}
}

func floatField(get func(*Config) *float64) fieldSetter {
	return func(c *Config, raw string) error {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%q is not a valid number", raw)
		}
		*get(c) = v
		return nil
	}
}

func secondsField(get func(*Config) *time.Duration) fieldSetter {
	return func(c *Config, raw string) error {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%q is not a valid number of seconds", raw)
		}
		*get(c) = time.Duration(v) * time.Second
		return nil
	}
}

// fields is the leaf-field namespace shared by command-line overrides and
// environment variables. AUTHGATE_DIRECTORY_BASE_DN and
// --directory-base-dn both address "directory.base_dn".
var fields = map[string]fieldSetter{
	"server.address":         stringField(func(c *Config) *string { return &c.Server.Address }),
	"server.port":            intField(func(c *Config) *int { return &c.Server.Port }),
	"store.uri":              stringField(func(c *Config) *string { return &c.Store.URI }),
	"directory.uri":          stringField(func(c *Config) *string { return &c.Directory.URI }),
	"directory.user":         stringField(func(c *Config) *string { return &c.Directory.User }),
	"directory.pass":         stringField(func(c *Config) *string { return &c.Directory.Pass }),
	"directory.base_dn":      stringField(func(c *Config) *string { return &c.Directory.BaseDN }),
	"directory.user_pattern": stringField(func(c *Config) *string { return &c.Directory.UserPattern }),
	"token.ttl":              secondsField(func(c *Config) *time.Duration { return &c.Token.TTL }),
	"log.level":              stringField(func(c *Config) *string { return &c.Log.Level }),
	"rate_limit.enabled":     boolField(func(c *Config) *bool { return &c.RateLimit.Enabled }),
	"rate_limit.requests_per_sec": floatField(
		func(c *Config) *float64 { return &c.RateLimit.RequestsPerSec },
	),
	"rate_limit.burst":   intField(func(c *Config) *int { return &c.RateLimit.Burst }),
	"cors.enabled":       boolField(func(c *Config) *bool { return &c.CORS.Enabled }),
	"cors.allow_origins": stringField(func(c *Config) *string { return &c.CORS.AllowOrigins }),
	"metrics.enabled":    boolField(func(c *Config) *bool { return &c.Metrics.Enabled }),
	"metrics.namespace":  stringField(func(c *Config) *string { return &c.Metrics.Namespace }),
	"metrics.port":       intField(func(c *Config) *int { return &c.Metrics.Port }),
}

// EnvName returns the environment variable that overrides the given leaf
// field, e.g. "server.port" -> "AUTHGATE_SERVER_PORT".
func EnvName(field string) string {
	name := strings.NewReplacer(".", "_").Replace(field)
	return EnvPrefix + strings.ToUpper(name)
}

// sortedFieldNames returns the leaf-field names in a stable order so layer
// application and error reporting are deterministic.
func sortedFieldNames() []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// applyOverrides applies command-line overrides. A malformed value or an
// unknown field name is fatal.
func applyOverrides(cfg *Config, overrides map[string]string) error {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		setter, ok := fields[name]
		if !ok {
			return fmt.Errorf("unknown config field %q", name)
		}
		if err := setter(cfg, overrides[name]); err != nil {
			return fmt.Errorf("invalid value for %s: %w", name, err)
		}
	}
	return nil
}

// applyEnviron applies environment variable overrides. Variable names are
// matched case-insensitively against the leaf-field namespace; a malformed
// value is fatal.
func applyEnviron(cfg *Config, environ []string) error {
	vars := make(map[string]string)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		key = strings.ToUpper(key)
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		vars[key] = value
	}

	for _, name := range sortedFieldNames() {
		raw, ok := vars[EnvName(name)]
		if !ok {
			continue
		}
		if err := fields[name](cfg, raw); err != nil {
			return fmt.Errorf("invalid value for %s: %w", EnvName(name), err)
		}
	}
	return nil
}

// fileDocument mirrors the config file schema with pointer leaves so only
// keys the file explicitly sets override lower layers.
type fileDocument struct {
	Server struct {
		Address *string `yaml:"address"`
		Port    *int    `yaml:"port"`
	} `yaml:"server"`
	Store struct {
		URI *string `yaml:"uri"`
	} `yaml:"store"`
	Directory struct {
		URI         *string `yaml:"uri"`
		User        *string `yaml:"user"`
		Pass        *string `yaml:"pass"`
		BaseDN      *string `yaml:"base_dn"`
		UserPattern *string `yaml:"user_pattern"`
	} `yaml:"directory"`
	Token struct {
		TTL *int `yaml:"ttl"`
	} `yaml:"token"`
	Log struct {
		Level *string `yaml:"level"`
	} `yaml:"log"`
	RateLimit struct {
		Enabled        *bool    `yaml:"enabled"`
		RequestsPerSec *float64 `yaml:"requests_per_sec"`
		Burst          *int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	CORS struct {
		Enabled      *bool   `yaml:"enabled"`
		AllowOrigins *string `yaml:"allow_origins"`
	} `yaml:"cors"`
	Metrics struct {
		Enabled   *bool   `yaml:"enabled"`
		Namespace *string `yaml:"namespace"`
		Port      *int    `yaml:"port"`
	} `yaml:"metrics"`
}

// applyFile loads the YAML document at path on top of cfg. Any read or parse
// failure is fatal because the file was explicitly supplied.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&cfg.Server.Address, doc.Server.Address)
	setInt(&cfg.Server.Port, doc.Server.Port)
	setString(&cfg.Store.URI, doc.Store.URI)
	setString(&cfg.Directory.URI, doc.Directory.URI)
	setString(&cfg.Directory.User, doc.Directory.User)
	setString(&cfg.Directory.Pass, doc.Directory.Pass)
	setString(&cfg.Directory.BaseDN, doc.Directory.BaseDN)
	setString(&cfg.Directory.UserPattern, doc.Directory.UserPattern)
	if doc.Token.TTL != nil {
		cfg.Token.TTL = time.Duration(*doc.Token.TTL) * time.Second
	}
	setString(&cfg.Log.Level, doc.Log.Level)
	setBool(&cfg.RateLimit.Enabled, doc.RateLimit.Enabled)
	setFloat(&cfg.RateLimit.RequestsPerSec, doc.RateLimit.RequestsPerSec)
	setInt(&cfg.RateLimit.Burst, doc.RateLimit.Burst)
	setBool(&cfg.CORS.Enabled, doc.CORS.Enabled)
	setString(&cfg.CORS.AllowOrigins, doc.CORS.AllowOrigins)
	setBool(&cfg.Metrics.Enabled, doc.Metrics.Enabled)
	setString(&cfg.Metrics.Namespace, doc.Metrics.Namespace)
	setInt(&cfg.Metrics.Port, doc.Metrics.Port)

	return nil
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
