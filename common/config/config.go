package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides; SLACKIN_AUTH__SECRET sets auth.secret.
const EnvPrefix = "SLACKIN_"

type Config struct {
	Token                string        `koanf:"token"`
	Subdomain            string        `koanf:"subdomain"`
	FallbackName         string        `koanf:"fallback_name"`
	LoginRequired        bool          `koanf:"login_required"`
	LoginRedirect        string        `koanf:"login_redirect"`
	CachePeriod          time.Duration `koanf:"cache_period"`
	ThrottledCachePeriod time.Duration `koanf:"throttled_cache_period"`
	RequestTimeout       time.Duration `koanf:"request_timeout"`
	LiveInterval         time.Duration `koanf:"live_interval"`
	Port                 int           `koanf:"port"`
	Domain               string        `koanf:"domain"`
	TLS                  bool          `koanf:"tls"`
	CORSOrigins          []string      `koanf:"cors_origins"`
	LogLevel             string        `koanf:"log_level"`
	OtelEndpoint         string        `koanf:"otel_endpoint"`
	Auth                 AuthConfig    `koanf:"auth"`
}

// AuthConfig describes the session cookie set by the embedding site.
type AuthConfig struct {
	// Secret verifies HS256 session tokens; empty means nobody is ever logged in.
	Secret string `koanf:"secret"`
	Cookie string `koanf:"cookie"`
}

func Default() *Config {
	return &Config{
		LoginRedirect:        "/login/",
		CachePeriod:          300 * time.Second,
		ThrottledCachePeriod: 5 * time.Second,
		RequestTimeout:       10 * time.Second,
		LiveInterval:         10 * time.Second,
		Port:                 8080,
		CORSOrigins:          []string{"*"},
		LogLevel:             "INFO",
		Auth:                 AuthConfig{Cookie: "slackin_session"},
	}
}

type flagSpec struct {
	name, key, usage string
	boolean          bool
}

var flagSpecs = []flagSpec{
	{name: "token", key: "token", usage: "Slack API token with admin scope"},
	{name: "subdomain", key: "subdomain", usage: "team subdomain, as in https://<subdomain>.slack.com"},
	{name: "fallback-name", key: "fallback_name", usage: "team name shown while Slack is throttling; defaults to the subdomain"},
	{name: "login-required", key: "login_required", usage: "if set, visitors must be logged in to see the page", boolean: true},
	{name: "login-redirect", key: "login_redirect", usage: "where anonymous visitors are sent when login is required"},
	{name: "cache-period", key: "cache_period", usage: "how long Slack data is served from cache"},
	{name: "throttled-cache-period", key: "throttled_cache_period", usage: "how long data is cached after Slack throttled us"},
	{name: "request-timeout", key: "request_timeout", usage: "timeout for each Slack API request"},
	{name: "live-interval", key: "live_interval", usage: "how often the live feed pushes counts"},
	{name: "port", key: "port", usage: "port to listen on for web requests"},
	{name: "domain", key: "domain", usage: "domain name to request ACME certs for"},
	{name: "tls", key: "tls", usage: "if set, use ACME to obtain a cert from Let's Encrypt for -domain", boolean: true},
	{name: "log-level", key: "log_level", usage: "DEBUG, INFO, NOTICE, WARNING, ERROR or CRITICAL"},
	{name: "otel-endpoint", key: "otel_endpoint", usage: "OTLP/HTTP trace endpoint URL; tracing is off when empty"},
	{name: "auth-secret", key: "auth.secret", usage: "HS256 secret of the embedding site's session token"},
	{name: "auth-cookie", key: "auth.cookie", usage: "cookie carrying the session token"},
}

// RegisterFlags adds the command-line overrides to set. Only flags given on the command line override the
// file and environment.
func RegisterFlags(set *flag.FlagSet) {
	for _, f := range flagSpecs {
		if f.boolean {
			set.Bool(f.name, false, f.usage)
		} else {
			set.String(f.name, "", f.usage)
		}
	}
}

// Load layers defaults, the YAML file at path, the dotenv file at envFile, SLACKIN_* environment variables
// and finally any flags set on set. Missing files are skipped; set may be nil.
func Load(path, envFile string, set *flag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if set != nil {
		var err error
		byName := map[string]flagSpec{}
		for _, f := range flagSpecs {
			byName[f.name] = f
		}
		set.Visit(func(f *flag.Flag) {
			spec, ok := byName[f.Name]
			if !ok || err != nil {
				return
			}
			err = k.Set(spec.key, f.Value.String())
		})
		if err != nil {
			return nil, fmt.Errorf("applying flags: %w", err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if cfg.FallbackName == "" {
		cfg.FallbackName = cfg.Subdomain
	}
	return cfg, nil
}

// Validate checks that the configuration can run a server.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("token is required")
	}
	if c.Subdomain == "" {
		return fmt.Errorf("subdomain is required")
	}
	if c.CachePeriod <= 0 {
		return fmt.Errorf("cache_period must be positive")
	}
	if c.ThrottledCachePeriod <= 0 {
		return fmt.Errorf("throttled_cache_period must be positive")
	}
	if c.ThrottledCachePeriod >= c.CachePeriod {
		return fmt.Errorf("throttled_cache_period (%s) must be shorter than cache_period (%s)", c.ThrottledCachePeriod, c.CachePeriod)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.LiveInterval <= 0 {
		return fmt.Errorf("live_interval must be positive")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	if c.LoginRequired && c.Auth.Secret == "" {
		return fmt.Errorf("login_required needs auth.secret to recognize logged-in visitors")
	}
	if c.LoginRequired && c.LoginRedirect == "" {
		return fmt.Errorf("login_required needs login_redirect")
	}
	if c.TLS && c.Domain == "" {
		return fmt.Errorf("tls needs domain")
	}
	return nil
}

// RedirectURL is where anonymous visitors are sent. A value without a slash names a path under the site root.
func (c *Config) RedirectURL() string {
	if strings.Contains(c.LoginRedirect, "/") {
		return c.LoginRedirect
	}
	return "/" + c.LoginRedirect + "/"
}
