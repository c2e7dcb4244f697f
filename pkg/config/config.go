package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rbmarquez/doctorq/pkg/redis"
)

// Config is the full configuration of services built on the access engine.
type Config struct {
	Authority Authority    `envPrefix:"AUTHORITY_"`
	Cache     Cache        `envPrefix:"PERMISSION_CACHE_"`
	Redis     redis.Config // REDIS_* variables
	Session   Session      `envPrefix:"SESSION_"`
	Log       Log          `envPrefix:"LOG_"`
	Server    Server       `envPrefix:"SERVER_"`
}

// Authority describes the remote permission endpoint.
type Authority struct {
	URL     string        `env:"URL" envDefault:"http://localhost:8081"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// Static bearer token. Ignored when client credentials are configured.
	Token string `env:"TOKEN"`

	// OAuth2 client credentials grant.
	TokenURL     string   `env:"TOKEN_URL"`
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	Scopes       []string `env:"SCOPES" envSeparator:","`
}

// UsesClientCredentials reports whether an OAuth2 client credentials grant is configured.
func (a Authority) UsesClientCredentials() bool {
	return a.TokenURL != "" && a.ClientID != ""
}

// Cache tunes the per-user permission cache.
type Cache struct {
	TTL          time.Duration `env:"TTL" envDefault:"1m"`
	Capacity     int           `env:"CAPACITY" envDefault:"10000"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	// Shared snapshots in Redis are used only when enabled.
	Shared     bool          `env:"SHARED" envDefault:"false"`
	SharedTTL  time.Duration `env:"SHARED_TTL" envDefault:"5m"`
	SharedKeys string        `env:"SHARED_PREFIX" envDefault:"doctorq:permissions:"`
}

// Session configures principal tokens.
type Session struct {
	SigningKey string        `env:"SIGNING_KEY"`
	TTL        time.Duration `env:"TTL" envDefault:"12h"`
	CookieName string        `env:"COOKIE_NAME" envDefault:"doctorq_session"`
}

// Log configures the slog factory.
type Log struct {
	Env     string `env:"ENV" envDefault:"development"`
	Level   string `env:"LEVEL" envDefault:"info"`
	Service string `env:"SERVICE" envDefault:"doctorq"`
}

// Server configures the development permission authority.
type Server struct {
	Addr            string        `env:"ADDR" envDefault:":8081"`
	Fixtures        string        `env:"FIXTURES" envDefault:"fixtures.yaml"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Validate checks constraints the struct tags cannot express.
func (c Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.Authority.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("authority url %q is not absolute", c.Authority.URL))
	}
	if c.Authority.Timeout <= 0 {
		errs = append(errs, errors.New("authority timeout must be positive"))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache ttl must be positive"))
	}
	if c.Cache.Capacity <= 0 {
		errs = append(errs, errors.New("cache capacity must be positive"))
	}
	if c.Cache.FetchTimeout <= 0 {
		errs = append(errs, errors.New("cache fetch timeout must be positive"))
	}
	if c.Cache.Shared && c.Redis.ConnectionURL == "" {
		errs = append(errs, errors.New("shared cache requires REDIS_URL"))
	}
	if c.Session.SigningKey != "" && len(c.Session.SigningKey) < 32 {
		errs = append(errs, errors.New("session signing key must be at least 32 bytes"))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}
