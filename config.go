package gatehouse

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines the tunable surface of a [Service] and of the session
// strategies constructed around it.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	Session  SessionConfig  `yaml:"session"`
	Password PasswordConfig `yaml:"password"`
	Reset    ResetConfig    `yaml:"reset"`
	Audit    AuditConfig    `yaml:"audit"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session cookie naming and lifetime.
//
// Duration <= 0 means sessions never expire. Expired sessions are rejected
// lazily on lookup; they are not purged in the background.
type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	Duration   time.Duration `yaml:"duration"`
}

// UnmarshalYAML accepts durations in time.ParseDuration form ("30m", "24h").
// Omitted fields keep their prior values, so YAML layers over defaults.
func (s *SessionConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		CookieName string `yaml:"cookie_name"`
		Duration   string `yaml:"duration"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.CookieName != "" {
		s.CookieName = raw.CookieName
	}
	if raw.Duration != "" {
		d, err := time.ParseDuration(raw.Duration)
		if err != nil {
			return fmt.Errorf("parsing session duration: %w", err)
		}
		s.Duration = d
	}
	return nil
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig carries argon2id parameters for the built-in hasher.
type PasswordConfig struct {
	Memory      uint32 `yaml:"memory"` // in KB
	Time        uint32 `yaml:"time"`
	Parallelism uint8  `yaml:"parallelism"`
	SaltLength  uint32 `yaml:"salt_length"`
	KeyLength   uint32 `yaml:"key_length"`
}

/*
====================================
RESET CONFIG
====================================
*/

// ResetConfig controls password-reset token lifetime. TokenTTL <= 0 means
// tokens stay valid until consumed.
type ResetConfig struct {
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// UnmarshalYAML accepts the token TTL in time.ParseDuration form.
func (r *ResetConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		TokenTTL string `yaml:"token_ttl"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.TokenTTL != "" {
		ttl, err := time.ParseDuration(raw.TokenTTL)
		if err != nil {
			return fmt.Errorf("parsing reset token ttl: %w", err)
		}
		r.TokenTTL = ttl
	}
	return nil
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles the in-process counter surface.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultCookieName is used when no cookie name is configured.
const DefaultCookieName = "_gatehouse_session"

// DefaultConfig returns a baseline configuration: no session expiration, no
// reset-token TTL, audit and metrics enabled, argon2id at interactive-safe
// parameters.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			CookieName: DefaultCookieName,
			Duration:   0,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Reset: ResetConfig{
			TokenTTL: 0,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// FromEnv layers the environment contract onto cfg: SESSION_NAME overrides
// the cookie name and SESSION_DURATION (integer seconds, 0 = no expiration)
// overrides the session duration. Unset variables leave cfg untouched.
func FromEnv(cfg Config) (Config, error) {
	if name := os.Getenv("SESSION_NAME"); name != "" {
		cfg.Session.CookieName = name
	}
	if raw := os.Getenv("SESSION_DURATION"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, fmt.Errorf("parsing SESSION_DURATION: %w", err)
		}
		cfg.Session.Duration = time.Duration(secs) * time.Second
	}
	return cfg, nil
}

// LoadConfig reads a YAML config file over DefaultConfig and validates the
// result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first configuration error found.
func (c Config) Validate() error {
	if c.Session.CookieName == "" {
		return errors.New("session cookie name must not be empty")
	}
	if c.Password.Memory < 8*1024 {
		return errors.New("password memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("password time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("password parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("password salt length must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("password key length must be >= 16")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must not be negative")
	}
	return nil
}
