package gatehouse

import (
	"errors"
	"time"

	"github.com/gatehouse-dev/gatehouse/internal/keyed"
	"github.com/gatehouse-dev/gatehouse/password"
)

// Builder assembles a [Service]. Construction is allocation-only; no I/O
// happens until the Service is used. A Builder is single-use.
type Builder struct {
	config    Config
	dir       UserDirectory
	hasher    Hasher
	auditSink AuditSink
	built     bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithDirectory sets the user directory. Required.
func (b *Builder) WithDirectory(dir UserDirectory) *Builder {
	b.dir = dir
	return b
}

// WithHasher overrides the hash capability. When unset, Build constructs the
// built-in argon2id hasher from the password configuration.
func (b *Builder) WithHasher(h Hasher) *Builder {
	b.hasher = h
	return b
}

// WithAuditSink sets the audit destination.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the counter surface.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the wiring and returns an immutable Service.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	if b.dir == nil {
		return nil, errors.New("user directory is required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	hasher := b.hasher
	if hasher == nil {
		var err error
		hasher, err = password.NewArgon2(password.Config{
			Memory:      b.config.Password.Memory,
			Time:        b.config.Password.Time,
			Parallelism: b.config.Password.Parallelism,
			SaltLength:  b.config.Password.SaltLength,
			KeyLength:   b.config.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
	}

	b.built = true
	return &Service{
		config:  b.config,
		dir:     b.dir,
		hasher:  hasher,
		metrics: NewMetrics(b.config.Metrics),
		audit:   newAuditDispatcher(b.config.Audit, b.auditSink),
		locks:   keyed.NewMutexSet(),
		now:     time.Now,
	}, nil
}
