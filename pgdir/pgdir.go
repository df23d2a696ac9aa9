// Package pgdir provides a PostgreSQL implementation of
// gatehouse.UserDirectory. It uses pgx/v5 for connection pooling and keeps
// the documented query contract: Find targets exactly one filter field,
// Create enforces email uniqueness, Update accepts only whitelisted field
// names.
package pgdir

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-dev/gatehouse"
	"github.com/google/uuid"
)

// Config controls pool construction.
type Config struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	MigrateOnStart bool
}

func (c *Config) defaults() {
	if c.MaxConns <= 0 {
		c.MaxConns = 10
	}
}

// Directory is a PostgreSQL-backed user directory.
type Directory struct {
	pool *pgxpool.Pool
}

var _ gatehouse.UserDirectory = (*Directory)(nil)

// New creates a Directory, verifies connectivity, and optionally applies the
// schema.
func New(ctx context.Context, cfg Config) (*Directory, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	d := &Directory{pool: pool}
	if cfg.MigrateOnStart {
		if err := d.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}
	return d, nil
}

// Close releases the pool.
func (d *Directory) Close() {
	d.pool.Close()
}

func (d *Directory) migrate(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			session_id    TEXT,
			reset_token   TEXT,
			reset_issued  TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS users_session_id_idx ON users (session_id);
		CREATE INDEX IF NOT EXISTS users_reset_token_idx ON users (reset_token);
	`)
	return err
}

const selectColumns = `id, email, password_hash, coalesce(session_id, ''), coalesce(reset_token, ''), reset_issued`

// Find returns the single user matching f, or gatehouse.ErrUserNotFound.
func (d *Directory) Find(ctx context.Context, f gatehouse.Filter) (*gatehouse.User, error) {
	column, arg, err := filterColumn(f)
	if err != nil {
		return nil, err
	}

	row := d.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, selectColumns, column), arg)

	var user gatehouse.User
	var resetIssued *time.Time
	err = row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.SessionID, &user.ResetToken, &resetIssued)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, gatehouse.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	if resetIssued != nil {
		user.ResetIssued = *resetIssued
	}
	return &user, nil
}

// Create inserts a new user and returns it. A duplicate email fails with
// gatehouse.ErrUserExists.
func (d *Directory) Create(ctx context.Context, email, passwordHash string) (*gatehouse.User, error) {
	user := gatehouse.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}

	_, err := d.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		user.ID, user.Email, user.PasswordHash)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %s", gatehouse.ErrUserExists, email)
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return &user, nil
}

// Update applies fields to the user with id. Unknown field names fail with
// gatehouse.ErrInvalidField; an unknown id with gatehouse.ErrUserNotFound.
func (d *Directory) Update(ctx context.Context, id string, fields gatehouse.Fields) error {
	if len(fields) == 0 {
		return nil
	}

	assignments, args, err := buildUpdate(fields)
	if err != nil {
		return err
	}
	args = append(args, id)

	tag, err := d.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(assignments, ", "), len(args)),
		args...)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return gatehouse.ErrUserNotFound
	}
	return nil
}

func filterColumn(f gatehouse.Filter) (string, string, error) {
	switch {
	case f.ID != "":
		return "id", f.ID, nil
	case f.Email != "":
		return "email", f.Email, nil
	case f.SessionID != "":
		return "session_id", f.SessionID, nil
	case f.ResetToken != "":
		return "reset_token", f.ResetToken, nil
	default:
		return "", "", errors.New("pgdir: empty filter")
	}
}

// buildUpdate maps update fields to SET assignments. The empty string clears
// a nullable column to NULL so partial indexes and the coalesce-based reads
// stay consistent.
func buildUpdate(fields gatehouse.Fields) ([]string, []any, error) {
	columns := map[string]string{
		gatehouse.FieldPasswordHash: "password_hash",
		gatehouse.FieldSessionID:    "session_id",
		gatehouse.FieldResetToken:   "reset_token",
		gatehouse.FieldResetIssued:  "reset_issued",
	}

	var assignments []string
	var args []any
	for name, value := range fields {
		column, ok := columns[name]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", gatehouse.ErrInvalidField, name)
		}

		var arg any = value
		if name == gatehouse.FieldResetIssued {
			if value == "" {
				arg = nil
			} else {
				issued, err := time.Parse(time.RFC3339, value)
				if err != nil {
					return nil, nil, fmt.Errorf("%w: %s", gatehouse.ErrInvalidField, name)
				}
				arg = issued
			}
		} else if value == "" && name != gatehouse.FieldPasswordHash {
			arg = nil
		}

		args = append(args, arg)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	return assignments, args, nil
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
