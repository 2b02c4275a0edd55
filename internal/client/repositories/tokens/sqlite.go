package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/studyshare/studyshare-client/internal/dbx"
)

const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// kv is a single-statement view over auth_tokens; it works on either the
// database or an open transaction.
type kv struct {
	db dbx.DBTX
}

func (s kv) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM auth_tokens WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get token[%s]: %w", key, err)
	}
	return value, nil
}

func (s kv) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_tokens (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set token[%s]: %w", key, err)
	}
	return nil
}

func (s kv) delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete token[%s]: %w", key, err)
	}
	return nil
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (Pair, error) {
	s := kv{db: r.db}

	access, err := s.get(ctx, AccessTokenKey)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := s.get(ctx, RefreshTokenKey)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Save writes both tokens in one transaction. An empty token deletes its
// key instead of storing "".
func (r *SQLiteRepository) Save(ctx context.Context, p Pair) error {
	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		s := kv{db: tx}
		for _, e := range []struct{ key, value string }{
			{AccessTokenKey, p.Access},
			{RefreshTokenKey, p.Refresh},
		} {
			var err error
			if e.value == "" {
				err = s.delete(ctx, e.key)
			} else {
				err = s.set(ctx, e.key, e.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		s := kv{db: tx}
		if err := s.delete(ctx, AccessTokenKey); err != nil {
			return err
		}
		return s.delete(ctx, RefreshTokenKey)
	})
}
