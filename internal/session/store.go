package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"emportal/internal/platform/crypto"
)

// PGStore persists sessions in Postgres with the backend token sealed
// at rest.
type PGStore struct {
	DB   *pgxpool.Pool
	Seal *crypto.Service
}

func NewPGStore(db *pgxpool.Pool, seal *crypto.Service) *PGStore {
	return &PGStore{DB: db, Seal: seal}
}

func (s *PGStore) Create(ctx context.Context, sess Session) error {
	sealed, err := s.Seal.Seal([]byte(sess.Token))
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO portal_sessions (id, email, role, token, token_expires, created_at, expires_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
  `, sess.ID, sess.Email, sess.Role, sealed, nullableTime(sess.TokenExpires), sess.CreatedAt, sess.ExpiresAt)
	return err
}

func (s *PGStore) Get(ctx context.Context, id string) (Session, error) {
	var sess Session
	var sealed []byte
	var tokenExpires *time.Time
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, role, token, token_expires, created_at, expires_at
    FROM portal_sessions WHERE id = $1
  `, id).Scan(&sess.ID, &sess.Email, &sess.Role, &sealed, &tokenExpires, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}

	token, err := s.Seal.Open(sealed)
	if err != nil {
		return Session{}, err
	}
	sess.Token = string(token)
	if tokenExpires != nil {
		sess.TokenExpires = *tokenExpires
	}
	return sess, nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM portal_sessions WHERE id = $1`, id)
	return err
}

func (s *PGStore) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    DELETE FROM portal_sessions
    WHERE expires_at < $1 OR (token_expires IS NOT NULL AND token_expires < $1)
    RETURNING id
  `, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
