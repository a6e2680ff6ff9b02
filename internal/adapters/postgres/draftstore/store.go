package draftstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iskrendev/insurance-portal/internal/adapters/postgres"
	"github.com/iskrendev/insurance-portal/internal/ports/out/draftstore"
)

// Store is a Postgres implementation of draftstore.Store, for deployments that
// run more than one portal replica.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key draftstore.Key) (draftstore.Record, error) {
	if s.pool == nil {
		return draftstore.Record{}, errors.New("nil postgres pool")
	}
	row := s.pool.QueryRow(ctx, `
		SELECT payload, updated_at, expires_at
		FROM portal_drafts
		WHERE owner = $1
		  AND draft_id = $2
	`,
		key.Owner,
		string(key.DraftID),
	)
	var rec draftstore.Record
	if err := row.Scan(&rec.Payload, &rec.UpdatedAt, &rec.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return draftstore.Record{}, draftstore.ErrNotFound
		}
		return draftstore.Record{}, err
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	rec.ExpiresAt = rec.ExpiresAt.UTC()
	if !time.Now().Before(rec.ExpiresAt) {
		// Expired rows are removed on read; PurgeExpired sweeps the rest.
		_ = s.Delete(ctx, key)
		return draftstore.Record{}, draftstore.ErrNotFound
	}
	return rec, nil
}

func (s *Store) Put(ctx context.Context, key draftstore.Key, rec draftstore.Record) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	expiresAt := rec.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = updatedAt.Add(24 * time.Hour)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO portal_drafts (
			owner,
			draft_id,
			payload,
			updated_at,
			expires_at
		) VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (owner, draft_id)
		DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at,
			expires_at = EXCLUDED.expires_at
	`,
		key.Owner,
		string(key.DraftID),
		rec.Payload,
		updatedAt.UTC(),
		expiresAt.UTC(),
	)
	if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.CheckViolationCode {
		return fmt.Errorf("%w: %s", draftstore.ErrInvalidDraft, pe.ConstraintName)
	}
	return err
}

func (s *Store) Delete(ctx context.Context, key draftstore.Key) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `
		DELETE FROM portal_drafts
		WHERE owner = $1
		  AND draft_id = $2
	`,
		key.Owner,
		string(key.DraftID),
	)
	return err
}

// PurgeExpired deletes every expired draft and reports how many were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int, error) {
	if s.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	ct, err := s.pool.Exec(ctx, `DELETE FROM portal_drafts WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}
