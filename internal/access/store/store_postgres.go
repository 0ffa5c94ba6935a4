// Package store provides the durable and cached implementations of the
// access ledger Store.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"medledger/internal/access"
	id "medledger/pkg/domain"
	txcontext "medledger/pkg/platform/tx"
)

// PostgresStore implements access.Store against the access_grants table:
//
//	CREATE TABLE access_grants (
//	    owner_id   UUID NOT NULL,
//	    grantee_id UUID NOT NULL,
//	    granted    BOOLEAN NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (owner_id, grantee_id)
//	);
//
// Rows are written for both values; a missing row means denied, same as the
// in-memory default.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Set(ctx context.Context, owner, grantee id.Identity, granted bool) error {
	query := `
		INSERT INTO access_grants (owner_id, grantee_id, granted, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, grantee_id) DO UPDATE
		SET granted = EXCLUDED.granted, updated_at = EXCLUDED.updated_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		owner.String(),
		grantee.String(),
		granted,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert grant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, owner, grantee id.Identity) (bool, error) {
	query := `
		SELECT granted FROM access_grants
		WHERE owner_id = $1 AND grantee_id = $2
	`
	var granted bool
	err := s.db.QueryRowContext(ctx, query, owner.String(), grantee.String()).Scan(&granted)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find grant: %w", err)
	}
	return granted, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner id.Identity) ([]access.Grant, error) {
	query := `
		SELECT grantee_id, granted, updated_at FROM access_grants
		WHERE owner_id = $1
		ORDER BY grantee_id
	`
	rows, err := s.db.QueryContext(ctx, query, owner.String())
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var grants []access.Grant
	for rows.Next() {
		var (
			grant      access.Grant
			granteeRaw string
		)
		if err := rows.Scan(&granteeRaw, &grant.Granted, &grant.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grantee, err := id.ParseIdentity(granteeRaw)
		if err != nil {
			return nil, fmt.Errorf("grant for owner %s: %w", owner, err)
		}
		grant.Provider = grantee
		grants = append(grants, grant)
	}
	return grants, rows.Err()
}
