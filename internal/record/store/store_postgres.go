// Package store provides the PostgreSQL implementation of the record Store.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"medledger/internal/record"
	id "medledger/pkg/domain"
	txcontext "medledger/pkg/platform/tx"
)

// PostgresStore implements record.Store against the patient_records table:
//
//	CREATE TABLE patient_records (
//	    owner_id   UUID PRIMARY KEY,
//	    name       TEXT NOT NULL DEFAULT '',
//	    data_hash  TEXT NOT NULL DEFAULT '',
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
//
// One row per owner; upserts replace the row wholesale.
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

func (s *PostgresStore) Save(ctx context.Context, owner id.Identity, rec record.PatientRecord) error {
	query := `
		INSERT INTO patient_records (owner_id, name, data_hash, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id) DO UPDATE
		SET name = EXCLUDED.name, data_hash = EXCLUDED.data_hash, updated_at = EXCLUDED.updated_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		owner.String(),
		rec.Name,
		rec.DataHash,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, owner id.Identity) (record.PatientRecord, error) {
	query := `
		SELECT name, data_hash, updated_at FROM patient_records
		WHERE owner_id = $1
	`
	var rec record.PatientRecord
	err := s.db.QueryRowContext(ctx, query, owner.String()).Scan(&rec.Name, &rec.DataHash, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return record.PatientRecord{}, record.ErrNotFound
	}
	if err != nil {
		return record.PatientRecord{}, fmt.Errorf("find record: %w", err)
	}
	return rec, nil
}
