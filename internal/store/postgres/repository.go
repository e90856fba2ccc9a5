package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hyperifyio/carrierscope/internal/domain"
	"github.com/hyperifyio/carrierscope/internal/store"
)

var _ store.Repository = (*DB)(nil)

func (db *DB) UpsertCarrier(ctx context.Context, p domain.CarrierProfile) error {
	profile, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
        INSERT INTO carriers (mc_number, dot_number, profile, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (mc_number) DO UPDATE
        SET dot_number = EXCLUDED.dot_number, profile = EXCLUDED.profile, updated_at = now()
    `, p.MCNumber, p.DOTNumber, profile)
	return err
}

func (db *DB) GetCarrier(ctx context.Context, mcNumber string) (store.CarrierRecord, error) {
	var (
		rec                       store.CarrierRecord
		profile, safety, policies []byte
		updated                   time.Time
	)
	err := db.Pool.QueryRow(ctx, `
        SELECT profile, safety, insurance, updated_at FROM carriers WHERE mc_number = $1
    `, mcNumber).Scan(&profile, &safety, &policies, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, store.ErrNotFound
	}
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(profile, &rec.Profile); err != nil {
		return rec, fmt.Errorf("decode profile: %w", err)
	}
	if len(safety) > 0 {
		rec.Safety = &domain.SafetyProfile{}
		if err := json.Unmarshal(safety, rec.Safety); err != nil {
			return rec, fmt.Errorf("decode safety: %w", err)
		}
	}
	if len(policies) > 0 {
		if err := json.Unmarshal(policies, &rec.Insurance); err != nil {
			return rec, fmt.Errorf("decode insurance: %w", err)
		}
	}
	rec.UpdatedAt = updated.UTC()
	return rec, nil
}

func (db *DB) UpdateSafety(ctx context.Context, dotNumber string, s domain.SafetyProfile) error {
	return db.updateColumn(ctx, "safety", dotNumber, s)
}

func (db *DB) UpdateInsurance(ctx context.Context, dotNumber string, policies []domain.InsurancePolicy) error {
	return db.updateColumn(ctx, "insurance", dotNumber, policies)
}

// updateColumn writes v into one of the fixed jsonb columns above.
func (db *DB) updateColumn(ctx context.Context, column, dotNumber string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", column, err)
	}
	tag, err := db.Pool.Exec(ctx,
		`UPDATE carriers SET `+column+` = $2, updated_at = now() WHERE dot_number = $1`,
		dotNumber, b)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (db *DB) SaveRegister(ctx context.Context, s store.Snapshot) error {
	entries := s.Entries
	if entries == nil {
		entries = []domain.RegisterEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `INSERT INTO register_snapshots (fetched_at, entries) VALUES ($1, $2)`, s.FetchedAt, b)
	return err
}

func (db *DB) LatestRegister(ctx context.Context) (store.Snapshot, error) {
	var (
		s       store.Snapshot
		entries []byte
	)
	err := db.Pool.QueryRow(ctx, `
        SELECT fetched_at, entries FROM register_snapshots ORDER BY fetched_at DESC, id DESC LIMIT 1
    `).Scan(&s.FetchedAt, &entries)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, store.ErrNotFound
	}
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(entries, &s.Entries); err != nil {
		return s, fmt.Errorf("decode entries: %w", err)
	}
	s.FetchedAt = s.FetchedAt.UTC()
	return s, nil
}
