package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/hyperifyio/carrierscope/internal/domain"
	"github.com/hyperifyio/carrierscope/internal/store"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("CARRIERSCOPE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CARRIERSCOPE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Connect(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, `TRUNCATE carriers, register_snapshots`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func TestRepository_CarrierRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	p := domain.CarrierProfile{MCNumber: "555", DOTNumber: "777", LegalName: "ACME", CargoCarried: []string{"General Freight"}}
	if err := db.UpsertCarrier(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := db.UpdateSafety(ctx, "777", domain.SafetyProfile{Rating: "NONE", RatingDate: "N/A", BasicScores: []domain.BasicScore{}, OOSRates: []domain.OOSRate{}}); err != nil {
		t.Fatalf("update safety: %v", err)
	}
	rec, err := db.GetCarrier(ctx, "555")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Profile.LegalName != "ACME" || rec.Safety == nil || rec.Safety.Rating != "NONE" || rec.Insurance != nil {
		t.Fatalf("unexpected record %+v", rec)
	}
	if err := db.UpdateInsurance(ctx, "000", nil); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown DOT, got %v", err)
	}
}

func TestRepository_LatestRegister(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if _, err := db.LatestRegister(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	_ = db.SaveRegister(ctx, store.Snapshot{FetchedAt: newer, Entries: []domain.RegisterEntry{{Number: "MC-2", Title: "B"}}})
	_ = db.SaveRegister(ctx, store.Snapshot{FetchedAt: older, Entries: []domain.RegisterEntry{{Number: "MC-1", Title: "A"}}})

	s, err := db.LatestRegister(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !s.FetchedAt.Equal(newer) || len(s.Entries) != 1 || s.Entries[0].Number != "MC-2" {
		t.Fatalf("unexpected snapshot %+v", s)
	}
}

func TestMigrate_ReleasesPoolConnections(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := db.Migrate(ctx); err != nil {
			t.Fatalf("migrate %d: %v", i, err)
		}
	}
	if n := db.Pool.Stat().AcquiredConns(); n != 0 {
		t.Fatalf("expected no connections held after migrate, got %d", n)
	}
	if err := db.Pool.Ping(ctx); err != nil {
		t.Fatalf("pool unusable after migrate: %v", err)
	}
}
