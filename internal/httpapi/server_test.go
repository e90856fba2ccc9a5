package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hyperifyio/carrierscope/internal/domain"
	"github.com/hyperifyio/carrierscope/internal/scrape"
	"github.com/hyperifyio/carrierscope/internal/store"
)

type fakeScraper struct {
	carrier   domain.CarrierProfile
	safety    domain.SafetyProfile
	insurance scrape.InsuranceResult
	register  scrape.RegisterResult
	err       error
}

func (f *fakeScraper) Carrier(context.Context, string) (domain.CarrierProfile, error) {
	return f.carrier, f.err
}

func (f *fakeScraper) Safety(context.Context, string) (domain.SafetyProfile, error) {
	return f.safety, f.err
}

func (f *fakeScraper) Insurance(context.Context, string) (scrape.InsuranceResult, error) {
	return f.insurance, f.err
}

func (f *fakeScraper) Register(context.Context) (scrape.RegisterResult, error) {
	return f.register, f.err
}

func do(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s: %v (%s)", path, err, rec.Body.String())
	}
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	code, body := do(t, New(&fakeScraper{}, nil).Routes(), "/health")
	if code != http.StatusOK || body["status"] != "ok" || body["message"] != healthMessage {
		t.Fatalf("%d %v", code, body)
	}
}

func TestCarrier_StatusMapping(t *testing.T) {
	f := &fakeScraper{carrier: domain.CarrierProfile{MCNumber: "55", LegalName: "ACME"}}
	h := New(f, nil).Routes()

	code, body := do(t, h, "/api/scrape/carrier/55?useProxy=true")
	if code != http.StatusOK || body["mcNumber"] != "55" || body["legalName"] != "ACME" {
		t.Fatalf("%d %v", code, body)
	}

	f.err = scrape.ErrNotFound
	code, body = do(t, h, "/api/scrape/carrier/55")
	if code != http.StatusNotFound || body["error"] != "Carrier not found" {
		t.Fatalf("%d %v", code, body)
	}

	f.err = &scrape.UpstreamError{Source: scrape.SourceCarrier, Err: errors.New("timeout")}
	code, body = do(t, h, "/api/scrape/carrier/55")
	if code != http.StatusInternalServerError || body["error"] != "Failed to scrape carrier data" || body["details"] != "carrier: timeout" {
		t.Fatalf("%d %v", code, body)
	}
}

func TestSafetyAndInsuranceFailures(t *testing.T) {
	h := New(&fakeScraper{err: errors.New("boom")}, nil).Routes()
	if code, body := do(t, h, "/api/scrape/safety/1"); code != 500 || body["error"] != "Failed to scrape safety data" {
		t.Fatalf("%d %v", code, body)
	}
	if code, body := do(t, h, "/api/scrape/insurance/1"); code != 500 || body["error"] != "Failed to scrape insurance data" {
		t.Fatalf("%d %v", code, body)
	}
}

func TestInsurance_Body(t *testing.T) {
	f := &fakeScraper{insurance: scrape.InsuranceResult{
		Policies: []domain.InsurancePolicy{{DOT: "9", Class: "PRIMARY"}},
		Raw:      json.RawMessage(`{"data":[]}`),
	}}
	code, body := do(t, New(f, nil).Routes(), "/api/scrape/insurance/9")
	policies, _ := body["policies"].([]any)
	raw, _ := body["raw"].(map[string]any)
	if code != 200 || len(policies) != 1 || raw == nil {
		t.Fatalf("%d %v", code, body)
	}
}

func TestRegister(t *testing.T) {
	at := time.Date(2026, 5, 6, 7, 8, 9, 120_000_000, time.FixedZone("X", 3600))
	f := &fakeScraper{register: scrape.RegisterResult{
		Entries:   []domain.RegisterEntry{{Number: "MC-1", Title: "A", Decided: "N/A", Category: domain.CategoryDismissal}},
		FetchedAt: at,
	}}
	h := New(f, nil).Routes()

	code, body := do(t, h, "/api/fmcsa-register")
	if code != 200 || body["success"] != true || body["count"] != float64(1) || body["lastUpdated"] != "2026-05-06T06:08:09.120Z" {
		t.Fatalf("%d %v", code, body)
	}

	f.register = scrape.RegisterResult{}
	code, body = do(t, h, "/api/fmcsa-register")
	entries, ok := body["entries"].([]any)
	if code != 200 || !ok || len(entries) != 0 || body["count"] != float64(0) {
		t.Fatalf("empty register: %d %v", code, body)
	}

	f.err = errors.New("down")
	code, body = do(t, h, "/api/fmcsa-register")
	entries, ok = body["entries"].([]any)
	if code != 500 || body["success"] != false || body["error"] != "Failed to scrape FMCSA register data" || !ok || len(entries) != 0 {
		t.Fatalf("%d %v", code, body)
	}
}

func TestStoredEndpoints(t *testing.T) {
	repo := store.NewMemory()
	h := New(&fakeScraper{}, repo).Routes()

	if code, _ := do(t, h, "/api/carriers/55"); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if code, _ := do(t, h, "/api/fmcsa-register/latest"); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}

	_ = repo.UpsertCarrier(context.Background(), domain.CarrierProfile{MCNumber: "55", DOTNumber: "9"})
	_ = repo.SaveRegister(context.Background(), store.Snapshot{FetchedAt: time.Now(), Entries: []domain.RegisterEntry{{Number: "MC-2"}}})

	code, body := do(t, h, "/api/carriers/55")
	profile, _ := body["profile"].(map[string]any)
	if code != 200 || profile["dotNumber"] != "9" {
		t.Fatalf("%d %v", code, body)
	}
	code, body = do(t, h, "/api/fmcsa-register/latest")
	if code != 200 || body["count"] != float64(1) {
		t.Fatalf("%d %v", code, body)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := New(&fakeScraper{}, nil).Routes()
	req := httptest.NewRequest(http.MethodOptions, "/api/fmcsa-register", nil)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight %d %v", rec.Code, rec.Header())
	}
}
