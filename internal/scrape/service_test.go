package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hyperifyio/carrierscope/internal/domain"
	"github.com/hyperifyio/carrierscope/internal/fetch"
	"github.com/hyperifyio/carrierscope/internal/store"
)

type page struct {
	body string
	err  error
}

type fakeFetcher struct {
	pages    map[string]page
	requests []fetch.Request
}

func (f *fakeFetcher) Do(_ context.Context, r fetch.Request) ([]byte, string, error) {
	f.requests = append(f.requests, r)
	p, ok := f.pages[r.URL]
	if !ok {
		return nil, "", fmt.Errorf("no page for %s", r.URL)
	}
	if p.err != nil {
		return nil, "", p.err
	}
	return []byte(p.body), "text/html", nil
}

var testSources = Sources{
	Carrier:   "test://carrier/{id}",
	Email:     "test://email/{id}",
	Safety:    "test://safety/{id}",
	Insurance: "test://insurance/{id}",
	Register:  "test://register",
}

const carrierPage = `<html><body><center><table>
<tr><th>USDOT Number:</th><td>1234567</td></tr>
<tr><th>Legal Name:</th><td>ABC TRUCKING LLC</td></tr>
</table></center></body></html>`

func newTestService(pages map[string]page, repo store.Repository) (*Service, *fakeFetcher) {
	f := &fakeFetcher{pages: pages}
	s := NewService(f, testSources, repo)
	s.Now = func() time.Time { return time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC) }
	return s, f
}

func TestCarrier_WithEmail(t *testing.T) {
	repo := store.NewMemory()
	s, f := newTestService(map[string]page{
		"test://carrier/55":    {body: carrierPage},
		"test://email/1234567": {body: `<div><label>Email:</label> <a data-cfemail="422302206c212d">[protected]</a></div>`},
	}, repo)

	p, err := s.Carrier(context.Background(), "55")
	if err != nil {
		t.Fatalf("carrier: %v", err)
	}
	if p.MCNumber != "55" || p.DOTNumber != "1234567" || p.LegalName != "ABC TRUCKING LLC" {
		t.Fatalf("unexpected profile %+v", p)
	}
	if p.Email != "a@b.co" || p.DateScraped != "2/3/2026" {
		t.Fatalf("email=%q date=%q", p.Email, p.DateScraped)
	}
	if f.requests[0].Timeout != LookupTimeout || f.requests[1].Timeout != EmailTimeout {
		t.Fatalf("timeouts %v %v", f.requests[0].Timeout, f.requests[1].Timeout)
	}
	rec, err := repo.GetCarrier(context.Background(), "55")
	if err != nil || rec.Profile.Email != "a@b.co" {
		t.Fatalf("carrier not stored: %+v %v", rec, err)
	}
}

func TestCarrier_EmailFailureLeavesFieldEmpty(t *testing.T) {
	s, _ := newTestService(map[string]page{
		"test://carrier/55":    {body: carrierPage},
		"test://email/1234567": {err: errors.New("timeout")},
	}, nil)

	p, err := s.Carrier(context.Background(), "55")
	if err != nil {
		t.Fatalf("email failure must not fail the lookup: %v", err)
	}
	if p.Email != "" {
		t.Fatalf("email=%q", p.Email)
	}

	_, err = s.email(context.Background(), "1234567")
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Source != SourceEmail {
		t.Fatalf("expected email UpstreamError, got %v", err)
	}
}

func TestCarrier_NoDOTSkipsEmail(t *testing.T) {
	s, f := newTestService(map[string]page{
		"test://carrier/55": {body: `<center><table><tr><th>Legal Name:</th><td>X</td></tr></table></center>`},
	}, nil)
	if _, err := s.Carrier(context.Background(), "55"); err != nil {
		t.Fatalf("carrier: %v", err)
	}
	if len(f.requests) != 1 {
		t.Fatalf("expected no email request, got %d requests", len(f.requests))
	}
}

func TestCarrier_NotFoundAndUpstream(t *testing.T) {
	s, _ := newTestService(map[string]page{
		"test://carrier/1": {body: `<html><body>No records</body></html>`},
		"test://carrier/2": {err: errors.New("connection refused")},
	}, nil)

	if _, err := s.Carrier(context.Background(), "1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err := s.Carrier(context.Background(), "2")
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Source != SourceCarrier {
		t.Fatalf("expected carrier UpstreamError, got %v", err)
	}
}

func TestSafety_UpdatesStoredCarrier(t *testing.T) {
	repo := store.NewMemory()
	_ = repo.UpsertCarrier(context.Background(), domain.CarrierProfile{MCNumber: "55", DOTNumber: "777"})
	s, _ := newTestService(map[string]page{
		"test://safety/777": {body: `<div id="Rating">Conditional</div>`},
		"test://safety/888": {body: `<p></p>`},
	}, repo)

	p, err := s.Safety(context.Background(), "777")
	if err != nil || p.Rating != "Conditional" {
		t.Fatalf("safety=%+v err=%v", p, err)
	}
	rec, _ := repo.GetCarrier(context.Background(), "55")
	if rec.Safety == nil || rec.Safety.Rating != "Conditional" {
		t.Fatalf("safety not stored: %+v", rec.Safety)
	}
	// unknown DOT in the repository is not a lookup failure
	if _, err := s.Safety(context.Background(), "888"); err != nil {
		t.Fatalf("safety 888: %v", err)
	}
}

func TestInsurance(t *testing.T) {
	s, f := newTestService(map[string]page{
		"test://insurance/9":  {body: `{"data":[{"insurance_company":"acme","max_cov_amount":"750","ins_type_code":"1"}]}`},
		"test://insurance/10": {body: `<html>challenge</html>`},
	}, nil)

	res, err := s.Insurance(context.Background(), "9")
	if err != nil {
		t.Fatalf("insurance: %v", err)
	}
	if len(res.Policies) != 1 || res.Policies[0].CoverageAmount != "$750,000" || res.Policies[0].DOT != "9" {
		t.Fatalf("policies=%+v", res.Policies)
	}
	if !json.Valid(res.Raw) {
		t.Fatalf("raw is not JSON: %s", res.Raw)
	}
	if f.requests[0].Accept != fetch.AcceptJSON {
		t.Fatalf("accept=%q", f.requests[0].Accept)
	}

	res, err = s.Insurance(context.Background(), "10")
	if err != nil {
		t.Fatalf("non-JSON payload should not fail: %v", err)
	}
	if len(res.Policies) != 0 || string(res.Raw) != `"<html>challenge</html>"` {
		t.Fatalf("unexpected %+v raw=%s", res.Policies, res.Raw)
	}
	var echoed string
	if err := json.Unmarshal(res.Raw, &echoed); err != nil || echoed != "<html>challenge</html>" {
		t.Fatalf("raw does not decode to the body: %q %v", echoed, err)
	}
}

func TestRegister_StoresSnapshot(t *testing.T) {
	repo := store.NewMemory()
	s, f := newTestService(map[string]page{
		"test://register": {body: `<table><tr><td>REVOCATION</td></tr><tr><td>MC-1</td><td>ONE LLC</td><td>01/01/2026</td></tr></table>`},
	}, repo)

	res, err := s.Register(context.Background())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Strategy != "table-rows" || len(res.Entries) != 1 || res.Entries[0].Category != domain.CategoryRevocation {
		t.Fatalf("unexpected %+v", res)
	}
	if f.requests[0].Timeout != RegisterTimeout {
		t.Fatalf("timeout=%v", f.requests[0].Timeout)
	}
	snap, err := repo.LatestRegister(context.Background())
	if err != nil || len(snap.Entries) != 1 || !snap.FetchedAt.Equal(res.FetchedAt) {
		t.Fatalf("snapshot %+v %v", snap, err)
	}
}

func TestExpandEscapesID(t *testing.T) {
	if got := expand("https://x/{id}/p", "a b/c"); got != "https://x/a%20b%2Fc/p" {
		t.Fatalf("expand=%q", got)
	}
}
