// Package scrape fetches registry documents and turns them into domain
// records. It is the only package that talks to both the network and the
// extractors.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/carrierscope/internal/domain"
	"github.com/hyperifyio/carrierscope/internal/extract"
	"github.com/hyperifyio/carrierscope/internal/fetch"
	"github.com/hyperifyio/carrierscope/internal/insurance"
	"github.com/hyperifyio/carrierscope/internal/register"
	"github.com/hyperifyio/carrierscope/internal/store"
)

// Upstream request timeouts.
const (
	LookupTimeout   = 15 * time.Second
	EmailTimeout    = 10 * time.Second
	RegisterTimeout = 30 * time.Second
)

// Fetcher is satisfied by *fetch.Client.
type Fetcher interface {
	Do(ctx context.Context, r fetch.Request) ([]byte, string, error)
}

// Service runs the lookups. Repo is optional; when set, results are
// persisted and persistence failures are logged, never returned.
type Service struct {
	Fetcher Fetcher
	Sources Sources
	Parser  *register.Parser
	Repo    store.Repository
	Now     func() time.Time
}

func NewService(f Fetcher, sources Sources, repo store.Repository) *Service {
	return &Service{
		Fetcher: f,
		Sources: sources.WithDefaults(),
		Parser:  register.NewParser(),
		Repo:    repo,
		Now:     time.Now,
	}
}

// InsuranceResult is the normalized policy list plus the upstream payload
// as received.
type InsuranceResult struct {
	Policies []domain.InsurancePolicy `json:"policies"`
	Raw      json.RawMessage          `json:"raw"`
}

// RegisterResult is one parse of the register page.
type RegisterResult struct {
	Entries   []domain.RegisterEntry
	Strategy  string
	FetchedAt time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) document(ctx context.Context, source string, r fetch.Request) (*extract.Document, error) {
	body, _, err := s.Fetcher.Do(ctx, r)
	if err != nil {
		return nil, &UpstreamError{Source: source, Err: err}
	}
	doc, err := extract.Parse(body)
	if err != nil {
		return nil, &UpstreamError{Source: source, Err: err}
	}
	return doc, nil
}

// Carrier looks up the SAFER snapshot for an MC number and, when a DOT number
// is found, the contact email from the SMS registration page.
func (s *Service) Carrier(ctx context.Context, mcNumber string) (domain.CarrierProfile, error) {
	doc, err := s.document(ctx, SourceCarrier, fetch.Request{
		URL:     expand(s.Sources.Carrier, mcNumber),
		Timeout: LookupTimeout,
	})
	if err != nil {
		return domain.CarrierProfile{}, err
	}
	profile, err := extract.ParseCarrier(doc, mcNumber, s.now())
	if err != nil {
		return domain.CarrierProfile{}, err
	}
	if profile.DOTNumber != "" {
		email, err := s.email(ctx, profile.DOTNumber)
		if err != nil {
			log.Warn().Err(err).Str("dot", profile.DOTNumber).Msg("email lookup failed")
		}
		profile.Email = email
	}
	if s.Repo != nil {
		if err := s.Repo.UpsertCarrier(ctx, profile); err != nil {
			log.Warn().Err(err).Str("mc", mcNumber).Msg("store carrier failed")
		}
	}
	return profile, nil
}

func (s *Service) email(ctx context.Context, dotNumber string) (string, error) {
	doc, err := s.document(ctx, SourceEmail, fetch.Request{
		URL:     expand(s.Sources.Email, dotNumber),
		Timeout: EmailTimeout,
	})
	if err != nil {
		return "", err
	}
	return extract.ParseCarrierEmail(doc), nil
}

// Safety reads the SMS complete profile for a DOT number.
func (s *Service) Safety(ctx context.Context, dotNumber string) (domain.SafetyProfile, error) {
	doc, err := s.document(ctx, SourceSafety, fetch.Request{
		URL:     expand(s.Sources.Safety, dotNumber),
		Timeout: LookupTimeout,
	})
	if err != nil {
		return domain.SafetyProfile{}, err
	}
	profile := extract.ParseSafety(doc)
	if s.Repo != nil {
		s.logUpdate(s.Repo.UpdateSafety(ctx, dotNumber, profile), "safety", dotNumber)
	}
	return profile, nil
}

// Insurance fetches the policy feed for a DOT number. A body that is not
// JSON yields no policies and is echoed back as a JSON string.
func (s *Service) Insurance(ctx context.Context, dotNumber string) (InsuranceResult, error) {
	body, _, err := s.Fetcher.Do(ctx, fetch.Request{
		URL:          expand(s.Sources.Insurance, dotNumber),
		Accept:       fetch.AcceptJSON,
		Timeout:      LookupTimeout,
		ContentTypes: fetch.JSONContentTypes,
	})
	if err != nil {
		return InsuranceResult{}, &UpstreamError{Source: SourceInsurance, Err: err}
	}

	res := InsuranceResult{Policies: []domain.InsurancePolicy{}}
	if !json.Valid(body) {
		log.Debug().Str("dot", dotNumber).Msg("insurance payload is not JSON")
		res.Raw = quoteRaw(body)
		return res, nil
	}
	records, err := insurance.Decode(body)
	if err != nil {
		return InsuranceResult{}, &UpstreamError{Source: SourceInsurance, Err: err}
	}
	res.Raw = json.RawMessage(body)
	res.Policies = insurance.NormalizeAll(dotNumber, records)
	if s.Repo != nil {
		s.logUpdate(s.Repo.UpdateInsurance(ctx, dotNumber, res.Policies), "insurance", dotNumber)
	}
	return res, nil
}

// Register fetches and parses the daily register page.
func (s *Service) Register(ctx context.Context) (RegisterResult, error) {
	doc, err := s.document(ctx, SourceRegister, fetch.Request{
		URL:     s.Sources.Register,
		Timeout: RegisterTimeout,
	})
	if err != nil {
		return RegisterResult{}, err
	}
	parsed := s.Parser.Parse(doc)
	res := RegisterResult{Entries: parsed.Entries, Strategy: parsed.Strategy, FetchedAt: s.now().UTC()}
	log.Debug().Str("strategy", res.Strategy).Int("count", len(res.Entries)).Msg("register parsed")
	if s.Repo != nil {
		if err := s.Repo.SaveRegister(ctx, store.Snapshot{FetchedAt: res.FetchedAt, Entries: res.Entries}); err != nil {
			log.Warn().Err(err).Msg("store register snapshot failed")
		}
	}
	return res, nil
}

// quoteRaw encodes body as a JSON string, leaving markup characters
// unescaped.
func quoteRaw(body []byte) json.RawMessage {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(string(body))
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n"))
}

func (s *Service) logUpdate(err error, what, dotNumber string) {
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		log.Debug().Str("dot", dotNumber).Msgf("no stored carrier for %s update", what)
	default:
		log.Warn().Err(err).Str("dot", dotNumber).Msgf("store %s failed", what)
	}
}
