// Package httpapi exposes the lookups over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/carrierscope/internal/domain"
	"github.com/hyperifyio/carrierscope/internal/scrape"
	"github.com/hyperifyio/carrierscope/internal/store"
)

// Scraper is satisfied by *scrape.Service.
type Scraper interface {
	Carrier(ctx context.Context, mcNumber string) (domain.CarrierProfile, error)
	Safety(ctx context.Context, dotNumber string) (domain.SafetyProfile, error)
	Insurance(ctx context.Context, dotNumber string) (scrape.InsuranceResult, error)
	Register(ctx context.Context) (scrape.RegisterResult, error)
}

const healthMessage = "FMCSA Scraper Backend is running"

// timestampLayout matches JavaScript's Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Server struct {
	scraper Scraper
	repo    store.Repository
}

// New returns a Server. repo may be nil, in which case the stored-data
// endpoints answer 404.
func New(scraper Scraper, repo store.Repository) *Server {
	return &Server{scraper: scraper, repo: repo}
}

// Routes returns the API router with logging, CORS and panic recovery.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/scrape/carrier/{mcNumber}", s.carrier)
		r.Get("/scrape/safety/{dotNumber}", s.safety)
		r.Get("/scrape/insurance/{dotNumber}", s.insurance)
		r.Get("/fmcsa-register", s.register)
		r.Get("/fmcsa-register/latest", s.latestRegister)
		r.Get("/carriers/{mcNumber}", s.storedCarrier)
	})
	return r
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type registerBody struct {
	Success     bool                   `json:"success"`
	Count       int                    `json:"count"`
	LastUpdated string                 `json:"lastUpdated"`
	Entries     []domain.RegisterEntry `json:"entries"`
}

type registerErrorBody struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Details string                 `json:"details"`
	Entries []domain.RegisterEntry `json:"entries"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": healthMessage})
}

// carrier accepts a useProxy query parameter for client compatibility and
// ignores it.
func (s *Server) carrier(w http.ResponseWriter, r *http.Request) {
	mc := chi.URLParam(r, "mcNumber")
	p, err := s.scraper.Carrier(r.Context(), mc)
	if errors.Is(err, scrape.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Carrier not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("mc", mc).Msg("carrier scrape failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to scrape carrier data", Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) safety(w http.ResponseWriter, r *http.Request) {
	dot := chi.URLParam(r, "dotNumber")
	p, err := s.scraper.Safety(r.Context(), dot)
	if err != nil {
		log.Error().Err(err).Str("dot", dot).Msg("safety scrape failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to scrape safety data", Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) insurance(w http.ResponseWriter, r *http.Request) {
	dot := chi.URLParam(r, "dotNumber")
	res, err := s.scraper.Insurance(r.Context(), dot)
	if err != nil {
		log.Error().Err(err).Str("dot", dot).Msg("insurance scrape failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to scrape insurance data", Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	res, err := s.scraper.Register(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("register scrape failed")
		writeJSON(w, http.StatusInternalServerError, registerErrorBody{
			Error:   "Failed to scrape FMCSA register data",
			Details: err.Error(),
			Entries: []domain.RegisterEntry{},
		})
		return
	}
	writeJSON(w, http.StatusOK, newRegisterBody(res.Entries, res.FetchedAt))
}

func (s *Server) latestRegister(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "No register snapshot stored"})
		return
	}
	snap, err := s.repo.LatestRegister(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "No register snapshot stored"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load register snapshot failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to load register snapshot", Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, newRegisterBody(snap.Entries, snap.FetchedAt))
}

func (s *Server) storedCarrier(w http.ResponseWriter, r *http.Request) {
	mc := chi.URLParam(r, "mcNumber")
	if s.repo == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Carrier not found"})
		return
	}
	rec, err := s.repo.GetCarrier(r.Context(), mc)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Carrier not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("mc", mc).Msg("load carrier failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to load carrier", Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func newRegisterBody(entries []domain.RegisterEntry, at time.Time) registerBody {
	if entries == nil {
		entries = []domain.RegisterEntry{}
	}
	return registerBody{
		Success:     true,
		Count:       len(entries),
		LastUpdated: at.UTC().Format(timestampLayout),
		Entries:     entries,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response failed")
	}
}
