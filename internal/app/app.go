package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/carrierscope/internal/batch"
	"github.com/hyperifyio/carrierscope/internal/cache"
	"github.com/hyperifyio/carrierscope/internal/fetch"
	"github.com/hyperifyio/carrierscope/internal/httpapi"
	"github.com/hyperifyio/carrierscope/internal/schedule"
	"github.com/hyperifyio/carrierscope/internal/scrape"
	"github.com/hyperifyio/carrierscope/internal/store"
	"github.com/hyperifyio/carrierscope/internal/store/postgres"
)

type App struct {
	cfg     Config
	service *scrape.Service
	repo    store.Repository
	closers []func()
}

func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg}

	client := &fetch.Client{
		HTTPClient:    newUpstreamHTTPClient(cfg.FetchMaxConcurrent),
		UserAgent:     cfg.UserAgent,
		MaxConcurrent: cfg.FetchMaxConcurrent,
	}
	if cfg.FetchRPS > 0 {
		client.Limiter = rate.NewLimiter(rate.Limit(cfg.FetchRPS), 1)
	}
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxEntries > 0 {
			if n, err := cache.EnforceMaxEntries(cfg.CacheDir, cfg.CacheMaxEntries); err != nil {
				log.Warn().Err(err).Msg("cache eviction failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("evicted cache entries")
			}
		}
		client.Cache = &cache.HTTPCache{Dir: cfg.CacheDir, MaxAge: cfg.CacheMaxAge}
	}

	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		a.repo = db
		a.closers = append(a.closers, db.Close)
	} else {
		a.repo = store.NewMemory()
	}

	a.service = scrape.NewService(client, cfg.Sources, a.repo)
	return a, nil
}

// Close releases the database pool, if any.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) Service() *scrape.Service { return a.service }

func (a *App) Handler() http.Handler {
	return httpapi.New(a.service, a.repo).Routes()
}

// RefreshRegister fetches the register and stores the snapshot.
func (a *App) RefreshRegister(ctx context.Context) (int, error) {
	res, err := a.service.Register(ctx)
	if err != nil {
		return 0, err
	}
	return len(res.Entries), nil
}

// Batch looks up every MC number with the configured concurrency.
func (a *App) Batch(ctx context.Context, mcNumbers []string) batch.Report {
	r := &batch.Runner{
		Lookup:      a.service.Carrier,
		Workers:     a.cfg.BatchWorkers,
		ItemTimeout: a.cfg.BatchItemTimeout,
		IsNotFound:  func(err error) bool { return errors.Is(err, scrape.ErrNotFound) },
	}
	return r.Run(ctx, mcNumbers)
}

// Serve runs the HTTP API, and the register refresher when a schedule is
// configured, until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a.cfg.RegisterSchedule != "" {
		ref := &schedule.Refresher{
			Spec:    a.cfg.RegisterSchedule,
			Timeout: 2 * scrape.RegisterTimeout,
			Refresh: a.RefreshRegister,
		}
		if err := ref.Start(); err != nil {
			return err
		}
		defer ref.Stop()
	}

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info().Str("addr", a.cfg.ListenAddr).Msg("listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
