// Package schedule refreshes the stored register snapshot on a cron
// schedule.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// RefreshFunc fetches the register and returns the number of entries stored.
type RefreshFunc func(ctx context.Context) (int, error)

// Refresher runs Refresh on a standard five-field cron spec. Runs never
// overlap; a tick that arrives while a refresh is in progress is skipped.
type Refresher struct {
	Spec    string
	Timeout time.Duration
	Refresh RefreshFunc

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	cancel  context.CancelFunc
}

// ParseSpec reports whether spec is a valid standard cron expression.
func ParseSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// RefreshOnce runs one refresh unless one is already running.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		log.Debug().Msg("register refresh already running; skipping")
		return nil
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	start := time.Now()
	n, err := r.Refresh(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("register refresh failed")
		return err
	}
	log.Info().Int("entries", n).Dur("took", time.Since(start)).Msg("register refreshed")
	return nil
}

// Start schedules refreshes until Stop is called.
func (r *Refresher) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New()
	if _, err := c.AddFunc(r.Spec, func() { _ = r.RefreshOnce(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid schedule %q: %w", r.Spec, err)
	}
	c.Start()
	r.cron = c
	r.cancel = cancel
	if next := c.Entries(); len(next) > 0 {
		log.Info().Str("schedule", r.Spec).Time("next", next[0].Next).Msg("register refresher started")
	}
	return nil
}

// Stop cancels any running refresh and waits for it to return.
func (r *Refresher) Stop() {
	r.mu.Lock()
	c, cancel := r.cron, r.cancel
	r.cron, r.cancel = nil, nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	log.Info().Msg("register refresher stopped")
}
