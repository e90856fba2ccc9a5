// Package batch runs carrier lookups over many MC numbers.
package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/carrierscope/internal/domain"
)

// LookupFunc fetches one carrier profile.
type LookupFunc func(ctx context.Context, mcNumber string) (domain.CarrierProfile, error)

// Item is the outcome for one MC number. Exactly one of Profile and Error is
// set.
type Item struct {
	MCNumber string                 `json:"mcNumber"`
	Profile  *domain.CarrierProfile `json:"profile,omitempty"`
	Error    string                 `json:"error,omitempty"`
	NotFound bool                   `json:"notFound,omitempty"`
}

// Report is the result of one run, with items in input order.
type Report struct {
	RunID     string        `json:"runId"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Items     []Item        `json:"items"`
}

// Runner executes lookups with bounded concurrency. A failing item never
// stops the others.
type Runner struct {
	Lookup      LookupFunc
	Workers     int
	ItemTimeout time.Duration
	// IsNotFound classifies lookup errors as "no such carrier".
	IsNotFound func(error) bool
}

func (r *Runner) Run(ctx context.Context, mcNumbers []string) Report {
	rep := Report{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
		Items:   make([]Item, len(mcNumbers)),
	}
	logger := log.With().Str("run", rep.RunID).Logger()

	workers := r.Workers
	if workers <= 0 {
		workers = 4
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, mc := range mcNumbers {
		wg.Add(1)
		go func(i int, mc string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			rep.Items[i] = r.one(ctx, mc)
			if rep.Items[i].Error != "" {
				logger.Warn().Str("mc", mc).Str("error", rep.Items[i].Error).Msg("batch lookup failed")
			}
		}(i, mc)
	}
	wg.Wait()

	for _, it := range rep.Items {
		if it.Profile != nil {
			rep.Succeeded++
		} else {
			rep.Failed++
		}
	}
	rep.Duration = time.Since(rep.Started)
	logger.Info().Int("succeeded", rep.Succeeded).Int("failed", rep.Failed).Dur("took", rep.Duration).Msg("batch finished")
	return rep
}

func (r *Runner) one(ctx context.Context, mc string) (it Item) {
	it.MCNumber = mc
	if err := ctx.Err(); err != nil {
		it.Error = err.Error()
		return it
	}
	if r.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.ItemTimeout)
		defer cancel()
	}
	defer func() {
		if p := recover(); p != nil {
			it.Profile = nil
			it.Error = "panic during lookup"
		}
	}()
	p, err := r.Lookup(ctx, mc)
	if err != nil {
		it.Error = err.Error()
		it.NotFound = r.IsNotFound != nil && r.IsNotFound(err)
		if errors.Is(err, context.DeadlineExceeded) {
			it.Error = "timed out"
		}
		return it
	}
	it.Profile = &p
	return it
}
