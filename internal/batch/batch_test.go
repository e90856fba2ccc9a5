package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/carrierscope/internal/domain"
)

var errMissing = errors.New("missing")

func TestRun_IsolatesFailuresAndKeepsOrder(t *testing.T) {
	r := &Runner{
		Workers: 2,
		Lookup: func(ctx context.Context, mc string) (domain.CarrierProfile, error) {
			switch mc {
			case "bad":
				return domain.CarrierProfile{}, errors.New("upstream down")
			case "gone":
				return domain.CarrierProfile{}, errMissing
			case "boom":
				panic("unexpected")
			}
			return domain.CarrierProfile{MCNumber: mc}, nil
		},
		IsNotFound: func(err error) bool { return errors.Is(err, errMissing) },
	}

	rep := r.Run(context.Background(), []string{"1", "bad", "2", "gone", "boom", "3"})
	if rep.RunID == "" {
		t.Fatalf("missing run id")
	}
	if rep.Succeeded != 3 || rep.Failed != 3 {
		t.Fatalf("succeeded=%d failed=%d", rep.Succeeded, rep.Failed)
	}
	wantMC := []string{"1", "bad", "2", "gone", "boom", "3"}
	for i, it := range rep.Items {
		if it.MCNumber != wantMC[i] {
			t.Fatalf("item %d is %q, want %q", i, it.MCNumber, wantMC[i])
		}
	}
	if rep.Items[1].Error != "upstream down" || rep.Items[1].NotFound {
		t.Fatalf("bad item %+v", rep.Items[1])
	}
	if !rep.Items[3].NotFound {
		t.Fatalf("gone item should be not found: %+v", rep.Items[3])
	}
	if rep.Items[4].Profile != nil || rep.Items[4].Error == "" {
		t.Fatalf("panicking item %+v", rep.Items[4])
	}
	if rep.Items[5].Profile == nil || rep.Items[5].Profile.MCNumber != "3" {
		t.Fatalf("last item %+v", rep.Items[5])
	}
}

func TestRun_BoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	r := &Runner{
		Workers: 3,
		Lookup: func(ctx context.Context, mc string) (domain.CarrierProfile, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return domain.CarrierProfile{MCNumber: mc}, nil
		},
	}
	mcs := make([]string, 12)
	for i := range mcs {
		mcs[i] = string(rune('a' + i))
	}
	r.Run(context.Background(), mcs)
	if peak > 3 {
		t.Fatalf("peak concurrency %d exceeds 3", peak)
	}
}

func TestRun_ItemTimeout(t *testing.T) {
	r := &Runner{
		ItemTimeout: 20 * time.Millisecond,
		Lookup: func(ctx context.Context, mc string) (domain.CarrierProfile, error) {
			<-ctx.Done()
			return domain.CarrierProfile{}, ctx.Err()
		},
	}
	rep := r.Run(context.Background(), []string{"slow"})
	if rep.Items[0].Error != "timed out" {
		t.Fatalf("item %+v", rep.Items[0])
	}
}
