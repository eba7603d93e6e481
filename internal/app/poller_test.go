package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/five82/cinefind/internal/counter"
	"github.com/five82/cinefind/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	base := 30 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 30 * time.Second},
		{"negative failures", -1, 30 * time.Second},
		{"one failure", 1, 60 * time.Second},
		{"two failures", 2, 2 * time.Minute},
		{"three failures", 3, 4 * time.Minute},
		{"four failures capped", 4, 5 * time.Minute}, // Would be 8m, capped to 5m
		{"many failures capped", 40, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, base)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, base, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	for failures := 0; failures <= 100; failures++ {
		if got := calculateBackoff(failures, 2*time.Second); got > maxBackoff {
			t.Errorf("calculateBackoff(%d) = %v, exceeds maxBackoff %v", failures, got, maxBackoff)
		}
	}
}

type fakeTrender struct {
	mu      sync.Mutex
	entries []counter.Entry
	err     error
	limits  []int
}

func (f *fakeTrender) Trending(_ context.Context, limit int) ([]counter.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, limit)
	return f.entries, f.err
}

func TestPollerRefresh_UpdatesStore(t *testing.T) {
	store := &state.Store{}
	src := &fakeTrender{entries: []counter.Entry{{Term: "batman", Count: 4}}}
	p := Poller{Store: store, Source: src, Limit: 5}

	p.refresh(context.Background())

	snap := store.Snapshot()
	if !snap.HasTrending || len(snap.Trending) != 1 || snap.Trending[0].Term != "batman" {
		t.Fatalf("snapshot = %#v, want batman entry", snap)
	}
	if len(src.limits) != 1 || src.limits[0] != 5 {
		t.Fatalf("limits = %v, want [5]", src.limits)
	}
}

func TestPollerRefresh_FailureKeepsPreviousList(t *testing.T) {
	store := &state.Store{}
	store.Update([]counter.Entry{{Term: "alien"}}, nil)

	p := Poller{Store: store, Source: &fakeTrender{err: errors.New("db locked")}, Limit: 5}
	p.refresh(context.Background())

	snap := store.Snapshot()
	if snap.ConsecutiveFailures != 1 || snap.LastError == nil {
		t.Fatalf("snapshot = %#v, want one recorded failure", snap)
	}
	if len(snap.Trending) != 1 || snap.Trending[0].Term != "alien" {
		t.Fatalf("trending = %#v, want previous list kept", snap.Trending)
	}
}

func TestPollerRefresh_CancelledContextRecordsNothing(t *testing.T) {
	store := &state.Store{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Poller{Store: store, Source: &fakeTrender{err: context.Canceled}, Limit: 5}
	p.refresh(ctx)

	if snap := store.Snapshot(); snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("snapshot = %#v, want untouched on shutdown", snap)
	}
}

func TestPollerStart_RefreshesImmediately(t *testing.T) {
	store := &state.Store{}
	src := &fakeTrender{entries: []counter.Entry{{Term: "heat"}}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	Poller{Store: store, Source: src, Interval: time.Hour, Limit: 3}.Start(ctx)

	deadline := time.After(2 * time.Second)
	for !store.Snapshot().HasTrending {
		select {
		case <-deadline:
			t.Fatalf("poller never refreshed the store")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

type blockingTrender struct {
	started chan struct{}
	once    sync.Once
}

func (b *blockingTrender) Trending(ctx context.Context, _ int) ([]counter.Entry, error) {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPollerStart_DoneClosesAfterCancel(t *testing.T) {
	store := &state.Store{}
	src := &blockingTrender{started: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	done := Poller{Store: store, Source: src, Interval: time.Hour, Limit: 3}.Start(ctx)

	select {
	case <-src.started:
	case <-time.After(2 * time.Second):
		t.Fatal("poller never called the source")
	}
	select {
	case <-done:
		t.Fatal("done closed before cancel")
	default:
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("done not closed after cancel")
	}
	if snap := store.Snapshot(); snap.ConsecutiveFailures != 0 {
		t.Fatalf("snapshot = %#v, want no failure recorded on shutdown", snap)
	}
}
