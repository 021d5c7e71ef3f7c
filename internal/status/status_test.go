package status

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type scriptedPinger struct {
	mu   sync.Mutex
	errs []error
	n    int
}

func (p *scriptedPinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.n >= len(p.errs) {
		return nil
	}
	err := p.errs[p.n]
	p.n++
	return err
}

func (p *scriptedPinger) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

func TestPollerStateTransitions(t *testing.T) {
	pinger := &scriptedPinger{errs: []error{nil, errors.New("down"), nil}}
	var mu sync.Mutex
	var seen []State
	p := NewPoller(pinger,
		WithInterval(10*time.Millisecond),
		WithStateChange(func(s State) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		}))

	p.Start(context.Background())
	defer p.Stop()

	deadline := time.After(time.Second)
	for pinger.calls() < 3 {
		select {
		case <-deadline:
			t.Fatal("poller did not keep its interval")
		case <-time.After(5 * time.Millisecond):
		}
	}
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	// Every cycle passes through pending before settling.
	wantPrefix := []State{Success, Pending, Error, Pending, Success}
	if len(seen) < len(wantPrefix) {
		t.Fatalf("transitions = %v", seen)
	}
	for i, s := range wantPrefix {
		if seen[i] != s {
			t.Fatalf("transition %d = %v, want %v (all: %v)", i, seen[i], s, seen)
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	p := NewPoller(&scriptedPinger{})
	p.Stop() // never started
	p.Start(context.Background())
	p.Stop()
}
