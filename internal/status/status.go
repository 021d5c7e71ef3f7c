// Package status drives the connectivity indicator with a periodic
// liveness call. Purely cosmetic: fixed interval, no backoff.
package status

import (
	"context"
	"sync"
	"time"
)

type State int

const (
	Pending State = iota
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "unknown"
}

// Pinger is the liveness call. *api.Client satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	DefaultInterval = 20 * time.Second
	pingTimeout     = 3 * time.Second
)

// Poller checks liveness on a fixed interval. Each cycle goes pending
// first, then success or error from the call result.
type Poller struct {
	ping     Pinger
	interval time.Duration

	mu       sync.Mutex
	state    State
	onChange func(State)
	cancel   context.CancelFunc
	done     chan struct{}
}

type Option func(*Poller)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithStateChange installs the indicator update hook.
func WithStateChange(fn func(State)) Option {
	return func(p *Poller) { p.onChange = fn }
}

func NewPoller(ping Pinger, opts ...Option) *Poller {
	p := &Poller{
		ping:     ping,
		interval: DefaultInterval,
		state:    Pending,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// State returns the latest indicator state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) set(s State) {
	p.mu.Lock()
	changed := p.state != s
	p.state = s
	fn := p.onChange
	p.mu.Unlock()
	if changed && fn != nil {
		fn(s)
	}
}

// Start begins polling until Stop or context cancellation. The first
// check runs immediately.
func (p *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		p.check(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.check(ctx)
			}
		}
	}()
}

// Stop halts polling and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) check(ctx context.Context) {
	p.set(Pending)
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.ping.Ping(ctx); err != nil {
		p.set(Error)
		return
	}
	p.set(Success)
}
