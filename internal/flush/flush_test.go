package flush

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]uuid.UUID
}

func (r *recorder) flush(ids []uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, ids)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func TestTouchesCoalesceIntoOneFlush(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(30*time.Millisecond, rec.flush)
	defer s.Close()

	id := uuid.New()
	for i := 0; i < 10; i++ {
		s.Touch(id)
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Fatalf("flush count = %d, want 1", got)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.batches[0]) != 1 || rec.batches[0][0] != id {
		t.Fatalf("flushed ids = %v, want [%v]", rec.batches[0], id)
	}
}

func TestFlushNowSkipsTheWindow(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(time.Hour, rec.flush)
	defer s.Close()

	a, b := uuid.New(), uuid.New()
	s.Touch(a)
	s.Touch(b)
	s.FlushNow()

	if got := rec.count(); got != 1 {
		t.Fatalf("flush count = %d, want 1", got)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.batches[0]) != 2 {
		t.Fatalf("flushed %d ids, want 2", len(rec.batches[0]))
	}
	if s.Pending(a) || s.Pending(b) {
		t.Fatal("dirty set should clear after flush")
	}
}

func TestIndependentSchedulersDoNotShareTimers(t *testing.T) {
	recA, recB := &recorder{}, &recorder{}
	sa := NewScheduler(20*time.Millisecond, recA.flush)
	sb := NewScheduler(time.Hour, recB.flush)
	defer sa.Close()
	defer sb.Close()

	sa.Touch(uuid.New())
	sb.Touch(uuid.New())

	time.Sleep(80 * time.Millisecond)
	if recA.count() != 1 {
		t.Fatalf("scope A flush count = %d, want 1", recA.count())
	}
	if recB.count() != 0 {
		t.Fatalf("scope B flushed early: count = %d", recB.count())
	}
}

func TestCloseCancelsPendingFlush(t *testing.T) {
	rec := &recorder{}
	s := NewScheduler(10*time.Millisecond, rec.flush)
	s.Touch(uuid.New())
	s.Close()

	time.Sleep(50 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("flush fired after Close: count = %d", rec.count())
	}
}
