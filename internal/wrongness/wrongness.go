// Package wrongness tracks the reviewer's per-variable correctness
// marks on the legacy review panels.
package wrongness

import (
	"sync"

	"github.com/google/uuid"

	"github.com/example/planedit/internal/api"
)

// Registry indexes wrong-marks by marker and variable key.
type Registry struct {
	mu    sync.Mutex
	index map[uuid.UUID]map[string]bool
	order map[uuid.UUID][]string
}

func NewRegistry() *Registry {
	return &Registry{
		index: map[uuid.UUID]map[string]bool{},
		order: map[uuid.UUID][]string{},
	}
}

// Register records a variable's current wrong state when its row is
// first rendered.
func (r *Registry) Register(marker uuid.UUID, key string, wrong bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[marker]; !ok {
		r.index[marker] = map[string]bool{}
	}
	if _, seen := r.index[marker][key]; !seen {
		r.order[marker] = append(r.order[marker], key)
	}
	r.index[marker][key] = wrong
}

// Sync applies a server echo after a toggle call. Unknown markers or
// keys are ignored.
func (r *Registry) Sync(rep api.VariableSync) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vars, ok := r.index[rep.Marker]
	if !ok {
		return
	}
	if _, ok := vars[rep.Variable.Key]; !ok {
		return
	}
	vars[rep.Variable.Key] = rep.Variable.Wrong
}

// Status reports a variable's wrong state and whether it is known.
func (r *Registry) Status(marker uuid.UUID, key string) (wrong, known bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vars, ok := r.index[marker]
	if !ok {
		return false, false
	}
	wrong, known = vars[key]
	return wrong, known
}

// Data lists a marker's variables with their wrong state in
// registration order, or nil when the marker is unknown.
func (r *Registry) Data(marker uuid.UUID) []api.Variable {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys, ok := r.order[marker]
	if !ok {
		return nil
	}
	out := make([]api.Variable, 0, len(keys))
	for _, key := range keys {
		out = append(out, api.Variable{Key: key, Wrong: r.index[marker][key]})
	}
	return out
}

// Drop forgets a marker after deletion.
func (r *Registry) Drop(marker uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.index, marker)
	delete(r.order, marker)
}
