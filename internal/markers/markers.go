// Package markers keeps the authoritative in-memory state of every
// marker on the current page. Rendering reads from here; server echoes
// are folded back in through Sync.
package markers

import (
	"context"
	"image"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/planedit/internal/api"
	"github.com/example/planedit/internal/flush"
	"github.com/example/planedit/internal/geometry"
	"github.com/example/planedit/internal/plan"
)

// GeometryPersister saves a marker's position and rotation.
// *api.Client satisfies it.
type GeometryPersister interface {
	PatchGeometry(ctx context.Context, uid uuid.UUID, pos plan.Position) (api.MarkerSummary, error)
}

// Visibility reports whether a layer is currently shown.
type Visibility interface {
	Visible(layerTitle string) bool
}

// PanelMover is notified when a marker's screen position settles so an
// open editor panel can follow it.
type PanelMover interface {
	Reposition(uid uuid.UUID)
}

type entry struct {
	marker     *plan.Marker
	center     image.Point // cached screen-space center
	dragOrigin plan.Position
	dragging   bool
}

// Registry indexes markers by UID and owns the geometry write-back
// debounce. The flush timer fires on its own goroutine, so all state
// is guarded by one mutex.
type Registry struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	view    geometry.Viewport
	layers  Visibility
	persist GeometryPersister
	panels  PanelMover
	sched   *flush.Scheduler

	rectSet          bool
	rectMin, rectMax image.Point
}

type Option func(*Registry)

// WithPanelMover wires panel repositioning on drag release.
func WithPanelMover(p PanelMover) Option {
	return func(r *Registry) { r.panels = p }
}

// WithFlushDelay overrides the geometry write-back quiet period.
func WithFlushDelay(d time.Duration) Option {
	return func(r *Registry) {
		r.sched.Close()
		r.sched = flush.NewScheduler(d, r.flushGeometry)
	}
}

func NewRegistry(view geometry.Viewport, layers Visibility, persist GeometryPersister, opts ...Option) *Registry {
	r := &Registry{
		entries: map[uuid.UUID]*entry{},
		view:    view,
		layers:  layers,
		persist: persist,
	}
	r.sched = flush.NewScheduler(flush.DefaultDelay, r.flushGeometry)
	for _, o := range opts {
		o(r)
	}
	return r
}

// Close stops the write-back scheduler. Pending touches are dropped.
func (r *Registry) Close() {
	r.sched.Close()
}

// Register indexes a marker and caches its screen-space center for the
// current viewport.
func (r *Registry) Register(m *plan.Marker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &entry{marker: m}
	e.center = r.screenCenter(m)
	r.entries[m.UID] = e
}

// Get returns the registered marker, or nil.
func (r *Registry) Get(uid uuid.UUID) *plan.Marker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[uid]; ok {
		return e.marker
	}
	return nil
}

// UIDs lists registered markers sorted by number for stable rendering.
func (r *Registry) UIDs() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uuid.UUID, 0, len(r.entries))
	for uid := range r.entries {
		out = append(out, uid)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.entries[out[i]].marker.Number < r.entries[out[j]].marker.Number
	})
	return out
}

// Sync folds a server echo into the in-memory marker. Idempotent; a
// stale echo for a marker mid-drag must not clobber its live geometry.
func (r *Registry) Sync(rep api.MarkerSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncLocked(rep)
}

func (r *Registry) syncLocked(rep api.MarkerSummary) {
	e, ok := r.entries[rep.Marker]
	if !ok {
		return
	}
	if e.dragging || r.sched.Pending(rep.Marker) {
		pos := e.marker.Position
		rep.ApplyTo(e.marker)
		e.marker.Position = pos
		e.marker.Persist = plan.Pending
		return
	}
	rep.ApplyTo(e.marker)
	e.center = r.screenCenter(e.marker)
}

// Delete drops a marker from the index.
func (r *Registry) Delete(uid uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, uid)
}

// Render walks every marker, reports selection membership through the
// predicate, and lets the caller mutate its own selection via onToggle.
// Rectangle selection and click selection share this one pass.
func (r *Registry) Render(selected func(uid uuid.UUID) bool, onToggle func(uid uuid.UUID, selected bool)) map[uuid.UUID]bool {
	r.mu.Lock()
	uids := make([]uuid.UUID, 0, len(r.entries))
	for uid := range r.entries {
		uids = append(uids, uid)
	}
	r.mu.Unlock()

	out := make(map[uuid.UUID]bool, len(uids))
	for _, uid := range uids {
		in := selected(uid)
		out[uid] = in
		if onToggle != nil {
			onToggle(uid, in)
		}
	}
	return out
}

// SetSelectionRect defines the live selection rectangle in screen
// pixels. Bounds are sorted so min < max regardless of drag direction.
func (r *Registry) SetSelectionRect(a, b image.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rectSet = true
	r.rectMin = image.Pt(min(a.X, b.X), min(a.Y, b.Y))
	r.rectMax = image.Pt(max(a.X, b.X), max(a.Y, b.Y))
}

// ClearSelectionRect drops the rectangle once a gesture resolves.
func (r *Registry) ClearSelectionRect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rectSet = false
}

// SelectionRect returns the normalized rectangle for overlay drawing.
func (r *Registry) SelectionRect() (image.Rectangle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.rectSet {
		return image.Rectangle{}, false
	}
	return image.Rectangle{Min: r.rectMin, Max: r.rectMax}, true
}

// IsInsideSelectionRect tests marker-center containment. A marker on a
// hidden layer is never inside, whatever its geometry.
func (r *Registry) IsInsideSelectionRect(uid uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[uid]
	if !ok || !r.rectSet {
		return false
	}
	if !r.layers.Visible(e.marker.Layer.Title) {
		return false
	}
	return e.center.X >= r.rectMin.X && e.center.X < r.rectMax.X &&
		e.center.Y >= r.rectMin.Y && e.center.Y < r.rectMax.Y
}

// HitTest returns the marker whose circle covers the screen point, if
// any. Hidden layers are skipped.
func (r *Registry) HitTest(pt image.Point, radius int) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, e := range r.entries {
		if !r.layers.Visible(e.marker.Layer.Title) {
			continue
		}
		dx, dy := pt.X-e.center.X, pt.Y-e.center.Y
		if dx*dx+dy*dy <= radius*radius {
			return uid, true
		}
	}
	return uuid.UUID{}, false
}

// UpdateRotation applies a relative rotation to each marker, marks it
// pending, and (re)starts the debounced write-back.
func (r *Registry) UpdateRotation(uids []uuid.UUID, delta int) {
	r.mu.Lock()
	for _, uid := range uids {
		e, ok := r.entries[uid]
		if !ok {
			continue
		}
		e.marker.Rotate(delta)
		e.marker.Persist = plan.Pending
	}
	r.mu.Unlock()
	r.sched.Touch(uids...)
}

// StartDrag records each marker's baseline position before live
// offsets apply.
func (r *Registry) StartDrag(uids []uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, uid := range uids {
		if e, ok := r.entries[uid]; ok {
			e.dragOrigin = e.marker.Position
			e.dragging = true
		}
	}
}

// UpdateMarkerPosition applies a live pixel offset from the drag
// baseline. The screen cache moves with the marker so hit-testing and
// rectangle containment stay correct mid-drag.
func (r *Registry) UpdateMarkerPosition(uids []uuid.UUID, offset image.Point) {
	r.mu.Lock()
	zoom := r.view.Zoom()
	for _, uid := range uids {
		e, ok := r.entries[uid]
		if !ok || !e.dragging {
			continue
		}
		e.marker.Position.CenterX = e.dragOrigin.CenterX + int(float64(offset.X)/zoom)
		e.marker.Position.CenterY = e.dragOrigin.CenterY + int(float64(offset.Y)/zoom)
		e.marker.Persist = plan.Pending
		e.center = r.screenCenter(e.marker)
	}
	r.mu.Unlock()
	r.sched.Touch(uids...)
}

// FinishMovement settles a drag: recaches screen centers, resets drag
// baselines, repositions open panels, and flushes geometry right away.
func (r *Registry) FinishMovement(uids []uuid.UUID) {
	r.mu.Lock()
	for _, uid := range uids {
		e, ok := r.entries[uid]
		if !ok {
			continue
		}
		e.dragging = false
		e.dragOrigin = e.marker.Position
		e.center = r.screenCenter(e.marker)
	}
	panels := r.panels
	r.mu.Unlock()

	if panels != nil {
		for _, uid := range uids {
			panels.Reposition(uid)
		}
	}
	r.sched.FlushNow()
}

// RefreshCenters recomputes every cached screen center after a zoom or
// pan change.
func (r *Registry) RefreshCenters() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		e.center = r.screenCenter(e.marker)
	}
}

// ScreenCenter returns the cached screen-space center.
func (r *Registry) ScreenCenter(uid uuid.UUID) (image.Point, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[uid]
	if !ok {
		return image.Point{}, false
	}
	return e.center, true
}

// PersistState reports a marker's pending/confirmed/failed state for
// the status glyph.
func (r *Registry) PersistState(uid uuid.UUID) plan.PersistState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[uid]; ok {
		return e.marker.Persist
	}
	return plan.Confirmed
}

func (r *Registry) screenCenter(m *plan.Marker) image.Point {
	probe := geometry.NewProbe(r.view)
	return probe.ToScreen(image.Pt(m.Position.CenterX, m.Position.CenterY))
}

// flushGeometry sends one PATCH per touched marker with its current
// in-memory geometry. The touched set is already cleared by the
// scheduler; failures are logged, not retried.
func (r *Registry) flushGeometry(uids []uuid.UUID) {
	for _, uid := range uids {
		r.mu.Lock()
		e, ok := r.entries[uid]
		var pos plan.Position
		if ok {
			pos = e.marker.Position
		}
		r.mu.Unlock()
		if !ok {
			continue
		}
		rep, err := r.persist.PatchGeometry(context.Background(), uid, pos)
		if err != nil {
			log.Printf("markers: persist geometry %s: %v", uid, err)
			r.mu.Lock()
			if e, ok := r.entries[uid]; ok {
				e.marker.Persist = plan.Failed
			}
			r.mu.Unlock()
			continue
		}
		r.Sync(rep)
	}
}
