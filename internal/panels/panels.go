// Package panels manages the pop-up infoplan editors bound to markers.
// A panel holds editable per-side text plus the comment thread; bulk
// panels edit several same-shape markers at once.
package panels

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/google/uuid"

	"github.com/example/planedit/internal/api"
	"github.com/example/planedit/internal/plan"
)

// ErrMixedSides rejects bulk editing of markers whose layer kinds have
// different side counts.
var ErrMixedSides = errors.New("panels: markers have different side counts")

// Store is the marker data backend. *api.Client satisfies it.
type Store interface {
	GetMarker(ctx context.Context, uid uuid.UUID, pretty bool) (api.MarkerDetail, error)
	FetchMany(ctx context.Context, uids []uuid.UUID) ([]api.MarkerDetail, error)
	PutInfoplan(ctx context.Context, uid uuid.UUID, infoplan []plan.Side, fingerpost *api.FingerpostMetadata) (api.MarkerDetail, error)
	SubmitMany(ctx context.Context, infoplan []plan.Side, uids []uuid.UUID) error
	ResolveAllComments(ctx context.Context, uid uuid.UUID) (api.MarkerSummary, error)
}

// Centers resolves marker screen centers for panel placement.
type Centers interface {
	ScreenCenter(uid uuid.UUID) (image.Point, bool)
}

// Synchronizer receives server echoes after panel saves so marker
// glyphs stay current.
type Synchronizer interface {
	Sync(rep api.MarkerSummary)
}

// SideField is one editable side of a panel, text in the `;\n`
// delimited convention.
type SideField struct {
	Number int
	Text   string
}

// Panel is one open editor. Bulk panels carry several UIDs; their
// fields hold the common value per side, or blank where the selected
// markers disagree.
type Panel struct {
	UIDs     []uuid.UUID
	Sides    []SideField
	Comments []plan.Comment
	Draft    string // new-comment input
	Panes    []plan.Pane
	Pos      image.Point
	Visible  bool
	Focused  bool
}

// Bulk reports whether the panel edits several markers.
func (p *Panel) Bulk() bool { return len(p.UIDs) > 1 }

// panelOffset is the diagonal delta from the marker's screen center
// at 1x zoom; the marker circle itself is never covered by its own
// panel. Placement scales it with the current zoom so the clearance
// tracks the rendered marker size.
const panelOffset = 20

// Registry indexes open panels by their anchor marker.
type Registry struct {
	mu      sync.Mutex
	panels  map[uuid.UUID]*Panel
	store   Store
	centers Centers
	markers Synchronizer
	alert   func(msg string)
	zoom    func() float64
	pretty  bool
}

type Option func(*Registry)

// WithAlert installs the blocking user-facing message hook.
func WithAlert(fn func(msg string)) Option {
	return func(r *Registry) { r.alert = fn }
}

// WithPretty requests human-readable variable rendering from the
// server, used by the read-only review surface.
func WithPretty(pretty bool) Option {
	return func(r *Registry) { r.pretty = pretty }
}

// WithZoom supplies the live zoom factor used to scale panel
// placement offsets.
func WithZoom(fn func() float64) Option {
	return func(r *Registry) { r.zoom = fn }
}

func NewRegistry(store Store, centers Centers, markers Synchronizer, opts ...Option) *Registry {
	r := &Registry{
		panels:  map[uuid.UUID]*Panel{},
		store:   store,
		centers: centers,
		markers: markers,
		alert:   func(string) {},
		zoom:    func() float64 { return 1 },
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Get returns the panel anchored at a marker, or nil.
func (r *Registry) Get(uid uuid.UUID) *Panel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.panels[uid]
}

// Open lists the anchor UIDs of rendered panels.
func (r *Registry) Open() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uuid.UUID, 0, len(r.panels))
	for uid := range r.panels {
		out = append(out, uid)
	}
	return out
}

// Show opens the editor for one marker. An already rendered panel is
// just made visible and focused; otherwise the full marker data is
// fetched and a new panel is placed near the marker.
func (r *Registry) Show(ctx context.Context, uid uuid.UUID) error {
	r.mu.Lock()
	if p, ok := r.panels[uid]; ok {
		p.Visible = true
		r.focusLocked(p)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	detail, err := r.store.GetMarker(ctx, uid, r.pretty)
	if err != nil {
		return fmt.Errorf("panels: load marker %s: %w", uid, err)
	}

	p := &Panel{
		UIDs:     []uuid.UUID{uid},
		Comments: detail.Comments,
		Visible:  true,
	}
	for _, side := range detail.Infoplan {
		p.Sides = append(p.Sides, SideField{
			Number: side.Number,
			Text:   plan.FormatSideText(side.Variables),
		})
	}
	if detail.FingerpostData != nil {
		p.Panes = detail.FingerpostData.Panes
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p.Pos = r.placementLocked(uid)
	r.panels[uid] = p
	r.focusLocked(p)
	return nil
}

// ShowMany opens one shared editor for several markers. Markers whose
// layer kinds disagree on side count cannot be edited together; the
// call aborts with a blocking message and no panel.
func (r *Registry) ShowMany(ctx context.Context, uids []uuid.UUID) error {
	if len(uids) == 0 {
		return nil
	}
	if len(uids) == 1 {
		return r.Show(ctx, uids[0])
	}

	details, err := r.store.FetchMany(ctx, uids)
	if err != nil {
		return fmt.Errorf("panels: load markers: %w", err)
	}
	sideCount := 0
	for _, d := range details {
		n := len(d.Infoplan)
		if sideCount == 0 {
			sideCount = n
		} else if n != sideCount {
			r.alert("Нельзя редактировать вместе маркеры с разным числом сторон.")
			return ErrMixedSides
		}
	}

	p := &Panel{UIDs: uids, Visible: true}
	for i := 0; i < sideCount; i++ {
		p.Sides = append(p.Sides, SideField{
			Number: i + 1,
			Text:   commonSideText(details, i),
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p.Pos = r.placementLocked(uids[0])
	r.panels[uids[0]] = p
	r.focusLocked(p)
	return nil
}

// commonSideText returns the shared value of side i across all
// markers, or blank when they disagree.
func commonSideText(details []api.MarkerDetail, i int) string {
	common := plan.FormatSideText(details[0].Infoplan[i].Variables)
	for _, d := range details[1:] {
		if plan.FormatSideText(d.Infoplan[i].Variables) != common {
			return ""
		}
	}
	return common
}

// Hide toggles visibility only; the panel state stays for a quick
// reopen.
func (r *Registry) Hide(uid uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.panels[uid]
	if !ok {
		return false
	}
	p.Visible = false
	p.Focused = false
	return true
}

// HideAll hides every open panel; canvas clicks call this before
// resolving.
func (r *Registry) HideAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.panels {
		p.Visible = false
		p.Focused = false
	}
}

// Drop tears a panel down entirely.
func (r *Registry) Drop(uid uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.panels, uid)
}

// DropAll tears every panel down; floor switches call this so panels
// anchored to markers of the old floor do not survive the swap.
func (r *Registry) DropAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panels = map[uuid.UUID]*Panel{}
}

// Save submits a single panel's edited infoplan with one PUT. On
// success the panel is dropped and the marker glyphs refreshed; on
// failure a blocking message is shown and the panel stays editable.
func (r *Registry) Save(ctx context.Context, uid uuid.UUID) error {
	r.mu.Lock()
	p, ok := r.panels[uid]
	if !ok || p.Bulk() {
		r.mu.Unlock()
		return fmt.Errorf("panels: no single panel for %s", uid)
	}
	infoplan := parseSides(p.Sides)
	fingerpost := fingerpostPayload(p.Panes)
	r.mu.Unlock()

	detail, err := r.store.PutInfoplan(ctx, uid, infoplan, fingerpost)
	if err != nil {
		r.alert("Возникла ошибка при сохранении.\nПопробуйте чуть позже или обратитесь к администратору.")
		return fmt.Errorf("panels: save %s: %w", uid, err)
	}
	r.markers.Sync(detail.MarkerSummary)
	r.Drop(uid)
	return nil
}

// SaveMany submits a bulk panel to the batch endpoint.
func (r *Registry) SaveMany(ctx context.Context, anchor uuid.UUID) error {
	r.mu.Lock()
	p, ok := r.panels[anchor]
	if !ok || !p.Bulk() {
		r.mu.Unlock()
		return fmt.Errorf("panels: no bulk panel at %s", anchor)
	}
	infoplan := parseSides(p.Sides)
	uids := p.UIDs
	r.mu.Unlock()

	if err := r.store.SubmitMany(ctx, infoplan, uids); err != nil {
		r.alert("Возникла ошибка при сохранении.\nПопробуйте чуть позже или обратитесь к администратору.")
		return fmt.Errorf("panels: bulk save: %w", err)
	}
	r.Drop(anchor)
	return nil
}

// ResolveAll marks every comment of a marker resolved and closes its
// panel.
func (r *Registry) ResolveAll(ctx context.Context, uid uuid.UUID) error {
	rep, err := r.store.ResolveAllComments(ctx, uid)
	if err != nil {
		return fmt.Errorf("panels: resolve comments %s: %w", uid, err)
	}
	r.markers.Sync(rep)
	r.Drop(uid)
	return nil
}

// Reposition recomputes one panel's position after its marker settled.
func (r *Registry) Reposition(uid uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.panels[uid]; ok {
		p.Pos = r.placementLocked(uid)
	}
}

// RepositionAll recomputes every open panel's position; called on each
// zoom change since marker centers are in plan units but panels in
// screen pixels.
func (r *Registry) RepositionAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, p := range r.panels {
		p.Pos = r.placementLocked(uid)
	}
}

// AnyFocused reports whether some panel has keyboard focus, which
// suppresses the global shortcuts.
func (r *Registry) AnyFocused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.panels {
		if p.Visible && p.Focused {
			return true
		}
	}
	return false
}

// Blur drops keyboard focus from every panel.
func (r *Registry) Blur() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.panels {
		p.Focused = false
	}
}

// Focus gives the panel keyboard focus, removing it everywhere else.
func (r *Registry) Focus(uid uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.panels[uid]; ok && p.Visible {
		r.focusLocked(p)
	}
}

func (r *Registry) focusLocked(p *Panel) {
	for _, other := range r.panels {
		other.Focused = false
	}
	p.Focused = true
}

func (r *Registry) placementLocked(uid uuid.UUID) image.Point {
	off := int(panelOffset * r.zoom())
	if off < panelOffset {
		off = panelOffset
	}
	center, ok := r.centers.ScreenCenter(uid)
	if !ok {
		return image.Pt(off, off)
	}
	return center.Add(image.Pt(off, off))
}

func parseSides(fields []SideField) []plan.Side {
	out := make([]plan.Side, 0, len(fields))
	for _, f := range fields {
		out = append(out, plan.Side{
			Number:    f.Number,
			Variables: plan.ParseSideText(f.Text),
		})
	}
	return out
}

func fingerpostPayload(panes []plan.Pane) *api.FingerpostMetadata {
	if len(panes) == 0 {
		return nil
	}
	return &api.FingerpostMetadata{Panes: panes}
}
