// Package captions renders and edits marker captions: the text label
// near each marker with its own offset and 0/90 degree orientation.
package captions

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/example/planedit/internal/api"
)

// Fetcher loads and stores caption placements. *api.Client satisfies
// it.
type Fetcher interface {
	FloorCaptions(ctx context.Context, floor string) ([]api.CaptionPlacement, error)
	PutCaption(ctx context.Context, uid uuid.UUID, data api.CaptionData) (api.CaptionPlacement, error)
}

// Bounds is the rendered text box of a caption, background padding
// included.
type Bounds struct {
	Width, Height float64
}

// Caption is one rendered label. Offset is relative to the marker
// center; Rotation is 0 or 90.
type Caption struct {
	Marker   api.MarkerSummary
	Offset   [2]int
	Rotation int
	Bounds   Bounds

	originOffset [2]int
	dragging     bool
}

// Rotated reports the 90 degree state.
func (c *Caption) Rotated() bool { return c.Rotation != 0 }

const bgPadding = 2

// MeasureText returns the caption text box for the marker number in
// the label face, padded like the rendered background rectangle.
func MeasureText(text string) Bounds {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	h := face.Metrics().Height.Ceil()
	return Bounds{
		Width:  float64(w + 2*bgPadding),
		Height: float64(h + 2*bgPadding),
	}
}

// TranslateParams computes the screen translation of a caption group
// from the marker center. The anchor depends on the text box and on
// the sign of the offset component along the reading axis; for rotated
// captions the whole vector is then turned a quarter turn. Keep the
// two steps in this order or captions jump when toggled between
// orientations.
func TranslateParams(rotated bool, offsetX, offsetY int, b Bounds) (float64, float64) {
	var x, y float64
	if rotated {
		if offsetY > 0 {
			x, y = b.Height/2, b.Width
		} else {
			x, y = b.Height/2, 0
		}
	} else {
		if offsetX > 0 {
			x, y = 0, b.Height/2
		} else {
			x, y = -b.Width, b.Height/2
		}
	}

	x += float64(offsetX)
	y += float64(offsetY)

	if rotated {
		x, y = -y, x
	}
	return x, y
}

// Placement returns the caption text origin in plan coordinates.
func (c *Caption) Placement() (float64, float64) {
	tx, ty := TranslateParams(c.Rotated(), c.Offset[0], c.Offset[1], c.Bounds)
	return float64(c.Marker.Position.CenterX) + tx, float64(c.Marker.Position.CenterY) + ty
}

// Registry indexes rendered captions by marker UID.
type Registry struct {
	mu       sync.Mutex
	captions map[uuid.UUID]*Caption
	store    Fetcher
	dragUID  uuid.UUID
	dragLive bool
}

func NewRegistry(store Fetcher) *Registry {
	return &Registry{
		captions: map[uuid.UUID]*Caption{},
		store:    store,
	}
}

// ShowAll fetches every placement for the floor and rebuilds the
// index.
func (r *Registry) ShowAll(ctx context.Context, floor string) error {
	placements, err := r.store.FloorCaptions(ctx, floor)
	if err != nil {
		return fmt.Errorf("captions: load floor %s: %w", floor, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captions = make(map[uuid.UUID]*Caption, len(placements))
	for _, p := range placements {
		r.applyLocked(p)
	}
	return nil
}

// HideAll removes every rendered caption and clears the index.
func (r *Registry) HideAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captions = map[uuid.UUID]*Caption{}
	r.dragLive = false
}

// Shown reports whether any captions are rendered.
func (r *Registry) Shown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.captions) > 0
}

// Get returns the rendered caption for a marker, or nil.
func (r *Registry) Get(uid uuid.UUID) *Caption {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.captions[uid]
}

// UIDs lists rendered captions.
func (r *Registry) UIDs() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uuid.UUID, 0, len(r.captions))
	for uid := range r.captions {
		out = append(out, uid)
	}
	return out
}

func (r *Registry) applyLocked(p api.CaptionPlacement) {
	c := &Caption{
		Marker: api.MarkerSummary{
			Marker:   p.Marker.Marker,
			Number:   p.Marker.Number,
			Position: p.Marker.Position,
			Layer:    p.Marker.Layer,
		},
		Offset:   p.Data.Offset,
		Rotation: p.Data.Rotation,
		Bounds:   MeasureText(p.Marker.Number),
	}
	c.originOffset = c.Offset
	r.captions[p.Marker.Marker] = c
}

// HitTest finds the caption whose rendered box covers the plan point.
func (r *Registry) HitTest(pt image.Point) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, c := range r.captions {
		x, y := c.Placement()
		var w, h float64
		if c.Rotated() {
			w, h = c.Bounds.Height, c.Bounds.Width
		} else {
			w, h = c.Bounds.Width, c.Bounds.Height
		}
		fx, fy := float64(pt.X), float64(pt.Y)
		if fx >= x && fx < x+w && fy >= y-h && fy < y {
			return uid, true
		}
	}
	return uuid.UUID{}, false
}

// StartDrag begins moving a caption. Reports false for unknown
// markers.
func (r *Registry) StartDrag(uid uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.captions[uid]
	if !ok {
		return false
	}
	c.originOffset = c.Offset
	c.dragging = true
	r.dragUID = uid
	r.dragLive = true
	return true
}

// Dragging reports whether a caption drag is in progress, letting the
// gesture controller delegate pointer-up handling here.
func (r *Registry) Dragging() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dragLive
}

// UpdateOffset applies a live move offset, in plan units, from the
// drag origin. No network traffic happens until release.
func (r *Registry) UpdateOffset(moveOffset [2]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.dragLive {
		return
	}
	c := r.captions[r.dragUID]
	c.Offset = [2]int{c.originOffset[0] + moveOffset[0], c.originOffset[1] + moveOffset[1]}
}

// FinishDrag persists the moved caption with one PUT and settles the
// drag baseline. On failure the offset reverts to the drag origin.
func (r *Registry) FinishDrag(ctx context.Context) error {
	r.mu.Lock()
	if !r.dragLive {
		r.mu.Unlock()
		return nil
	}
	uid := r.dragUID
	c := r.captions[uid]
	c.dragging = false
	r.dragLive = false
	offset := c.Offset
	r.mu.Unlock()

	rep, err := r.store.PutCaption(ctx, uid, api.CaptionData{Offset: &offset})
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		c.Offset = c.originOffset
		return fmt.Errorf("captions: save %s: %w", uid, err)
	}
	r.applyLocked(rep)
	return nil
}

// ToggleRotation flips a caption between 0 and 90 degrees and persists
// right away.
func (r *Registry) ToggleRotation(ctx context.Context, uid uuid.UUID) error {
	r.mu.Lock()
	c, ok := r.captions[uid]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("captions: no caption for %s", uid)
	}
	rotation := 90
	if c.Rotated() {
		rotation = 0
	}
	r.mu.Unlock()

	rep, err := r.store.PutCaption(ctx, uid, api.CaptionData{Rotation: &rotation})
	if err != nil {
		return fmt.Errorf("captions: rotate %s: %w", uid, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applyLocked(rep)
	return nil
}
