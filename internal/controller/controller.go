// Package controller is the gesture state machine tying pointer and
// keyboard input to the marker, caption and panel registries.
package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log"

	"github.com/google/uuid"

	"github.com/example/planedit/internal/api"
	"github.com/example/planedit/internal/plan"
)

// Mode is the radio-button tool choice.
type Mode int

const (
	ModeInsert Mode = iota
	ModeSelect
	ModeCaption
)

func (m Mode) String() string {
	switch m {
	case ModeInsert:
		return "insert"
	case ModeSelect:
		return "select"
	case ModeCaption:
		return "caption"
	}
	return "unknown"
}

// Gesture is the single in-progress pointer gesture, orthogonal to the
// tool mode.
type Gesture int

const (
	GestureNone Gesture = iota
	GestureRect
	GestureMarkerDrag
	GestureCaptionDrag
)

// Modifiers carries the held modifier keys of an input event.
type Modifiers struct {
	Shift bool // extend selection / 10x nudge
	Alt   bool // duplicate-on-drag
}

// Markers is the marker registry surface the controller drives.
type Markers interface {
	Register(m *plan.Marker)
	Delete(uid uuid.UUID)
	Sync(rep api.MarkerSummary)
	Render(selected func(uuid.UUID) bool, onToggle func(uuid.UUID, bool)) map[uuid.UUID]bool
	HitTest(pt image.Point, radius int) (uuid.UUID, bool)
	SetSelectionRect(a, b image.Point)
	ClearSelectionRect()
	IsInsideSelectionRect(uid uuid.UUID) bool
	StartDrag(uids []uuid.UUID)
	UpdateMarkerPosition(uids []uuid.UUID, offset image.Point)
	UpdateRotation(uids []uuid.UUID, delta int)
	FinishMovement(uids []uuid.UUID)
}

// Captions is the caption registry surface used during caption drags.
type Captions interface {
	Dragging() bool
	HitTest(pt image.Point) (uuid.UUID, bool)
	StartDrag(uid uuid.UUID) bool
	UpdateOffset(moveOffset [2]int)
	FinishDrag(ctx context.Context) error
	ToggleRotation(ctx context.Context, uid uuid.UUID) error
}

// Panels is the editor panel surface.
type Panels interface {
	Show(ctx context.Context, uid uuid.UUID) error
	ShowMany(ctx context.Context, uids []uuid.UUID) error
	Drop(uid uuid.UUID)
	HideAll()
	AnyFocused() bool
}

// Layers resolves the insert target layer.
type Layers interface {
	Active() string
	ShiftActiveToVisible()
}

// Backend is the server surface for insert, delete and paste.
type Backend interface {
	CreateMarker(ctx context.Context, req api.CreateMarkerRequest) (api.MarkerSummary, error)
	DeleteMarker(ctx context.Context, uid uuid.UUID) error
	CloneFromClipboard(ctx context.Context, req api.ClipboardRequest) ([]api.MarkerSummary, error)
}

// TextClipboard moves the serialized selection through the system
// clipboard.
type TextClipboard interface {
	ReadText() string
	WriteText(text string)
}

// Planner maps screen points to plan coordinates.
type Planner interface {
	ToPlan(pt image.Point) image.Point
}

// Config carries the page context a controller operates in.
type Config struct {
	Project       uuid.UUID
	Page          string
	LayerCatalog  map[string]plan.Layer
	Authenticated bool
	MarkerRadius  int
}

const (
	// pointer deltas below this collapse to a plain click
	collapseThreshold = 3

	positionStep = 1
	rotationStep = 5
	accelFactor  = 10
)

// Controller owns the tool mode, the gesture state and the selection
// set. It is driven from the single UI event loop and is not safe for
// concurrent use.
type Controller struct {
	cfg      Config
	markers  Markers
	captions Captions
	panels   Panels
	layers   Layers
	backend  Backend
	clip     TextClipboard
	planner  Planner

	mode    Mode
	gesture Gesture

	// selection keeps its pick order; selIndex backs membership tests.
	selection []uuid.UUID
	selIndex  map[uuid.UUID]struct{}

	anchor    image.Point // rect anchor / drag start, screen px
	dragMoved bool
}

func New(cfg Config, markers Markers, captions Captions, panels Panels, layers Layers, backend Backend, clip TextClipboard, planner Planner) *Controller {
	if cfg.MarkerRadius == 0 {
		cfg.MarkerRadius = 8
	}
	return &Controller{
		cfg:       cfg,
		markers:   markers,
		captions:  captions,
		panels:    panels,
		layers:    layers,
		backend:   backend,
		clip:      clip,
		planner:   planner,
		mode:     ModeSelect,
		selIndex: map[uuid.UUID]struct{}{},
	}
}

func (c *Controller) Mode() Mode       { return c.mode }
func (c *Controller) Gesture() Gesture { return c.gesture }

// SetMode switches the tool. An in-progress gesture keeps running
// until pointer-up. Insert mode needs write access.
func (c *Controller) SetMode(m Mode) {
	if m == ModeInsert && !c.cfg.Authenticated {
		return
	}
	c.mode = m
}

// Selection lists the selected marker UIDs in the order they were
// picked. Copy and bulk panels rely on that order being stable.
func (c *Controller) Selection() []uuid.UUID {
	return append([]uuid.UUID(nil), c.selection...)
}

// Selected reports membership; passed as the render predicate.
func (c *Controller) Selected(uid uuid.UUID) bool {
	_, ok := c.selIndex[uid]
	return ok
}

func (c *Controller) addSelection(uid uuid.UUID) {
	if _, ok := c.selIndex[uid]; ok {
		return
	}
	c.selIndex[uid] = struct{}{}
	c.selection = append(c.selection, uid)
}

func (c *Controller) dropSelection() {
	c.selection = nil
	c.selIndex = map[uuid.UUID]struct{}{}
}

// PointerDown begins a gesture at a screen point.
func (c *Controller) PointerDown(ctx context.Context, pt image.Point, mod Modifiers) {
	if c.mode == ModeCaption {
		if uid, ok := c.captions.HitTest(c.planner.ToPlan(pt)); ok {
			c.captions.StartDrag(uid)
			c.gesture = GestureCaptionDrag
			c.anchor = pt
			return
		}
		return
	}

	if uid, ok := c.markers.HitTest(pt, c.cfg.MarkerRadius); ok && c.mode != ModeInsert {
		c.panels.HideAll()
		if mod.Alt {
			c.beginDuplicateDrag(ctx, uid, pt)
			return
		}
		if !c.Selected(uid) {
			if !mod.Shift {
				c.dropSelection()
			}
			c.addSelection(uid)
		}
		c.markers.StartDrag(c.Selection())
		c.gesture = GestureMarkerDrag
		c.anchor = pt
		c.dragMoved = false
		c.render()
		return
	}

	// empty canvas
	c.anchor = pt
	if c.mode != ModeInsert {
		c.gesture = GestureRect
		c.markers.SetSelectionRect(pt, pt)
	}
}

// beginDuplicateDrag clones one marker in place and drags the copy.
func (c *Controller) beginDuplicateDrag(ctx context.Context, uid uuid.UUID, pt image.Point) {
	created, err := c.backend.CloneFromClipboard(ctx, api.ClipboardRequest{
		ClipboardUUID: []uuid.UUID{uid},
		Project:       c.cfg.Project,
		Page:          c.cfg.Page,
	})
	if err != nil || len(created) == 0 {
		log.Printf("controller: duplicate %s: %v", uid, err)
		return
	}
	copyUID := c.registerCreated(created[0])
	c.dropSelection()
	c.addSelection(copyUID)
	c.markers.StartDrag(c.Selection())
	c.gesture = GestureMarkerDrag
	c.anchor = pt
	c.dragMoved = false
	c.render()
}

// PointerMove advances the live gesture.
func (c *Controller) PointerMove(pt image.Point) {
	switch c.gesture {
	case GestureRect:
		c.markers.SetSelectionRect(c.anchor, pt)
	case GestureMarkerDrag:
		delta := pt.Sub(c.anchor)
		if abs(delta.X) < collapseThreshold && abs(delta.Y) < collapseThreshold && !c.dragMoved {
			return
		}
		c.dragMoved = true
		c.markers.UpdateMarkerPosition(c.Selection(), delta)
	case GestureCaptionDrag:
		// Caption offsets live in plan units; map both ends of the
		// drag before differencing so zoom does not inflate them.
		delta := c.planner.ToPlan(pt).Sub(c.planner.ToPlan(c.anchor))
		c.captions.UpdateOffset([2]int{delta.X, delta.Y})
	}
}

// PointerUp finalizes the gesture. Releasing always commits; there is
// no abort gesture.
func (c *Controller) PointerUp(ctx context.Context, pt image.Point, mod Modifiers) {
	if c.captions.Dragging() {
		c.gesture = GestureNone
		if err := c.captions.FinishDrag(ctx); err != nil {
			log.Printf("controller: %v", err)
		}
		return
	}

	switch c.gesture {
	case GestureMarkerDrag:
		c.gesture = GestureNone
		c.markers.FinishMovement(c.Selection())
		return
	case GestureRect:
		c.gesture = GestureNone
		delta := pt.Sub(c.anchor)
		collapsed := abs(delta.X) < collapseThreshold && abs(delta.Y) < collapseThreshold
		if collapsed {
			c.markers.ClearSelectionRect()
			c.canvasClick(ctx, pt)
			return
		}
		c.markers.SetSelectionRect(c.anchor, pt)
		if !mod.Shift {
			c.dropSelection()
		}
		c.markers.Render(c.markers.IsInsideSelectionRect, func(uid uuid.UUID, in bool) {
			if in {
				c.addSelection(uid)
			}
		})
		c.markers.ClearSelectionRect()
		c.render()
		return
	default:
		c.canvasClick(ctx, pt)
	}
}

// canvasClick resolves a plain click: selection drops, and Insert mode
// creates a marker at the point.
func (c *Controller) canvasClick(ctx context.Context, pt image.Point) {
	c.panels.HideAll()
	c.dropSelection()
	if c.mode == ModeInsert {
		c.insertAt(ctx, pt)
	}
	c.render()
}

func (c *Controller) insertAt(ctx context.Context, pt image.Point) {
	planPt := c.planner.ToPlan(pt)
	rep, err := c.backend.CreateMarker(ctx, api.CreateMarkerRequest{
		Project: c.cfg.Project,
		Page:    c.cfg.Page,
		Layer:   c.layers.Active(),
		Position: plan.Position{
			CenterX: planPt.X,
			CenterY: planPt.Y,
		},
	})
	if err != nil {
		log.Printf("controller: create marker: %v", err)
		return
	}
	uid := c.registerCreated(rep)
	c.addSelection(uid)
	c.layers.ShiftActiveToVisible()
}

// registerCreated turns a creation response into a registered entity.
func (c *Controller) registerCreated(rep api.MarkerSummary) uuid.UUID {
	m := &plan.Marker{UID: rep.Marker}
	if layer, ok := c.cfg.LayerCatalog[rep.LayerTitle()]; ok {
		m.Layer = layer
	} else {
		m.Layer = plan.Layer{Title: rep.LayerTitle()}
	}
	rep.ApplyTo(m)
	c.markers.Register(m)
	return m.UID
}

func (c *Controller) render() {
	c.markers.Render(c.Selected, nil)
}

// Key is a normalized keyboard event.
type Key int

const (
	KeyBackspace Key = iota
	KeyEscape
	KeyInfo
	KeyModeInsert
	KeyModeSelect
	KeyModeCaption
	KeyNudgeLeft
	KeyNudgeRight
	KeyNudgeUp
	KeyNudgeDown
	KeyRotateCW
	KeyRotateCCW
	KeyCaptionRotate
)

// KeyPress handles the global shortcuts. Ignored entirely while a
// panel text field has focus. Shortcuts that write marker state are
// inactive in unauthenticated mode, the same as Copy and Paste.
func (c *Controller) KeyPress(ctx context.Context, key Key, mod Modifiers) {
	if c.panels.AnyFocused() {
		return
	}
	if !c.cfg.Authenticated {
		switch key {
		case KeyBackspace, KeyModeInsert,
			KeyNudgeLeft, KeyNudgeRight, KeyNudgeUp, KeyNudgeDown,
			KeyRotateCW, KeyRotateCCW, KeyCaptionRotate:
			return
		}
	}
	switch key {
	case KeyBackspace:
		c.DeleteSelection(ctx)
	case KeyEscape:
		c.dropSelection()
		c.render()
	case KeyInfo:
		c.openSelectionPanels(ctx)
	case KeyModeInsert:
		c.SetMode(ModeInsert)
	case KeyModeSelect:
		c.SetMode(ModeSelect)
	case KeyModeCaption:
		c.SetMode(ModeCaption)
	case KeyNudgeLeft:
		c.nudge(image.Pt(-step(positionStep, mod), 0))
	case KeyNudgeRight:
		c.nudge(image.Pt(step(positionStep, mod), 0))
	case KeyNudgeUp:
		c.nudge(image.Pt(0, -step(positionStep, mod)))
	case KeyNudgeDown:
		c.nudge(image.Pt(0, step(positionStep, mod)))
	case KeyRotateCW:
		c.rotate(step(rotationStep, mod))
	case KeyRotateCCW:
		c.rotate(-step(rotationStep, mod))
	case KeyCaptionRotate:
		c.rotateSelectedCaption(ctx)
	}
}

func step(base int, mod Modifiers) int {
	if mod.Shift {
		return base * accelFactor
	}
	return base
}

// nudge moves the selection by a key step and persists right away.
func (c *Controller) nudge(delta image.Point) {
	uids := c.Selection()
	if len(uids) == 0 {
		return
	}
	c.markers.StartDrag(uids)
	c.markers.UpdateMarkerPosition(uids, delta)
	c.markers.FinishMovement(uids)
}

func (c *Controller) rotate(delta int) {
	uids := c.Selection()
	if len(uids) == 0 {
		return
	}
	c.markers.UpdateRotation(uids, delta)
	c.markers.FinishMovement(uids)
}

func (c *Controller) rotateSelectedCaption(ctx context.Context) {
	uids := c.Selection()
	if len(uids) != 1 {
		return
	}
	if err := c.captions.ToggleRotation(ctx, uids[0]); err != nil {
		log.Printf("controller: %v", err)
	}
}

// openSelectionPanels opens a single or bulk editor for the selection.
func (c *Controller) openSelectionPanels(ctx context.Context) {
	uids := c.Selection()
	var err error
	switch len(uids) {
	case 0:
		return
	case 1:
		err = c.panels.Show(ctx, uids[0])
	default:
		err = c.panels.ShowMany(ctx, uids)
	}
	if err != nil {
		log.Printf("controller: %v", err)
	}
}

// DeleteSelection issues one independent DELETE per selected marker.
// Markers whose DELETE failed stay on the plan, but the selection is
// emptied either way so retries start from a clean pick.
func (c *Controller) DeleteSelection(ctx context.Context) {
	for _, uid := range c.Selection() {
		if err := c.backend.DeleteMarker(ctx, uid); err != nil {
			log.Printf("controller: delete %s: %v", uid, err)
			continue
		}
		c.markers.Delete(uid)
		c.panels.Drop(uid)
	}
	c.dropSelection()
	c.render()
}

// clipboardPayload is the serialized selection. Project and page
// record where the markers were copied from; paste ignores them and
// uses its own context.
type clipboardPayload struct {
	ClipboardUUID []uuid.UUID `json:"clipboard_uuid"`
	Project       uuid.UUID   `json:"project"`
	Page          string      `json:"page"`
}

// Copy serializes the selection to the system clipboard. Inactive in
// unauthenticated mode and while typing in a panel.
func (c *Controller) Copy() {
	if !c.cfg.Authenticated || c.panels.AnyFocused() {
		return
	}
	uids := c.Selection()
	if len(uids) == 0 {
		return
	}
	payload, err := json.Marshal(clipboardPayload{
		ClipboardUUID: uids,
		Project:       c.cfg.Project,
		Page:          c.cfg.Page,
	})
	if err != nil {
		log.Printf("controller: encode clipboard: %v", err)
		return
	}
	c.clip.WriteText(string(payload))
}

// Paste clones clipboard markers onto the current page. The copied
// project/page context is discarded; pasting relocates markers here.
func (c *Controller) Paste(ctx context.Context) error {
	if !c.cfg.Authenticated || c.panels.AnyFocused() {
		return nil
	}
	text := c.clip.ReadText()
	if text == "" {
		return nil
	}
	var payload clipboardPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return fmt.Errorf("controller: decode clipboard: %w", err)
	}
	if len(payload.ClipboardUUID) == 0 {
		return nil
	}

	created, err := c.backend.CloneFromClipboard(ctx, api.ClipboardRequest{
		ClipboardUUID: payload.ClipboardUUID,
		Project:       c.cfg.Project,
		Page:          c.cfg.Page,
	})
	if err != nil {
		return fmt.Errorf("controller: paste: %w", err)
	}
	c.dropSelection()
	for _, rep := range created {
		uid := c.registerCreated(rep)
		c.addSelection(uid)
	}
	c.render()
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
