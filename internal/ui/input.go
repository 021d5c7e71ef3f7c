package ui

import (
	"context"
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"

	"github.com/example/planedit/internal/controller"
	"github.com/example/planedit/internal/layers"
	"github.com/example/planedit/internal/panels"
)

const scrollStep = 40

// paintSender is the slice of screen.Window the input handlers need.
type paintSender interface {
	Send(event interface{})
}

func countLines(text string) int {
	if text == "" {
		return 1
	}
	return strings.Count(text, "\n") + 1
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

func (a *App) modifiers(m key.Modifiers) controller.Modifiers {
	return controller.Modifiers{
		Shift: m&key.ModShift != 0,
		Alt:   m&key.ModAlt != 0,
	}
}

func (a *App) handleMouse(ctx context.Context, w paintSender, e mouse.Event) {
	pt := image.Pt(int(e.X), int(e.Y))

	switch e.Button {
	case mouse.ButtonWheelUp, mouse.ButtonWheelDown:
		if e.Direction != mouse.DirPress {
			return
		}
		if e.Modifiers&key.ModControl != 0 {
			if e.Button == mouse.ButtonWheelUp {
				a.zoomCtl.Increase()
			} else {
				a.zoomCtl.Decrease()
			}
			return
		}
		delta := scrollStep
		if e.Button == mouse.ButtonWheelUp {
			delta = -scrollStep
		}
		off := a.ScrollOffset()
		if e.Modifiers&key.ModShift != 0 {
			off.X += delta
		} else {
			off.Y += delta
		}
		a.SetScrollOffset(off)
		a.markers.RefreshCenters()
		a.panels.RepositionAll()
		w.Send(paint.Event{})
		return
	}

	switch e.Direction {
	case mouse.DirPress:
		a.pointerDown(ctx, pt, e)
	case mouse.DirNone:
		a.ctrl.PointerMove(pt)
		if a.ctrl.Gesture() != controller.GestureNone {
			w.Send(paint.Event{})
		}
	case mouse.DirRelease:
		if e.Button == mouse.ButtonLeft {
			a.ctrl.PointerUp(ctx, pt, a.modifiers(e.Modifiers))
			w.Send(paint.Event{})
		}
	}
}

func (a *App) pointerDown(ctx context.Context, pt image.Point, e mouse.Event) {
	if a.hitFloors(ctx, pt) {
		return
	}
	if a.hitPanels(ctx, pt) {
		a.requestPaint()
		return
	}
	if a.hitToolbar(pt, e.Button) {
		a.requestPaint()
		return
	}
	if e.Button != mouse.ButtonLeft {
		return
	}
	// Canvas. A click outside any panel also commits and blurs the
	// panel being edited.
	a.blurEdit(ctx)
	a.ctrl.PointerDown(ctx, pt, a.modifiers(e.Modifiers))
	a.requestPaint()
}

func (a *App) hitFloors(ctx context.Context, pt image.Point) bool {
	a.hitMu.Lock()
	floors := a.floorRects
	a.hitMu.Unlock()
	for _, h := range floors {
		if pt.In(h.rect) {
			a.mu.Lock()
			var code string
			if h.index < len(a.page.Siblings) {
				code = a.page.Siblings[h.index]
			}
			current := a.page.Code
			a.mu.Unlock()
			if code != "" && code != current {
				a.switchFloor(ctx, code)
			}
			return true
		}
	}
	return false
}

func (a *App) hitToolbar(pt image.Point, btn mouse.Button) bool {
	a.hitMu.Lock()
	tools := a.toolRects
	a.hitMu.Unlock()
	for _, h := range tools {
		if !pt.In(h.rect) {
			continue
		}
		switch h.action {
		case "mode":
			a.ctrl.SetMode(controller.Mode(h.index))
		case "toggleall":
			shown := a.layers.ToggleAll()
			a.mu.Lock()
			code := a.page.Code
			a.mu.Unlock()
			if err := layers.SaveToggleAll(code, shown); err != nil {
				log.Printf("layers: save toggle-all: %v", err)
			}
		case "layer":
			titles := a.layers.Titles()
			if h.index >= len(titles) {
				return true
			}
			title := titles[h.index]
			if btn == mouse.ButtonRight {
				a.layers.SetActive(title)
			} else {
				a.layers.Toggle(title)
			}
		}
		return true
	}
	return pt.X < a.toolbarWidth
}

func (a *App) hitPanels(ctx context.Context, pt image.Point) bool {
	a.hitMu.Lock()
	hits := make([]panelHit, len(a.panelHits))
	copy(hits, a.panelHits)
	a.hitMu.Unlock()

	// Topmost panel is drawn last, so test in reverse.
	for i := len(hits) - 1; i >= 0; i-- {
		h := hits[i]
		if !pt.In(h.rect) {
			continue
		}
		p := a.panels.Get(h.uid)
		if p == nil {
			return true
		}
		a.panels.Focus(h.uid)

		switch {
		case pt.In(h.closeBtn):
			a.commitEdit(ctx, h.uid)
			a.panels.Hide(h.uid)
		case pt.In(h.save) && a.authenticated:
			a.editUID = uuid.Nil
			a.editSide = editDraft
			a.submitPanel(ctx, h.uid, p)
		case pt.In(h.resolve):
			if err := a.panels.ResolveAll(ctx, h.uid); err != nil {
				log.Printf("panel resolve: %v", err)
				a.flash("resolve failed")
			}
		case pt.In(h.draft):
			a.editUID = h.uid
			a.editSide = editDraft
		default:
			if a.authenticated {
				for si, r := range h.sides {
					if pt.In(r) {
						a.editUID = h.uid
						a.editSide = si
						return true
					}
				}
			} else {
				for _, lh := range h.lines {
					if pt.In(lh.rect) && lh.text != "" {
						a.toggleWrong(ctx, h.uid, lh.text)
						return true
					}
				}
			}
			for pi, r := range h.panes {
				if pt.In(r) && a.authenticated && pi < len(p.Panes) {
					p.Panes[pi].Enabled = !p.Panes[pi].Enabled
					return true
				}
			}
		}
		return true
	}
	return false
}

// toggleWrong flips one variable's review flag and folds the server
// echo back into both registries.
func (a *App) toggleWrong(ctx context.Context, uid uuid.UUID, text string) {
	wrong, _ := a.wrong.Status(uid, text)
	rep, err := a.client.ToggleVariableWrong(ctx, uid, text, !wrong)
	if err != nil {
		log.Printf("toggle wrong: %v", err)
		a.flash("review update failed")
		return
	}
	a.wrong.Sync(rep)
	a.markers.Sync(rep.MarkerSummary)
}

func (a *App) handleKey(ctx context.Context, w paintSender, e key.Event) (quit bool) {
	if a.editUID != uuid.Nil {
		a.editKey(ctx, e)
		w.Send(paint.Event{})
		return false
	}

	mod := a.modifiers(e.Modifiers)
	ctrlHeld := e.Modifiers&key.ModControl != 0

	switch {
	case e.Code == key.CodeQ && !ctrlHeld:
		return true
	case ctrlHeld && e.Code == key.CodeC:
		if a.authenticated {
			a.ctrl.Copy()
			a.flash("copied selection")
		}
	case ctrlHeld && e.Code == key.CodeV:
		if a.authenticated {
			if err := a.ctrl.Paste(ctx); err != nil {
				log.Printf("paste: %v", err)
				a.flash("paste failed")
			}
		}
	case ctrlHeld:
		// unbound control chords fall through to nothing
	case e.Rune == '+' || e.Rune == '=':
		a.zoomCtl.Increase()
	case e.Rune == '-':
		a.zoomCtl.Decrease()
	case e.Rune == 'a' || e.Rune == 'A':
		shown := a.layers.ToggleAll()
		a.mu.Lock()
		code := a.page.Code
		a.mu.Unlock()
		if err := layers.SaveToggleAll(code, shown); err != nil {
			log.Printf("layers: save toggle-all: %v", err)
		}
	case e.Rune == '[':
		a.adjustMarkerSize(-25)
	case e.Rune == ']':
		a.adjustMarkerSize(25)
	case e.Rune == 'p' || e.Rune == 'P':
		a.generatePDF(ctx)
	case e.Rune == 's' || e.Rune == 'S':
		a.shareLink()
	default:
		if k, ok := mapKey(e); ok {
			a.ctrl.KeyPress(ctx, k, mod)
		}
	}
	w.Send(paint.Event{})
	return false
}

func mapKey(e key.Event) (controller.Key, bool) {
	switch e.Code {
	case key.CodeDeleteBackspace:
		return controller.KeyBackspace, true
	case key.CodeEscape:
		return controller.KeyEscape, true
	case key.CodeI:
		return controller.KeyInfo, true
	case key.Code1, key.CodeKeypad1:
		return controller.KeyModeInsert, true
	case key.Code2, key.CodeKeypad2:
		return controller.KeyModeSelect, true
	case key.Code3, key.CodeKeypad3:
		return controller.KeyModeCaption, true
	case key.CodeLeftArrow:
		return controller.KeyNudgeLeft, true
	case key.CodeRightArrow:
		return controller.KeyNudgeRight, true
	case key.CodeUpArrow:
		return controller.KeyNudgeUp, true
	case key.CodeDownArrow:
		return controller.KeyNudgeDown, true
	case key.CodeR:
		return controller.KeyRotateCW, true
	case key.CodeE:
		return controller.KeyRotateCCW, true
	case key.CodeT:
		return controller.KeyCaptionRotate, true
	}
	return 0, false
}

// editKey routes keystrokes into the focused panel field.
func (a *App) editKey(ctx context.Context, e key.Event) {
	p := a.panels.Get(a.editUID)
	if p == nil {
		a.editUID = uuid.Nil
		return
	}

	target := func() *string {
		if a.editSide == editDraft {
			return &p.Draft
		}
		if a.editSide >= 0 && a.editSide < len(p.Sides) {
			return &p.Sides[a.editSide].Text
		}
		return nil
	}()
	if target == nil {
		a.editUID = uuid.Nil
		return
	}

	ctrlHeld := e.Modifiers&key.ModControl != 0
	switch {
	case e.Code == key.CodeEscape:
		a.blurEdit(ctx)
	case ctrlHeld && e.Code == key.CodeS:
		uid := a.editUID
		a.blurEdit(ctx)
		if pn := a.panels.Get(uid); pn != nil && a.authenticated {
			a.submitPanel(ctx, uid, pn)
		}
	case e.Code == key.CodeTab:
		a.cycleEditField(p)
	case e.Code == key.CodeDeleteBackspace:
		if len(*target) > 0 {
			runes := []rune(*target)
			*target = string(runes[:len(runes)-1])
		}
	case e.Code == key.CodeReturnEnter:
		if a.editSide == editDraft {
			a.submitDraft(ctx, a.editUID, p)
		} else {
			*target += "\n"
		}
	case e.Rune >= ' ' && !ctrlHeld:
		*target += string(e.Rune)
	}
}

// cycleEditField moves the caret side 1 -> side N -> draft -> side 1.
func (a *App) cycleEditField(p *panels.Panel) {
	if a.editSide == editDraft {
		if len(p.Sides) > 0 {
			a.editSide = 0
		}
		return
	}
	if a.editSide+1 < len(p.Sides) {
		a.editSide++
	} else {
		a.editSide = editDraft
	}
}

// blurEdit leaves text-edit mode. Authenticated edits are committed to
// the server; a guest draft is submitted with the blur exit type.
func (a *App) blurEdit(ctx context.Context) {
	if a.editUID == uuid.Nil {
		return
	}
	uid := a.editUID
	a.editUID = uuid.Nil
	a.editSide = editDraft
	a.commitEdit(ctx, uid)
}

func (a *App) commitEdit(ctx context.Context, uid uuid.UUID) {
	p := a.panels.Get(uid)
	if p == nil {
		return
	}
	if a.authenticated {
		a.submitPanel(ctx, uid, p)
		return
	}
	if strings.TrimSpace(p.Draft) != "" {
		a.submitReview(ctx, uid, p, "blur")
	}
}

func (a *App) submitPanel(ctx context.Context, uid uuid.UUID, p *panels.Panel) {
	var err error
	if p.Bulk() {
		err = a.panels.SaveMany(ctx, uid)
	} else {
		err = a.panels.Save(ctx, uid)
	}
	if err != nil {
		log.Printf("panel save: %v", err)
		a.notifySaveFailed(uid)
	}
}

// submitDraft posts the comment input as an explicit review submission.
func (a *App) submitDraft(ctx context.Context, uid uuid.UUID, p *panels.Panel) {
	if strings.TrimSpace(p.Draft) == "" {
		return
	}
	a.submitReview(ctx, uid, p, "button")
}

// submitReview sends the draft comment through the review endpoint.
// At most one review call per marker is in flight; a new submission
// while one is pending is dropped rather than queued.
func (a *App) submitReview(ctx context.Context, uid uuid.UUID, p *panels.Panel, exitType string) {
	a.reviewMu.Lock()
	if a.reviewBusy[uid] {
		a.reviewMu.Unlock()
		return
	}
	a.reviewBusy[uid] = true
	a.reviewMu.Unlock()

	comment := p.Draft
	p.Draft = ""

	go func() {
		defer func() {
			a.reviewMu.Lock()
			delete(a.reviewBusy, uid)
			a.reviewMu.Unlock()
		}()
		rctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		rep, err := a.client.SubmitReview(rctx, uid, comment, exitType)
		if err != nil {
			log.Printf("submit review: %v", err)
			a.notifySaveFailed(uid)
			return
		}
		a.markers.Sync(rep)
		a.requestPaint()
	}()
}

func (a *App) notifySaveFailed(uid uuid.UUID) {
	number := uid.String()[:8]
	if m := a.markers.Get(uid); m != nil && m.Number != "" {
		number = m.Number
	}
	a.notifier.SaveFailed(number)
	a.flash("save failed for marker " + number)
}

func (a *App) generatePDF(ctx context.Context) {
	if !a.pdf.RefreshAllowed(time.Now()) {
		a.flash("PDF was generated recently, try again later")
		return
	}
	a.mu.Lock()
	title := a.page.Title
	a.mu.Unlock()
	a.flash("generating PDF")
	go func() {
		gctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		info, err := a.pdf.Generate(gctx, title)
		if err != nil {
			log.Printf("pdf: %v", err)
			a.flash("PDF generation failed")
			return
		}
		if err := a.pdf.WaitReady(gctx, info.Original); err != nil {
			log.Printf("pdf wait: %v", err)
			a.flash("PDF generation failed")
			return
		}
		a.notifier.PDFReady(info.Original)
		a.flash("PDF ready: " + info.Original)
	}()
}

// adjustMarkerSize steps the marker display scale and, for editors,
// persists it as the page's marker size factor.
func (a *App) adjustMarkerSize(delta int) {
	a.viewMu.Lock()
	factor := a.sizeFactor + delta
	if factor < 50 {
		factor = 50
	}
	if factor > 200 {
		factor = 200
	}
	changed := factor != a.sizeFactor
	a.sizeFactor = factor
	a.viewMu.Unlock()
	if !changed {
		return
	}
	a.flash(fmt.Sprintf("marker size %d%%", factor))
	if !a.authenticated {
		return
	}
	a.mu.Lock()
	code := a.page.Code
	a.mu.Unlock()
	go func() {
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.client.PutPageData(sctx, code, factor); err != nil {
			log.Printf("save marker size: %v", err)
		}
	}()
}

// shareLink copies the page URL with the current hidden layers encoded.
func (a *App) shareLink() {
	url, err := a.ShareURL()
	if err != nil {
		log.Printf("share url: %v", err)
		return
	}
	systemClipboard{}.WriteText(url)
	a.flash("link copied")
}

// switchFloor replaces the page contents in place: same window, new
// plan, markers and caption set. The layer catalog is project-wide and
// visibility choices survive the switch.
func (a *App) switchFloor(ctx context.Context, code string) {
	page, err := a.client.GetPage(ctx, code)
	if err != nil {
		log.Printf("switch floor: %v", err)
		a.flash("failed to load floor " + code)
		return
	}

	a.editUID = uuid.Nil
	a.editSide = editDraft
	a.panels.DropAll()
	a.captions.HideAll()
	for _, uid := range a.markers.UIDs() {
		a.markers.Delete(uid)
	}

	a.mu.Lock()
	a.page = page
	a.catalog = layerCatalog(page.Layers)
	a.mu.Unlock()
	if page.MarkerSizeFactor > 0 {
		a.viewMu.Lock()
		a.sizeFactor = page.MarkerSizeFactor
		a.viewMu.Unlock()
	}

	a.SetScrollOffset(image.Point{})
	for _, rep := range page.Markers {
		a.registerSummary(rep)
	}
	a.markers.RefreshCenters()

	a.ctrl = controller.New(controller.Config{
		Project:       a.project,
		Page:          page.Code,
		LayerCatalog:  layerCatalog(page.Layers),
		Authenticated: a.authenticated,
		MarkerRadius:  markerRadius,
	}, a.markers, a.captions, a.panels, a.layers, a.client, systemClipboard{}, a.probe)

	a.requestPaint()
}
