package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/planedit/internal/controller"
	"github.com/example/planedit/internal/plan"
	"github.com/example/planedit/internal/render"
	"github.com/example/planedit/internal/status"
)

const (
	topHeight    = 24
	bottomHeight = 24

	layerRowHeight = 18
	modeRowHeight  = 24

	markerRadius = 8

	panelWidth      = 220
	panelLineHeight = 14
	panelPadding    = 6

	// frameDropThreshold specifies how many consecutive frames can be
	// canceled before a draw is allowed to complete to keep the UI
	// responsive.
	frameDropThreshold = 10
)

type paintState struct {
	width, height int
	mode          controller.Mode
	selected      map[uuid.UUID]bool
	zoom          float64
	planSize      image.Point
	origin        image.Point
	status        status.State
	markerRadius  int
	message       string
	messageUntil  time.Time
	editUID       uuid.UUID
	editSide      int
	authenticated bool
}

// hitArea is one clickable region recorded during a frame.
type hitArea struct {
	rect   image.Rectangle
	action string
	uid    uuid.UUID
	index  int
}

// panelHit caches the clickable sub-regions of one rendered panel.
type panelHit struct {
	uid      uuid.UUID
	rect     image.Rectangle
	sides    []image.Rectangle
	lines    []lineHit
	panes    []image.Rectangle
	draft    image.Rectangle
	save     image.Rectangle
	resolve  image.Rectangle
	closeBtn image.Rectangle
}

// lineHit is one variable text row, used for wrongness toggles in
// review mode.
type lineHit struct {
	rect image.Rectangle
	side int
	line int
	text string
}

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	drawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick)
	drawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col, thick)
}

func drawDashedLine(img *image.RGBA, x0, y0, x1, y1, dash, thickness int, c1, c2 color.Color) {
	horiz := y0 == y1
	length := x1 - x0
	if !horiz {
		length = y1 - y0
	}
	if length < 0 {
		length = -length
	}
	for i := 0; i <= length; i += dash * 2 {
		for j := 0; j < dash && i+j <= length; j++ {
			if horiz {
				for t := 0; t < thickness; t++ {
					if x0 < x1 {
						img.Set(x0+i+j, y0+t, c1)
					} else {
						img.Set(x0-i-j, y0+t, c1)
					}
				}
			} else {
				for t := 0; t < thickness; t++ {
					if y0 < y1 {
						img.Set(x0+t, y0+i+j, c1)
					} else {
						img.Set(x0+t, y0-i-j, c1)
					}
				}
			}
		}
		for j := 0; j < dash && i+dash+j <= length; j++ {
			if horiz {
				for t := 0; t < thickness; t++ {
					if x0 < x1 {
						img.Set(x0+i+dash+j, y0+t, c2)
					} else {
						img.Set(x0-i-dash-j, y0+t, c2)
					}
				}
			} else {
				for t := 0; t < thickness; t++ {
					if y0 < y1 {
						img.Set(x0+t, y0+i+dash+j, c2)
					} else {
						img.Set(x0+t, y0-i-dash-j, c2)
					}
				}
			}
		}
	}
}

func drawDashedRect(img *image.RGBA, rect image.Rectangle, dash, thickness int, c1, c2 color.Color) {
	drawDashedLine(img, rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Min.Y, rect.Max.X, rect.Max.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Max.X, rect.Max.Y, rect.Min.X, rect.Max.Y, dash, thickness, c1, c2)
	drawDashedLine(img, rect.Min.X, rect.Max.Y, rect.Min.X, rect.Min.Y, dash, thickness, c1, c2)
}

func drawCircleThin(img *image.RGBA, cx, cy, r int, col color.Color) {
	x := r
	y := 0
	err := 1 - r
	for x >= y {
		pts := [][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}}
		for _, p := range pts {
			px := cx + p[0]
			py := cy + p[1]
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2 * (y - x + 1)
		}
	}
}

func drawCircle(img *image.RGBA, cx, cy, r int, col color.Color, thick int) {
	if thick <= 0 {
		drawCircleThin(img, cx, cy, r, col)
		return
	}
	start := -thick / 2
	for i := 0; i < thick; i++ {
		rr := r + start + i
		if rr >= 0 {
			drawCircleThin(img, cx, cy, rr, col)
		}
	}
}

func drawFilledCircle(img *image.RGBA, cx, cy, r int, col color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				px := cx + dx
				py := cy + dy
				if image.Pt(px, py).In(img.Bounds()) {
					img.Set(px, py, col)
				}
			}
		}
	}
}

func drawString(dst *image.RGBA, x, y int, col color.Color, s string) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: basicfont.Face7x13,
		Dot: fixed.P(x, y)}
	d.DrawString(s)
}

func measureString(s string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	return d.MeasureString(s).Ceil()
}

// rotate90 returns src rotated a quarter turn counterclockwise.
func rotate90(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetRGBA(y-b.Min.Y, b.Max.X-1-x, src.RGBAAt(x, y))
		}
	}
	return out
}

// parseHexColor decodes a "#rrggbb" layer color; fallback is returned
// for anything else.
func parseHexColor(s string, fallback color.RGBA) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return fallback
	}
	hex := func(c byte) (int, bool) {
		switch {
		case c >= '0' && c <= '9':
			return int(c - '0'), true
		case c >= 'a' && c <= 'f':
			return int(c-'a') + 10, true
		case c >= 'A' && c <= 'F':
			return int(c-'A') + 10, true
		}
		return 0, false
	}
	var v [6]int
	for i := 0; i < 6; i++ {
		n, ok := hex(s[i+1])
		if !ok {
			return fallback
		}
		v[i] = n
	}
	return color.RGBA{
		R: uint8(v[0]<<4 | v[1]),
		G: uint8(v[2]<<4 | v[3]),
		B: uint8(v[4]<<4 | v[5]),
		A: 255,
	}
}

func (a *App) drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	// page and catalog swap on floor switch; hold them for the frame.
	a.mu.Lock()
	defer a.mu.Unlock()

	draw.Draw(dst, dst.Bounds(), &image.Uniform{a.theme.Background}, image.Point{}, draw.Src)
	if ctx.Err() != nil {
		return
	}

	a.drawPlan(dst, st)
	if ctx.Err() != nil {
		return
	}

	a.drawMarkers(dst, st)
	if ctx.Err() != nil {
		return
	}

	if a.captions.Shown() {
		a.drawCaptions(dst, st)
	}
	if sel, ok := a.markers.SelectionRect(); ok {
		drawDashedRect(dst, sel, 4, 1, a.theme.SelectionRect, a.theme.Background)
	}
	if ctx.Err() != nil {
		return
	}

	a.drawPanels(dst, st)
	if ctx.Err() != nil {
		return
	}

	a.drawTopBar(dst, st)
	a.drawToolbar(dst, st)
	a.drawBottomBar(dst, st)

	if st.message != "" && time.Now().Before(st.messageUntil) {
		a.drawMessage(dst, st)
	}
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// drawPlan paints the plan sheet: a white rectangle of the scaled plan
// extent with a light grid, clipped to the canvas area.
func (a *App) drawPlan(dst *image.RGBA, st paintState) {
	sheet := image.Rectangle{
		Min: st.origin,
		Max: st.origin.Add(image.Pt(
			int(float64(st.planSize.X)*st.zoom),
			int(float64(st.planSize.Y)*st.zoom),
		)),
	}
	clipped := sheet.Intersect(a.canvasRect(st.width, st.height))
	if clipped.Empty() {
		return
	}
	draw.Draw(dst, clipped, image.White, image.Point{}, draw.Src)

	grid := int(100 * st.zoom)
	if grid < 20 {
		grid = 20
	}
	gridCol := color.RGBA{235, 235, 235, 255}
	for x := sheet.Min.X; x <= sheet.Max.X; x += grid {
		if x < clipped.Min.X || x >= clipped.Max.X {
			continue
		}
		drawLine(dst, x, clipped.Min.Y, x, clipped.Max.Y-1, gridCol, 1)
	}
	for y := sheet.Min.Y; y <= sheet.Max.Y; y += grid {
		if y < clipped.Min.Y || y >= clipped.Max.Y {
			continue
		}
		drawLine(dst, clipped.Min.X, y, clipped.Max.X-1, y, gridCol, 1)
	}
	drawRect(dst, sheet, color.RGBA{170, 170, 170, 255}, 1)
}

func (a *App) drawMarkers(dst *image.RGBA, st paintState) {
	for _, uid := range a.markers.UIDs() {
		m := a.markers.Get(uid)
		if m == nil || !a.layers.Visible(m.Layer.Title) {
			continue
		}
		center, ok := a.markers.ScreenCenter(uid)
		if !ok {
			continue
		}

		r := st.markerRadius
		fill := parseHexColor(m.Layer.Color, a.theme.MarkerFill)
		drawFilledCircle(dst, center.X, center.Y, r, fill)
		if m.Reviewed {
			drawFilledCircle(dst, center.X, center.Y, r, a.theme.MarkerReviewedDim)
		}

		// Rotation tick. The display transform negates the stored
		// counterclockwise-positive angle exactly once, here.
		rad := -float64(m.Position.Rotation) * math.Pi / 180
		tx := center.X + int(math.Cos(rad)*float64(r+5))
		ty := center.Y + int(math.Sin(rad)*float64(r+5))
		drawLine(dst, center.X, center.Y, tx, ty, fill, 2)

		if st.selected[uid] {
			drawCircle(dst, center.X, center.Y, r+3, a.theme.MarkerSelected, 2)
		}
		switch m.Persist {
		case plan.Pending:
			drawCircle(dst, center.X, center.Y, r+6, a.theme.MarkerPendingRing, 1)
		case plan.Failed:
			drawCircle(dst, center.X, center.Y, r+6, a.theme.MarkerFailedRing, 1)
		}
		if m.HasComment {
			glyph := a.theme.CommentGlyph
			if m.CommentsResolved {
				glyph = a.theme.CommentResolved
			}
			drawFilledCircle(dst, center.X+r, center.Y-r, 3, glyph)
		}
	}
}

func (a *App) drawCaptions(dst *image.RGBA, st paintState) {
	for _, uid := range a.captions.UIDs() {
		c := a.captions.Get(uid)
		if c == nil || !a.layers.Visible(c.Marker.Layer) {
			continue
		}
		px, py := c.Placement()
		origin := image.Pt(
			st.origin.X+int(px*st.zoom),
			st.origin.Y+int(py*st.zoom),
		)

		label := image.NewRGBA(image.Rect(0, 0, int(c.Bounds.Width), int(c.Bounds.Height)))
		draw.Draw(label, label.Bounds(), &image.Uniform{a.theme.CaptionBackground}, image.Point{}, draw.Src)
		drawString(label, 2, int(c.Bounds.Height)-4, a.theme.CaptionText, c.Marker.Number)
		if c.Rotated() {
			label = rotate90(label)
		}
		draw.Draw(dst, label.Bounds().Add(origin), label, image.Point{}, draw.Over)
	}
}

func (a *App) drawPanels(dst *image.RGBA, st paintState) {
	hits := make([]panelHit, 0, 4)
	for _, uid := range a.panels.Open() {
		p := a.panels.Get(uid)
		if p == nil || !p.Visible {
			continue
		}
		hits = append(hits, a.drawPanel(dst, st, uid, p.Bulk()))
	}
	a.hitMu.Lock()
	a.panelHits = hits
	a.hitMu.Unlock()
}

func (a *App) drawPanel(dst *image.RGBA, st paintState, uid uuid.UUID, bulk bool) panelHit {
	p := a.panels.Get(uid)
	hit := panelHit{uid: uid}

	lines := 1 // title
	for _, side := range p.Sides {
		lines += 1 + countLines(side.Text)
	}
	lines += len(p.Comments)
	lines += len(p.Panes)
	if st.authenticated {
		lines++ // draft row
	}
	lines++ // buttons
	height := lines*panelLineHeight + 2*panelPadding

	rect := image.Rectangle{Min: p.Pos, Max: p.Pos.Add(image.Pt(panelWidth, height))}
	hit.rect = rect

	render.DrawShadow(dst, rect, render.DefaultShadowOptions())
	draw.Draw(dst, rect, &image.Uniform{a.theme.PanelBackground}, image.Point{}, draw.Src)
	border := a.theme.PanelBorder
	if p.Focused {
		border = a.theme.MarkerSelected
	}
	drawRect(dst, rect, border, 1)

	x := rect.Min.X + panelPadding
	y := rect.Min.Y + panelPadding + 11

	title := "Marker"
	if bulk {
		title = fmt.Sprintf("%d markers", len(p.UIDs))
	} else if m := a.markers.Get(uid); m != nil {
		title = fmt.Sprintf("Marker %s", m.Number)
	}
	drawString(dst, x, y, a.theme.PanelText, title)
	hit.closeBtn = image.Rect(rect.Max.X-16, rect.Min.Y+2, rect.Max.X-2, rect.Min.Y+16)
	drawString(dst, hit.closeBtn.Min.X+3, hit.closeBtn.Min.Y+11, a.theme.PanelText, "x")
	y += panelLineHeight

	editing := st.editUID == uid

	for si, side := range p.Sides {
		head := fmt.Sprintf("Side %d", side.Number)
		if editing && st.editSide == si {
			head += " *"
		}
		sideTop := y - 11
		drawString(dst, x, y, a.theme.PanelBorder, head)
		y += panelLineHeight
		for li, text := range splitLines(side.Text) {
			row := image.Rect(rect.Min.X+1, y-11, rect.Max.X-1, y+3)
			prefix := ""
			if !st.authenticated {
				if wrong, known := a.wrong.Status(uid, text); known && wrong {
					prefix = "! "
					drawString(dst, x, y, a.theme.MarkerFailedRing, prefix)
				}
			}
			drawString(dst, x+measureString(prefix), y, a.theme.PanelText, text)
			hit.lines = append(hit.lines, lineHit{rect: row, side: si, line: li, text: text})
			y += panelLineHeight
		}
		if editing && st.editSide == si {
			caretY := y - panelLineHeight
			drawString(dst, rect.Max.X-panelPadding-7, caretY, a.theme.MarkerSelected, "|")
		}
		hit.sides = append(hit.sides, image.Rect(rect.Min.X+1, sideTop, rect.Max.X-1, y-11))
	}

	for _, c := range p.Comments {
		col := a.theme.CommentGlyph
		if c.Resolved {
			col = a.theme.CommentResolved
		}
		drawString(dst, x, y, col, "# "+c.Content)
		y += panelLineHeight
	}

	for _, pane := range p.Panes {
		box := image.Rect(x, y-10, x+10, y)
		drawRect(dst, box, a.theme.PanelBorder, 1)
		if pane.Enabled {
			drawLine(dst, box.Min.X+2, box.Min.Y+2, box.Max.X-3, box.Max.Y-3, a.theme.PanelText, 1)
			drawLine(dst, box.Max.X-3, box.Min.Y+2, box.Min.X+2, box.Max.Y-3, a.theme.PanelText, 1)
		}
		drawString(dst, x+14, y, a.theme.PanelText, fmt.Sprintf("pane %d", pane.Number))
		hit.panes = append(hit.panes, image.Rect(rect.Min.X+1, y-11, rect.Max.X-1, y+3))
		y += panelLineHeight
	}

	if st.authenticated {
		hit.draft = image.Rect(rect.Min.X+1, y-11, rect.Max.X-1, y+3)
		caret := ""
		if editing && st.editSide == editDraft {
			caret = "|"
		}
		drawString(dst, x, y, a.theme.PanelBorder, "> "+p.Draft+caret)
		y += panelLineHeight
	}

	bx := x
	button := func(label string) image.Rectangle {
		w := measureString(label) + 8
		r := image.Rect(bx, y-11, bx+w, y+4)
		draw.Draw(dst, r, &image.Uniform{a.theme.ToolbarBackground}, image.Point{}, draw.Src)
		drawRect(dst, r, a.theme.PanelBorder, 1)
		drawString(dst, bx+4, y, a.theme.PanelText, label)
		bx = r.Max.X + 6
		return r
	}
	if st.authenticated {
		hit.save = button("Save")
	}
	hit.resolve = button("Resolve")

	return hit
}

func (a *App) drawTopBar(dst *image.RGBA, st paintState) {
	bar := image.Rect(0, 0, st.width, topHeight)
	draw.Draw(dst, bar, &image.Uniform{a.theme.ToolbarBackground}, image.Point{}, draw.Src)
	drawString(dst, 4, 16, a.theme.ToolbarText, "Planedit")

	x := a.toolbarWidth
	floors := make([]hitArea, 0, len(a.page.Siblings))
	for _, code := range a.page.Siblings {
		w := measureString(code) + 16
		r := image.Rect(x, 0, x+w, topHeight)
		bg := a.theme.ToolbarBackground
		if code == a.page.Code {
			bg = a.theme.ToolActive
		}
		draw.Draw(dst, r, &image.Uniform{bg}, image.Point{}, draw.Src)
		drawString(dst, x+8, 16, a.theme.ToolbarText, code)
		floors = append(floors, hitArea{rect: r, action: "floor", index: len(floors)})
		x += w
	}
	if a.page.Title != "" {
		drawString(dst, x+12, 16, a.theme.ToolbarText, a.page.Title)
	}
	a.hitMu.Lock()
	a.floorRects = floors
	a.hitMu.Unlock()
}

func (a *App) drawToolbar(dst *image.RGBA, st paintState) {
	bar := image.Rect(0, topHeight, a.toolbarWidth, st.height-bottomHeight)
	draw.Draw(dst, bar, &image.Uniform{a.theme.ToolbarBackground}, image.Point{}, draw.Src)

	tools := make([]hitArea, 0, 8)
	y := topHeight

	modes := []struct {
		label string
		mode  controller.Mode
	}{
		{"1:Insert", controller.ModeInsert},
		{"2:Select", controller.ModeSelect},
		{"3:Caption", controller.ModeCaption},
	}
	for _, m := range modes {
		if m.mode == controller.ModeInsert && !st.authenticated {
			continue
		}
		r := image.Rect(0, y, a.toolbarWidth, y+modeRowHeight)
		bg := a.theme.ToolbarBackground
		if st.mode == m.mode {
			bg = a.theme.ToolActive
		}
		draw.Draw(dst, r, &image.Uniform{bg}, image.Point{}, draw.Src)
		drawString(dst, 4, y+16, a.theme.ToolbarText, m.label)
		tools = append(tools, hitArea{rect: r, action: "mode", index: int(m.mode)})
		y += modeRowHeight
	}

	y += 6
	drawString(dst, 4, y+12, a.theme.ToolbarText, "Layers")
	allRect := image.Rect(a.toolbarWidth-24, y, a.toolbarWidth-4, y+16)
	drawRect(dst, allRect, a.theme.ToolbarText, 1)
	drawString(dst, allRect.Min.X+4, y+12, a.theme.ToolbarText, "A")
	tools = append(tools, hitArea{rect: allRect, action: "toggleall"})
	y += layerRowHeight + 2

	for i, title := range a.layers.Titles() {
		r := image.Rect(0, y, a.toolbarWidth, y+layerRowHeight)
		visible := a.layers.Visible(title)
		active := a.layers.Active() == title

		swatch := image.Rect(4, y+3, 16, y+15)
		col := a.theme.MarkerFill
		if l, ok := a.catalog[title]; ok {
			col = parseHexColor(l.Color, a.theme.MarkerFill)
		}
		if !visible {
			col = color.RGBA{col.R / 3, col.G / 3, col.B / 3, 255}
		}
		draw.Draw(dst, swatch, &image.Uniform{col}, image.Point{}, draw.Src)
		if active {
			drawRect(dst, r, a.theme.ToolActive, 1)
		}
		textCol := a.theme.ToolbarText
		if !visible {
			textCol = a.theme.ToolActive
		}
		drawString(dst, 20, y+13, textCol, title)
		tools = append(tools, hitArea{rect: r, action: "layer", index: i})
		y += layerRowHeight
	}

	a.hitMu.Lock()
	a.toolRects = tools
	a.hitMu.Unlock()
}

func (a *App) drawBottomBar(dst *image.RGBA, st paintState) {
	bar := image.Rect(0, st.height-bottomHeight, st.width, st.height)
	draw.Draw(dst, bar, &image.Uniform{a.theme.ToolbarBackground}, image.Point{}, draw.Src)

	labels := []string{
		fmt.Sprintf("+/-:zoom (%.0f%%)", st.zoom*100),
		"i:info",
		"Esc:clear",
	}
	if st.authenticated {
		labels = append(labels, "^C:copy", "^V:paste", "Bksp:delete")
	}
	labels = append(labels, "Q:quit")

	x := a.toolbarWidth + 4
	y := st.height - bottomHeight + 16
	for _, lbl := range labels {
		drawString(dst, x, y, a.theme.ToolbarText, lbl)
		x += measureString(lbl) + 14
	}

	dot := a.theme.StatusPending
	switch st.status {
	case status.Success:
		dot = a.theme.StatusSuccess
	case status.Error:
		dot = a.theme.StatusError
	}
	drawFilledCircle(dst, st.width-14, st.height-bottomHeight/2, 6, dot)
}

func (a *App) drawMessage(dst *image.RGBA, st paintState) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(a.theme.Foreground), Face: a.messageFace}
	wmsg := d.MeasureString(st.message).Ceil()
	ascent := a.messageFace.Metrics().Ascent.Ceil()
	descent := a.messageFace.Metrics().Descent.Ceil()
	px := (st.width - wmsg) / 2
	py := (st.height-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
	drawRect(dst, rect, a.theme.Foreground, 2)
	d.Dot = fixed.P(px, py)
	d.DrawString(st.message)
}

func (a *App) canvasRect(width, height int) image.Rectangle {
	return image.Rect(a.toolbarWidth, topHeight, width, height-bottomHeight)
}
