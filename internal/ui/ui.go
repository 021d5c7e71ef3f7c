// Package ui is the composition root: it wires the registries,
// controllers and pollers together and runs the shiny event loop that
// feeds them pointer and keyboard input.
package ui

import (
	"context"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/planedit/internal/api"
	"github.com/example/planedit/internal/captions"
	"github.com/example/planedit/internal/clipboard"
	"github.com/example/planedit/internal/config"
	"github.com/example/planedit/internal/controller"
	"github.com/example/planedit/internal/geometry"
	"github.com/example/planedit/internal/layers"
	"github.com/example/planedit/internal/markers"
	"github.com/example/planedit/internal/notify"
	"github.com/example/planedit/internal/panels"
	"github.com/example/planedit/internal/pdfgen"
	"github.com/example/planedit/internal/plan"
	"github.com/example/planedit/internal/scale"
	"github.com/example/planedit/internal/status"
	"github.com/example/planedit/internal/theme"
	"github.com/example/planedit/internal/wrongness"
)

// editDraft marks the comment input row as the edit target instead of
// a side field.
const editDraft = -1

// systemClipboard adapts the platform clipboard to the controller's
// string surface. Failures are logged, never fatal.
type systemClipboard struct{}

func (systemClipboard) ReadText() string {
	text, err := clipboard.ReadText()
	if err != nil {
		log.Printf("clipboard read: %v", err)
		return ""
	}
	return text
}

func (systemClipboard) WriteText(text string) {
	if err := clipboard.WriteText(text); err != nil {
		log.Printf("clipboard write: %v", err)
	}
}

// App owns the window, the registries and the viewport state. It
// implements geometry.Viewport and scale.Scroller so the registries can
// read the current plan transform from the one authoritative place.
type App struct {
	client   *api.Client
	cfg      *config.Config
	theme    *theme.Theme
	notifier *notify.Notifier

	layers   *layers.Registry
	markers  *markers.Registry
	captions *captions.Registry
	panels   *panels.Registry
	wrong    *wrongness.Registry
	ctrl     *controller.Controller
	zoomCtl  *scale.Controller
	poll     *status.Poller
	pdf      *pdfgen.Controller
	probe    *geometry.Probe

	authenticated bool
	project       uuid.UUID

	// page and catalog swap wholesale on floor switch.
	mu      sync.Mutex
	page    api.PageData
	catalog map[string]plan.Layer

	// viewport, guarded: the geometry flush goroutine recomputes
	// screen centers through Viewport when folding in server echoes.
	viewMu     sync.Mutex
	scroll     image.Point
	zoomNow    float64
	winW       int
	winH       int
	sizeFactor int // marker display scale, percent

	toolbarWidth int
	messageFace  font.Face

	hitMu      sync.Mutex
	toolRects  []hitArea
	floorRects []hitArea
	panelHits  []panelHit

	// flash messages arrive from background goroutines too.
	msgMu        sync.Mutex
	message      string
	messageUntil time.Time

	editUID  uuid.UUID
	editSide int

	reviewMu   sync.Mutex
	reviewBusy map[uuid.UUID]bool

	lastStatus status.State
	updateCh   chan struct{}

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an App during creation.
type Option func(*App)

// WithAuthenticated enables editing operations (insert, move, delete,
// copy/paste); without it the window is the guest review surface.
func WithAuthenticated(auth bool) Option {
	return func(a *App) { a.authenticated = auth }
}

// WithHiddenLayers restores layer visibility from a shared URL's
// hide_layers parameter.
func WithHiddenLayers(titles []string) Option {
	return func(a *App) { a.layers.Restore(titles) }
}

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option {
	return func(a *App) { a.onClose = fn }
}

// resolveTheme looks the configured theme name up in the config file
// first, then in the on-disk theme directories. Unknown names fall
// back to the built-in default.
func resolveTheme(cfg *config.Config) *theme.Theme {
	if cfg.Theme == "" {
		return theme.Default()
	}
	if t, ok := cfg.Themes[cfg.Theme]; ok {
		return t
	}
	t, err := theme.NewLoader().Load(cfg.Theme)
	if err != nil {
		log.Printf("ui: theme %q: %v", cfg.Theme, err)
		return theme.Default()
	}
	return t
}

// New wires the full registry graph for one page.
func New(cfg *config.Config, client *api.Client, page api.PageData, opts ...Option) (*App, error) {
	// Guests never create markers, so the project UUID is optional
	// for them.
	var project uuid.UUID
	if cfg.Project != "" {
		var err error
		project, err = uuid.Parse(cfg.Project)
		if err != nil {
			return nil, fmt.Errorf("ui: parse project uuid: %w", err)
		}
	}

	th := resolveTheme(cfg)

	a := &App{
		client:     client,
		cfg:        cfg,
		theme:      th,
		page:       page,
		project:    project,
		catalog:    layerCatalog(page.Layers),
		zoomNow:    1,
		sizeFactor: 100,
		editSide:   editDraft,
		reviewBusy: map[uuid.UUID]bool{},
		updateCh:   make(chan struct{}, 1),
	}
	if page.MarkerSizeFactor > 0 {
		a.sizeFactor = page.MarkerSizeFactor
	}

	titles := make([]string, 0, len(page.Layers))
	for _, l := range page.Layers {
		titles = append(titles, l.Title)
	}
	a.layers = layers.NewRegistry(titles, layers.WithShiftNotify(func(from, to string) {
		a.flash("active layer: " + to)
	}))

	a.markers = markers.NewRegistry(a, a.layers, client, markers.WithPanelMover(a))
	a.captions = captions.NewRegistry(client)
	a.wrong = wrongness.NewRegistry()
	a.probe = geometry.NewProbe(a)
	a.pdf = pdfgen.NewController(client)

	for _, o := range opts {
		o(a)
	}

	a.panels = panels.NewRegistry(client, a.markers, a.markers,
		panels.WithAlert(a.alert),
		panels.WithPretty(!a.authenticated),
		panels.WithZoom(a.Zoom),
	)

	a.ctrl = controller.New(controller.Config{
		Project:       project,
		Page:          page.Code,
		LayerCatalog:  a.catalog,
		Authenticated: a.authenticated,
		MarkerRadius:  markerRadius,
	}, a.markers, a.captions, a.panels, a.layers, client, systemClipboard{}, a.probe)

	a.zoomCtl = scale.NewController(cfg.ScaleFactors, a)
	a.zoomNow = a.zoomCtl.Current()
	a.zoomCtl.OnChange(func(zoom float64) {
		a.viewMu.Lock()
		a.zoomNow = zoom
		a.viewMu.Unlock()
		a.markers.RefreshCenters()
		a.panels.RepositionAll()
		a.requestPaint()
	})

	a.poll = status.NewPoller(client, status.WithStateChange(a.statusChanged))

	a.notifier = notify.New(notify.LoadPreferences())
	a.notifier.Enable(notify.EventPDFReady, cfg.Notify.PDFReady)
	a.notifier.Enable(notify.EventSaveFailed, cfg.Notify.SaveFailed)
	a.notifier.Enable(notify.EventConnection, cfg.Notify.Connection)

	for _, rep := range page.Markers {
		a.registerSummary(rep)
	}
	return a, nil
}

func layerCatalog(ls []plan.Layer) map[string]plan.Layer {
	out := make(map[string]plan.Layer, len(ls))
	for _, l := range ls {
		out[l.Title] = l
	}
	return out
}

// registerSummary builds the in-memory marker from a server summary and
// indexes it.
func (a *App) registerSummary(rep api.MarkerSummary) {
	a.mu.Lock()
	layer := a.catalog[rep.Layer]
	a.mu.Unlock()
	m := &plan.Marker{UID: rep.Marker, Layer: layer}
	rep.ApplyTo(m)
	a.markers.Register(m)
}

// PlanOrigin implements geometry.Viewport.
func (a *App) PlanOrigin() image.Point {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	return image.Pt(a.toolbarWidth-a.scroll.X, topHeight-a.scroll.Y)
}

// Zoom implements geometry.Viewport.
func (a *App) Zoom() float64 {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	return a.zoomNow
}

// Extent implements scale.Scroller.
func (a *App) Extent() image.Point {
	a.mu.Lock()
	planW, planH := a.page.PlanWidth, a.page.PlanHeight
	a.mu.Unlock()
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	return image.Pt(
		int(float64(planW)*a.zoomNow),
		int(float64(planH)*a.zoomNow),
	)
}

// ClientSize implements scale.Scroller.
func (a *App) ClientSize() image.Point {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	return image.Pt(a.winW-a.toolbarWidth, a.winH-topHeight-bottomHeight)
}

// ScrollOffset implements scale.Scroller.
func (a *App) ScrollOffset() image.Point {
	a.viewMu.Lock()
	defer a.viewMu.Unlock()
	return a.scroll
}

// SetScrollOffset implements scale.Scroller, clamping to the scaled
// plan extent.
func (a *App) SetScrollOffset(p image.Point) {
	extent := a.Extent()
	client := a.ClientSize()
	maxX := extent.X - client.X
	maxY := extent.Y - client.Y
	if p.X > maxX {
		p.X = maxX
	}
	if p.Y > maxY {
		p.Y = maxY
	}
	if p.X < 0 {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = 0
	}
	a.viewMu.Lock()
	a.scroll = p
	a.viewMu.Unlock()
}

// Reposition implements markers.PanelMover.
func (a *App) Reposition(uid uuid.UUID) {
	a.panels.Reposition(uid)
}

func (a *App) setWinSize(w, h int) {
	a.viewMu.Lock()
	a.winW = w
	a.winH = h
	a.viewMu.Unlock()
}

func (a *App) flash(msg string) {
	a.msgMu.Lock()
	a.message = msg
	a.messageUntil = time.Now().Add(2 * time.Second)
	a.msgMu.Unlock()
	a.requestPaint()
}

// alert is the blocking-modal surrogate: a long flash plus a log line.
func (a *App) alert(msg string) {
	flat := strings.ReplaceAll(msg, "\n", " ")
	log.Printf("alert: %s", flat)
	a.msgMu.Lock()
	a.message = flat
	a.messageUntil = time.Now().Add(5 * time.Second)
	a.msgMu.Unlock()
	a.requestPaint()
}

func (a *App) statusChanged(s status.State) {
	prev := a.lastStatus
	a.lastStatus = s
	if s == status.Error && prev == status.Success {
		a.notifier.ConnectionChanged(false)
	}
	if s == status.Success && prev == status.Error {
		a.notifier.ConnectionChanged(true)
	}
	a.requestPaint()
}

func (a *App) requestPaint() {
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *App) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// ShareURL returns the page URL with the current hidden layers encoded
// in the hide_layers parameter.
func (a *App) ShareURL() (string, error) {
	a.mu.Lock()
	code := a.page.Code
	a.mu.Unlock()
	return a.layers.EncodeURL(a.client.BaseURL() + "/viewer/page/" + code + "/")
}

// Run executes the UI loop using shiny's driver.
func (a *App) Run() { driver.Main(a.Main) }

func (a *App) Main(s screen.Screen) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	a.messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 24, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}

	// Size the toolbar to its widest label so layer titles are not
	// clipped on start up.
	max := measureString("Planedit") + 8
	labels := []string{"1:Insert", "2:Select", "3:Caption", "Layers"}
	labels = append(labels, a.layers.Titles()...)
	for _, lbl := range labels {
		if w := measureString(lbl) + 28; w > max {
			max = w
		}
	}
	a.viewMu.Lock()
	a.toolbarWidth = max
	a.viewMu.Unlock()

	a.mu.Lock()
	width := a.page.PlanWidth + a.toolbarWidth
	height := a.page.PlanHeight + topHeight + bottomHeight
	title := "Planedit - " + a.page.Code
	a.mu.Unlock()
	if width < 800 || width > 1600 {
		width = 1200
	}
	if height < 600 || height > 1000 {
		height = 800
	}
	a.setWinSize(width, height)

	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()
	defer a.markers.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.poll.Start(ctx)
	defer a.poll.Stop()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	a.markers.RefreshCenters()

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			fctx, fcancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = fcancel
			paintMu.Unlock()
			a.drawFrame(fctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if fctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
		}
	}()

	cancelPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	lastMode := a.ctrl.Mode()

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				cancelPaint()
				return
			}
		case size.Event:
			a.setWinSize(e.WidthPx, e.HeightPx)
			a.markers.RefreshCenters()
			a.panels.RepositionAll()
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := a.snapshot()
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}
		case mouse.Event:
			a.handleMouse(ctx, w, e)
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			if a.handleKey(ctx, w, e) {
				cancelPaint()
				return
			}
		}
		a.syncCaptionMode(ctx, &lastMode, w)
	}
}

func (a *App) snapshot() paintState {
	a.viewMu.Lock()
	width, height := a.winW, a.winH
	zoom := a.zoomNow
	origin := image.Pt(a.toolbarWidth-a.scroll.X, topHeight-a.scroll.Y)
	factor := a.sizeFactor
	a.viewMu.Unlock()
	a.mu.Lock()
	planSize := image.Pt(a.page.PlanWidth, a.page.PlanHeight)
	a.mu.Unlock()

	a.msgMu.Lock()
	message, messageUntil := a.message, a.messageUntil
	a.msgMu.Unlock()

	selected := map[uuid.UUID]bool{}
	for _, uid := range a.ctrl.Selection() {
		selected[uid] = true
	}
	return paintState{
		width:         width,
		height:        height,
		mode:          a.ctrl.Mode(),
		selected:      selected,
		zoom:          zoom,
		planSize:      planSize,
		origin:        origin,
		status:        a.poll.State(),
		markerRadius:  markerRadius * factor / 100,
		message:       message,
		messageUntil:  messageUntil,
		editUID:       a.editUID,
		editSide:      a.editSide,
		authenticated: a.authenticated,
	}
}

// syncCaptionMode fetches or drops captions when the tool mode crosses
// the caption boundary. Placements are never kept across an exit.
func (a *App) syncCaptionMode(ctx context.Context, last *controller.Mode, w screen.Window) {
	m := a.ctrl.Mode()
	if m == *last {
		return
	}
	if m == controller.ModeCaption {
		a.mu.Lock()
		code := a.page.Code
		a.mu.Unlock()
		if err := a.captions.ShowAll(ctx, code); err != nil {
			log.Printf("captions: %v", err)
			a.flash("failed to load captions")
		}
	} else if *last == controller.ModeCaption {
		a.captions.HideAll()
	}
	*last = m
	w.Send(paint.Event{})
}
