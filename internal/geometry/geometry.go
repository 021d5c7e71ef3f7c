// Package geometry converts between window pixels and plan-local
// coordinates. The probe is stateless; callers supply the current viewport
// on every call because zoom and scroll can change between events.
package geometry

import "image"

// Viewport describes the current mapping of the plan onto the window: the
// screen position of the plan origin and the zoom factor applied to it.
type Viewport interface {
	PlanOrigin() image.Point
	Zoom() float64
}

// Probe transforms pointer coordinates through the inverse of the current
// viewport transform.
type Probe struct {
	view Viewport
}

// NewProbe returns a probe bound to the given viewport source.
func NewProbe(view Viewport) *Probe {
	return &Probe{view: view}
}

// ToPlan maps a window pixel to plan coordinates.
func (p *Probe) ToPlan(screen image.Point) image.Point {
	origin := p.view.PlanOrigin()
	z := p.view.Zoom()
	return image.Pt(
		int(float64(screen.X-origin.X)/z),
		int(float64(screen.Y-origin.Y)/z),
	)
}

// ToScreen maps plan coordinates to a window pixel.
func (p *Probe) ToScreen(plan image.Point) image.Point {
	origin := p.view.PlanOrigin()
	z := p.view.Zoom()
	return image.Pt(
		origin.X+int(float64(plan.X)*z),
		origin.Y+int(float64(plan.Y)*z),
	)
}

// OnPlan reports whether the plan point lies inside the plan bounds.
func OnPlan(pt image.Point, size image.Point) bool {
	return pt.X >= 0 && pt.Y >= 0 && pt.X < size.X && pt.Y < size.Y
}
