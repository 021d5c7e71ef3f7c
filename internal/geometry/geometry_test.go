package geometry

import (
	"image"
	"testing"
)

type fixedView struct {
	origin image.Point
	zoom   float64
}

func (v *fixedView) PlanOrigin() image.Point { return v.origin }
func (v *fixedView) Zoom() float64           { return v.zoom }

func TestProbeRoundTrip(t *testing.T) {
	view := &fixedView{origin: image.Pt(48, 24), zoom: 1.5}
	probe := NewProbe(view)

	plan := image.Pt(120, 80)
	screen := probe.ToScreen(plan)
	if got := probe.ToPlan(screen); got != plan {
		t.Fatalf("round trip = %v, want %v", got, plan)
	}
}

func TestProbeFollowsViewportChanges(t *testing.T) {
	view := &fixedView{origin: image.Pt(0, 0), zoom: 1}
	probe := NewProbe(view)

	if got := probe.ToPlan(image.Pt(100, 60)); got != image.Pt(100, 60) {
		t.Fatalf("identity transform = %v", got)
	}

	// The probe must not cache the transform.
	view.zoom = 2
	view.origin = image.Pt(10, 10)
	if got := probe.ToPlan(image.Pt(110, 70)); got != image.Pt(50, 30) {
		t.Fatalf("after viewport change = %v, want (50,30)", got)
	}
}

func TestOnPlan(t *testing.T) {
	size := image.Pt(200, 100)
	if !OnPlan(image.Pt(0, 0), size) || !OnPlan(image.Pt(199, 99), size) {
		t.Fatal("corner points should be on the plan")
	}
	if OnPlan(image.Pt(200, 50), size) || OnPlan(image.Pt(-1, 50), size) {
		t.Fatal("outside points reported on the plan")
	}
}
