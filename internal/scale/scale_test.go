package scale

import (
	"image"
	"testing"
)

// fakeScroll rescales its extent with the zoom like the real plan box.
type fakeScroll struct {
	base   image.Point
	zoom   float64
	client image.Point
	offset image.Point
}

func (s *fakeScroll) Extent() image.Point {
	return image.Pt(int(float64(s.base.X)*s.zoom), int(float64(s.base.Y)*s.zoom))
}
func (s *fakeScroll) ClientSize() image.Point        { return s.client }
func (s *fakeScroll) ScrollOffset() image.Point      { return s.offset }
func (s *fakeScroll) SetScrollOffset(pt image.Point) { s.offset = pt }

func TestStepBounds(t *testing.T) {
	c := NewController([]int{100, 200}, nil)
	if !c.CouldIncrease() || c.CouldDecrease() {
		t.Fatal("wrong bounds at base factor")
	}
	if more := c.Increase(); more {
		t.Fatal("top of the list should report no further increase")
	}
	if c.Current() != 2.0 {
		t.Fatalf("zoom = %v", c.Current())
	}
	if c.Increase() {
		t.Fatal("increase past the end must be a no-op")
	}
	if c.Current() != 2.0 {
		t.Fatal("no-op changed the factor")
	}
}

func TestFocalPointPreserved(t *testing.T) {
	scroll := &fakeScroll{
		base:   image.Pt(1000, 800),
		zoom:   1,
		client: image.Pt(400, 300),
		offset: image.Pt(100, 50), // focal center at (300, 200) of 1000x800
	}
	c := NewController([]int{100, 200}, scroll)
	c.OnChange(func(zoom float64) { scroll.zoom = zoom })

	c.Increase()

	// Same relative focal point on the 2000x1600 extent: (600, 400).
	if scroll.offset != image.Pt(400, 250) {
		t.Fatalf("scroll offset = %v, want (400,250)", scroll.offset)
	}
}

func TestListenersRunOnEveryStep(t *testing.T) {
	var zooms []float64
	c := NewController([]int{100, 125, 150}, nil)
	c.OnChange(func(z float64) { zooms = append(zooms, z) })
	c.Increase()
	c.Increase()
	c.Decrease()
	if len(zooms) != 3 || zooms[0] != 1.25 || zooms[1] != 1.5 || zooms[2] != 1.25 {
		t.Fatalf("zooms = %v", zooms)
	}
}
