// Package scale steps the plan view through a fixed list of zoom
// factors while keeping the scroll viewport centered on its previous
// focal point.
package scale

import "image"

// DefaultFactors are zoom percentages, smallest first.
var DefaultFactors = []int{100, 125, 150, 200, 300}

// Scroller is the scrollable box holding the plan. Extents change when
// the plan is rescaled.
type Scroller interface {
	Extent() image.Point
	ClientSize() image.Point
	ScrollOffset() image.Point
	SetScrollOffset(image.Point)
}

// Controller owns the scale index. Listeners run after every change so
// open panels and cached marker centers can follow the new zoom.
type Controller struct {
	factors  []int
	index    int
	scroll   Scroller
	onChange []func(zoom float64)
}

func NewController(factors []int, scroll Scroller) *Controller {
	if len(factors) == 0 {
		factors = DefaultFactors
	}
	return &Controller{factors: factors, scroll: scroll}
}

// OnChange registers a listener for scale changes.
func (c *Controller) OnChange(fn func(zoom float64)) {
	c.onChange = append(c.onChange, fn)
}

// Current returns the zoom multiplier, 1.0 at the base factor.
func (c *Controller) Current() float64 {
	return float64(c.factors[c.index]) / 100
}

func (c *Controller) CouldIncrease() bool { return c.index < len(c.factors)-1 }
func (c *Controller) CouldDecrease() bool { return c.index > 0 }

// Increase steps zoom in. Reports whether a further increase remains.
func (c *Controller) Increase() bool {
	if !c.CouldIncrease() {
		return false
	}
	c.step(1)
	return c.CouldIncrease()
}

// Decrease steps zoom out. Reports whether a further decrease remains.
func (c *Controller) Decrease() bool {
	if !c.CouldDecrease() {
		return false
	}
	c.step(-1)
	return c.CouldDecrease()
}

// step changes the index and re-centers the scroll viewport around the
// focal point it showed before, expressed as fractions of the scroll
// extent and recomputed against the new extent.
func (c *Controller) step(delta int) {
	var relX, relY float64
	if c.scroll != nil {
		extent := c.scroll.Extent()
		client := c.scroll.ClientSize()
		offset := c.scroll.ScrollOffset()
		if extent.X > 0 && extent.Y > 0 {
			relX = (float64(offset.X) + float64(client.X)/2) / float64(extent.X)
			relY = (float64(offset.Y) + float64(client.Y)/2) / float64(extent.Y)
		}
	}

	c.index += delta
	for _, fn := range c.onChange {
		fn(c.Current())
	}

	if c.scroll != nil {
		extent := c.scroll.Extent()
		client := c.scroll.ClientSize()
		c.scroll.SetScrollOffset(image.Pt(
			int(relX*float64(extent.X)-float64(client.X)/2),
			int(relY*float64(extent.Y)-float64(client.Y)/2),
		))
	}
}
