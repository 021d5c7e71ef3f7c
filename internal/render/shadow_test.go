package render

import (
	"image"
	"testing"
)

func TestDrawShadowWritesAlpha(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	rect := image.Rect(10, 10, 20, 20)
	opts := ShadowOptions{Radius: 4, Offset: image.Pt(4, 4), Opacity: 0.5}

	DrawShadow(dst, rect, opts)

	center := image.Pt(15, 15).Add(opts.Offset)
	if dst.RGBAAt(center.X, center.Y).A == 0 {
		t.Fatalf("expected shadow alpha at %v", center)
	}
	// Blur should spread alpha past the offset rectangle edge.
	edge := image.Pt(rect.Max.X+opts.Offset.X+1, center.Y)
	if dst.RGBAAt(edge.X, edge.Y).A == 0 {
		t.Fatalf("expected blurred alpha at %v", edge)
	}
	if dst.RGBAAt(1, 1).A != 0 {
		t.Fatal("expected corner far from panel to stay transparent")
	}
}

func TestDrawShadowNoopWhenOpacityZero(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	DrawShadow(dst, image.Rect(2, 2, 10, 10), ShadowOptions{Radius: 6, Offset: image.Pt(3, 3), Opacity: 0})
	for i, v := range dst.Pix {
		if v != 0 {
			t.Fatalf("pixel data modified at index %d", i)
		}
	}
}

func TestDrawShadowClipsToDestination(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 12, 12))
	// Rectangle hangs off the right edge of the destination.
	DrawShadow(dst, image.Rect(8, 2, 30, 10), DefaultShadowOptions())
	if dst.RGBAAt(10, 8).A == 0 {
		t.Fatal("expected shadow alpha inside destination")
	}
}
