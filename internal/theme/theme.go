package theme

import (
	"image/color"
)

// Theme defines the color palette for the plan editor UI.
type Theme struct {
	Name string

	// General
	Background color.RGBA // window background around the plan
	Foreground color.RGBA // main text color

	// Toolbar
	ToolbarBackground color.RGBA
	ToolbarText       color.RGBA
	ToolActive        color.RGBA // highlighted tool mode button

	// Markers
	MarkerFill        color.RGBA // fallback when a layer has no color
	MarkerSelected    color.RGBA
	MarkerReviewedDim color.RGBA // overlay on reviewed markers
	MarkerPendingRing color.RGBA // unconfirmed geometry writes
	MarkerFailedRing  color.RGBA
	CommentGlyph      color.RGBA
	CommentResolved   color.RGBA

	// Selection rectangle overlay
	SelectionRect color.RGBA

	// Editor panels
	PanelBackground color.RGBA
	PanelBorder     color.RGBA
	PanelText       color.RGBA

	// Captions
	CaptionText       color.RGBA
	CaptionBackground color.RGBA

	// Connectivity indicator
	StatusPending color.RGBA
	StatusSuccess color.RGBA
	StatusError   color.RGBA
}

// Default returns the hardcoded light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:              "Default",
		Background:        color.RGBA{220, 220, 220, 255},
		Foreground:        color.RGBA{0, 0, 0, 255},
		ToolbarBackground: color.RGBA{200, 200, 200, 255},
		ToolbarText:       color.RGBA{0, 0, 0, 255},
		ToolActive:        color.RGBA{150, 150, 150, 255},
		MarkerFill:        color.RGBA{170, 0, 0, 255},
		MarkerSelected:    color.RGBA{0, 120, 215, 255},
		MarkerReviewedDim: color.RGBA{255, 255, 255, 120},
		MarkerPendingRing: color.RGBA{218, 165, 32, 255},
		MarkerFailedRing:  color.RGBA{200, 0, 0, 255},
		CommentGlyph:      color.RGBA{255, 140, 0, 255},
		CommentResolved:   color.RGBA{30, 130, 70, 255},
		SelectionRect:     color.RGBA{0, 120, 215, 255},
		PanelBackground:   color.RGBA{250, 250, 250, 255},
		PanelBorder:       color.RGBA{80, 80, 80, 255},
		PanelText:         color.RGBA{0, 0, 0, 255},
		CaptionText:       color.RGBA{255, 255, 255, 255},
		CaptionBackground: color.RGBA{40, 40, 40, 255},
		StatusPending:     color.RGBA{218, 165, 32, 255},
		StatusSuccess:     color.RGBA{0, 128, 0, 255},
		StatusError:       color.RGBA{200, 0, 0, 255},
	}
}
