package theme

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
)

// palette maps theme-file keys onto the fields of t. Keys absent from
// a file keep their Default() value; keys absent from this table are
// skipped so newer files still load on older builds.
func palette(t *Theme) map[string]*color.RGBA {
	return map[string]*color.RGBA{
		"Background":        &t.Background,
		"Foreground":        &t.Foreground,
		"ToolbarBackground": &t.ToolbarBackground,
		"ToolbarText":       &t.ToolbarText,
		"ToolActive":        &t.ToolActive,
		"MarkerFill":        &t.MarkerFill,
		"MarkerSelected":    &t.MarkerSelected,
		"MarkerReviewedDim": &t.MarkerReviewedDim,
		"MarkerPendingRing": &t.MarkerPendingRing,
		"MarkerFailedRing":  &t.MarkerFailedRing,
		"CommentGlyph":      &t.CommentGlyph,
		"CommentResolved":   &t.CommentResolved,
		"SelectionRect":     &t.SelectionRect,
		"PanelBackground":   &t.PanelBackground,
		"PanelBorder":       &t.PanelBorder,
		"PanelText":         &t.PanelText,
		"CaptionText":       &t.CaptionText,
		"CaptionBackground": &t.CaptionBackground,
		"StatusPending":     &t.StatusPending,
		"StatusSuccess":     &t.StatusSuccess,
		"StatusError":       &t.StatusError,
	}
}

// Parse reads a theme definition, one "Key: #RRGGBB" (or #RRGGBBAA)
// pair per line. Blank lines and lines starting with # or // are
// comments.
func Parse(r io.Reader) (*Theme, error) {
	t := Default()
	fields := palette(t)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "Name" {
			t.Name = value
			continue
		}
		dst, known := fields[key]
		if !known {
			continue
		}
		col, err := parseColor(value)
		if err != nil {
			return nil, fmt.Errorf("theme key %s: %w", key, err)
		}
		*dst = col
	}
	return t, scanner.Err()
}

func parseColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.RGBA{}, fmt.Errorf("color %q must start with #", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	switch len(hex) {
	case 6:
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	case 8:
		return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
	}
	return color.RGBA{}, fmt.Errorf("color %q must be #RRGGBB or #RRGGBBAA", s)
}
