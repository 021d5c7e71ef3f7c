package config

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/example/planedit/internal/theme"
)

// Notify holds desktop notification settings.
type Notify struct {
	PDFReady   bool
	SaveFailed bool
	Connection bool
}

// Config holds the application configuration.
type Config struct {
	ServerURL    string
	Project      string
	Page         string
	Token        string
	LogLevel     string
	Theme        string
	ScaleFactors []int
	Notify       Notify
	Themes       map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		LogLevel: "info",
		Notify: Notify{
			PDFReady:   true,
			SaveFailed: true,
			Connection: false,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.ServerURL != "" {
		fmt.Fprintf(&sb, "server_url = %s\n", c.ServerURL)
	}
	if c.Project != "" {
		fmt.Fprintf(&sb, "project = %s\n", c.Project)
	}
	if c.Page != "" {
		fmt.Fprintf(&sb, "page = %s\n", c.Page)
	}
	if c.Token != "" {
		fmt.Fprintf(&sb, "token = %s\n", c.Token)
	}
	if c.LogLevel != "" {
		fmt.Fprintf(&sb, "log_level = %s\n", c.LogLevel)
	}
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if len(c.ScaleFactors) > 0 {
		factors := make([]string, len(c.ScaleFactors))
		for i, f := range c.ScaleFactors {
			factors[i] = strconv.Itoa(f)
		}
		fmt.Fprintf(&sb, "scale_factors = %s\n", strings.Join(factors, " "))
	}
	sb.WriteString("\n")

	// Notify section
	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "pdf_ready = %v\n", c.Notify.PDFReady)
	fmt.Fprintf(&sb, "save_failed = %v\n", c.Notify.SaveFailed)
	fmt.Fprintf(&sb, "connection = %v\n", c.Notify.Connection)
	sb.WriteString("\n")

	// Themes sections
	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		fmt.Fprintf(&sb, "Background: %s\n", toHex(t.Background))
		fmt.Fprintf(&sb, "Foreground: %s\n", toHex(t.Foreground))
		fmt.Fprintf(&sb, "ToolbarBackground: %s\n", toHex(t.ToolbarBackground))
		fmt.Fprintf(&sb, "ToolbarText: %s\n", toHex(t.ToolbarText))
		fmt.Fprintf(&sb, "ToolActive: %s\n", toHex(t.ToolActive))
		fmt.Fprintf(&sb, "MarkerFill: %s\n", toHex(t.MarkerFill))
		fmt.Fprintf(&sb, "MarkerSelected: %s\n", toHex(t.MarkerSelected))
		fmt.Fprintf(&sb, "MarkerReviewedDim: %s\n", toHex(t.MarkerReviewedDim))
		fmt.Fprintf(&sb, "MarkerPendingRing: %s\n", toHex(t.MarkerPendingRing))
		fmt.Fprintf(&sb, "MarkerFailedRing: %s\n", toHex(t.MarkerFailedRing))
		fmt.Fprintf(&sb, "CommentGlyph: %s\n", toHex(t.CommentGlyph))
		fmt.Fprintf(&sb, "CommentResolved: %s\n", toHex(t.CommentResolved))
		fmt.Fprintf(&sb, "SelectionRect: %s\n", toHex(t.SelectionRect))
		fmt.Fprintf(&sb, "PanelBackground: %s\n", toHex(t.PanelBackground))
		fmt.Fprintf(&sb, "PanelBorder: %s\n", toHex(t.PanelBorder))
		fmt.Fprintf(&sb, "PanelText: %s\n", toHex(t.PanelText))
		fmt.Fprintf(&sb, "CaptionText: %s\n", toHex(t.CaptionText))
		fmt.Fprintf(&sb, "CaptionBackground: %s\n", toHex(t.CaptionBackground))
		fmt.Fprintf(&sb, "StatusPending: %s\n", toHex(t.StatusPending))
		fmt.Fprintf(&sb, "StatusSuccess: %s\n", toHex(t.StatusSuccess))
		fmt.Fprintf(&sb, "StatusError: %s\n", toHex(t.StatusError))
		sb.WriteString("\n")
	}

	return sb.String()
}

func toHex(c interface{ RGBA() (r, g, b, a uint32) }) string {
	if rgba, ok := c.(color.RGBA); ok {
		if rgba.A == 255 {
			return fmt.Sprintf("#%02X%02X%02X", rgba.R, rgba.G, rgba.B)
		}
		return fmt.Sprintf("#%02X%02X%02X%02X", rgba.R, rgba.G, rgba.B, rgba.A)
	}

	// Fallback for non-color.RGBA types (though unlikely in this app's context)
	r, g, b, a := c.RGBA()
	if a == 0 {
		return "#00000000"
	}
	r8 := uint8(r >> 8)
	g8 := uint8(g >> 8)
	b8 := uint8(b >> 8)
	a8 := uint8(a >> 8)

	if a8 == 255 {
		return fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", r8, g8, b8, a8)
}
