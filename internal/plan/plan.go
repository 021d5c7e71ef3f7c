// Package plan holds the client-side projections of server-owned floor plan
// entities. The in-memory state here is authoritative for the UI: the window
// is always redrawn from these structs, never the other way around.
package plan

import (
	"strings"

	"github.com/google/uuid"
)

// Position locates a marker on the plan. Coordinates are plan-local pixels,
// rotation is counterclockwise-positive degrees canonicalized to [0,360).
type Position struct {
	CenterX  int `json:"center_x"`
	CenterY  int `json:"center_y"`
	Rotation int `json:"rotation"`
}

// LayerKind describes the physical shape of markers on a layer.
type LayerKind struct {
	Name  string `json:"name"`
	Sides int    `json:"sides"`
}

// IsFingerpost reports whether this kind is the multi-pane fingerpost
// variant with independently toggleable panes.
func (k LayerKind) IsFingerpost() bool { return k.Name == "фингерпост" }

// Layer is a named marker category that can be hidden and designated active.
type Layer struct {
	Title string    `json:"title"`
	Color string    `json:"color"`
	Kind  LayerKind `json:"kind"`
}

// Side is one face of a marker with its ordered infoplan text lines.
type Side struct {
	Number    int      `json:"side"`
	Variables []string `json:"variables"`
}

// Comment is one review comment attached to a marker.
type Comment struct {
	Content  string `json:"content"`
	Resolved bool   `json:"resolved"`
}

// Pane describes one fingerpost pane toggle.
type Pane struct {
	Number  int  `json:"pane_number"`
	Enabled bool `json:"enabled"`
}

// PersistState tracks whether local geometry edits reached the server.
type PersistState int

const (
	// Confirmed means the marker's geometry matches the last server echo.
	Confirmed PersistState = iota
	// Pending means local edits exist that have not been flushed yet or
	// whose flush has not been acknowledged.
	Pending
	// Failed means the last flush attempt returned an error; the marker is
	// visually flagged so the divergence is not silent.
	Failed
)

// Marker is the client projection of one placed sign. Identity is the
// server-issued UID; the client never invents one.
type Marker struct {
	UID      uuid.UUID
	Number   string
	Layer    Layer
	Position Position

	Reviewed         bool
	HasComment       bool
	CommentsResolved bool

	Infoplan []Side
	Comments []Comment
	Panes    []Pane

	Persist PersistState
}

// NormalizeRotation canonicalizes degrees to [0,360). The same convention is
// used for creation, drag-rotate, keyboard nudge and redisplay; stored
// rotation is redisplayed through the identical transform.
func NormalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Rotate applies a relative rotation to the marker position in place.
func (m *Marker) Rotate(delta int) {
	m.Position.Rotation = NormalizeRotation(m.Position.Rotation + delta)
}

// SideVariables returns the text lines of the given side, or nil when the
// side is absent.
func (m *Marker) SideVariables(n int) []string {
	for _, s := range m.Infoplan {
		if s.Number == n {
			return s.Variables
		}
	}
	return nil
}

const sideDelimiter = ";\n"

// ParseSideText splits an edited side text buffer into ordered infoplan
// lines. A trailing delimiter (either the full ";\n" pair or a bare ";") is
// stripped before splitting, so "Exit A;\nExit B;\n" yields two lines.
func ParseSideText(text string) []string {
	if strings.HasSuffix(text, sideDelimiter) {
		text = text[:len(text)-len(sideDelimiter)]
	} else if strings.HasSuffix(text, ";") {
		text = text[:len(text)-1]
	}
	if text == "" {
		return []string{}
	}
	return strings.Split(text, sideDelimiter)
}

// FormatSideText renders infoplan lines into the editable text buffer form,
// the inverse of ParseSideText.
func FormatSideText(variables []string) string {
	if len(variables) == 0 {
		return ""
	}
	return strings.Join(variables, sideDelimiter) + ";"
}
