package api

import (
	"github.com/google/uuid"

	"github.com/example/planedit/internal/plan"
)

// MarkerSummary is the compact marker payload returned by geometry and
// review endpoints.
type MarkerSummary struct {
	Marker           uuid.UUID     `json:"marker"`
	Number           string        `json:"number"`
	Reviewed         bool          `json:"reviewed"`
	HasComment       bool          `json:"has_comment"`
	CommentsResolved bool          `json:"comments_resolved"`
	Position         plan.Position `json:"position"`

	// Present only when the endpoint includes layer/page context
	// (creation and clipboard clone responses).
	Layer         string `json:"layer,omitempty"`
	LayerKindName string `json:"layer_kind_name,omitempty"`
	Page          string `json:"page,omitempty"`
}

// LayerTitle returns the plain layer title of a summary payload.
func (s MarkerSummary) LayerTitle() string { return s.Layer }

// MarkerDetail is the full marker payload with infoplan and comments.
type MarkerDetail struct {
	MarkerSummary
	Comments []plan.Comment `json:"comments"`
	Infoplan []plan.Side    `json:"infoplan"`

	// The detail endpoint replaces the summary's plain layer title with a
	// full object; the outer field shadows the embedded string on decode.
	LayerDetail struct {
		Title string         `json:"title"`
		Color string         `json:"color"`
		Kind  plan.LayerKind `json:"kind"`
	} `json:"layer"`

	FingerpostData *FingerpostMetadata `json:"fingerpost_data,omitempty"`
}

// FingerpostMetadata carries the pane toggles of a fingerpost marker.
type FingerpostMetadata struct {
	Panes []plan.Pane `json:"panes"`
}

// Variable is the single-field payload of the wrongness toggle endpoint.
type Variable struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
	Wrong bool   `json:"wrong"`
}

// VariableSync is the response of the wrongness toggle: the marker summary
// for circle sync plus the altered variable for the field-flag registry.
type VariableSync struct {
	MarkerSummary
	Variable Variable `json:"variable"`
}

// CreateMarkerRequest describes a new marker placed by an insert click.
type CreateMarkerRequest struct {
	Project  uuid.UUID     `json:"project"`
	Page     string        `json:"page"`
	Layer    string        `json:"layer"`
	Position plan.Position `json:"position"`
}

// ClipboardRequest is the batch clone call behind paste. The project and
// page always describe the paste target, never the copy source.
type ClipboardRequest struct {
	ClipboardUUID []uuid.UUID `json:"clipboard_uuid"`
	Project       uuid.UUID   `json:"project"`
	Page          string      `json:"page"`
	Shift         *[2]int     `json:"shift,omitempty"`
}

// CaptionData is the mutable part of a caption placement. Nil fields are
// omitted so offset and rotation can be updated independently.
type CaptionData struct {
	Offset   *[2]int `json:"offset,omitempty"`
	Rotation *int    `json:"rotation,omitempty"`
}

// CaptionPlacement binds caption data to its owning marker.
type CaptionPlacement struct {
	Data struct {
		Offset   [2]int `json:"offset"`
		Rotation int    `json:"rotation"`
	} `json:"data"`
	Marker struct {
		Marker   uuid.UUID     `json:"marker"`
		Number   string        `json:"number"`
		Position plan.Position `json:"position"`
		Layer    string        `json:"layer"`
	} `json:"marker"`
}

// PDFInfo is the 201 payload of the PDF generation trigger.
type PDFInfo struct {
	Original       string `json:"pdf_original"`
	Reviewed       string `json:"pdf_reviewed"`
	CreatedTime    string `json:"pdf_created_time"`
	RefreshTimeout string `json:"pdf_refresh_timeout"`
}

// ApplyTo copies server-confirmed review state onto the in-memory marker.
// Idempotent: applying the same payload twice changes nothing.
func (s MarkerSummary) ApplyTo(m *plan.Marker) {
	m.Number = s.Number
	m.Reviewed = s.Reviewed
	m.HasComment = s.HasComment
	m.CommentsResolved = s.CommentsResolved
	m.Position = plan.Position{
		CenterX:  s.Position.CenterX,
		CenterY:  s.Position.CenterY,
		Rotation: plan.NormalizeRotation(s.Position.Rotation),
	}
	m.Persist = plan.Confirmed
}

// Entity converts the detail payload into a fresh in-memory marker.
func (d MarkerDetail) Entity() *plan.Marker {
	m := &plan.Marker{UID: d.Marker}
	d.MarkerSummary.ApplyTo(m)
	m.Infoplan = d.Infoplan
	m.Comments = d.Comments
	m.Layer = plan.Layer{
		Title: d.LayerDetail.Title,
		Color: d.LayerDetail.Color,
		Kind:  d.LayerDetail.Kind,
	}
	if m.Layer.Title == "" {
		m.Layer.Title = d.Layer
	}
	if d.FingerpostData != nil {
		m.Panes = d.FingerpostData.Panes
	}
	return m
}
