package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/example/planedit/internal/plan"
)

// CreateMarker places a new marker and returns the server's creation
// payload, including the issued UID and ordinal number.
func (c *Client) CreateMarker(ctx context.Context, req CreateMarkerRequest) (MarkerSummary, error) {
	var rep MarkerSummary
	err := c.doJSON(ctx, http.MethodPost, c.url("/marker/"), req, &rep)
	return rep, err
}

// DeleteMarker removes one marker. The caller must only drop local state
// after the server confirms.
func (c *Client) DeleteMarker(ctx context.Context, uid uuid.UUID) error {
	var rep struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, c.url("/marker/"+uid.String()), nil, &rep); err != nil {
		return err
	}
	if rep.Status != "ok" {
		return fmt.Errorf("api: delete marker %s: status %q", uid, rep.Status)
	}
	return nil
}

// GetMarker fetches the full marker detail. With pretty set, the server
// applies display transformations to variable text (tabs, pict codes).
func (c *Client) GetMarker(ctx context.Context, uid uuid.UUID, pretty bool) (MarkerDetail, error) {
	url := c.url("/marker/" + uid.String())
	if pretty {
		url += "?pretty=true"
	}
	var rep MarkerDetail
	err := c.doJSON(ctx, http.MethodGet, url, nil, &rep)
	return rep, err
}

// PutInfoplan replaces the marker's per-side text content. All sides of the
// marker's kind must be present. Fingerpost pane toggles ride along when
// non-nil.
func (c *Client) PutInfoplan(ctx context.Context, uid uuid.UUID, infoplan []plan.Side, fingerpost *FingerpostMetadata) (MarkerDetail, error) {
	body := struct {
		Infoplan   []plan.Side         `json:"infoplan"`
		Fingerpost *FingerpostMetadata `json:"fingerpost_metadata,omitempty"`
	}{Infoplan: infoplan, Fingerpost: fingerpost}
	var rep MarkerDetail
	err := c.doJSON(ctx, http.MethodPut, c.url("/marker/"+uid.String()), body, &rep)
	return rep, err
}

// PatchGeometry persists a geometry-only update. Fired by the debounce
// flush; callers treat failures per the no-rollback policy.
func (c *Client) PatchGeometry(ctx context.Context, uid uuid.UUID, pos plan.Position) (MarkerSummary, error) {
	body := struct {
		PosX     int `json:"pos_x"`
		PosY     int `json:"pos_y"`
		Rotation int `json:"rotation"`
	}{pos.CenterX, pos.CenterY, plan.NormalizeRotation(pos.Rotation)}
	var rep MarkerSummary
	err := c.doJSON(ctx, http.MethodPatch, c.url("/marker/"+uid.String()), body, &rep)
	return rep, err
}

// ToggleVariableWrong flips one field's flagged-wrong state (legacy review
// mode).
func (c *Client) ToggleVariableWrong(ctx context.Context, uid uuid.UUID, key string, wrong bool) (VariableSync, error) {
	body := struct {
		Key   string `json:"key"`
		Wrong bool   `json:"wrong"`
	}{key, wrong}
	var rep VariableSync
	err := c.doJSON(ctx, http.MethodPost, c.url("/marker/"+uid.String()+"/variable/"), body, &rep)
	return rep, err
}

// SubmitReview posts the legacy review form. exitType is "button" for an
// explicit confirm and "blur" when the panel merely lost focus.
func (c *Client) SubmitReview(ctx context.Context, uid uuid.UUID, comment, exitType string) (MarkerSummary, error) {
	body := struct {
		Comment  string `json:"comment"`
		ExitType string `json:"exit_type"`
	}{comment, exitType}
	var rep MarkerSummary
	err := c.doJSON(ctx, http.MethodPost, c.url("/marker/"+uid.String()+"/review/"), body, &rep)
	return rep, err
}

// ResolveAllComments marks every comment of the marker resolved.
func (c *Client) ResolveAllComments(ctx context.Context, uid uuid.UUID) (MarkerSummary, error) {
	var rep MarkerSummary
	err := c.doJSON(ctx, http.MethodPost, c.url("/marker/"+uid.String()+"/resolve_all_comments/"), nil, &rep)
	return rep, err
}

// CloneFromClipboard clones the listed markers onto the request's project
// and page.
func (c *Client) CloneFromClipboard(ctx context.Context, req ClipboardRequest) ([]MarkerSummary, error) {
	var rep struct {
		Created []MarkerSummary `json:"created"`
	}
	err := c.doJSON(ctx, http.MethodPost, c.url("/marker/from_clipboard/"), req, &rep)
	return rep.Created, err
}

// FetchMany reads several markers' details in one batch call.
func (c *Client) FetchMany(ctx context.Context, uids []uuid.UUID) ([]MarkerDetail, error) {
	body := struct {
		Markers []uuid.UUID `json:"markers"`
	}{uids}
	var rep struct {
		Markers []MarkerDetail `json:"markers"`
	}
	err := c.doJSON(ctx, http.MethodPost, c.url("/marker/fetch_many/"), body, &rep)
	return rep.Markers, err
}

// SubmitMany writes the same infoplan content to every listed marker.
func (c *Client) SubmitMany(ctx context.Context, infoplan []plan.Side, uids []uuid.UUID) error {
	body := struct {
		Infoplan []plan.Side `json:"infoplan"`
		Markers  []uuid.UUID `json:"markers"`
	}{infoplan, uids}
	return c.doJSON(ctx, http.MethodPost, c.url("/marker/submit_many/"), body, nil)
}

// FloorCaptions fetches every caption placement of one floor.
func (c *Client) FloorCaptions(ctx context.Context, floor string) ([]CaptionPlacement, error) {
	var rep struct {
		Data []CaptionPlacement `json:"data"`
	}
	err := c.doJSON(ctx, http.MethodGet, c.url("/markers/caption/?floor="+floor), nil, &rep)
	return rep.Data, err
}

// PutCaption updates one caption's offset and/or rotation.
func (c *Client) PutCaption(ctx context.Context, uid uuid.UUID, data CaptionData) (CaptionPlacement, error) {
	body := struct {
		Data CaptionData `json:"data"`
	}{data}
	var rep CaptionPlacement
	err := c.doJSON(ctx, http.MethodPut, c.url("/marker/"+uid.String()+"/caption/"), body, &rep)
	return rep, err
}

// PutPageData submits page-level settings, currently the marker size factor.
func (c *Client) PutPageData(ctx context.Context, code string, markerSizeFactor int) error {
	body := struct {
		MarkerSizeFactor int `json:"marker_size_factor"`
	}{markerSizeFactor}
	url := c.base + "/viewer/page/" + code + "/edit/"
	return c.doJSON(ctx, http.MethodPut, url, body, nil)
}
