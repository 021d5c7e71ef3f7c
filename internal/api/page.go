package api

import (
	"context"
	"net/http"

	"github.com/example/planedit/internal/plan"
)

// PageData is the bootstrap payload of the page edit endpoint: the layer
// catalog, every marker on the floor, the plan extent and the sibling
// floor codes (bottom to top) for floor switching.
type PageData struct {
	Code       string          `json:"code"`
	Title      string          `json:"title"`
	PlanWidth  int             `json:"plan_width"`
	PlanHeight int             `json:"plan_height"`
	Layers     []plan.Layer    `json:"layers"`
	Markers    []MarkerSummary `json:"markers"`
	Siblings   []string        `json:"siblings"`

	// MarkerSizeFactor is the page's saved marker display scale in
	// percent; zero means the default of 100.
	MarkerSizeFactor int `json:"marker_size_factor,omitempty"`
}

// GetPage fetches the page bootstrap data.
func (c *Client) GetPage(ctx context.Context, code string) (PageData, error) {
	url := c.base + "/viewer/page/" + code + "/edit/"
	var rep PageData
	err := c.doJSON(ctx, http.MethodGet, url, nil, &rep)
	return rep, err
}
