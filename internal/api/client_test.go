package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/planedit/internal/plan"
)

func TestCreateMarkerRequestShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/viewer/api/marker/" {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"marker": uuid.New(), "number": "L1/1/1",
			"position": map[string]int{"center_x": 120, "center_y": 80, "rotation": 0},
			"layer":    "L1", "page": "A2",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	project := uuid.New()
	rep, err := c.CreateMarker(context.Background(), CreateMarkerRequest{
		Project:  project,
		Page:     "A2",
		Layer:    "L1",
		Position: plan.Position{CenterX: 120, CenterY: 80},
	})
	if err != nil {
		t.Fatalf("CreateMarker: %v", err)
	}
	pos := got["position"].(map[string]any)
	if pos["center_x"].(float64) != 120 || pos["center_y"].(float64) != 80 || pos["rotation"].(float64) != 0 {
		t.Fatalf("position payload = %v", pos)
	}
	if rep.LayerTitle() != "L1" || rep.Page != "A2" {
		t.Fatalf("creation response context = %q %q", rep.Layer, rep.Page)
	}
}

func TestDeleteMarkerStatusNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "locked"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.DeleteMarker(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error for non-ok delete status")
	}
}

func TestStatusErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"after /marker/ must be uuid"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetMarker(context.Background(), uuid.New(), false)
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if serr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", serr.Code)
	}
}

func TestGetMarkerDetailDecodesLayerObject(t *testing.T) {
	uid := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pretty") != "true" {
			t.Errorf("pretty flag not propagated: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"marker": uid, "number": "W2/2/5", "reviewed": true,
			"has_comment": true, "comments_resolved": false,
			"position": map[string]int{"center_x": 10, "center_y": 20, "rotation": 370},
			"comments": []map[string]any{{"content": "поправить", "resolved": false}},
			"infoplan": []map[string]any{{"side": 1, "variables": []string{"Exit A"}}},
			"layer": map[string]any{
				"title": "W2", "color": "#AA0000",
				"kind": map[string]any{"name": "обычный", "sides": 2},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	detail, err := c.GetMarker(context.Background(), uid, true)
	if err != nil {
		t.Fatalf("GetMarker: %v", err)
	}
	m := detail.Entity()
	if m.Layer.Title != "W2" || m.Layer.Kind.Sides != 2 {
		t.Fatalf("layer = %+v", m.Layer)
	}
	if m.Position.Rotation != 10 {
		t.Fatalf("rotation not canonicalized: %d", m.Position.Rotation)
	}
	if !m.Reviewed || !m.HasComment || m.CommentsResolved {
		t.Fatalf("review state = %+v", m)
	}
	if m.Persist != plan.Confirmed {
		t.Fatal("server echo should confirm persist state")
	}
}

func TestPatchGeometryCanonicalizesRotation(t *testing.T) {
	var got map[string]int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"marker": uuid.New()})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.PatchGeometry(context.Background(), uuid.New(), plan.Position{CenterX: 5, CenterY: 6, Rotation: -90})
	if err != nil {
		t.Fatalf("PatchGeometry: %v", err)
	}
	if got["pos_x"] != 5 || got["pos_y"] != 6 || got["rotation"] != 270 {
		t.Fatalf("patch body = %v", got)
	}
}

func TestCheckPDFFileRetryAfter(t *testing.T) {
	state := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s", r.Method)
		}
		if state == 0 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(stillGeneratingStatus)
			state = 1
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ready, retry, err := c.CheckPDFFile(context.Background(), srv.URL+"/files/plan.pdf")
	if err != nil || ready {
		t.Fatalf("first check: ready=%v err=%v", ready, err)
	}
	if retry != 7*time.Second {
		t.Fatalf("retry = %v, want 7s", retry)
	}
	ready, _, err = c.CheckPDFFile(context.Background(), srv.URL+"/files/plan.pdf")
	if err != nil || !ready {
		t.Fatalf("second check: ready=%v err=%v", ready, err)
	}
}

func TestPingUsesShortTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTimeout(3*time.Second))
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
