package layers

import (
	"slices"
	"testing"
)

func newTestRegistry() *Registry {
	return NewRegistry([]string{"L1", "L2", "W2", "F5"})
}

func TestToggleHidesAndShows(t *testing.T) {
	r := newTestRegistry()
	if visible := r.Toggle("W2"); visible {
		t.Fatal("first toggle should hide")
	}
	if r.Visible("W2") {
		t.Fatal("W2 should be hidden")
	}
	if visible := r.Toggle("W2"); !visible {
		t.Fatal("second toggle should show")
	}
}

func TestToggleActiveShiftsToNextVisible(t *testing.T) {
	r := newTestRegistry()
	r.SetActive("W2")
	r.Toggle("F5")
	r.Toggle("W2")
	if got := r.Active(); got != "L1" {
		t.Fatalf("active = %q, want wrap past hidden F5 to L1", got)
	}
}

func TestHidingLastLayerKeepsAnInsertTarget(t *testing.T) {
	r := NewRegistry([]string{"L1"})
	if visible := r.Toggle("L1"); !visible {
		t.Fatal("sole layer must stay visible")
	}
	if r.Active() != "L1" {
		t.Fatalf("active = %q", r.Active())
	}
}

func TestSetActiveRevealsHiddenLayer(t *testing.T) {
	r := newTestRegistry()
	r.Toggle("F5")
	r.SetActive("F5")
	if !r.Visible("F5") || r.Active() != "F5" {
		t.Fatalf("visible=%v active=%q", r.Visible("F5"), r.Active())
	}
}

func TestToggleAllDirections(t *testing.T) {
	r := newTestRegistry()
	r.SetActive("L2")
	if shown := r.ToggleAll(); shown {
		t.Fatal("all visible: ToggleAll should hide")
	}
	if r.Visible("L1") || !r.Visible("L2") {
		t.Fatal("hide-all must keep the active layer visible")
	}
	if shown := r.ToggleAll(); !shown {
		t.Fatal("with hidden layers present ToggleAll should show all")
	}
	for _, title := range r.Titles() {
		if !r.Visible(title) {
			t.Fatalf("%s still hidden after show-all", title)
		}
	}
}

func TestURLRoundTrip(t *testing.T) {
	r := newTestRegistry()
	base := "http://plan.local/viewer/page/A2/edit/?foo=1"

	r.Toggle("L2")
	once, err := r.EncodeURL(base)
	if err != nil {
		t.Fatal(err)
	}
	hidden, err := DecodeURL(once)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(hidden, []string{"L2"}) {
		t.Fatalf("decoded hidden = %v", hidden)
	}

	// Idempotent: re-encoding unchanged state yields the same URL.
	twice, err := r.EncodeURL(once)
	if err != nil {
		t.Fatal(err)
	}
	if once != twice {
		t.Fatalf("re-encode changed URL: %q vs %q", once, twice)
	}

	// Toggling twice restores the original parameter state.
	r.Toggle("L2")
	back, err := r.EncodeURL(once)
	if err != nil {
		t.Fatal(err)
	}
	if restored, _ := DecodeURL(back); len(restored) != 0 {
		t.Fatalf("hidden after double toggle = %v", restored)
	}
}

func TestRestoreIgnoresUnknownTitles(t *testing.T) {
	r := newTestRegistry()
	r.Restore([]string{"L1", "nope"})
	if r.Visible("L1") {
		t.Fatal("L1 should be restored hidden")
	}
	if r.Active() == "L1" {
		t.Fatal("active should have shifted off the hidden layer")
	}
}

func TestShiftNotify(t *testing.T) {
	var from, to string
	r := NewRegistry([]string{"A", "B"}, WithShiftNotify(func(f, t string) {
		from, to = f, t
	}))
	r.Toggle("A")
	if from != "A" || to != "B" {
		t.Fatalf("notify = %q -> %q", from, to)
	}
}
