package panels

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/google/uuid"

	"github.com/example/planedit/internal/api"
	"github.com/example/planedit/internal/plan"
)

type fakeStore struct {
	details    map[uuid.UUID]api.MarkerDetail
	fetchCalls int
	putErr     error
	putUID     uuid.UUID
	putSides   []plan.Side
	bulkUIDs   []uuid.UUID
	bulkSides  []plan.Side
	resolved   []uuid.UUID
}

func (f *fakeStore) GetMarker(_ context.Context, uid uuid.UUID, _ bool) (api.MarkerDetail, error) {
	d, ok := f.details[uid]
	if !ok {
		return api.MarkerDetail{}, errors.New("not found")
	}
	return d, nil
}

func (f *fakeStore) FetchMany(_ context.Context, uids []uuid.UUID) ([]api.MarkerDetail, error) {
	f.fetchCalls++
	out := make([]api.MarkerDetail, 0, len(uids))
	for _, uid := range uids {
		out = append(out, f.details[uid])
	}
	return out, nil
}

func (f *fakeStore) PutInfoplan(_ context.Context, uid uuid.UUID, infoplan []plan.Side, _ *api.FingerpostMetadata) (api.MarkerDetail, error) {
	if f.putErr != nil {
		return api.MarkerDetail{}, f.putErr
	}
	f.putUID = uid
	f.putSides = infoplan
	return f.details[uid], nil
}

func (f *fakeStore) SubmitMany(_ context.Context, infoplan []plan.Side, uids []uuid.UUID) error {
	f.bulkUIDs = uids
	f.bulkSides = infoplan
	return nil
}

func (f *fakeStore) ResolveAllComments(_ context.Context, uid uuid.UUID) (api.MarkerSummary, error) {
	f.resolved = append(f.resolved, uid)
	return api.MarkerSummary{Marker: uid, CommentsResolved: true}, nil
}

type fixedCenters map[uuid.UUID]image.Point

func (c fixedCenters) ScreenCenter(uid uuid.UUID) (image.Point, bool) {
	pt, ok := c[uid]
	return pt, ok
}

type syncSpy struct{ synced []api.MarkerSummary }

func (s *syncSpy) Sync(rep api.MarkerSummary) { s.synced = append(s.synced, rep) }

func detailWithSides(uid uuid.UUID, sides ...[]string) api.MarkerDetail {
	var d api.MarkerDetail
	d.Marker = uid
	d.Number = "L1/1/1"
	for i, vars := range sides {
		d.Infoplan = append(d.Infoplan, plan.Side{Number: i + 1, Variables: vars})
	}
	return d
}

func newTestRegistry(store *fakeStore, centers fixedCenters) (*Registry, *syncSpy, *[]string) {
	spy := &syncSpy{}
	var alerts []string
	r := NewRegistry(store, centers, spy, WithAlert(func(msg string) {
		alerts = append(alerts, msg)
	}))
	return r, spy, &alerts
}

func TestShowPlacesPanelOffMarkerCenter(t *testing.T) {
	uid := uuid.New()
	store := &fakeStore{details: map[uuid.UUID]api.MarkerDetail{
		uid: detailWithSides(uid, []string{"Exit A", "Exit B"}),
	}}
	r, _, _ := newTestRegistry(store, fixedCenters{uid: image.Pt(100, 60)})

	if err := r.Show(context.Background(), uid); err != nil {
		t.Fatal(err)
	}
	p := r.Get(uid)
	if p == nil || !p.Visible || !p.Focused {
		t.Fatalf("panel state = %+v", p)
	}
	if p.Pos != image.Pt(120, 80) {
		t.Fatalf("panel at %v, want marker center plus diagonal offset", p.Pos)
	}
	if len(p.Sides) != 1 || p.Sides[0].Text != "Exit A;\nExit B;" {
		t.Fatalf("sides = %+v", p.Sides)
	}
}

func TestShowTwiceReusesPanel(t *testing.T) {
	uid := uuid.New()
	store := &fakeStore{details: map[uuid.UUID]api.MarkerDetail{
		uid: detailWithSides(uid, []string{"A"}),
	}}
	r, _, _ := newTestRegistry(store, fixedCenters{uid: image.Pt(0, 0)})

	if err := r.Show(context.Background(), uid); err != nil {
		t.Fatal(err)
	}
	r.Get(uid).Sides[0].Text = "edited, unsaved"
	r.Hide(uid)

	if err := r.Show(context.Background(), uid); err != nil {
		t.Fatal(err)
	}
	if got := r.Get(uid).Sides[0].Text; got != "edited, unsaved" {
		t.Fatalf("reopen lost edits: %q", got)
	}
}

func TestShowManyRejectsMixedSideCounts(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	store := &fakeStore{details: map[uuid.UUID]api.MarkerDetail{
		a: detailWithSides(a, []string{"x"}, []string{"y"}),
		b: detailWithSides(b, []string{"x"}, []string{"y"}, []string{"z"}, []string{"w"}),
	}}
	r, _, alerts := newTestRegistry(store, fixedCenters{})

	err := r.ShowMany(context.Background(), []uuid.UUID{a, b})
	if !errors.Is(err, ErrMixedSides) {
		t.Fatalf("err = %v", err)
	}
	if len(*alerts) != 1 {
		t.Fatal("blocking message not shown")
	}
	if r.Get(a) != nil || r.Get(b) != nil {
		t.Fatal("no panel may be rendered on rejection")
	}
	if store.fetchCalls != 1 {
		t.Fatalf("fetch calls = %d, want only the initial read", store.fetchCalls)
	}
}

func TestShowManyCommonAndBlankFields(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	store := &fakeStore{details: map[uuid.UUID]api.MarkerDetail{
		a: detailWithSides(a, []string{"Shared"}, []string{"Only A"}),
		b: detailWithSides(b, []string{"Shared"}, []string{"Only B"}),
	}}
	r, _, _ := newTestRegistry(store, fixedCenters{a: image.Pt(10, 10)})

	if err := r.ShowMany(context.Background(), []uuid.UUID{a, b}); err != nil {
		t.Fatal(err)
	}
	p := r.Get(a)
	if p == nil || !p.Bulk() {
		t.Fatal("bulk panel missing")
	}
	if p.Sides[0].Text != "Shared;" {
		t.Fatalf("common side = %q", p.Sides[0].Text)
	}
	if p.Sides[1].Text != "" {
		t.Fatalf("disagreeing side should be blank, got %q", p.Sides[1].Text)
	}
}

func TestSaveDropsPanelAndSyncs(t *testing.T) {
	uid := uuid.New()
	store := &fakeStore{details: map[uuid.UUID]api.MarkerDetail{
		uid: detailWithSides(uid, []string{"Old"}),
	}}
	r, spy, _ := newTestRegistry(store, fixedCenters{})

	if err := r.Show(context.Background(), uid); err != nil {
		t.Fatal(err)
	}
	r.Get(uid).Sides[0].Text = "New A;\nNew B;\n"
	if err := r.Save(context.Background(), uid); err != nil {
		t.Fatal(err)
	}
	if len(store.putSides) != 1 || len(store.putSides[0].Variables) != 2 {
		t.Fatalf("submitted infoplan = %+v", store.putSides)
	}
	if store.putSides[0].Variables[1] != "New B" {
		t.Fatalf("trailing delimiter not stripped: %v", store.putSides[0].Variables)
	}
	if r.Get(uid) != nil {
		t.Fatal("panel should drop after save")
	}
	if len(spy.synced) != 1 {
		t.Fatal("marker glyphs not refreshed from response")
	}
}

func TestFailedSaveKeepsPanelOpen(t *testing.T) {
	uid := uuid.New()
	store := &fakeStore{
		details: map[uuid.UUID]api.MarkerDetail{uid: detailWithSides(uid, []string{"Old"})},
	}
	r, _, alerts := newTestRegistry(store, fixedCenters{})

	if err := r.Show(context.Background(), uid); err != nil {
		t.Fatal(err)
	}
	store.putErr = errors.New("500")
	if err := r.Save(context.Background(), uid); err == nil {
		t.Fatal("expected save error")
	}
	if r.Get(uid) == nil {
		t.Fatal("panel must stay editable after failure")
	}
	if len(*alerts) != 1 {
		t.Fatal("blocking message not shown")
	}
}

func TestSaveManyUsesBatchEndpoint(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	store := &fakeStore{details: map[uuid.UUID]api.MarkerDetail{
		a: detailWithSides(a, []string{"v"}),
		b: detailWithSides(b, []string{"v"}),
	}}
	r, _, _ := newTestRegistry(store, fixedCenters{})

	if err := r.ShowMany(context.Background(), []uuid.UUID{a, b}); err != nil {
		t.Fatal(err)
	}
	if err := r.SaveMany(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if len(store.bulkUIDs) != 2 {
		t.Fatalf("bulk uids = %v", store.bulkUIDs)
	}
	if r.Get(a) != nil {
		t.Fatal("bulk panel should drop after save")
	}
}

func TestResolveAll(t *testing.T) {
	uid := uuid.New()
	store := &fakeStore{details: map[uuid.UUID]api.MarkerDetail{
		uid: detailWithSides(uid, []string{"v"}),
	}}
	r, spy, _ := newTestRegistry(store, fixedCenters{})

	if err := r.Show(context.Background(), uid); err != nil {
		t.Fatal(err)
	}
	if err := r.ResolveAll(context.Background(), uid); err != nil {
		t.Fatal(err)
	}
	if len(store.resolved) != 1 || len(spy.synced) != 1 {
		t.Fatal("resolve did not hit the endpoint or sync")
	}
	if r.Get(uid) != nil {
		t.Fatal("panel should drop after resolve")
	}
}

func TestRepositionAllFollowsZoom(t *testing.T) {
	uid := uuid.New()
	centers := fixedCenters{uid: image.Pt(50, 50)}
	store := &fakeStore{details: map[uuid.UUID]api.MarkerDetail{
		uid: detailWithSides(uid, []string{"v"}),
	}}
	r, _, _ := newTestRegistry(store, centers)

	if err := r.Show(context.Background(), uid); err != nil {
		t.Fatal(err)
	}
	centers[uid] = image.Pt(100, 100)
	r.RepositionAll()
	if got := r.Get(uid).Pos; got != image.Pt(120, 120) {
		t.Fatalf("panel pos = %v after zoom change", got)
	}
}

func TestDropAllRemovesHiddenPanelsToo(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	store := &fakeStore{details: map[uuid.UUID]api.MarkerDetail{
		a: detailWithSides(a, []string{"v"}),
		b: detailWithSides(b, []string{"v"}),
	}}
	r, _, _ := newTestRegistry(store, fixedCenters{a: image.Pt(10, 10), b: image.Pt(20, 20)})

	for _, uid := range []uuid.UUID{a, b} {
		if err := r.Show(context.Background(), uid); err != nil {
			t.Fatal(err)
		}
	}
	r.Hide(a) // Hide keeps the panel registered
	r.DropAll()

	if len(r.Open()) != 0 {
		t.Fatalf("open = %v after DropAll", r.Open())
	}
	if r.Get(a) != nil || r.Get(b) != nil {
		t.Fatal("DropAll must remove hidden panels as well as visible ones")
	}
	r.RepositionAll()
	if len(r.Open()) != 0 {
		t.Fatal("no panel may come back after DropAll")
	}
}

func TestPlacementOffsetScalesWithZoom(t *testing.T) {
	uid := uuid.New()
	store := &fakeStore{details: map[uuid.UUID]api.MarkerDetail{
		uid: detailWithSides(uid, []string{"v"}),
	}}
	spy := &syncSpy{}
	zoom := 1.0
	r := NewRegistry(store, fixedCenters{uid: image.Pt(100, 60)}, spy,
		WithZoom(func() float64 { return zoom }))

	if err := r.Show(context.Background(), uid); err != nil {
		t.Fatal(err)
	}
	if got := r.Get(uid).Pos; got != image.Pt(120, 80) {
		t.Fatalf("pos at 1x = %v", got)
	}

	zoom = 2
	r.RepositionAll()
	if got := r.Get(uid).Pos; got != image.Pt(140, 100) {
		t.Fatalf("pos at 2x = %v, want the offset doubled", got)
	}

	// Zoomed out, the clearance never collapses below its 1x value.
	zoom = 0.5
	r.RepositionAll()
	if got := r.Get(uid).Pos; got != image.Pt(120, 80) {
		t.Fatalf("pos at 0.5x = %v", got)
	}
}
