package pdfgen

import (
	"context"
	"testing"
	"time"

	"github.com/example/planedit/internal/api"
)

type fakeGen struct {
	info    api.PDFInfo
	pending int
	checks  int
}

func (g *fakeGen) GeneratePDF(context.Context, string) (api.PDFInfo, error) {
	return g.info, nil
}

func (g *fakeGen) CheckPDFFile(context.Context, string) (bool, time.Duration, error) {
	g.checks++
	if g.checks <= g.pending {
		return false, time.Millisecond, nil
	}
	return true, 0, nil
}

func TestGenerateStoresBuildInfo(t *testing.T) {
	gen := &fakeGen{info: api.PDFInfo{
		Original: "/files/orig.pdf",
		Reviewed: "/files/rev.pdf",
	}}
	c := NewController(gen)
	if _, has := c.Last(); has {
		t.Fatal("no build yet")
	}
	info, err := c.Generate(context.Background(), "Mall")
	if err != nil {
		t.Fatal(err)
	}
	if info.Original != "/files/orig.pdf" {
		t.Fatalf("info = %+v", info)
	}
	if last, has := c.Last(); !has || last != info {
		t.Fatal("build info not stored")
	}
}

func TestRefreshGate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gen := &fakeGen{info: api.PDFInfo{
		RefreshTimeout: now.Add(time.Hour).Format(time.RFC3339),
	}}
	c := NewController(gen)
	if !c.RefreshAllowed(now) {
		t.Fatal("refresh must be allowed before any build")
	}
	if _, err := c.Generate(context.Background(), "Mall"); err != nil {
		t.Fatal(err)
	}
	if c.RefreshAllowed(now.Add(30 * time.Minute)) {
		t.Fatal("refresh offered before the server timeout")
	}
	if !c.RefreshAllowed(now.Add(2 * time.Hour)) {
		t.Fatal("refresh blocked after the timeout passed")
	}
}

func TestWaitReadyPollsUntilDone(t *testing.T) {
	gen := &fakeGen{pending: 3}
	c := NewController(gen)
	if err := c.WaitReady(context.Background(), "/files/orig.pdf"); err != nil {
		t.Fatal(err)
	}
	if gen.checks != 4 {
		t.Fatalf("checks = %d, want 4", gen.checks)
	}
}

func TestWaitReadyHonorsCancellation(t *testing.T) {
	gen := &fakeGen{pending: 1 << 30}
	c := NewController(gen)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.WaitReady(ctx, "/files/orig.pdf"); err == nil {
		t.Fatal("expected context error")
	}
}
