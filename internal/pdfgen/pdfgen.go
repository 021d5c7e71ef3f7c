// Package pdfgen requests project PDF builds and waits for the files
// to materialize.
package pdfgen

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/planedit/internal/api"
)

// Generator is the PDF build backend. *api.Client satisfies it.
type Generator interface {
	GeneratePDF(ctx context.Context, projectTitle string) (api.PDFInfo, error)
	CheckPDFFile(ctx context.Context, fileURL string) (ready bool, retry time.Duration, err error)
}

// Controller remembers the last build and gates refreshes on the
// server-provided timeout.
type Controller struct {
	gen Generator

	mu   sync.Mutex
	last api.PDFInfo
	has  bool
}

func NewController(gen Generator) *Controller {
	return &Controller{gen: gen}
}

// Last returns the most recent build info.
func (c *Controller) Last() (api.PDFInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.has
}

// RefreshAllowed reports whether the refresh action should be offered;
// the server names the earliest next build time in each response.
func (c *Controller) RefreshAllowed(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.has {
		return true
	}
	after, err := time.Parse(time.RFC3339, c.last.RefreshTimeout)
	if err != nil {
		return true
	}
	return now.After(after)
}

// Generate kicks off a build and stores the returned file links.
func (c *Controller) Generate(ctx context.Context, projectTitle string) (api.PDFInfo, error) {
	info, err := c.gen.GeneratePDF(ctx, projectTitle)
	if err != nil {
		return api.PDFInfo{}, fmt.Errorf("pdfgen: generate %s: %w", projectTitle, err)
	}
	c.mu.Lock()
	c.last = info
	c.has = true
	c.mu.Unlock()
	return info, nil
}

// WaitReady polls a generated file until the server stops answering
// "still generating", sleeping for each response's Retry-After hint.
func (c *Controller) WaitReady(ctx context.Context, fileURL string) error {
	for {
		ready, retry, err := c.gen.CheckPDFFile(ctx, fileURL)
		if err != nil {
			return fmt.Errorf("pdfgen: check %s: %w", fileURL, err)
		}
		if ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retry):
		}
	}
}
