package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// stillGeneratingStatus is the custom status family the server answers with
// on HEAD requests for a PDF that is not ready yet.
const stillGeneratingStatus = 323

// GeneratePDF asks the server to regenerate the project's PDF set. The
// server answers 201 with the download links and the next allowed refresh
// time.
func (c *Client) GeneratePDF(ctx context.Context, projectTitle string) (PDFInfo, error) {
	url := c.base + "/viewer/project/" + projectTitle + "/pdf/generate/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return PDFInfo{}, fmt.Errorf("api: build pdf generate: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return PDFInfo{}, fmt.Errorf("api: pdf generate: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return PDFInfo{}, &StatusError{Code: resp.StatusCode, URL: url, Body: string(raw)}
	}
	var info PDFInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return PDFInfo{}, fmt.Errorf("api: decode pdf generate: %w", err)
	}
	return info, nil
}

// CheckPDFFile probes a PDF file URL with HEAD. ready is true when the file
// can be downloaded. When the server reports it is still generating, retry
// carries the wait the server asked for via Retry-After.
func (c *Client) CheckPDFFile(ctx context.Context, fileURL string) (ready bool, retry time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, fileURL, nil)
	if err != nil {
		return false, 0, fmt.Errorf("api: build pdf check: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, 0, fmt.Errorf("api: pdf check: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, 0, nil
	case resp.StatusCode == stillGeneratingStatus,
		resp.StatusCode > 300 && resp.StatusCode < 400 && resp.Header.Get("Retry-After") != "":
		wait := 5 * time.Second
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, perr := strconv.Atoi(v); perr == nil && secs > 0 {
				wait = time.Duration(secs) * time.Second
			}
		}
		return false, wait, nil
	default:
		return false, 0, &StatusError{Code: resp.StatusCode, URL: fileURL}
	}
}
