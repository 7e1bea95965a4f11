package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPResource reads the document with GET and replaces it with a
// full-document POST, the same contract a static data.json endpoint offers.
type HTTPResource struct {
	URL string
	hc  *http.Client
}

func NewHTTPResource(url string, hc *http.Client) *HTTPResource {
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPResource{URL: url, hc: hc}
}

func (h *HTTPResource) Read(ctx context.Context) ([]byte, error) {
	status, body, err := h.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("GET %s: %w", h.URL, ErrMissing)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("GET %s: status %d", h.URL, status)
	}
	return body, nil
}

func (h *HTTPResource) Write(ctx context.Context, body []byte) error {
	status, _, err := h.do(ctx, http.MethodPost, body)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("POST %s: status %d", h.URL, status)
	}
	return nil
}

func (h *HTTPResource) do(ctx context.Context, method string, payload []byte) (int, []byte, error) {
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.URL, rdr)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, b, nil
}

func (h *HTTPResource) String() string { return h.URL }
