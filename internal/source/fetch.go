// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-feed/internal/httputil"
	"github.com/pdiddy/paper-feed/pkg/types"
)

const (
	// maxBodyBytes caps how much of an index response is read.
	maxBodyBytes = 16 << 20

	// maxErrorBodyBytes caps how much of a non-200 response is kept.
	maxErrorBodyBytes = 64 << 10
)

// statusError is returned for a non-200 reply. It wraps
// types.ErrSourceUnavailable; Body holds the start of the response so an
// index can look for an error document in it.
type statusError struct {
	index string
	Code  int
	Body  []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d: %v", e.index, e.Code, types.ErrSourceUnavailable)
}

func (e *statusError) Unwrap() error { return types.ErrSourceUnavailable }

// fetcher performs the single bounded GET each index needs. It applies the
// fetch timeout, the courtesy interval, and throttling retries, and
// classifies transport failures as types.ErrSourceUnavailable.
type fetcher struct {
	client  *http.Client
	cfg     types.HTTPConfig
	limiter *rate.Limiter
}

func newFetcher(client *http.Client, cfg types.HTTPConfig) *fetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &fetcher{
		client:  client,
		cfg:     cfg,
		limiter: httputil.NewLimiter(cfg.MinInterval),
	}
}

// get fetches reqURL and returns the response body. index names the
// backend in error messages.
func (f *fetcher) get(ctx context.Context, index, reqURL, accept string) ([]byte, error) {
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", index, err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	req.Header.Set("Accept", accept)

	resp, err := httputil.DoWithRetry(ctx, f.client, req, f.cfg.MaxRetries, f.limiter)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w: %w", index, types.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &statusError{index: index, Code: resp.StatusCode, Body: body}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w: %w", index, types.ErrSourceUnavailable, err)
	}
	return body, nil
}
