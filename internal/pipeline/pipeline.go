// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one sync cycle: fetch the newest papers, render the
// page, and publish it when it changed. The external trigger (cron, CI
// schedule, manual dispatch) calls RunOnce once per invocation; a failed
// cycle leaves the published page untouched and the next trigger is the
// retry.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pdiddy/paper-feed/internal/detect"
	"github.com/pdiddy/paper-feed/internal/publish"
	"github.com/pdiddy/paper-feed/internal/render"
	"github.com/pdiddy/paper-feed/internal/source"
	"github.com/pdiddy/paper-feed/pkg/types"
)

// Publisher publishes a rendered page. *publish.Publisher implements it.
type Publisher interface {
	Publish(ctx context.Context, page types.RenderedPage) (publish.PublishResult, error)
}

// Pipeline wires the stages of one cycle.
type Pipeline struct {
	Index      source.Index
	Keywords   []string
	MaxResults int
	Renderer   *render.Renderer
	Publisher  Publisher

	// Clock supplies the generation time stamped on the page. Defaults to time.Now.
	Clock  func() time.Time
	Logger *slog.Logger
}

// CycleResult summarizes a completed cycle.
type CycleResult struct {
	Papers  types.PaperList
	Digest  string
	Publish publish.PublishResult
}

// StageError records which stage aborted the cycle.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + " stage: " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Stage returns the stage name carried by err, or "" if none.
func Stage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// RunOnce executes fetch, render, and publish in order. Any failure aborts
// the cycle before later stages run; errors wrap the types.Err* kinds.
func (p *Pipeline) RunOnce(ctx context.Context) (CycleResult, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	renderer := p.Renderer
	if renderer == nil {
		renderer = render.New(types.DefaultConfig().Render)
	}
	if p.Index == nil || p.Publisher == nil {
		return CycleResult{}, errors.New("pipeline needs an index and a publisher")
	}

	start := time.Now()
	papers, err := source.Fetch(ctx, p.Index, p.Keywords, p.MaxResults)
	if err != nil {
		return CycleResult{}, p.fail(logger, "fetch", err)
	}
	logger.Info("fetched papers", "stage", "fetch", "index", p.Index.Name(), "papers", len(papers),
		"duration", time.Since(start).Round(time.Millisecond))

	page, err := renderer.Render(papers, clock())
	if err != nil {
		return CycleResult{}, p.fail(logger, "render", err)
	}
	digest := detect.Digest(page)
	logger.Info("rendered page", "stage", "render", "bytes", len(page.Content), "digest", digest[:12])

	res, err := p.Publisher.Publish(ctx, page)
	if err != nil {
		return CycleResult{}, p.fail(logger, "publish", err)
	}
	logger.Info("publish finished", "stage", "publish", "status", string(res.Status), "revision", res.Revision.Short())

	return CycleResult{Papers: papers, Digest: digest, Publish: res}, nil
}

func (p *Pipeline) fail(logger *slog.Logger, stage string, err error) error {
	logger.Error("cycle aborted", "stage", stage, "kind", types.Kind(err), "error", err)
	return &StageError{Stage: stage, Err: err}
}
