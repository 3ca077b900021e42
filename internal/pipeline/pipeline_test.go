// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-feed/internal/publish"
	"github.com/pdiddy/paper-feed/internal/render"
	"github.com/pdiddy/paper-feed/internal/source"
	"github.com/pdiddy/paper-feed/pkg/types"
)

type stubIndex struct {
	papers []types.Paper
	err    error
	calls  int
}

func (s *stubIndex) Name() string { return "stub" }

func (s *stubIndex) Query(context.Context, source.Query) ([]types.Paper, error) {
	s.calls++
	return s.papers, s.err
}

// countingPublisher records how often Publish is called.
type countingPublisher struct {
	calls int
}

func (c *countingPublisher) Publish(context.Context, types.RenderedPage) (publish.PublishResult, error) {
	c.calls++
	return publish.PublishResult{Status: publish.StatusPublished}, nil
}

var day0 = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func papers(n int) []types.Paper {
	out := make([]types.Paper, n)
	for i := range out {
		id := fmt.Sprintf("2610.%05d", i)
		out[i] = types.Paper{
			ID:        id,
			Title:     "Paper " + id,
			Authors:   []string{"Ada Lovelace", "Alan Turing"},
			Abstract:  "Abstract of " + id,
			Submitted: day0.Add(-time.Duration(i) * time.Hour),
			URL:       "https://arxiv.org/abs/" + id,
			PDFURL:    "https://arxiv.org/pdf/" + id,
			Source:    "arxiv",
		}
	}
	return out
}

type fixture struct {
	pipeline *Pipeline
	index    *stubIndex
	pagePath string
	logs     *bytes.Buffer
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	pagePath := filepath.Join(t.TempDir(), "papers.html")
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))
	clock := func() time.Time { return now }

	pub, err := publish.NewPublisher(publish.NewDirLog(pagePath), "", clock, logger)
	require.NoError(t, err)

	idx := &stubIndex{}
	return &fixture{
		pipeline: &Pipeline{
			Index:      idx,
			Keywords:   []string{"machine learning"},
			MaxResults: 20,
			Renderer:   render.New(types.DefaultConfig().Render),
			Publisher:  pub,
			Clock:      clock,
			Logger:     logger,
		},
		index:    idx,
		pagePath: pagePath,
		logs:     logs,
	}
}

func (f *fixture) published(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(f.pagePath)
	require.NoError(t, err)
	return string(data)
}

// Scenario 1: twenty records are rendered in order and published over an
// empty log.
func TestRunOnceFirstPublish(t *testing.T) {
	f := newFixture(t, day0)
	f.index.papers = papers(20)

	res, err := f.pipeline.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, publish.StatusPublished, res.Publish.Status)
	assert.NotEmpty(t, res.Publish.Revision)
	require.Len(t, res.Papers, 20)
	assert.Len(t, res.Digest, 64)

	page := f.published(t)
	assert.Contains(t, page, "<strong>20 papers</strong>")
	last := -1
	for _, p := range res.Papers {
		pos := strings.Index(page, "arXiv:"+p.ID)
		require.GreaterOrEqual(t, pos, 0, "paper %s missing from page", p.ID)
		assert.Greater(t, pos, last, "paper %s out of order", p.ID)
		last = pos
	}

	logs := f.logs.String()
	assert.Contains(t, logs, "stage=fetch")
	assert.Contains(t, logs, "stage=render")
	assert.Contains(t, logs, "status=published")
}

// Scenario 2: the same records on the next day leave the page unchanged.
func TestRunOnceNoChange(t *testing.T) {
	f := newFixture(t, day0)
	f.index.papers = papers(20)
	first, err := f.pipeline.RunOnce(context.Background())
	require.NoError(t, err)
	before := f.published(t)

	f.pipeline.Clock = func() time.Time { return day0.Add(24 * time.Hour) }
	res, err := f.pipeline.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, publish.StatusNoChange, res.Publish.Status)
	assert.Equal(t, first.Publish.Revision, res.Publish.Revision)
	assert.Equal(t, first.Digest, res.Digest)
	assert.Equal(t, before, f.published(t), "no-change must not rewrite the page")
}

// Scenario 3: an unavailable source aborts before render and leaves the
// published page byte-identical.
func TestRunOnceSourceUnavailable(t *testing.T) {
	f := newFixture(t, day0)
	f.index.papers = papers(5)
	_, err := f.pipeline.RunOnce(context.Background())
	require.NoError(t, err)
	before := f.published(t)

	f.index.papers = nil
	f.index.err = fmt.Errorf("arXiv API request: %w", types.ErrSourceUnavailable)
	pub := &countingPublisher{}
	f.pipeline.Publisher = pub

	_, err = f.pipeline.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSourceUnavailable)
	assert.Equal(t, "fetch", Stage(err))
	assert.Zero(t, pub.calls, "publish must not run after a failed fetch")
	assert.Equal(t, before, f.published(t))

	logs := f.logs.String()
	assert.Contains(t, logs, "cycle aborted")
	assert.Contains(t, logs, "kind=SourceUnavailable")
}

func TestRunOnceChangedList(t *testing.T) {
	f := newFixture(t, day0)
	f.index.papers = papers(20)
	first, err := f.pipeline.RunOnce(context.Background())
	require.NoError(t, err)

	newer := append([]types.Paper{{
		ID: "2610.99999", Title: "Fresh", Submitted: day0.Add(time.Hour), URL: "https://arxiv.org/abs/2610.99999",
	}}, papers(20)...)
	f.index.papers = newer

	res, err := f.pipeline.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, publish.StatusPublished, res.Publish.Status)
	assert.NotEqual(t, first.Publish.Revision, res.Publish.Revision)
	assert.Len(t, res.Papers, 20)
	assert.Equal(t, "2610.99999", res.Papers[0].ID)
}

func TestRunOnceEmptyResultIsValid(t *testing.T) {
	f := newFixture(t, day0)

	res, err := f.pipeline.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Papers)
	assert.Equal(t, publish.StatusPublished, res.Publish.Status)
	assert.Contains(t, f.published(t), "<strong>0 papers</strong>")
}

func TestRunOnceRenderFailure(t *testing.T) {
	f := newFixture(t, day0)
	bad := papers(2)
	bad[1].Title = ""
	f.index.papers = bad
	pub := &countingPublisher{}
	f.pipeline.Publisher = pub

	_, err := f.pipeline.RunOnce(context.Background())
	assert.ErrorIs(t, err, types.ErrRender)
	assert.Equal(t, "render", Stage(err))
	assert.Zero(t, pub.calls)
}

func TestRunOnceMalformedSource(t *testing.T) {
	f := newFixture(t, day0)
	f.index.err = fmt.Errorf("parsing arXiv response: %w", types.ErrSourceMalformed)

	_, err := f.pipeline.RunOnce(context.Background())
	assert.ErrorIs(t, err, types.ErrSourceMalformed)
	_, statErr := os.Stat(f.pagePath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunOnceRequiresCollaborators(t *testing.T) {
	_, err := (&Pipeline{}).RunOnce(context.Background())
	assert.Error(t, err)
}

func TestRunOnceProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("rerunning a cycle with the same papers never publishes", prop.ForAll(
		func(n int, hours int) bool {
			f := newFixture(t, day0)
			f.index.papers = papers(n)
			if _, err := f.pipeline.RunOnce(context.Background()); err != nil {
				return false
			}
			f.pipeline.Clock = func() time.Time { return day0.Add(time.Duration(hours) * time.Hour) }
			res, err := f.pipeline.RunOnce(context.Background())
			return err == nil && res.Publish.Status == publish.StatusNoChange
		},
		gen.IntRange(0, 30),
		gen.IntRange(1, 24*365),
	))

	properties.Property("published list is bounded and newest first", prop.ForAll(
		func(n, max int) bool {
			f := newFixture(t, day0)
			f.index.papers = papers(n)
			f.pipeline.MaxResults = max
			res, err := f.pipeline.RunOnce(context.Background())
			return err == nil && len(res.Papers) <= max && res.Papers.Validate() == nil
		},
		gen.IntRange(0, 40),
		gen.IntRange(1, 25),
	))

	properties.TestingRun(t)
}
