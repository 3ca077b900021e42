// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-feed/pkg/types"
)

var generatedAt = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func samplePaper(id string, day int) types.Paper {
	return types.Paper{
		ID:        id,
		Title:     "Paper " + id,
		Authors:   []string{"Ada Lovelace"},
		Abstract:  "A short abstract.",
		Submitted: time.Date(2026, 10, day, 12, 0, 0, 0, time.UTC),
		URL:       "https://arxiv.org/abs/" + id,
		PDFURL:    "https://arxiv.org/pdf/" + id,
		Source:    "arxiv",
	}
}

func TestRenderContents(t *testing.T) {
	list := types.PaperList{
		{
			ID:        "2610.01234",
			Title:     "Sparse Attention",
			Authors:   []string{"A", "B", "C", "D", "E"},
			Abstract:  strings.Repeat("x", 400),
			Submitted: time.Date(2026, 10, 17, 17, 59, 58, 0, time.UTC),
			URL:       "https://arxiv.org/abs/2610.01234",
			PDFURL:    "https://arxiv.org/pdf/2610.01234",
			Source:    "arxiv",
		},
		samplePaper("2610.00001", 16),
	}

	page, err := Render(list, generatedAt)
	require.NoError(t, err)
	out := page.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Latest arXiv Papers</title>")
	assert.Contains(t, out, "<strong>2 papers</strong>")
	assert.Contains(t, out, `<time class="generated" datetime="2026-10-19T00:00:00Z">October 19, 2026 at 12:00 AM UTC</time>`)
	assert.Contains(t, out, "October 17, 2026")
	assert.Contains(t, out, "A, B, C, et al. (5 authors)")
	assert.Contains(t, out, strings.Repeat("x", 297)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 298))
	assert.Contains(t, out, "arXiv:2610.01234")
	assert.Contains(t, out, `href="https://arxiv.org/pdf/2610.01234"`)
	assert.Contains(t, out, `href="index.html"`)

	first := strings.Index(out, "2610.01234")
	second := strings.Index(out, "2610.00001")
	assert.Less(t, first, second, "papers must appear in list order")
}

func TestRenderEmptyList(t *testing.T) {
	page, err := Render(nil, generatedAt)
	require.NoError(t, err)
	assert.False(t, page.IsEmpty())
	assert.Contains(t, page.String(), "<strong>0 papers</strong>")
	assert.NotContains(t, page.String(), "paper-card\"")
}

func TestRendererConfig(t *testing.T) {
	r := New(types.RenderConfig{Title: "Protein Papers"})
	page, err := r.Render(types.PaperList{samplePaper("2610.00001", 1)}, generatedAt)
	require.NoError(t, err)

	out := page.String()
	assert.Contains(t, out, "<title>Protein Papers</title>")
	assert.NotContains(t, out, "Back to Home")
	assert.NotContains(t, out, "stylesheet")
}

func TestRenderNonArxivPaper(t *testing.T) {
	p := samplePaper("W4400000001", 3)
	p.Source = "openalex"
	p.PDFURL = ""
	p.URL = "https://doi.org/10.1234/x"

	page, err := Render(types.PaperList{p}, generatedAt)
	require.NoError(t, err)
	out := page.String()
	assert.Contains(t, out, "Paper Page")
	assert.NotContains(t, out, "arXiv:W4400000001")
	assert.NotContains(t, out, "pdf-link\"")
}

func TestRenderDeterministic(t *testing.T) {
	list := types.PaperList{samplePaper("b", 2), samplePaper("a", 1)}
	first, err := Render(list, generatedAt)
	require.NoError(t, err)
	second, err := Render(list, generatedAt)
	require.NoError(t, err)
	assert.Equal(t, first.Content, second.Content)

	later, err := Render(list, generatedAt.Add(24*time.Hour))
	require.NoError(t, err)
	assert.NotEqual(t, first.Content, later.Content)
}

func TestRenderEscapesUntrustedFields(t *testing.T) {
	p := samplePaper("2610.00001", 1)
	p.Title = `<script>alert("t")</script>`
	p.Authors = []string{`<img src=x onerror=alert(1)>`}
	p.Abstract = `</p><iframe src="evil"></iframe>`
	p.PDFURL = "javascript:alert(1)"

	page, err := Render(types.PaperList{p}, generatedAt)
	require.NoError(t, err)
	out := page.String()

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<img")
	assert.NotContains(t, out, "<iframe")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestRenderRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Paper)
		errMsg string
	}{
		{"missing title", func(p *types.Paper) { p.Title = " " }, "missing title"},
		{"missing url", func(p *types.Paper) { p.URL = "" }, "missing url"},
		{"missing date", func(p *types.Paper) { p.Submitted = time.Time{} }, "missing submission date"},
		{"missing id", func(p *types.Paper) { p.ID = "" }, "has no id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := samplePaper("2610.00001", 1)
			tt.mutate(&p)
			_, err := Render(types.PaperList{p}, generatedAt)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrRender)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRenderRejectsUnorderedList(t *testing.T) {
	list := types.PaperList{samplePaper("old", 1), samplePaper("new", 9)}
	_, err := Render(list, generatedAt)
	assert.ErrorIs(t, err, types.ErrRender)

	dup := types.PaperList{samplePaper("a", 2), samplePaper("a", 1)}
	_, err = Render(dup, generatedAt)
	assert.ErrorIs(t, err, types.ErrRender)
}

func TestTruncateAbstract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "hello", "hello"},
		{"exactly 300", strings.Repeat("a", 300), strings.Repeat("a", 300)},
		{"301", strings.Repeat("a", 301), strings.Repeat("a", 297) + "..."},
		{"multibyte", strings.Repeat("é", 310), strings.Repeat("é", 297) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateAbstract(tt.input))
		})
	}
}

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		authors []string
		want    string
	}{
		{nil, ""},
		{[]string{"A"}, "A"},
		{[]string{"A", "B", "C"}, "A, B, C"},
		{[]string{"A", "B", "C", "D"}, "A, B, C, et al. (4 authors)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAuthors(tt.authors))
		})
	}
}

func TestRenderProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	titlesToList := func(titles []string) types.PaperList {
		list := make(types.PaperList, len(titles))
		for i, title := range titles {
			p := samplePaper(fmt.Sprintf("2610.%05d", i), 1)
			p.Title = "t" + title
			list[i] = p
		}
		return list
	}

	properties.Property("same input renders identical bytes", prop.ForAll(
		func(titles []string, offset int64) bool {
			at := generatedAt.Add(time.Duration(offset) * time.Second)
			a, errA := Render(titlesToList(titles), at)
			b, errB := Render(titlesToList(titles), at)
			return errA == nil && errB == nil && bytes.Equal(a.Content, b.Content)
		},
		gen.SliceOf(gen.AnyString()),
		gen.Int64Range(0, 1<<30),
	))

	properties.Property("markup in titles is escaped", prop.ForAll(
		func(tag string) bool {
			page, err := Render(titlesToList([]string{"<x-" + tag + ">"}), generatedAt)
			return err == nil && !bytes.Contains(page.Content, []byte("<x-"))
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
