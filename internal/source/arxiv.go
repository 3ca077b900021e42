// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paper-feed/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	arxivAbsBase = "https://arxiv.org/abs/"
	arxivPDFBase = "https://arxiv.org/pdf/"

	// defaultArxivQuery is used when no keywords are configured.
	defaultArxivQuery = "cat:cs.LG OR cat:cs.AI OR cat:stat.ML"
)

// ArxivIndex queries the arXiv API, newest submissions first.
type ArxivIndex struct {
	fetcher *fetcher
}

// NewArxivIndex returns an arXiv index using client and the pacing in cfg.
func NewArxivIndex(client *http.Client, cfg types.HTTPConfig) *ArxivIndex {
	return &ArxivIndex{fetcher: newFetcher(client, cfg)}
}

// Name returns the index identifier.
func (a *ArxivIndex) Name() string { return string(types.IndexArxiv) }

// Query sends one search request sorted by submission date and parses the
// Atom feed into papers.
func (a *ArxivIndex) Query(ctx context.Context, q Query) ([]types.Paper, error) {
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = types.DefaultMaxResults
	}

	params := url.Values{
		"search_query": {buildArxivQuery(q.Keywords)},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(maxResults)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
	}

	body, err := a.fetcher.get(ctx, "arXiv API", arxivAPIBase+"?"+params.Encode(), "application/atom+xml")
	if err != nil {
		// arXiv answers a query it cannot parse with HTTP 400 and an Atom
		// error entry. That is a bad request, not an outage.
		var se *statusError
		if errors.As(err, &se) && se.Code >= 400 && se.Code < 500 {
			if msg, ok := arxivErrorMessage(se.Body); ok {
				return nil, fmt.Errorf("arXiv API rejected the query (HTTP %d): %s: %w", se.Code, msg, types.ErrSourceMalformed)
			}
		}
		return nil, err
	}
	return parseArxivFeed(body)
}

// arxivErrorMessage returns the summary of the error entry in an Atom
// body, if it has one.
func arxivErrorMessage(body []byte) (string, bool) {
	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return "", false
	}
	for _, entry := range feed.Entries {
		if strings.Contains(entry.ID, "/api/errors") {
			return collapseSpace(entry.Summary), true
		}
	}
	return "", false
}

// buildArxivQuery constructs the search_query parameter. Without keywords
// it lists the default machine-learning categories. If any keyword is a
// category filter ("cat:cs.AI") all keywords are OR-ed; otherwise each
// keyword must appear as a phrase in any field.
func buildArxivQuery(keywords []string) string {
	if len(keywords) == 0 {
		return defaultArxivQuery
	}

	for _, kw := range keywords {
		if strings.HasPrefix(kw, "cat:") {
			return strings.Join(keywords, " OR ")
		}
	}

	terms := make([]string, len(keywords))
	for i, kw := range keywords {
		terms[i] = `all:"` + strings.ReplaceAll(kw, `"`, "") + `"`
	}
	return strings.Join(terms, " AND ")
}

// parseArxivFeed converts an Atom feed into papers. A document whose root
// is not an Atom <feed> is malformed, even when it is well-formed XML.
// Entries without an /abs/ identifier or a parseable publication date make
// the whole response malformed; arXiv reports query errors as such entries.
func parseArxivFeed(body []byte) ([]types.Paper, error) {
	var feed arxivFeed
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w: %w", types.ErrSourceMalformed, err)
	}

	papers := make([]types.Paper, 0, len(feed.Entries))
	for i, entry := range feed.Entries {
		id := extractArxivID(entry.ID)
		if id == "" {
			if strings.Contains(entry.ID, "/api/errors") {
				return nil, fmt.Errorf("arXiv API error: %s: %w", collapseSpace(entry.Summary), types.ErrSourceMalformed)
			}
			return nil, fmt.Errorf("arXiv entry %d has no identifier (%q): %w", i, entry.ID, types.ErrSourceMalformed)
		}

		published, err := time.Parse(time.RFC3339, strings.TrimSpace(entry.Published))
		if err != nil {
			return nil, fmt.Errorf("arXiv entry %s: invalid published date %q: %w", id, entry.Published, types.ErrSourceMalformed)
		}

		p := types.Paper{
			ID:        id,
			Title:     collapseSpace(entry.Title),
			Abstract:  collapseSpace(entry.Summary),
			Submitted: published.UTC(),
			URL:       arxivAbsBase + id,
			PDFURL:    arxivPDFBase + id,
			Source:    string(types.IndexArxiv),
		}
		for _, a := range entry.Authors {
			if name := collapseSpace(a.Name); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	XMLName xml.Name     `xml:"http://www.w3.org/2005/Atom feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(idURL[idx+len(prefix):])

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
