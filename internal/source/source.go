// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source fetches the newest papers matching a keyword set from a
// remote paper index.
//
// Each index (arXiv, OpenAlex) implements Index and issues exactly one
// search request per call. Fetch post-processes the reply with Newest, a
// pure function, so ordering and bounds hold regardless of what the index
// returns.
package source

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pdiddy/paper-feed/pkg/types"
)

// Index is a remote paper index that can return papers matching keywords,
// newest submissions first.
type Index interface {
	Name() string
	Query(ctx context.Context, q Query) ([]types.Paper, error)
}

// Query holds the search parameters sent to an index.
type Query struct {
	Keywords   []string
	MaxResults int
}

// Fetch queries idx once for the newest papers matching keywords and
// returns at most maxResults of them, ordered by submission date
// descending with duplicate IDs removed. A non-positive maxResults uses
// types.DefaultMaxResults. A reply with fewer matches, or none, is a valid
// shorter list.
//
// Index failures are returned as-is; indexes wrap them with
// types.ErrSourceUnavailable or types.ErrSourceMalformed.
func Fetch(ctx context.Context, idx Index, keywords []string, maxResults int) (types.PaperList, error) {
	if maxResults <= 0 {
		maxResults = types.DefaultMaxResults
	}
	papers, err := idx.Query(ctx, Query{
		Keywords:   NormalizeKeywords(keywords),
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, err
	}
	return Newest(papers, maxResults), nil
}

// Newest removes duplicate IDs (the first occurrence wins), orders papers
// by submission date descending, and truncates to max. The input slice is
// not modified.
func Newest(papers []types.Paper, max int) types.PaperList {
	seen := make(map[string]bool, len(papers))
	list := make(types.PaperList, 0, len(papers))
	for _, p := range papers {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		list = append(list, p)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Submitted.After(list[j].Submitted)
	})

	if max > 0 && len(list) > max {
		list = list[:max]
	}
	return list
}

// NormalizeKeywords trims keywords, drops empty ones, and removes repeats
// while keeping the first-seen order.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	var out []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// NewIndex builds the index selected by cfg.Source.Index. All indexes
// share client and the request pacing configured in cfg.HTTP.
func NewIndex(cfg types.Config, client *http.Client) (Index, error) {
	fetcher := newFetcher(client, cfg.HTTP)
	switch cfg.Source.Index {
	case types.IndexArxiv, "":
		return &ArxivIndex{fetcher: fetcher}, nil
	case types.IndexOpenAlex:
		return &OpenAlexIndex{fetcher: fetcher, Email: cfg.Source.OpenAlexEmail}, nil
	default:
		return nil, fmt.Errorf("unknown paper index %q: use arxiv or openalex", cfg.Source.Index)
	}
}

// collapseSpace joins whitespace runs into single spaces and trims the ends.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
