// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paper-feed/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// openAlexMaxPerPage is the largest page size OpenAlex accepts.
const openAlexMaxPerPage = 200

// errNoOpenAlexKeywords is returned before any request when the keyword set
// cannot be expressed as an OpenAlex search.
var errNoOpenAlexKeywords = errors.New("openalex index needs at least one plain keyword (cat: filters are arXiv-only)")

// OpenAlexIndex queries the OpenAlex Works API sorted by publication date.
type OpenAlexIndex struct {
	fetcher *fetcher

	// Email is sent as mailto parameter for polite pool access.
	Email string
}

// Name returns the index identifier.
func (o *OpenAlexIndex) Name() string { return string(types.IndexOpenAlex) }

// Query sends one search request sorted by publication date descending and
// converts the works into papers.
func (o *OpenAlexIndex) Query(ctx context.Context, q Query) ([]types.Paper, error) {
	search, err := buildOpenAlexSearch(q.Keywords)
	if err != nil {
		return nil, err
	}

	perPage := q.MaxResults
	if perPage <= 0 {
		perPage = types.DefaultMaxResults
	}
	if perPage > openAlexMaxPerPage {
		perPage = openAlexMaxPerPage
	}

	params := url.Values{
		"search":   {search},
		"sort":     {"publication_date:desc"},
		"per_page": {strconv.Itoa(perPage)},
		"page":     {"1"},
	}
	if o.Email != "" {
		params.Set("mailto", o.Email)
	}

	body, err := o.fetcher.get(ctx, "OpenAlex API", openAlexSearchBase+"?"+params.Encode(), "application/json")
	if err != nil {
		return nil, err
	}
	return parseOpenAlexWorks(body)
}

// buildOpenAlexSearch joins keywords into one full-text search string.
func buildOpenAlexSearch(keywords []string) (string, error) {
	if len(keywords) == 0 {
		return "", errNoOpenAlexKeywords
	}
	for _, kw := range keywords {
		if strings.HasPrefix(kw, "cat:") {
			return "", errNoOpenAlexKeywords
		}
	}
	return strings.Join(keywords, " "), nil
}

// parseOpenAlexWorks converts a works list into papers. A body without a
// results array is malformed. Untitled works are skipped.
func parseOpenAlexWorks(body []byte) ([]types.Paper, error) {
	var oar openAlexResponse
	if err := json.Unmarshal(body, &oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w: %w", types.ErrSourceMalformed, err)
	}
	if oar.Results == nil {
		return nil, fmt.Errorf("OpenAlex response has no results list: %w", types.ErrSourceMalformed)
	}

	papers := make([]types.Paper, 0, len(*oar.Results))
	for i, work := range *oar.Results {
		id := strings.TrimPrefix(work.ID, "https://openalex.org/")
		if id == "" {
			return nil, fmt.Errorf("OpenAlex work %d has no identifier: %w", i, types.ErrSourceMalformed)
		}

		var submitted time.Time
		switch {
		case work.PublicationDate != "":
			t, err := time.Parse("2006-01-02", work.PublicationDate)
			if err != nil {
				return nil, fmt.Errorf("OpenAlex work %s: invalid publication date %q: %w", id, work.PublicationDate, types.ErrSourceMalformed)
			}
			submitted = t
		case work.PublicationYear > 0:
			submitted = time.Date(work.PublicationYear, 1, 1, 0, 0, 0, 0, time.UTC)
		default:
			return nil, fmt.Errorf("OpenAlex work %s has no publication date: %w", id, types.ErrSourceMalformed)
		}

		// OpenAlex has works without a title; they cannot be listed.
		title := collapseSpace(work.Title)
		if title == "" {
			continue
		}

		p := types.Paper{
			ID:        id,
			Title:     title,
			Abstract:  collapseSpace(reconstructAbstract(work.AbstractInvertedIndex)),
			Submitted: submitted,
			URL:       work.ID,
			PDFURL:    work.OpenAccess.OAURL,
			Source:    string(types.IndexOpenAlex),
		}
		if work.DOI != "" {
			p.URL = work.DOI
		}
		for _, authorship := range work.Authorships {
			if name := collapseSpace(authorship.Author.DisplayName); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results *[]openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationDate       string               `json:"publication_date"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	OpenAccess            openAlexOpenAccess   `json:"open_access"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	DisplayName string `json:"display_name"`
}

type openAlexOpenAccess struct {
	OAURL string `json:"oa_url"`
}
