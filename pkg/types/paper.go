// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-feed pipeline:
// fetched paper records, the rendered page, error kinds, and the per-stage
// configuration.
package types

import (
	"fmt"
	"time"
)

// DefaultMaxResults is the number of papers listed on the page when no
// override is given.
const DefaultMaxResults = 20

// Paper holds the metadata of one paper returned by a paper index.
// Records are immutable once fetched; only the rendered page persists.
type Paper struct {
	// ID is the identifier assigned by the source (e.g. "2301.07041").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract with whitespace collapsed.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Submitted is the submission (or publication) date.
	Submitted time.Time `json:"submitted" yaml:"submitted"`

	// URL is the landing page of the paper.
	URL string `json:"url" yaml:"url"`

	// PDFURL links to the full text when the source provides one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Source identifies which index returned the record (e.g. "arxiv", "openalex").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// PaperList is an ordered list of papers, most recently submitted first,
// with no duplicate IDs.
type PaperList []Paper

// Validate checks the list invariants: every record has an ID, IDs are
// unique, and submission dates never increase down the list.
func (l PaperList) Validate() error {
	seen := make(map[string]int, len(l))
	for i, p := range l {
		if p.ID == "" {
			return fmt.Errorf("paper %d has no id", i)
		}
		if j, ok := seen[p.ID]; ok {
			return fmt.Errorf("duplicate paper id %q at positions %d and %d", p.ID, j, i)
		}
		seen[p.ID] = i
		if i > 0 && p.Submitted.After(l[i-1].Submitted) {
			return fmt.Errorf("paper %q at position %d is newer than its predecessor", p.ID, i)
		}
	}
	return nil
}

// IDs returns the paper IDs in list order.
func (l PaperList) IDs() []string {
	ids := make([]string, len(l))
	for i, p := range l {
		ids[i] = p.ID
	}
	return ids
}
