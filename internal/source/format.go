// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paper-feed/pkg/types"
)

// FormatTable writes papers as a human-readable table to w.
func FormatTable(papers types.PaperList, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-12s  %-10s  %-60s  %s\n",
		"Rank", "ID", "Submitted", "Title", "Authors")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, p := range papers {
		fmt.Fprintf(w, "%-4d  %-12s  %-10s  %-60s  %s\n",
			i+1, truncate(p.ID, 12), p.Submitted.Format("2006-01-02"),
			truncate(p.Title, 60), formatAuthors(p.Authors))
	}

	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}

// FormatJSON writes papers as indented JSON to w.
func FormatJSON(papers types.PaperList, w io.Writer) error {
	if papers == nil {
		papers = types.PaperList{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(papers)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
