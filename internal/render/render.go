// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a paper list into the static HTML page served to
// visitors.
//
// Rendering is pure: the same list and generation time always produce the
// same bytes. The generation time appears in exactly one element,
// <time class="generated">, which the change detector ignores.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/pdiddy/paper-feed/pkg/types"
)

//go:embed templates/papers.html.tmpl
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/papers.html.tmpl"))

const (
	// maxAbstractRunes is the longest abstract shown on a card.
	maxAbstractRunes = 300

	// maxListedAuthors is how many authors are named before "et al.".
	maxListedAuthors = 3

	dateLayout      = "January 2, 2006"
	generatedLayout = "January 2, 2006 at 03:04 PM MST"
)

// Renderer renders pages with a fixed title, subtitle, and links.
type Renderer struct {
	cfg types.RenderConfig
}

// New returns a Renderer for cfg.
func New(cfg types.RenderConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

// Render renders list with the default page text.
func Render(list types.PaperList, generatedAt time.Time) (types.RenderedPage, error) {
	return New(types.DefaultConfig().Render).Render(list, generatedAt)
}

// Render produces the page for list. Every record must carry an ID,
// title, URL, and submission date, and the list must be ordered newest
// first without duplicates; otherwise the error wraps types.ErrRender.
// An empty list renders a valid page with a zero count.
func (r *Renderer) Render(list types.PaperList, generatedAt time.Time) (types.RenderedPage, error) {
	if err := list.Validate(); err != nil {
		return types.RenderedPage{}, fmt.Errorf("%w: %w", types.ErrRender, err)
	}

	cards := make([]card, len(list))
	for i, p := range list {
		c, err := newCard(p)
		if err != nil {
			return types.RenderedPage{}, err
		}
		cards[i] = c
	}

	generatedAt = generatedAt.UTC()
	data := pageData{
		Title:         r.cfg.Title,
		Subtitle:      r.cfg.Subtitle,
		Schedule:      r.cfg.Schedule,
		BackLink:      r.cfg.BackLink,
		Stylesheet:    r.cfg.Stylesheet,
		Count:         len(cards),
		GeneratedISO:  generatedAt.Format(time.RFC3339),
		GeneratedText: generatedAt.Format(generatedLayout),
		Cards:         cards,
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return types.RenderedPage{}, fmt.Errorf("%w: executing page template: %w", types.ErrRender, err)
	}
	return types.RenderedPage{Content: buf.Bytes()}, nil
}

type pageData struct {
	Title         string
	Subtitle      string
	Schedule      string
	BackLink      string
	Stylesheet    string
	Count         int
	GeneratedISO  string
	GeneratedText string
	Cards         []card
}

// card is the display form of one paper. All fields are plain strings;
// the template escapes them.
type card struct {
	ID       string
	Label    string
	Title    string
	Authors  string
	Abstract string
	Date     string

	// MainURL is the title link: the PDF when available, else the paper page.
	MainURL  string
	PDFURL   string
	PageURL  string
	PageName string
}

func newCard(p types.Paper) (card, error) {
	var missing []string
	if p.ID == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(p.Title) == "" {
		missing = append(missing, "title")
	}
	if p.URL == "" {
		missing = append(missing, "url")
	}
	if p.Submitted.IsZero() {
		missing = append(missing, "submission date")
	}
	if len(missing) > 0 {
		return card{}, fmt.Errorf("%w: paper %q is missing %s", types.ErrRender, p.ID, strings.Join(missing, ", "))
	}

	c := card{
		ID:       p.ID,
		Label:    p.ID,
		Title:    p.Title,
		Authors:  FormatAuthors(p.Authors),
		Abstract: TruncateAbstract(p.Abstract),
		Date:     p.Submitted.UTC().Format(dateLayout),
		MainURL:  p.URL,
		PDFURL:   p.PDFURL,
		PageURL:  p.URL,
		PageName: "Paper Page",
	}
	if p.PDFURL != "" {
		c.MainURL = p.PDFURL
	}
	if p.Source == string(types.IndexArxiv) {
		c.Label = "arXiv:" + p.ID
		c.PageName = "arXiv Page"
	}
	return c, nil
}

// TruncateAbstract shortens abstracts longer than 300 characters to 297
// characters followed by "...".
func TruncateAbstract(s string) string {
	r := []rune(s)
	if len(r) <= maxAbstractRunes {
		return s
	}
	return string(r[:maxAbstractRunes-3]) + "..."
}

// FormatAuthors joins up to three names; longer lists become
// "A, B, C, et al. (N authors)".
func FormatAuthors(authors []string) string {
	if len(authors) > maxListedAuthors {
		return fmt.Sprintf("%s, et al. (%d authors)", strings.Join(authors[:maxListedAuthors], ", "), len(authors))
	}
	return strings.Join(authors, ", ")
}
