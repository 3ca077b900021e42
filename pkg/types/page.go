// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RenderedPage is the static HTML document served to visitors. It is
// derived deterministically from a PaperList; the only field that varies
// between renders of the same list is the generation time.
type RenderedPage struct {
	Content []byte
}

// IsEmpty reports whether the page has no content, as on a first run.
func (p RenderedPage) IsEmpty() bool {
	return len(p.Content) == 0
}

// String returns the page markup.
func (p RenderedPage) String() string {
	return string(p.Content)
}
