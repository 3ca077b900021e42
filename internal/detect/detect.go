// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package detect decides whether a freshly rendered page differs from the
// published one in anything other than its generation timestamp.
package detect

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"github.com/pdiddy/paper-feed/pkg/types"
)

// generatedRegex matches the generation-time element the renderer emits.
var generatedRegex = regexp.MustCompile(`(?s)<time class="generated"[^>]*>.*?</time>`)

var generatedPlaceholder = []byte(`<time class="generated"></time>`)

// Normalize returns content with the generation-time element emptied, so
// two renders of the same list normalize to the same bytes.
func Normalize(content []byte) []byte {
	return generatedRegex.ReplaceAll(content, generatedPlaceholder)
}

// HasChanged reports whether next differs from previous after
// normalization. An empty previous page (nothing published yet) counts as
// changed whenever next has content.
func HasChanged(previous, next types.RenderedPage) bool {
	if previous.IsEmpty() {
		return !next.IsEmpty()
	}
	return !bytes.Equal(Normalize(previous.Content), Normalize(next.Content))
}

// Digest returns the hex SHA-256 of the normalized page.
func Digest(page types.RenderedPage) string {
	sum := sha256.Sum256(Normalize(page.Content))
	return hex.EncodeToString(sum[:])
}
