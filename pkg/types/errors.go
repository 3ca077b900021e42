// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error kinds for one pipeline cycle. Every kind is terminal for the cycle;
// the next scheduled run is the retry. Components wrap these with context,
// so callers match them with errors.Is.
var (
	ErrSourceUnavailable = errors.New("paper source unavailable")
	ErrSourceMalformed   = errors.New("paper source response malformed")
	ErrRender            = errors.New("render failed")
	ErrPublishConflict   = errors.New("publish conflict: remote advanced")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrSourceUnavailable, "SourceUnavailable"},
	{ErrSourceMalformed, "SourceMalformed"},
	{ErrRender, "RenderError"},
	{ErrPublishConflict, "PublishConflict"},
}

// Kind returns the name of the error kind err belongs to, or "Internal"
// when it matches none of the pipeline kinds. A nil error has kind "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}
