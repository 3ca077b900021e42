// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish records a rendered page in an append-only commit log and
// pushes it to the remote that serves the site.
//
// Publisher compares the new page against the page at the remote head and
// pushes only when the change detector reports a difference. The Log
// interface hides the storage: GitLog drives a git working copy, DirLog
// writes a plain file for dry runs.
package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/paper-feed/pkg/types"
)

// Revision identifies one entry of a commit log. The empty revision means
// the log has no entries yet.
type Revision string

// Short returns the first 12 characters of the revision for logging.
func (r Revision) Short() string {
	if len(r) > 12 {
		return string(r[:12])
	}
	return string(r)
}

// Change is one new page version to append to the log.
type Change struct {
	Content []byte
	Message string
}

// ErrConflict is returned by Log.Push when the remote head is no longer
// the base the change was prepared against.
var ErrConflict = fmt.Errorf("%w: push rejected", types.ErrPublishConflict)

// Log is an append-only commit log holding the published page.
type Log interface {
	// CurrentHead returns the remote head, or "" when nothing has been
	// published.
	CurrentHead(ctx context.Context) (Revision, error)

	// Read returns the page stored at rev. A revision without the page,
	// or the empty revision, yields an empty page.
	Read(ctx context.Context, rev Revision) (types.RenderedPage, error)

	// Push appends change on top of base and returns the new head. It
	// returns an error wrapping ErrConflict when the remote moved away
	// from base; the remote is left untouched in that case.
	Push(ctx context.Context, change Change, base Revision) (Revision, error)
}

// writeFileAtomic replaces path with data through a temp file and rename,
// so readers never observe a partially written page.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating page directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".paper-feed-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing page: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting page permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
