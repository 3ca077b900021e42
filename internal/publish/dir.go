// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/pdiddy/paper-feed/pkg/types"
)

// DirLog implements Log as a single file on disk. The revision is the
// SHA-256 of the file content, so a file changed behind the log's back
// shows up as a conflict. Used for dry runs and tests; it keeps no history.
type DirLog struct {
	Path string
}

// NewDirLog returns a DirLog writing to path.
func NewDirLog(path string) *DirLog {
	return &DirLog{Path: path}
}

func (d *DirLog) CurrentHead(_ context.Context) (Revision, error) {
	data, err := d.read()
	if err != nil || data == nil {
		return "", err
	}
	return contentRevision(data), nil
}

func (d *DirLog) Read(_ context.Context, rev Revision) (types.RenderedPage, error) {
	if rev == "" {
		return types.RenderedPage{}, nil
	}
	data, err := d.read()
	if err != nil {
		return types.RenderedPage{}, err
	}
	if contentRevision(data) != rev {
		return types.RenderedPage{}, fmt.Errorf("revision %s is no longer in %s", rev.Short(), d.Path)
	}
	return types.RenderedPage{Content: data}, nil
}

func (d *DirLog) Push(ctx context.Context, change Change, base Revision) (Revision, error) {
	head, err := d.CurrentHead(ctx)
	if err != nil {
		return "", err
	}
	if head != base {
		return "", fmt.Errorf("%s changed since %s: %w", d.Path, base.Short(), ErrConflict)
	}
	if err := writeFileAtomic(d.Path, change.Content); err != nil {
		return "", err
	}
	return contentRevision(change.Content), nil
}

// read returns the file content, or nil when the file does not exist.
func (d *DirLog) read() ([]byte, error) {
	data, err := os.ReadFile(d.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.Path, err)
	}
	return data, nil
}

func contentRevision(data []byte) Revision {
	sum := sha256.Sum256(data)
	return Revision(hex.EncodeToString(sum[:]))
}
