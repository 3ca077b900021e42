// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirLog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "papers.html")
	log := NewDirLog(path)

	head, err := log.CurrentHead(ctx)
	require.NoError(t, err)
	assert.Empty(t, head)

	page, err := log.Read(ctx, head)
	require.NoError(t, err)
	assert.True(t, page.IsEmpty())

	rev1, err := log.Push(ctx, Change{Content: []byte("v1")}, "")
	require.NoError(t, err)
	assert.Len(t, string(rev1), 64)

	head, err = log.CurrentHead(ctx)
	require.NoError(t, err)
	assert.Equal(t, rev1, head)

	page, err = log.Read(ctx, rev1)
	require.NoError(t, err)
	assert.Equal(t, "v1", page.String())

	_, err = log.Push(ctx, Change{Content: []byte("v2")}, "")
	assert.ErrorIs(t, err, ErrConflict, "pushing against a stale base must conflict")

	require.NoError(t, os.WriteFile(path, []byte("edited"), 0o644))
	_, err = log.Read(ctx, rev1)
	assert.Error(t, err)
	_, err = log.Push(ctx, Change{Content: []byte("v2")}, rev1)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "page.html")

	require.NoError(t, writeFileAtomic(path, []byte("one")))
	require.NoError(t, writeFileAtomic(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files may be left behind")
}
