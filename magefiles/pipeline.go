//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Preview fetches the newest papers and renders them to output/papers.html.
// Nothing is committed or pushed.
func Preview() error {
	mg.Deps(Build)
	if err := os.MkdirAll(previewDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", previewDir, err)
	}

	bin := filepath.Join(binDir, binName)
	snapshot := filepath.Join(previewDir, "snapshot.yaml")
	page := filepath.Join(previewDir, "papers.html")

	if err := sh.RunV(bin, "fetch", "--save", snapshot); err != nil {
		return err
	}
	if err := sh.RunV(bin, "render", "--from", snapshot, "--out", page); err != nil {
		return err
	}
	fmt.Printf("[preview] Open %s in a browser.\n", page)
	return nil
}

// Sync runs one fetch, render, and publish cycle with the local configuration.
func Sync() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "run")
}

// DryRun runs one cycle that writes the page without committing or pushing.
func DryRun() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "run", "--dry-run")
}
