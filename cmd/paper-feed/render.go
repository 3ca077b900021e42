// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-feed/internal/detect"
	"github.com/pdiddy/paper-feed/internal/render"
	"github.com/pdiddy/paper-feed/internal/source"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a saved snapshot into the papers page",
	Long: `Render reads a snapshot written by "paper-feed fetch --save" and renders
it with the configured page text. The page goes to --out, or stdout when no
output file is given. Nothing is committed or pushed.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("from", "", "snapshot file to render (required)")
	renderCmd.Flags().String("out", "", "output HTML file (default stdout)")
	renderCmd.MarkFlagRequired("from")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	out, _ := cmd.Flags().GetString("out")

	snap, err := source.ReadSnapshot(from)
	if err != nil {
		return err
	}

	page, err := render.New(cfg.Render).Render(snap.Papers, time.Now())
	if err != nil {
		return err
	}
	logger.Info("rendered page", "papers", len(snap.Papers), "digest", detect.Digest(page)[:12])

	if out == "" {
		_, err := cmd.OutOrStdout().Write(page.Content)
		return err
	}
	if err := os.WriteFile(out, page.Content, 0o644); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
	return nil
}
