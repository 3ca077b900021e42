// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-feed/internal/pipeline"
	"github.com/pdiddy/paper-feed/internal/publish"
	"github.com/pdiddy/paper-feed/internal/render"
	"github.com/pdiddy/paper-feed/internal/source"
)

// newIndex builds the paper index for run and fetch. Tests replace it with
// a stub.
var newIndex = source.NewIndex

var runCmd = &cobra.Command{
	Use:   "run [keywords...]",
	Short: "Fetch, render, and publish the papers page once",
	Long: `Run performs one sync cycle: it fetches the newest papers matching the
keywords (arguments, or source.keywords from the config), renders the page,
and commits and pushes it to publish.remote/publish.branch when the paper list
changed. Exits non-zero if any stage fails; the published page is then left
as it was.

With --dry-run the page is written to publish.page_path inside
publish.repo_dir without committing or pushing.`,
	RunE: runCycle,
}

func init() {
	runCmd.Flags().Int("max-results", 0, "maximum number of papers on the page (default source.max_results)")
	runCmd.Flags().Bool("dry-run", false, "write the page locally without committing or pushing")

	rootCmd.AddCommand(runCmd)
}

// queryInputs resolves the keywords and result bound shared by run and
// fetch: arguments override source.keywords, and a positive --max-results
// overrides source.max_results.
func queryInputs(cmd *cobra.Command, args []string) ([]string, int, error) {
	keywords := args
	if len(keywords) == 0 {
		keywords = cfg.Source.Keywords
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults < 0 {
		return nil, 0, fmt.Errorf("--max-results must not be negative, got %d", maxResults)
	}
	if maxResults == 0 {
		maxResults = cfg.Source.MaxResults
	}
	return keywords, maxResults, nil
}

func runCycle(cmd *cobra.Command, args []string) error {
	keywords, maxResults, err := queryInputs(cmd, args)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	client := &http.Client{Timeout: cfg.HTTP.Timeout}
	idx, err := newIndex(cfg, client)
	if err != nil {
		return err
	}

	var commitLog publish.Log
	if dryRun {
		commitLog = publish.NewDirLog(filepath.Join(cfg.Publish.RepoDir, filepath.FromSlash(cfg.Publish.PagePath)))
	} else {
		commitLog, err = publish.NewGitLog(cfg.Publish)
		if err != nil {
			return err
		}
	}

	pub, err := publish.NewPublisher(commitLog, cfg.Publish.CommitMessage, time.Now, logger)
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Index:      idx,
		Keywords:   keywords,
		MaxResults: maxResults,
		Renderer:   render.New(cfg.Render),
		Publisher:  pub,
		Clock:      time.Now,
		Logger:     logger,
	}

	res, err := p.RunOnce(cmd.Context())
	if err != nil {
		return err
	}

	switch res.Publish.Status {
	case publish.StatusPublished:
		fmt.Fprintf(cmd.OutOrStdout(), "Published %d papers at %s\n", len(res.Papers), res.Publish.Revision.Short())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "No change: %d papers, page already up to date\n", len(res.Papers))
	}
	return nil
}
