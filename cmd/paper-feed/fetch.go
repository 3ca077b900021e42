// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-feed/internal/source"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [keywords...]",
	Short: "Query the paper index and print the newest matches",
	Long: `Fetch queries the configured paper index once and prints the newest
papers matching the keywords, newest first. Nothing is rendered or published.
Use --save to keep the result as a YAML snapshot for "paper-feed render".`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Int("max-results", 0, "maximum number of papers (default source.max_results)")
	fetchCmd.Flags().Bool("json", false, "output results as JSON")
	fetchCmd.Flags().String("save", "", "write a YAML snapshot of the result to this file")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	keywords, maxResults, err := queryInputs(cmd, args)
	if err != nil {
		return err
	}
	jsonOut, _ := cmd.Flags().GetBool("json")
	savePath, _ := cmd.Flags().GetString("save")

	idx, err := newIndex(cfg, &http.Client{Timeout: cfg.HTTP.Timeout})
	if err != nil {
		return err
	}

	papers, err := source.Fetch(cmd.Context(), idx, keywords, maxResults)
	if err != nil {
		return err
	}
	logger.Info("fetched papers", "index", idx.Name(), "papers", len(papers))

	if savePath != "" {
		snap := source.NewSnapshot(idx.Name(), source.NormalizeKeywords(keywords), maxResults, papers, time.Now())
		if err := source.WriteSnapshot(savePath, snap); err != nil {
			return fmt.Errorf("saving snapshot: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved snapshot to %s\n", savePath)
	}

	if jsonOut {
		return source.FormatJSON(papers, cmd.OutOrStdout())
	}
	source.FormatTable(papers, cmd.OutOrStdout())
	return nil
}
