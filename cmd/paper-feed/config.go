// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/paper-feed/pkg/types"
)

const envPrefix = "PAPER_FEED"

// configureViper registers defaults, config file locations, and the
// environment mapping (publish.branch → PAPER_FEED_PUBLISH_BRANCH).
func configureViper(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("paper-feed")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "paper-feed"))
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults registers every configuration key so that environment
// variables can override keys absent from the config file.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.max_retries", d.HTTP.MaxRetries)
	v.SetDefault("http.min_interval", d.HTTP.MinInterval)

	v.SetDefault("source.index", string(d.Source.Index))
	v.SetDefault("source.keywords", d.Source.Keywords)
	v.SetDefault("source.max_results", d.Source.MaxResults)
	v.SetDefault("source.openalex_email", d.Source.OpenAlexEmail)

	v.SetDefault("render.title", d.Render.Title)
	v.SetDefault("render.subtitle", d.Render.Subtitle)
	v.SetDefault("render.schedule", d.Render.Schedule)
	v.SetDefault("render.back_link", d.Render.BackLink)
	v.SetDefault("render.stylesheet", d.Render.Stylesheet)

	v.SetDefault("publish.repo_dir", d.Publish.RepoDir)
	v.SetDefault("publish.page_path", d.Publish.PagePath)
	v.SetDefault("publish.remote", d.Publish.Remote)
	v.SetDefault("publish.branch", d.Publish.Branch)
	v.SetDefault("publish.commit_message", d.Publish.CommitMessage)
	v.SetDefault("publish.author_name", d.Publish.AuthorName)
	v.SetDefault("publish.author_email", d.Publish.AuthorEmail)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// loadConfig decodes the merged viper state into a Config and checks the
// values the pipeline cannot run without.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}

	switch {
	case c.HTTP.Timeout <= 0:
		return types.Config{}, fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout)
	case c.Source.MaxResults < 0:
		return types.Config{}, fmt.Errorf("source.max_results must not be negative, got %d", c.Source.MaxResults)
	case c.Publish.PagePath == "":
		return types.Config{}, fmt.Errorf("publish.page_path is required")
	}
	return c, nil
}
