// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-feed CLI. One invocation of
// "paper-feed run" performs one sync cycle; an external scheduler (cron,
// CI schedule, manual dispatch) provides the trigger.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-feed/internal/logging"
	"github.com/pdiddy/paper-feed/internal/secrets"
	"github.com/pdiddy/paper-feed/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the resolved configuration, populated before any subcommand runs.
	cfg types.Config

	logger *slog.Logger
)

// rootCmd is the base command for the paper-feed CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-feed",
	Short: "Keep a static page of the newest research papers in sync",
	Long: `paper-feed queries a paper index (arXiv or OpenAlex) for the newest papers
matching a keyword set, renders them into a static HTML page, and commits and
pushes the page to a git remote when its content changed.

The run subcommand performs one cycle. Schedule it with cron or a CI workflow;
fetch and render are operator tools for previewing the page.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		l, err := logging.New(c.Logging, os.Stderr)
		if err != nil {
			return err
		}

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir, l)
		if err != nil {
			return err
		}
		secrets.Apply(&c, s)
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			l.Debug("loaded secrets", "keys", keys)
		}
		if f := viper.ConfigFileUsed(); f != "" {
			l.Debug("using config file", "path", f)
		}

		cfg, logger = c, l
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./paper-feed.yaml or ~/.config/paper-feed/paper-feed.yaml)")
	flags.String("secrets-dir", secrets.DefaultDir, "directory of secret files (git-token, openalex-email)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")

	viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	viper.BindPFlag("logging.format", flags.Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	configureViper(viper.GetViper(), cfgFile)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error("command failed", "kind", types.Kind(err), "error", err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
