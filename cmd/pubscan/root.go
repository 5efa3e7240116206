// Package main provides the entry point for the pubscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pubscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pubscan",
		Short: "Policy compliance scanner for publisher websites",
		Long: `Pubscan audits publisher websites for ad-network policy compliance.
It crawls a site, classifies each page, checks content quality, detects
policy violations, and produces a 0-100 compliance score.

Semantic classification of ambiguous content requires an API key for an
OpenAI-compatible endpoint (set PUBSCAN_CLASSIFIER_API_KEY). Without a
key, pubscan falls back to rule-based detection only.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
