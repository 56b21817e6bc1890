// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianWebInsight/pkg/logging"
)

const cliVersion = "0.1.0"

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

var (
	flagServerURL string // Agent base URL override
	flagVerbose   bool   // Enable debug logging
)

// cliLogger is the process-wide logger. Configured in PersistentPreRun so
// --verbose takes effect before any command runs.
var cliLogger = logging.Default()

// =============================================================================
// ROOT COMMAND
// =============================================================================

var rootCmd = &cobra.Command{
	Use:     "webinsight",
	Version: cliVersion,
	Short:   "Analyze websites and chat about them from the command line",
	Long: `webinsight is the command line client for the WebInsight agent.

It talks to a running agent service over HTTP:
  webinsight analyze https://example.com     # Crawl and analyze a site
  webinsight chat https://example.com        # Interactive grounded Q&A
  webinsight threads list                    # List conversation threads
  webinsight sites list                      # List indexed sites

The agent URL defaults to http://localhost:12310 and can be overridden
with --server or the WEBINSIGHT_AGENT_URL environment variable. If the
agent requires authentication, set API_SECRET_KEY to the shared secret.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if flagVerbose {
			level = logging.LevelDebug
		}
		cliLogger = logging.New(logging.Config{
			Level:   level,
			Service: "cli",
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "",
		"Agent base URL (default http://localhost:12310, or WEBINSIGHT_AGENT_URL)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(threadsCmd)
	rootCmd.AddCommand(sitesCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	defer cliLogger.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(CLIExitError)
	}
}
