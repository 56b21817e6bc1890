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
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Manage indexed sites",
}

var sitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sites in the vector index",
	Run:   runSitesListCommand,
}

var sitesDeleteCmd = &cobra.Command{
	Use:   "delete <url>",
	Short: "Remove a site's content from the vector index",
	Args:  cobra.ExactArgs(1),
	Run:   runSitesDeleteCommand,
}

func init() {
	sitesCmd.AddCommand(sitesListCmd)
	sitesCmd.AddCommand(sitesDeleteCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func runSitesListCommand(cmd *cobra.Command, args []string) {
	var response struct {
		Sites []string `json:"sites"`
	}
	if err := callAgent(http.MethodGet, "/v1/sites", nil, &response); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(CLIExitError)
	}

	if len(response.Sites) == 0 {
		fmt.Println("No sites indexed.")
		return
	}
	for _, site := range response.Sites {
		fmt.Println(site)
	}
}

func runSitesDeleteCommand(cmd *cobra.Command, args []string) {
	path := "/v1/site?url=" + url.QueryEscape(args[0])

	var response struct {
		Status        string `json:"status"`
		DeletedSite   string `json:"deleted_site"`
		ChunksMatched int64  `json:"chunks_matched"`
	}
	if err := callAgent(http.MethodDelete, path, nil, &response); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(CLIExitError)
	}
	fmt.Printf("Deleted %s (%d chunks removed)\n", response.DeletedSite, response.ChunksMatched)
}
