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
	"os"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the agent service is reachable",
	Run:   runHealthCommand,
}

func runHealthCommand(cmd *cobra.Command, args []string) {
	var response struct {
		Status string `json:"status"`
	}
	if err := callAgent(http.MethodGet, "/health", nil, &response); err != nil {
		fmt.Fprintf(os.Stderr, "Agent unreachable: %v\n", err)
		os.Exit(CLIExitError)
	}
	fmt.Printf("Agent at %s: %s\n", getAgentBaseURL(), response.Status)
}
