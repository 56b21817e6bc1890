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

	"github.com/AleutianAI/AleutianWebInsight/services/agent/datatypes"
)

var threadsJSONOutput bool

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "Manage conversation threads",
}

var threadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all conversation threads",
	Run:   runThreadsListCommand,
}

var threadsHistoryCmd = &cobra.Command{
	Use:   "history <thread-id>",
	Short: "Show the question/answer history of a thread",
	Args:  cobra.ExactArgs(1),
	Run:   runThreadsHistoryCommand,
}

var threadsDeleteCmd = &cobra.Command{
	Use:   "delete <thread-id>",
	Short: "Delete a thread and its conversation history",
	Args:  cobra.ExactArgs(1),
	Run:   runThreadsDeleteCommand,
}

func init() {
	threadsCmd.PersistentFlags().BoolVar(&threadsJSONOutput, "json", false,
		"Output as JSON")
	threadsCmd.AddCommand(threadsListCmd)
	threadsCmd.AddCommand(threadsHistoryCmd)
	threadsCmd.AddCommand(threadsDeleteCmd)
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func runThreadsListCommand(cmd *cobra.Command, args []string) {
	var response datatypes.ThreadQueryResponse
	if err := callAgent(http.MethodGet, "/v1/threads", nil, &response); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(CLIExitError)
	}

	threads := response.Get.Thread
	if threadsJSONOutput {
		if err := outputJSON(threads); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(CLIExitError)
		}
		return
	}

	if len(threads) == 0 {
		fmt.Println("No threads found.")
		return
	}
	for _, thread := range threads {
		fmt.Printf("%s  [%s]  %s\n", thread.ThreadID, thread.Site, thread.Summary)
	}
}

type threadHistoryResponse struct {
	ThreadID string                         `json:"thread_id"`
	History  []datatypes.ConversationResult `json:"history"`
}

func runThreadsHistoryCommand(cmd *cobra.Command, args []string) {
	path := fmt.Sprintf("/v1/threads/%s/history", args[0])

	var response threadHistoryResponse
	if err := callAgent(http.MethodGet, path, nil, &response); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(CLIExitError)
	}

	if threadsJSONOutput {
		if err := outputJSON(response); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(CLIExitError)
		}
		return
	}

	if len(response.History) == 0 {
		fmt.Println("Thread has no conversation history.")
		return
	}
	for _, turn := range response.History {
		fmt.Printf("> %s\n%s\n\n", turn.Question, turn.Answer)
	}
}

func runThreadsDeleteCommand(cmd *cobra.Command, args []string) {
	path := fmt.Sprintf("/v1/threads/%s", args[0])
	if err := callAgent(http.MethodDelete, path, nil, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(CLIExitError)
	}
	fmt.Printf("Deleted thread %s\n", args[0])
}
