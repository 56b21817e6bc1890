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
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianWebInsight/pkg/ux"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/datatypes"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	chatThreadID    string // Resume an existing thread
	chatQuery       string // One-shot question (non-interactive)
	chatShowSources bool   // Print context source URLs with each answer
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// chatCmd runs grounded Q&A against an analyzed website.
//
// # Examples
//
//	webinsight chat example.com                         # Interactive session
//	webinsight chat example.com --query "Who are they?" # One-shot
//	webinsight chat example.com --thread <uuid>         # Resume a thread
var chatCmd = &cobra.Command{
	Use:   "chat <url>",
	Short: "Ask follow-up questions about an analyzed website",
	Long: `Starts a conversation about a website. Answers are grounded in the
site's indexed content; if the site has not been analyzed yet, the agent
crawls and indexes it on the first question.

Without --query this opens an interactive session. Type 'exit' or 'quit'
to end it. The thread id printed on the first answer can be passed back
via --thread to resume the conversation later.

Examples:
  webinsight chat example.com
  webinsight chat example.com --query "What do they sell?"
  webinsight chat example.com --thread 9f0c... --query "And pricing?"`,
	Args: cobra.ExactArgs(1),
	Run:  runChatCommand,
}

func init() {
	chatCmd.Flags().StringVarP(&chatThreadID, "thread", "t", "",
		"Thread id to resume (from a previous chat)")
	chatCmd.Flags().StringVarP(&chatQuery, "query", "q", "",
		"Ask a single question and exit")
	chatCmd.Flags().BoolVar(&chatShowSources, "sources", false,
		"Print the source URLs backing each answer")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runChatCommand(cmd *cobra.Command, args []string) {
	siteURL := args[0]
	threadID := chatThreadID

	// One-shot mode
	if chatQuery != "" {
		resp, err := sendChatRequest(siteURL, chatQuery, threadID)
		if err != nil {
			ux.Error(err.Error())
			os.Exit(CLIExitError)
		}
		fmt.Println(resp.AgentResponse)
		if chatShowSources {
			printSources(resp.ContextSources)
		}
		fmt.Fprintf(os.Stderr, "thread: %s\n", resp.ThreadID)
		return
	}

	fmt.Printf("Chatting about %s. Type 'exit' or 'quit' to end.\n", siteURL)
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			break
		}
		input = strings.TrimSpace(input)
		if input == "exit" || input == "quit" {
			fmt.Println("ending chat")
			break
		}
		if input == "" {
			continue
		}

		resp, err := sendChatRequest(siteURL, input, threadID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		if threadID == "" {
			threadID = resp.ThreadID
			fmt.Printf("(thread %s)\n", threadID)
		}
		fmt.Println(resp.AgentResponse)
		if chatShowSources {
			printSources(resp.ContextSources)
		}
	}
}

func sendChatRequest(siteURL, query, threadID string) (*datatypes.ChatResponse, error) {
	request := datatypes.ChatRequest{
		URL:      siteURL,
		Query:    query,
		ThreadID: threadID,
	}
	var response datatypes.ChatResponse
	if err := callAgent(http.MethodPost, "/v1/chat", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func printSources(sources []string) {
	if len(sources) == 0 {
		return
	}
	ux.Muted("sources:")
	for _, source := range sources {
		ux.Muted("  - " + source)
	}
}
