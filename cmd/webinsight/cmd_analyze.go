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
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianWebInsight/pkg/ux"
	"github.com/AleutianAI/AleutianWebInsight/services/agent/datatypes"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	analyzeQuestions  []string // Custom questions to answer from site content
	analyzeJSONOutput bool     // Output the full response as JSON
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// analyzeCmd crawls a website and produces a structured business report.
//
// # Examples
//
//	webinsight analyze https://example.com
//	webinsight analyze example.com -q "Do they offer a free trial?"
//	webinsight analyze example.com --json > report.json
var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Crawl a website and generate a business analysis report",
	Long: `Crawls the given website, indexes its content, and generates a
structured analysis report covering the company's industry, products,
target audience, sentiment, and contact information.

Optional questions are answered strictly from the crawled content.

Examples:
  webinsight analyze https://example.com
  webinsight analyze example.com -q "Do they have enterprise pricing?"
  webinsight analyze example.com --json`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyzeCommand,
}

func init() {
	analyzeCmd.Flags().StringArrayVarP(&analyzeQuestions, "question", "q", nil,
		"Question to answer from site content (repeatable)")
	analyzeCmd.Flags().BoolVar(&analyzeJSONOutput, "json", false,
		"Output the full response as JSON")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runAnalyzeCommand(cmd *cobra.Command, args []string) {
	request := datatypes.AnalyzeRequest{
		URL:       args[0],
		Questions: analyzeQuestions,
	}

	started := time.Now()
	fmt.Printf("Analyzing %s (this can take a few minutes)...\n", request.URL)

	var response datatypes.AnalyzeResponse
	if err := callAgent(http.MethodPost, "/v1/analyze", request, &response); err != nil {
		ux.Error(err.Error())
		os.Exit(CLIExitError)
	}

	if analyzeJSONOutput {
		if err := outputJSON(response); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(CLIExitError)
		}
		return
	}

	printAnalysisReport(&response, time.Since(started))
}

// printAnalysisReport renders the report in a human-readable layout.
func printAnalysisReport(resp *datatypes.AnalyzeResponse, elapsed time.Duration) {
	info := resp.CompanyInfo

	fmt.Println()
	ux.Title(resp.Site)
	ux.Muted(fmt.Sprintf("%d pages crawled, %d chunks indexed, %s",
		resp.PagesCrawled, resp.ChunksIndexed, elapsed.Round(time.Second)))

	fields := []string{
		ux.KeyValue("Industry", info.Industry),
		ux.KeyValue("Company size", info.CompanySize),
		ux.KeyValue("Location", info.Location),
		ux.KeyValue("Products/Services", strings.Join(info.CoreProductsServices, "; ")),
		ux.KeyValue("USP", info.UniqueSellingProposition),
		ux.KeyValue("Target audience", info.TargetAudience),
		ux.KeyValue("Sentiment", info.OverallSentiment),
		ux.KeyValue("Email", info.ContactInfo.Email),
		ux.KeyValue("Phone", info.ContactInfo.Phone),
		ux.KeyValue("Social media", strings.Join(info.ContactInfo.SocialMedia, "; ")),
	}
	ux.Box("", strings.Join(fields, "\n"))

	if len(resp.ExtractedAnswers) > 0 {
		ux.Title("Answers")
		for _, ans := range resp.ExtractedAnswers {
			fmt.Printf("  Q: %s\n  A: %s\n", ans.Question, ans.Answer)
		}
	}
}
