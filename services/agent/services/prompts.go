// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package services contains the business logic for website analysis and
// grounded follow-up chat.
package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AleutianAI/AleutianWebInsight/services/agent/datatypes"
)

// MaxPromptContentChars caps how much site text goes into the analysis
// prompt. Content beyond the cap is truncated, not rejected.
const MaxPromptContentChars = 10000

// MaxHistoryTurns caps how many prior turns the chat prompt carries.
const MaxHistoryTurns = 6

// truncateAtRuneBoundary caps s at maxBytes without splitting a rune, so
// the result is always valid UTF-8. Backends that validate request encoding
// reject strings cut mid-rune.
func truncateAtRuneBoundary(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// BuildAnalysisPrompt constructs the structured-extraction prompt for the
// analysis endpoint. The model must answer strictly from the supplied
// content and must return a single JSON object matching AnalysisReport.
func BuildAnalysisPrompt(content string, questions []string) string {
	content = truncateAtRuneBoundary(content, MaxPromptContentChars)

	var sb strings.Builder
	sb.WriteString("You are a business analyst. Analyze the following website content and extract structured business insights.\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Use ONLY the website content below. Do not use outside knowledge.\n")
	sb.WriteString("- If a field cannot be determined from the content, use an empty string (or empty list).\n")
	sb.WriteString("- Respond with a single JSON object and nothing else.\n\n")

	sb.WriteString("The JSON object must have this exact shape:\n")
	sb.WriteString(`{
  "company_info": {
    "industry": "",
    "company_size": "",
    "location": "",
    "core_products_services": [],
    "unique_selling_proposition": "",
    "target_audience": "",
    "overall_sentiment": "",
    "contact_info": {"email": "", "phone": "", "social_media": []}
  },
  "extracted_answers": []
}`)
	sb.WriteString("\n\n")

	if len(questions) > 0 {
		sb.WriteString("Additionally, answer each of these questions from the content. ")
		sb.WriteString("Add one {\"question\": \"...\", \"answer\": \"...\"} object to \"extracted_answers\" per question, with the question verbatim. ")
		sb.WriteString("If the content does not answer a question, use \"Not found in website content.\" as the answer.\n")
		for i, q := range questions {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, q))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Website content:\n---\n")
	sb.WriteString(content)
	sb.WriteString("\n---\n")
	return sb.String()
}

// BuildChatPrompt constructs the grounded chat prompt from the retrieved
// chunks, recent thread history, and the user's question. The model is
// instructed to refuse rather than invent when the context lacks an answer.
func BuildChatPrompt(chunks []datatypes.SiteChunkResult,
	history []datatypes.ConversationResult, query string) string {

	var sb strings.Builder
	sb.WriteString("You are a helpful assistant answering questions about a specific website.\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Answer ONLY from the website context below.\n")
	sb.WriteString("- If the context does not contain the answer, say the website content does not cover it. Never invent facts.\n")
	sb.WriteString("- Respond with a single JSON object: {\"agent_response\": \"...\", \"context_sources\": [\"url\", ...]}\n")
	sb.WriteString("- context_sources must list only the URLs of context passages you actually used.\n\n")

	if len(history) > 0 {
		start := 0
		if len(history) > MaxHistoryTurns {
			start = len(history) - MaxHistoryTurns
		}
		sb.WriteString("Conversation so far:\n")
		for _, turn := range history[start:] {
			sb.WriteString("User: ")
			sb.WriteString(turn.Question)
			sb.WriteString("\nAssistant: ")
			sb.WriteString(turn.Answer)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Website context:\n")
	for i, chunk := range chunks {
		sb.WriteString(fmt.Sprintf("[Passage %d, from %s]\n%s\n\n", i+1, chunk.URL, chunk.Content))
	}

	sb.WriteString("Question: ")
	sb.WriteString(query)
	sb.WriteString("\n")
	return sb.String()
}
