package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianWebInsight/services/agent/datatypes"
	"github.com/AleutianAI/AleutianWebInsight/services/llm"
)

var (
	SUMMARY_TITLE_MAX_TOKENS  = 50
	SUMMARY_TITLE_TEMPERATURE = 0.2
)

// SummarizeAndSaveThread generates a short title for a new thread from its
// first turn and writes it onto the Thread object. Runs asynchronously; all
// failures are logged, never surfaced to the caller.
func (s *ChatService) SummarizeAndSaveThread(threadID, site, question, answer string) {
	slog.Info("Generating and saving summary for thread", "threadId", threadID)

	// 1. Construct the meta-prompt for summarization
	summaryPrompt := fmt.Sprintf("Generate a very short title (8 words max) for this conversation:\nUser: %s\nAI: %s\nTitle:", question, answer)

	// 2. Call the LLM
	temp := float32(SUMMARY_TITLE_TEMPERATURE)
	maxTokens := SUMMARY_TITLE_MAX_TOKENS
	summaryParams := llm.GenerationParams{
		Temperature: &temp,
		MaxTokens:   &maxTokens,
		Stop:        []string{"\n", "User:", "AI:"},
	}

	summaryString, err := s.llmClient.Generate(context.Background(), summaryPrompt, summaryParams)
	summaryString = strings.TrimSpace(summaryString)

	// 3. Fallback logic
	if err != nil || summaryString == "" {
		if err != nil {
			slog.Error("Failed to generate thread summary via LLM client", "threadId", threadID, "error", err)
		} else {
			slog.Warn("LLM generated an empty summary, using fallback.", "threadId", threadID)
		}
		summaryString = fmt.Sprintf("Chat: %s", question)
		if len(summaryString) > 100 {
			summaryString = summaryString[:100] + "..."
		}
	} else {
		slog.Info("Successfully generated thread summary", "threadId", threadID, "summary", summaryString)
	}

	// 4. Find the Weaviate UUID for the thread_id. Conversation.Save runs
	// async too, so the thread may not exist yet; find-or-create closes that
	// race.
	threadUUID, err := datatypes.FindOrCreateThreadUUID(context.Background(),
		s.weaviateClient, threadID, site)
	if err != nil {
		slog.Error("Failed to find or create thread for summary update", "threadId", threadID, "error", err)
		return
	}

	// 5. Update the existing Thread object with the new summary
	err = s.weaviateClient.Data().Updater().
		WithClassName("Thread").
		WithID(threadUUID).
		WithMerge().
		WithProperties(map[string]interface{}{
			"summary": summaryString,
			"site":    site,
		}).
		Do(context.Background())
	if err != nil {
		slog.Error("Failed to update thread with new summary", "threadId", threadID, "weaviateUUID", threadUUID, "error", err)
	} else {
		slog.Info("Successfully updated thread with summary", "threadId", threadID, "weaviateUUID", threadUUID)
	}
}
