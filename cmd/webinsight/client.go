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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Exit codes for CLI commands.
const (
	CLIExitSuccess = 0 // Operation completed successfully
	CLIExitError   = 1 // Operation failed
)

const (
	defaultAgentHost = "localhost"
	defaultAgentPort = 12310

	// Analysis crawls the whole site and runs the LLM, so requests can
	// legitimately take minutes.
	agentRequestTimeout = 5 * time.Minute
)

// getAgentBaseURL resolves the agent base URL.
//
// Priority: --server flag, then WEBINSIGHT_AGENT_URL, then the default
// localhost address.
func getAgentBaseURL() string {
	if flagServerURL != "" {
		return flagServerURL
	}
	if url := os.Getenv("WEBINSIGHT_AGENT_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("http://%s:%d", defaultAgentHost, defaultAgentPort)
}

// newAgentRequest builds a request against the agent, attaching the bearer
// token from API_SECRET_KEY when one is configured.
func newAgentRequest(method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request body: %w", err)
		}
		reader = bytes.NewBuffer(payload)
	}

	url := getAgentBaseURL() + path
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if secret := os.Getenv("API_SECRET_KEY"); secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}
	return req, nil
}

// callAgent sends the request and decodes the JSON response into out.
// Non-2xx responses become errors carrying the agent's response body.
func callAgent(method, path string, body any, out any) error {
	req, err := newAgentRequest(method, path, body)
	if err != nil {
		return err
	}
	cliLogger.Debug("calling agent", "method", method, "url", req.URL.String())

	client := &http.Client{Timeout: agentRequestTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach the agent at %s: %w", getAgentBaseURL(), err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("agent returned an error (status %d): %s",
			resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		cliLogger.Debug("raw agent response", "body", string(bodyBytes))
		return fmt.Errorf("failed to parse the agent response: %w", err)
	}
	return nil
}

// outputJSON writes data as indented JSON to stdout.
func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
