// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/deepsearch/internal/httputil"
	"github.com/pdiddy/deepsearch/pkg/types"
)

// deepseekAPIURL is the DeepSeek chat completions endpoint. Package-level
// var for test substitution.
var deepseekAPIURL = "https://api.deepseek.com/v1/chat/completions"

// systemPrompt frames every generation call. The pipeline relies on prompt
// templates for per-step instructions, so the system message stays generic.
const systemPrompt = "You are a research assistant. Follow the output format requested in each prompt exactly."

// DeepSeek calls the DeepSeek chat completions API (OpenAI-compatible).
type DeepSeek struct {
	Config types.AIConfig
	Client *http.Client
}

// deepseekRequest is the request body for the chat completions API.
type deepseekRequest struct {
	Model       string            `json:"model"`
	Messages    []deepseekMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens"`
}

// deepseekMessage is a single message in the conversation.
type deepseekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// deepseekResponse is the response body from the chat completions API.
type deepseekResponse struct {
	Choices []struct {
		Message deepseekMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt as a single-turn conversation and returns the
// model's text. The per-call timeout comes from Config.Timeout; HTTP 429
// responses are retried with backoff by httputil.DoWithRetry.
func (d *DeepSeek) Generate(ctx context.Context, prompt string) (string, error) {
	model := d.Config.Model
	if model == "" {
		model = "deepseek-chat"
	}

	reqBody := deepseekRequest{
		Model: model,
		Messages: []deepseekMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   4096,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := applyTimeout(ctx, d.Config)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, deepseekAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.Config.APIKey)

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("calling DeepSeek API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("DeepSeek API returned %d: %s", resp.StatusCode, string(body))
	}

	var dResp deepseekResponse
	if err := json.NewDecoder(resp.Body).Decode(&dResp); err != nil {
		return "", fmt.Errorf("decoding DeepSeek response: %w", err)
	}

	if len(dResp.Choices) == 0 {
		return "", fmt.Errorf("DeepSeek API returned no choices")
	}

	return dResp.Choices[0].Message.Content, nil
}
