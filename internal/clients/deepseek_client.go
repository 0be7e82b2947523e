package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DeepSeekClient is the text-generation collaborator. wantJSON asks the model
// for a structured JSON object response; whether the content actually parses
// is the caller's problem.
type DeepSeekClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, wantJSON bool) (string, error)
}

type DeepSeekConfig struct {
	APIKey  string
	APIURL  string
	Model   string
	Timeout time.Duration
}

type deepSeekClient struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewDeepSeekClient(config DeepSeekConfig) DeepSeekClient {
	timeout := config.Timeout
	if timeout <= 0 {
		// Generation is slow; a chat completion can legitimately take
		// over a minute.
		timeout = 120 * time.Second
	}
	return &deepSeekClient{
		apiKey: config.APIKey,
		apiURL: config.APIURL,
		model:  config.Model,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *deepSeekClient) Complete(ctx context.Context, systemPrompt, userPrompt string, wantJSON bool) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
	}
	if wantJSON {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &StatusError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode JSON: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty choices in completion response")
	}
	return parsed.Choices[0].Message.Content, nil
}
