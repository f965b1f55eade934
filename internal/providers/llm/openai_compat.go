package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAICompat talks to any /chat/completions endpoint (OpenAI, OpenRouter).
type OpenAICompat struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewOpenAICompat(name, baseURL, apiKey, model string, hc *http.Client) (*OpenAICompat, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("llm: base url required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("llm: api key required for %s", name)
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &OpenAICompat{name: name, baseURL: baseURL, apiKey: apiKey, model: model, http: hc}, nil
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAICompat) Name() string { return c.name }

func (c *OpenAICompat) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *OpenAICompat) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", c.name, err)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%s: status %d: %s", c.name, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%s: decode: %w", c.name, err)
	}
	if out.Error != nil && out.Error.Message != "" {
		return "", fmt.Errorf("%s: %s", c.name, out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%s: empty choices", c.name)
	}
	return out.Choices[0].Message.Content, nil
}
