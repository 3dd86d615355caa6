package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CustomClient talks to any OpenAI-compatible chat endpoint (self-hosted
// gateways, local inference servers) over plain HTTP.
type CustomClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewCustomClient(baseURL, apiKey, model string) *CustomClient {
	return &CustomClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *CustomClient) Provider() string { return "custom" }
func (c *CustomClient) Model() string    { return c.model }

type customChatRequest struct {
	Model       string              `json:"model"`
	Messages    []customChatMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

type customChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type customChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      customChatMessage `json:"message"`
		FinishReason string            `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *CustomClient) Chat(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	body := customChatRequest{
		Model:       c.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for _, m := range messages {
		body.Messages = append(body.Messages, customChatMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, classify(c.Provider(), 0, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, classify(c.Provider(), 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(c.Provider(), 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(c.Provider(), resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classify(c.Provider(), resp.StatusCode,
			fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, truncate(string(raw), 300)))
	}

	var parsed customChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, classify(c.Provider(), resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	if parsed.Error != nil {
		return nil, classify(c.Provider(), resp.StatusCode, fmt.Errorf("%s", parsed.Error.Message))
	}
	if len(parsed.Choices) == 0 {
		return nil, classify(c.Provider(), resp.StatusCode, fmt.Errorf("no choices in response"))
	}

	model := parsed.Model
	if model == "" {
		model = c.model
	}

	return &Response{
		Content:      parsed.Choices[0].Message.Content,
		PromptTokens: parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
		Model:        model,
		Provider:     c.Provider(),
		FinishReason: parsed.Choices[0].FinishReason,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
