package completion

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient speaks the OpenAI chat-completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAIClient) Provider() string { return "openai" }
func (c *OpenAIClient) Model() string    { return c.model }

func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classify(c.Provider(), openaiStatus(err), err)
	}

	if len(resp.Choices) == 0 {
		return nil, classify(c.Provider(), 0, fmt.Errorf("no choices in response"))
	}
	choice := resp.Choices[0]

	return &Response{
		Content:      choice.Message.Content,
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
		Provider:     c.Provider(),
		FinishReason: string(choice.FinishReason),
	}, nil
}

func openaiStatus(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
