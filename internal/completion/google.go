package completion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleClient speaks the Gemini generative-language API.
type GoogleClient struct {
	apiKey string
	model  string
}

func NewGoogleClient(apiKey, model string) *GoogleClient {
	return &GoogleClient{apiKey: apiKey, model: model}
}

func (c *GoogleClient) Provider() string { return "google" }
func (c *GoogleClient) Model() string    { return c.model }

func (c *GoogleClient) Chat(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, classify(c.Provider(), googleStatus(err), err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			log.Printf("WARN: closing genai client: %v", cerr)
		}
	}()

	model := client.GenerativeModel(c.model)
	model.SetTemperature(float32(opts.Temperature))
	model.SetMaxOutputTokens(int32(opts.MaxTokens))

	system, rest := splitSystem(messages)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	var prompt strings.Builder
	for _, m := range rest {
		prompt.WriteString(m.Content)
		prompt.WriteString("\n")
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		return nil, classify(c.Provider(), googleStatus(err), err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, classify(c.Provider(), 0, fmt.Errorf("no candidates in response"))
	}
	candidate := resp.Candidates[0]

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return nil, classify(c.Provider(), 0, fmt.Errorf("no text content in response"))
	}

	out := &Response{
		Content:      text.String(),
		Model:        c.model,
		Provider:     c.Provider(),
		FinishReason: candidate.FinishReason.String(),
	}
	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

func googleStatus(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
