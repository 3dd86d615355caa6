package completion

import (
	"context"
	"log"
	"os"
	"strconv"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Options are the recognized per-call knobs. Anything else a provider supports
// is deliberately not exposed.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Response is the normalized chat-completion result shape shared by every
// provider.
type Response struct {
	Content      string
	PromptTokens int
	OutputTokens int
	Model        string
	Provider     string
	FinishReason string
}

// Client is the one interface all providers satisfy. Provider choice happens
// once at construction; call sites never branch on it.
type Client interface {
	Chat(ctx context.Context, messages []Message, opts Options) (*Response, error)
	Provider() string
	Model() string
}

// NewFromEnv selects a provider from COMPLETION_PROVIDER and builds it from
// the matching credential/model environment variables.
func NewFromEnv() Client {
	switch os.Getenv("COMPLETION_PROVIDER") {
	case "anthropic":
		model := getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929")
		log.Println("Completion provider: anthropic,", model)
		return NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"), model)
	case "google":
		model := getEnv("GOOGLE_MODEL", "gemini-2.0-flash")
		log.Println("Completion provider: google,", model)
		return NewGoogleClient(os.Getenv("GOOGLE_API_KEY"), model)
	case "custom":
		model := getEnv("CUSTOM_COMPLETION_MODEL", "default")
		log.Println("Completion provider: custom,", os.Getenv("CUSTOM_COMPLETION_URL"))
		return NewCustomClient(os.Getenv("CUSTOM_COMPLETION_URL"), os.Getenv("CUSTOM_COMPLETION_KEY"), model)
	case "mock":
		log.Println("Completion provider: mock")
		return NewMockClient()
	default:
		model := getEnv("OPENAI_MODEL", "gpt-4o")
		log.Println("Completion provider: openai,", model)
		return NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), model)
	}
}

// OptionsFromEnv reads the default generation knobs.
func OptionsFromEnv() Options {
	opts := Options{MaxTokens: 4096, Temperature: 0.7}
	if v := os.Getenv("COMPLETION_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.MaxTokens = n
		}
	}
	if v := os.Getenv("COMPLETION_TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil && t >= 0 {
			opts.Temperature = t
		}
	}
	return opts
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitSystem separates the system prompt from the conversational messages,
// for providers that take the system prompt out of band.
func splitSystem(messages []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem && system == "" {
			system = m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
