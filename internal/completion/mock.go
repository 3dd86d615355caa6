package completion

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MockClient returns canned question JSON for local development — no API key,
// no per-token charges.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Provider() string { return "mock" }
func (m *MockClient) Model() string    { return "mock" }

var countRe = regexp.MustCompile(`exactly (\d+)`)

func (m *MockClient) Chat(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	count := 4
	for _, msg := range messages {
		if match := countRe.FindStringSubmatch(msg.Content); match != nil {
			if n, err := strconv.Atoi(match[1]); err == nil && n > 0 {
				count = n
			}
		}
	}

	return &Response{
		Content:      buildMockJSON(count),
		PromptTokens: 800,
		OutputTokens: 1200,
		Model:        "mock",
		Provider:     "mock",
		FinishReason: "stop",
	}, nil
}

func buildMockJSON(count int) string {
	letters := []string{"A", "B", "C", "D"}
	types := []string{"comprehension", "vocabulary", "grammar", "detail", "inference"}
	topics := []string{
		"the speaker's main point", "an idiomatic expression", "a verb tense",
		"a specific detail", "what the speaker implies",
	}

	var sb strings.Builder
	sb.WriteString(`{"questions":[`)
	for i := 0; i < count; i++ {
		correct := letters[i%4]
		topic := topics[i%len(topics)]
		if i > 0 {
			sb.WriteString(",")
		}

		sb.WriteString(`{"question":"[Mock] What does the transcript say about `)
		sb.WriteString(topic)
		sb.WriteString(`?","options":[`)
		for j, l := range letters {
			if j > 0 {
				sb.WriteString(",")
			}
			label := "an incorrect"
			if l == correct {
				label = "the correct"
			}
			fmt.Fprintf(&sb, `"[Mock] Option %s, %s reading of %s."`, l, label, topic)
		}
		fmt.Fprintf(&sb, `],"correctAnswer":"%s","explanation":"[Mock] %s matches what the transcript actually says about %s.","type":"%s"}`,
			correct, correct, topic, types[i%len(types)])
	}
	sb.WriteString(`]}`)
	return sb.String()
}
