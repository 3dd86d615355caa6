package generator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/linguloop/backend/internal/completion"
	"github.com/linguloop/backend/internal/models"
)

// Request describes one bounded generation call.
type Request struct {
	Loop       *models.TranscriptLoop
	Difficulty models.Difficulty
	Count      int // questions requested in this call
	StartIndex int // global index (within this difficulty's run) of the first question
	Total      int // total requested for this difficulty, for timestamp spacing
	// PromptOverride, when non-empty, is appended to the generation prompt.
	PromptOverride string
}

// Batch is the result of one generation call.
type Batch struct {
	Difficulty   models.Difficulty
	Questions    []models.GeneratedQuestion
	PromptTokens int
	OutputTokens int
}

// Generator turns a transcript loop into validated, shuffled questions via a
// completion client.
type Generator struct {
	client completion.Client
	opts   completion.Options
}

func New(client completion.Client, opts completion.Options) *Generator {
	return &Generator{client: client, opts: opts}
}

func (g *Generator) ModelName() string {
	return g.client.Model()
}

// Generate runs one batch end to end: prompt, completion call, parse,
// validate, shuffle, ID and timestamp assignment. Any provider or validation
// failure rejects the entire batch; nothing is partially returned.
func (g *Generator) Generate(ctx context.Context, req Request) (*Batch, error) {
	if req.Total <= 0 {
		req.Total = req.Count
	}

	messages := []completion.Message{
		{Role: completion.RoleSystem, Content: SystemPrompt()},
		{Role: completion.RoleUser, Content: UserPrompt(req.Loop, req.Difficulty, req.Count, req.PromptOverride)},
	}

	resp, err := g.client.Chat(ctx, messages, g.opts)
	if err != nil {
		return nil, fmt.Errorf("generate %s batch: %w", req.Difficulty, err)
	}

	raw, err := ParseQuestions(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s batch: %w", req.Difficulty, err)
	}
	// The prompt demands exactly Count questions. A short batch breaks the
	// promised totals; an over-long one mints ids and timestamps past this
	// batch's index slot, colliding with the next batch.
	if len(raw) != req.Count {
		countErr := &MalformedError{Errors: []string{
			fmt.Sprintf("expected exactly %d questions, got %d", req.Count, len(raw)),
		}}
		return nil, fmt.Errorf("parse %s batch: %w", req.Difficulty, countErr)
	}

	span := req.Loop.EndTime - req.Loop.StartTime
	questions := make([]models.GeneratedQuestion, len(raw))
	for i, rq := range raw {
		global := req.StartIndex + i
		seed := req.Loop.ID + strconv.Itoa(global)

		correctIdx := letterIndex(rq.CorrectAnswer)
		options, newIdx := Shuffle(rq.Options, correctIdx, seed)

		questions[i] = models.GeneratedQuestion{
			ID:            fmt.Sprintf("q_%s_ai_%d", req.Loop.ID, global+1),
			Question:      rq.Question,
			Options:       options,
			CorrectAnswer: models.AnswerLetters[newIdx],
			Explanation:   rq.Explanation,
			Difficulty:    req.Difficulty,
			Type:          models.QuestionType(rq.Type),
			Timestamp:     req.Loop.StartTime + float64(global)*span/float64(req.Total),
		}
	}

	return &Batch{
		Difficulty:   req.Difficulty,
		Questions:    questions,
		PromptTokens: resp.PromptTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}

func letterIndex(letter string) int {
	for i, l := range models.AnswerLetters {
		if l == letter {
			return i
		}
	}
	return 0
}
