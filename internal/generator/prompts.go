package generator

import (
	"fmt"
	"strings"

	"github.com/linguloop/backend/internal/models"
)

var difficultyGuidance = map[models.Difficulty]string{
	models.DifficultyEasy: `DIFFICULTY: easy
- Test literal comprehension of statements made directly in the transcript
- Use vocabulary that appears in the transcript itself
- Wrong options should be clearly contradicted by the transcript`,

	models.DifficultyMedium: `DIFFICULTY: medium
- Test understanding that requires connecting two or more statements
- Vocabulary and grammar questions may paraphrase the transcript
- Wrong options should be plausible but distinguishable on a careful listen`,

	models.DifficultyHard: `DIFFICULTY: hard
- Test inference, tone, and implied meaning, not just literal content
- Include idiomatic or low-frequency vocabulary from the transcript
- Wrong options should be tempting near-misses that a partial understanding would pick`,
}

func SystemPrompt() string {
	return `You are a language-learning quiz writer. You create multiple-choice comprehension questions from video transcript excerpts for language learners.

Rules:
- Every question must be answerable from the transcript excerpt alone
- Each question has exactly 4 options and exactly one correct answer
- Write explanations that point back to the transcript
- Question "type" must be one of: comprehension, vocabulary, grammar, detail, inference

Respond with ONLY a JSON object of the form:
{"questions":[{"question":"...","options":["...","...","...","..."],"correctAnswer":"A","explanation":"...","type":"comprehension"}]}

"correctAnswer" is the letter (A, B, C, or D) of the correct option. No prose before or after the JSON.`
}

// UserPrompt builds the generation request for one batch. override, when
// non-empty, is appended as extra instructions from the caller.
func UserPrompt(loop *models.TranscriptLoop, difficulty models.Difficulty, count int, override string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Video: %q (%.1fs – %.1fs)\n\n", loop.VideoTitle, loop.StartTime, loop.EndTime)
	sb.WriteString("Transcript excerpt:\n")
	sb.WriteString(loop.TranscriptText)
	sb.WriteString("\n")

	if len(loop.Segments) > 0 {
		sb.WriteString("\nTimed segments:\n")
		for _, seg := range loop.Segments {
			fmt.Fprintf(&sb, "[%.1f-%.1f] %s\n", seg.Start, seg.End, seg.Text)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(difficultyGuidance[difficulty])
	fmt.Fprintf(&sb, "\n\nGenerate exactly %d questions of this difficulty.", count)

	if override != "" {
		sb.WriteString("\n\nAdditional instructions:\n")
		sb.WriteString(override)
	}

	return sb.String()
}
