package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/linguloop/backend/internal/models"
)

// RawQuestion is one question as the provider returns it, before shuffling
// and ID assignment.
type RawQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Type          string   `json:"type"`
}

// MalformedError means the provider's response could not be parsed or
// validated even after the repair pass. The whole batch is rejected; there is
// no per-item skipping.
type MalformedError struct {
	Errors []string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed response: %s", strings.Join(e.Errors, "; "))
}

// ParseQuestions extracts and validates the question array from a raw model
// response. Accepts either a bare JSON array or a {"questions": [...]}
// wrapper, with or without markdown fences; minor syntax damage (trailing
// commas, surrounding prose) gets one repair pass before giving up.
func ParseQuestions(responseBody string) ([]RawQuestion, error) {
	cleaned := stripCodeFences(responseBody)

	if !gjson.Valid(cleaned) {
		cleaned = repairJSON(cleaned)
		if !gjson.Valid(cleaned) {
			return nil, &MalformedError{Errors: []string{"response is not valid JSON after repair"}}
		}
	}

	root := gjson.Parse(cleaned)
	arr := root
	if root.IsObject() {
		arr = root.Get("questions")
	}
	if !arr.IsArray() {
		return nil, &MalformedError{Errors: []string{"no question array in response"}}
	}

	var questions []RawQuestion
	if err := json.Unmarshal([]byte(arr.Raw), &questions); err != nil {
		return nil, &MalformedError{Errors: []string{fmt.Sprintf("decode question array: %v", err)}}
	}

	if err := validateQuestions(questions); err != nil {
		return nil, err
	}

	return questions, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

var trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)

// repairJSON fixes the damage models actually produce: prose around the JSON
// body and trailing commas before a closing bracket.
func repairJSON(s string) string {
	start := strings.IndexAny(s, "[{")
	end := strings.LastIndexAny(s, "]}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

func validateQuestions(questions []RawQuestion) error {
	var errs []string

	if len(questions) == 0 {
		return &MalformedError{Errors: []string{"no questions in response"}}
	}

	for i, q := range questions {
		qNum := i + 1

		if strings.TrimSpace(q.Question) == "" {
			errs = append(errs, fmt.Sprintf("question %d: empty question text", qNum))
		}
		if len(q.Options) != 4 {
			errs = append(errs, fmt.Sprintf("question %d: expected 4 options, got %d", qNum, len(q.Options)))
			continue
		}
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				errs = append(errs, fmt.Sprintf("question %d: option %d is empty", qNum, j+1))
			}
		}
		if !models.ValidAnswerLetters[q.CorrectAnswer] {
			errs = append(errs, fmt.Sprintf("question %d: invalid correctAnswer %q", qNum, q.CorrectAnswer))
		}
		if !models.ValidQuestionTypes[models.QuestionType(q.Type)] {
			errs = append(errs, fmt.Sprintf("question %d: invalid type %q", qNum, q.Type))
		}
	}

	if len(errs) > 0 {
		return &MalformedError{Errors: errs}
	}
	return nil
}
