package models

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// AllDifficulties is the fixed iteration order used wherever per-difficulty
// results are assembled.
var AllDifficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

type QuestionType string

const (
	TypeComprehension QuestionType = "comprehension"
	TypeVocabulary    QuestionType = "vocabulary"
	TypeGrammar       QuestionType = "grammar"
	TypeDetail        QuestionType = "detail"
	TypeInference     QuestionType = "inference"
)

var ValidQuestionTypes = map[QuestionType]bool{
	TypeComprehension: true,
	TypeVocabulary:    true,
	TypeGrammar:       true,
	TypeDetail:        true,
	TypeInference:     true,
}

// AnswerLetters are the only accepted correct-answer identifiers.
var AnswerLetters = []string{"A", "B", "C", "D"}

var ValidAnswerLetters = map[string]bool{"A": true, "B": true, "C": true, "D": true}

// GeneratedQuestion is one AI-generated comprehension question. Immutable once
// created; a later generation for the same loop supersedes it rather than
// mutating it.
type GeneratedQuestion struct {
	ID            string       `json:"id"`
	Question      string       `json:"question"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	Difficulty    Difficulty   `json:"difficulty"`
	Type          QuestionType `json:"type"`
	Timestamp     float64      `json:"timestamp"`
}

// QuestionSet is the persisted set of questions for one (session, difficulty).
// A session holds at most one set per difficulty; regenerating replaces it.
type QuestionSet struct {
	SessionID  string              `json:"session_id"`
	Difficulty Difficulty          `json:"difficulty"`
	Questions  []GeneratedQuestion `json:"questions"`
	ShareToken string              `json:"share_token"`
}
