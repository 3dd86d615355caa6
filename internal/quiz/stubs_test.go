package quiz

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/linguloop/backend/internal/generator"
	"github.com/linguloop/backend/internal/models"
)

// fakeStore is an in-memory QuestionStore mirroring the postgres append
// semantics: SaveSet appends questions and replaces the share token.
type fakeStore struct {
	mu      sync.Mutex
	sets    map[string]map[models.Difficulty]models.QuestionSet
	fetches int
	deletes int

	// When set, FetchSets snapshots its result and then waits on the gate
	// before returning, so tests can interleave writes with an in-flight read.
	fetchGate chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{sets: make(map[string]map[models.Difficulty]models.QuestionSet)}
}

func (s *fakeStore) SaveSet(ctx context.Context, sessionID string, difficulty models.Difficulty, questions []models.GeneratedQuestion, shareToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sets[sessionID] == nil {
		s.sets[sessionID] = make(map[models.Difficulty]models.QuestionSet)
	}
	set := s.sets[sessionID][difficulty]
	set.SessionID = sessionID
	set.Difficulty = difficulty
	set.Questions = append(set.Questions, questions...)
	set.ShareToken = shareToken
	s.sets[sessionID][difficulty] = set
	return nil
}

func (s *fakeStore) FetchSets(ctx context.Context, sessionID string) (map[models.Difficulty]models.QuestionSet, error) {
	s.mu.Lock()
	s.fetches++
	gate := s.fetchGate
	out := make(map[models.Difficulty]models.QuestionSet)
	for d, set := range s.sets[sessionID] {
		out[d] = set
	}
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return out, nil
}

func (s *fakeStore) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func (s *fakeStore) DeleteSets(ctx context.Context, sessionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deletes++
	n := len(s.sets[sessionID])
	delete(s.sets, sessionID)
	return n, nil
}

func (s *fakeStore) DeleteSet(ctx context.Context, sessionID string, difficulty models.Difficulty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sets[sessionID], difficulty)
	return nil
}

func (s *fakeStore) set(sessionID string, difficulty models.Difficulty, count int, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sets[sessionID] == nil {
		s.sets[sessionID] = make(map[models.Difficulty]models.QuestionSet)
	}
	questions := make([]models.GeneratedQuestion, count)
	s.sets[sessionID][difficulty] = models.QuestionSet{
		SessionID:  sessionID,
		Difficulty: difficulty,
		Questions:  questions,
		ShareToken: token,
	}
}

func (s *fakeStore) questionCount(sessionID string, difficulty models.Difficulty) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets[sessionID][difficulty].Questions)
}

// fakeMinter issues sequential tokens.
type fakeMinter struct {
	seq atomic.Int64
}

func (m *fakeMinter) Mint(sessionID string, difficulty models.Difficulty) (string, error) {
	return fmt.Sprintf("tok-%s-%s-%d", sessionID, difficulty, m.seq.Add(1)), nil
}

// fakeGen honors the requested count and can fail one difficulty or block
// until released.
type fakeGen struct {
	mu       sync.Mutex
	requests []generator.Request

	failDifficulty models.Difficulty
	block          chan struct{}
}

func (g *fakeGen) Generate(ctx context.Context, req generator.Request) (*generator.Batch, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	if g.block != nil {
		<-g.block
	}
	if g.failDifficulty != "" && req.Difficulty == g.failDifficulty {
		return nil, fmt.Errorf("generate %s batch: provider exploded", req.Difficulty)
	}

	questions := make([]models.GeneratedQuestion, req.Count)
	for i := range questions {
		questions[i] = models.GeneratedQuestion{
			ID:         fmt.Sprintf("q_%s_ai_%d", req.Loop.ID, req.StartIndex+i+1),
			Question:   "stub question",
			Options:    []string{"a", "b", "c", "d"},
			Difficulty: req.Difficulty,
		}
	}
	return &generator.Batch{
		Difficulty:   req.Difficulty,
		Questions:    questions,
		PromptTokens: 10,
		OutputTokens: 20,
	}, nil
}

func (g *fakeGen) recorded() []generator.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]generator.Request(nil), g.requests...)
}

// fakeOrch stands in for the orchestrator in preset tests.
type fakeOrch struct {
	generating bool
	err        error

	mu   sync.Mutex
	runs []models.Distribution
}

func (o *fakeOrch) Run(ctx context.Context, sessionID string, loop *models.TranscriptLoop, dist models.Distribution, promptOverride string) (*RunResult, error) {
	o.mu.Lock()
	o.runs = append(o.runs, dist)
	o.mu.Unlock()

	if o.err != nil {
		return nil, o.err
	}
	return &RunResult{
		Counts: map[models.Difficulty]int{models.DifficultyEasy: dist.Easy, models.DifficultyMedium: dist.Medium, models.DifficultyHard: dist.Hard},
		Tokens: map[models.Difficulty]string{},
	}, nil
}

func (o *fakeOrch) Generating() bool { return o.generating }

func (o *fakeOrch) runCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.runs)
}

// fakePresetStore records every put, including clears.
type fakePresetStore struct {
	mu     sync.Mutex
	preset *models.DistributionPreset
	puts   []*models.DistributionPreset
}

func (p *fakePresetStore) GetPreset(ctx context.Context, sessionID string) (*models.DistributionPreset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.preset, nil
}

func (p *fakePresetStore) PutPreset(ctx context.Context, sessionID string, preset *models.DistributionPreset) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.preset = preset
	p.puts = append(p.puts, preset)
	return nil
}

func testLoop() *models.TranscriptLoop {
	return &models.TranscriptLoop{
		ID:             "loop1",
		VideoTitle:     "Market day small talk",
		StartTime:      0,
		EndTime:        60,
		TranscriptText: "Combien coûtent les tomates ? Trois euros le kilo.",
	}
}
