package quiz

import (
	"context"
	"fmt"
	"log"

	"github.com/linguloop/backend/internal/models"
	"github.com/linguloop/backend/internal/share"
)

const defaultCount = 5

// Service is the outbound surface of the generation pipeline consumed by the
// HTTP layer.
type Service struct {
	store   *Store
	orch    *Orchestrator
	presets *PresetManager
	cache   *Cache
	tokens  *share.Minter
}

func NewService(store *Store, orch *Orchestrator, presets *PresetManager, cache *Cache, tokens *share.Minter) *Service {
	return &Service{store: store, orch: orch, presets: presets, cache: cache, tokens: tokens}
}

// GenerateForDifficulty regenerates one difficulty's question set for a
// session, replacing whatever set that difficulty held. Other difficulties
// are untouched.
func (s *Service) GenerateForDifficulty(ctx context.Context, sessionID string, req models.GenerateRequest) (*models.GenerateResponse, error) {
	count := req.Count
	if count <= 0 {
		count = defaultCount
	}

	loop, err := s.store.GetLoop(ctx, req.LoopID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteSet(ctx, sessionID, req.Difficulty); err != nil {
		return nil, err
	}
	// The old set is gone either way; dependent views must refetch.
	s.cache.Invalidate(req.GroupID, sessionID)

	dist := models.Distribution{}
	switch req.Difficulty {
	case models.DifficultyEasy:
		dist.Easy = count
	case models.DifficultyMedium:
		dist.Medium = count
	case models.DifficultyHard:
		dist.Hard = count
	}

	result, err := s.orch.Run(ctx, sessionID, loop, dist, req.PromptOverride)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(req.GroupID, sessionID)
	log.Printf("[generate] session %s: %d %s questions", sessionID, result.Counts[req.Difficulty], req.Difficulty)

	return &models.GenerateResponse{
		Difficulty: req.Difficulty,
		Count:      result.Counts[req.Difficulty],
		ShareToken: result.Tokens[req.Difficulty],
	}, nil
}

// GenerateFromPreset replaces the session's active preset and regenerates the
// full distribution.
func (s *Service) GenerateFromPreset(ctx context.Context, sessionID string, req models.SelectPresetRequest) error {
	loop, err := s.store.GetLoop(ctx, req.LoopID)
	if err != nil {
		return err
	}

	info := PresetInfo{ID: req.PresetID, Name: req.PresetName}
	return s.presets.SelectPreset(ctx, req.GroupID, sessionID, loop, info, req.Distribution)
}

func (s *Service) ActiveCache(ctx context.Context, groupID, sessionID string) (CacheEntry, error) {
	return s.cache.Get(ctx, groupID, sessionID)
}

func (s *Service) Invalidate(groupID, sessionID string) {
	s.cache.Invalidate(groupID, sessionID)
}

func (s *Service) ActivePreset(ctx context.Context, sessionID string) (*models.DistributionPreset, error) {
	return s.presets.ActivePreset(ctx, sessionID)
}

// FetchByShareToken resolves a share token to the question set it references.
// A token superseded by a later generation no longer resolves.
func (s *Service) FetchByShareToken(ctx context.Context, token string) (*models.QuestionSet, error) {
	sessionID, difficulty, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	set, err := s.store.FetchSet(ctx, sessionID, difficulty)
	if err != nil {
		return nil, err
	}
	if set.ShareToken != token {
		return nil, fmt.Errorf("share token superseded by a newer generation")
	}
	return set, nil
}

func (s *Service) PutLoop(ctx context.Context, loop *models.TranscriptLoop) error {
	return s.store.PutLoop(ctx, loop)
}
