package quiz

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/linguloop/backend/internal/models"
)

type presetOrchestrator interface {
	Run(ctx context.Context, sessionID string, loop *models.TranscriptLoop, dist models.Distribution, promptOverride string) (*RunResult, error)
	Generating() bool
}

// PresetInfo identifies the preset being selected.
type PresetInfo struct {
	ID   string
	Name string
}

// PresetManager owns the currently active preset per session. The active
// preset lives in the PresetStore; the manager round-trips through it rather
// than trusting an in-memory copy, so the store is the only source of truth.
type PresetManager struct {
	orch   presetOrchestrator
	qstore QuestionStore
	pstore PresetStore
	cache  *Cache
}

func NewPresetManager(orch presetOrchestrator, qstore QuestionStore, pstore PresetStore, cache *Cache) *PresetManager {
	return &PresetManager{orch: orch, qstore: qstore, pstore: pstore, cache: cache}
}

func (pm *PresetManager) ActivePreset(ctx context.Context, sessionID string) (*models.DistributionPreset, error) {
	return pm.pstore.GetPreset(ctx, sessionID)
}

// SelectPreset atomically replaces the session's active preset: reselecting
// the already-active preset with questions present is a no-op; anything else
// clears the existing questions and preset, regenerates the full
// distribution, and persists the new preset only on full success. On failure
// the session is cleared again so it never holds partial questions mismatched
// to a preset. A call while a generation is in flight is rejected, not
// queued.
func (pm *PresetManager) SelectPreset(ctx context.Context, groupID, sessionID string, loop *models.TranscriptLoop, info PresetInfo, dist models.Distribution) error {
	if pm.orch.Generating() {
		return ErrGenerationInFlight
	}

	active, err := pm.pstore.GetPreset(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load active preset: %w", err)
	}

	sets, err := pm.qstore.FetchSets(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load question sets: %w", err)
	}
	existing := 0
	for _, set := range sets {
		existing += len(set.Questions)
	}

	// Reselecting the active preset when its questions are already present is
	// a no-op: no generator call, tokens unchanged.
	if active != nil && info.ID != "" && active.ID == info.ID && existing > 0 {
		return nil
	}

	if active != nil || existing > 0 {
		pm.clearSession(ctx, groupID, sessionID)
	}

	if _, err := pm.orch.Run(ctx, sessionID, loop, dist, ""); err != nil {
		pm.clearSession(ctx, groupID, sessionID)
		return fmt.Errorf("preset generation failed: %w", err)
	}

	id := info.ID
	if id == "" {
		id = uuid.NewString()
	}
	preset := &models.DistributionPreset{
		ID:           id,
		Name:         info.Name,
		Distribution: dist,
		CreatedAt:    time.Now().UTC(),
	}
	if err := pm.pstore.PutPreset(ctx, sessionID, preset); err != nil {
		return fmt.Errorf("persist preset: %w", err)
	}

	pm.cache.Invalidate(groupID, sessionID)
	return nil
}

// clearSession wipes the session's question sets, active preset, and cache
// entry. Best-effort: remote-state failures are logged, not propagated, so
// cleanup never blocks the caller.
func (pm *PresetManager) clearSession(ctx context.Context, groupID, sessionID string) {
	if n, err := pm.qstore.DeleteSets(ctx, sessionID); err != nil {
		log.Printf("WARN: [preset] failed to delete question sets for session %s: %v", sessionID, err)
	} else if n > 0 {
		log.Printf("[preset] cleared %d question sets for session %s", n, sessionID)
	}

	if err := pm.pstore.PutPreset(ctx, sessionID, nil); err != nil {
		log.Printf("WARN: [preset] failed to clear preset for session %s: %v", sessionID, err)
	}

	pm.cache.Invalidate(groupID, sessionID)
}
