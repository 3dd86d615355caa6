package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/linguloop/backend/internal/generator"
	"github.com/linguloop/backend/internal/models"
)

// MaxBatchSize bounds how many questions a single provider call may request.
const MaxBatchSize = 8

// ErrGenerationInFlight is returned when a run is requested while another run
// already holds one of the requested difficulties.
var ErrGenerationInFlight = errors.New("generation already in flight for this session")

type batchGenerator interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Batch, error)
}

type tokenMinter interface {
	Mint(sessionID string, difficulty models.Difficulty) (string, error)
}

// Orchestrator decomposes a difficulty distribution into bounded batches,
// dispatches them concurrently, and aggregates counts and tokens once every
// batch has settled.
type Orchestrator struct {
	gen           batchGenerator
	store         QuestionStore
	tokens        tokenMinter
	maxConcurrent int

	mu       sync.Mutex
	inFlight map[models.Difficulty]bool
	runs     int
}

func NewOrchestrator(gen batchGenerator, store QuestionStore, tokens tokenMinter) *Orchestrator {
	maxConcurrent := 4
	if v := os.Getenv("GEN_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxConcurrent = n
		}
	}

	return &Orchestrator{
		gen:           gen,
		store:         store,
		tokens:        tokens,
		maxConcurrent: maxConcurrent,
		inFlight:      make(map[models.Difficulty]bool),
	}
}

// PartitionBatches splits count into batch sizes of at most MaxBatchSize.
// sum(sizes) == count and len(sizes) == ceil(count/MaxBatchSize).
func PartitionBatches(count int) []int {
	if count <= 0 {
		return nil
	}
	sizes := make([]int, 0, (count+MaxBatchSize-1)/MaxBatchSize)
	for offset := 0; offset < count; offset += MaxBatchSize {
		size := MaxBatchSize
		if remaining := count - offset; remaining < size {
			size = remaining
		}
		sizes = append(sizes, size)
	}
	return sizes
}

// Generating reports whether any run is currently in flight — the aggregate
// "all" flag.
func (o *Orchestrator) Generating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runs > 0
}

// GeneratingDifficulty reports whether a run holding the given difficulty is
// in flight.
func (o *Orchestrator) GeneratingDifficulty(d models.Difficulty) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight[d]
}

// RunResult is the aggregate outcome of one orchestrated run.
type RunResult struct {
	Counts       map[models.Difficulty]int
	Tokens       map[models.Difficulty]string
	PromptTokens int
	OutputTokens int
}

type batchSpec struct {
	difficulty models.Difficulty
	size       int
	startIndex int
	total      int
}

type batchOutcome struct {
	difficulty   models.Difficulty
	count        int
	promptTokens int
	outputTokens int
}

// Run generates the full distribution for a session. Batches across all
// difficulties are dispatched concurrently, capped at maxConcurrent in-flight
// provider calls; there is no ordering guarantee between them. Once
// dispatched a batch runs to completion or failure — a sibling's failure does
// not cancel it. If any batch fails the whole run fails, and batches that
// already persisted are left in place (no rollback); the caller decides what
// compensating cleanup, if any, to perform.
func (o *Orchestrator) Run(ctx context.Context, sessionID string, loop *models.TranscriptLoop, dist models.Distribution, promptOverride string) (*RunResult, error) {
	if dist.Total() <= 0 {
		return nil, fmt.Errorf("empty distribution")
	}

	var active []models.Difficulty
	for _, d := range models.AllDifficulties {
		if dist.Count(d) > 0 {
			active = append(active, d)
		}
	}

	if err := o.acquire(active); err != nil {
		return nil, err
	}
	defer o.release(active)

	var specs []batchSpec
	for _, d := range active {
		total := dist.Count(d)
		offset := 0
		for _, size := range PartitionBatches(total) {
			specs = append(specs, batchSpec{difficulty: d, size: size, startIndex: offset, total: total})
			offset += size
		}
	}

	outcomes := make([]batchOutcome, len(specs))

	var g errgroup.Group
	g.SetLimit(o.maxConcurrent)

	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			batch, err := o.gen.Generate(ctx, generator.Request{
				Loop:           loop,
				Difficulty:     spec.difficulty,
				Count:          spec.size,
				StartIndex:     spec.startIndex,
				Total:          spec.total,
				PromptOverride: promptOverride,
			})
			if err != nil {
				return err
			}

			token, err := o.tokens.Mint(sessionID, spec.difficulty)
			if err != nil {
				return fmt.Errorf("mint %s share token: %w", spec.difficulty, err)
			}

			if err := o.store.SaveSet(ctx, sessionID, spec.difficulty, batch.Questions, token); err != nil {
				return fmt.Errorf("persist %s batch: %w", spec.difficulty, err)
			}

			outcomes[i] = batchOutcome{
				difficulty:   spec.difficulty,
				count:        len(batch.Questions),
				promptTokens: batch.PromptTokens,
				outputTokens: batch.OutputTokens,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("WARN: [orchestrator] run failed for session %s; already-persisted batches are not rolled back: %v", sessionID, err)
		return nil, err
	}

	// Aggregate only after every batch has settled.
	result := &RunResult{
		Counts: make(map[models.Difficulty]int),
		Tokens: make(map[models.Difficulty]string),
	}
	for _, out := range outcomes {
		result.Counts[out.difficulty] += out.count
		result.PromptTokens += out.promptTokens
		result.OutputTokens += out.outputTokens
	}

	// All batches of one difficulty share a set row, and the last SaveSet to
	// commit owns the row's share token. Commit order is decided by the
	// database, not by when SaveSet returns here, so the winning token is
	// read back from the rows rather than tracked in-process.
	sets, err := o.store.FetchSets(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load persisted sets: %w", err)
	}
	for _, d := range active {
		if set, ok := sets[d]; ok {
			result.Tokens[d] = set.ShareToken
		}
	}

	log.Printf("[orchestrator] session %s: generated %d questions across %d batches (prompt=%d output=%d tokens)",
		sessionID, dist.Total(), len(specs), result.PromptTokens, result.OutputTokens)

	return result, nil
}

func (o *Orchestrator) acquire(difficulties []models.Difficulty) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, d := range difficulties {
		if o.inFlight[d] {
			return ErrGenerationInFlight
		}
	}
	for _, d := range difficulties {
		o.inFlight[d] = true
	}
	o.runs++
	return nil
}

func (o *Orchestrator) release(difficulties []models.Difficulty) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, d := range difficulties {
		delete(o.inFlight, d)
	}
	o.runs--
}
