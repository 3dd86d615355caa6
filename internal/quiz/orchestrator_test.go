package quiz

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/linguloop/backend/internal/models"
)

func TestPartitionBatches(t *testing.T) {
	tests := []struct {
		count int
		want  []int
	}{
		{0, nil},
		{1, []int{1}},
		{5, []int{5}},
		{8, []int{8}},
		{9, []int{8, 1}},
		{16, []int{8, 8}},
		{17, []int{8, 8, 1}},
		{20, []int{8, 8, 4}},
	}

	for _, tt := range tests {
		got := PartitionBatches(tt.count)
		if len(got) != len(tt.want) {
			t.Errorf("PartitionBatches(%d) = %v, want %v", tt.count, got, tt.want)
			continue
		}
		sum := 0
		for i, size := range got {
			sum += size
			if size != tt.want[i] {
				t.Errorf("PartitionBatches(%d) = %v, want %v", tt.count, got, tt.want)
				break
			}
			if size > MaxBatchSize {
				t.Errorf("PartitionBatches(%d): batch %d exceeds MaxBatchSize", tt.count, size)
			}
		}
		if sum != tt.count {
			t.Errorf("PartitionBatches(%d): sizes sum to %d", tt.count, sum)
		}
	}
}

func TestRun_OneBatchPerSmallDifficulty(t *testing.T) {
	gen := &fakeGen{}
	store := newFakeStore()
	orch := NewOrchestrator(gen, store, &fakeMinter{})

	dist := models.Distribution{Easy: 5, Medium: 6, Hard: 4}
	result, err := orch.Run(context.Background(), "s1", testLoop(), dist, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	reqs := gen.recorded()
	if len(reqs) != 3 {
		t.Fatalf("got %d batches, want 3", len(reqs))
	}
	sizes := make(map[models.Difficulty]int)
	for _, req := range reqs {
		sizes[req.Difficulty] += req.Count
		if req.Total != dist.Count(req.Difficulty) {
			t.Errorf("%s batch Total = %d, want %d", req.Difficulty, req.Total, dist.Count(req.Difficulty))
		}
	}
	for _, d := range models.AllDifficulties {
		if sizes[d] != dist.Count(d) {
			t.Errorf("%s batch sizes sum to %d, want %d", d, sizes[d], dist.Count(d))
		}
		if result.Counts[d] != dist.Count(d) {
			t.Errorf("aggregated count for %s = %d, want %d", d, result.Counts[d], dist.Count(d))
		}
		if result.Tokens[d] == "" {
			t.Errorf("no share token aggregated for %s", d)
		}
		if store.questionCount("s1", d) != dist.Count(d) {
			t.Errorf("store holds %d %s questions, want %d", store.questionCount("s1", d), d, dist.Count(d))
		}
	}
	if result.PromptTokens != 30 || result.OutputTokens != 60 {
		t.Errorf("token usage = %d/%d, want 30/60", result.PromptTokens, result.OutputTokens)
	}
}

func TestRun_SplitsLargeCountsWithOffsets(t *testing.T) {
	gen := &fakeGen{}
	store := newFakeStore()
	orch := NewOrchestrator(gen, store, &fakeMinter{})

	result, err := orch.Run(context.Background(), "s1", testLoop(), models.Distribution{Easy: 20}, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	reqs := gen.recorded()
	if len(reqs) != 3 {
		t.Fatalf("got %d batches, want 3", len(reqs))
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].StartIndex < reqs[j].StartIndex })
	wantOffsets := []int{0, 8, 16}
	wantSizes := []int{8, 8, 4}
	for i, req := range reqs {
		if req.StartIndex != wantOffsets[i] || req.Count != wantSizes[i] {
			t.Errorf("batch %d: StartIndex=%d Count=%d, want %d/%d", i, req.StartIndex, req.Count, wantOffsets[i], wantSizes[i])
		}
		if req.Total != 20 {
			t.Errorf("batch %d: Total=%d, want 20", i, req.Total)
		}
	}
	if store.questionCount("s1", models.DifficultyEasy) != 20 {
		t.Errorf("store holds %d easy questions, want 20", store.questionCount("s1", models.DifficultyEasy))
	}
	// The aggregated token must be the one the row actually ended up with,
	// whichever batch persisted last.
	persisted := store.sets["s1"][models.DifficultyEasy].ShareToken
	if result.Tokens[models.DifficultyEasy] != persisted {
		t.Errorf("aggregated token %q differs from the persisted row's token %q",
			result.Tokens[models.DifficultyEasy], persisted)
	}
}

func TestRun_BatchFailureFailsRunWithoutRollback(t *testing.T) {
	gen := &fakeGen{failDifficulty: models.DifficultyHard}
	store := newFakeStore()
	orch := NewOrchestrator(gen, store, &fakeMinter{})

	_, err := orch.Run(context.Background(), "s1", testLoop(), models.Distribution{Easy: 3, Hard: 3}, "")
	if err == nil {
		t.Fatal("expected run to fail when one batch fails")
	}
	// The easy batch that persisted before the hard one failed stays put.
	if store.questionCount("s1", models.DifficultyEasy) != 3 {
		t.Errorf("easy set was rolled back: %d questions, want 3", store.questionCount("s1", models.DifficultyEasy))
	}
	if orch.Generating() {
		t.Error("run still reported in flight after failure")
	}
}

func TestRun_RejectsOverlappingDifficulties(t *testing.T) {
	gen := &fakeGen{block: make(chan struct{})}
	store := newFakeStore()
	orch := NewOrchestrator(gen, store, &fakeMinter{})

	done := make(chan error, 1)
	go func() {
		_, err := orch.Run(context.Background(), "s1", testLoop(), models.Distribution{Easy: 2}, "")
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !orch.GeneratingDifficulty(models.DifficultyEasy) {
		if time.Now().After(deadline) {
			t.Fatal("first run never started")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := orch.Run(context.Background(), "s1", testLoop(), models.Distribution{Easy: 2, Medium: 2}, "")
	if !errors.Is(err, ErrGenerationInFlight) {
		t.Errorf("overlapping run error = %v, want ErrGenerationInFlight", err)
	}

	// Disjoint difficulties are allowed through.
	disjoint := make(chan error, 1)
	go func() {
		_, err := orch.Run(context.Background(), "s2", testLoop(), models.Distribution{Hard: 2}, "")
		disjoint <- err
	}()

	close(gen.block)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := <-disjoint; err != nil {
		t.Errorf("disjoint run failed: %v", err)
	}
	if orch.Generating() {
		t.Error("runs still reported in flight after completion")
	}
}

func TestRun_EmptyDistribution(t *testing.T) {
	orch := NewOrchestrator(&fakeGen{}, newFakeStore(), &fakeMinter{})
	if _, err := orch.Run(context.Background(), "s1", testLoop(), models.Distribution{}, ""); err == nil {
		t.Fatal("expected error for empty distribution")
	}
}
