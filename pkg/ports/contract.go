package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/firebreak/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SampleCheckpoint returns a checkpoint exercising every persisted field,
// including nested records and choices.
func SampleCheckpoint(runID string) *domain.Checkpoint {
	s := domain.NewSession("We live on a bush block and want to be ready",
		domain.Message{Role: domain.RoleSystem, Content: "You are a bushfire consultant."},
		domain.Message{Role: domain.RoleUser, Content: "Hello"},
	)
	s.Apply(domain.Delta{Records: []domain.RecordDelta{
		{
			Key:            domain.RecordRisk,
			Classification: domain.Ptr(domain.ClassHigh),
			Summary:        domain.Ptr("High exposure"),
			Narrative:      domain.Ptr("Dense bush within 50m upslope."),
			Questions:      &domain.QuestionUpdate{Items: []string{"What is your postcode?", "Is the block sloped?"}},
			Answers:        map[string]string{"What is your postcode?": "3777"},
			Choice:         &domain.ChoiceDelta{Prompt: "Continue with plan?", Options: []string{"yes", "no"}, Selection: "Yes"},
		},
		{
			Key:            domain.RecordStayPlan,
			Classification: domain.Ptr(domain.ClassMore),
			Details:        map[string]string{"equipment": "Pump, hoses", "backup_plan": ""},
		},
	}})
	return &domain.Checkpoint{
		RunID:     runID,
		Session:   s,
		Next:      "assess_defence",
		Status:    domain.StatusFailed,
		Steps:     7,
		LastError: "inference timeout",
		UpdatedAt: time.Date(2025, 12, 1, 10, 30, 0, 0, time.UTC),
	}
}

// RunCheckpointStoreContract runs a suite of tests to verify that a CheckpointStore
// implementation adheres to the defined interface contract.
func RunCheckpointStoreContract(t *testing.T, store CheckpointStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		cp := domain.NewCheckpoint(runID, domain.NewSession("why"), "start")

		err := store.Save(ctx, runID, cp)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "start", loaded.Next)
		assert.Equal(t, "why", loaded.Session.Motivation)
	})

	t.Run("Round Trip Is Lossless", func(t *testing.T) {
		want := SampleCheckpoint(runID)
		require.NoError(t, store.Save(ctx, runID, want))

		got, err := store.Load(ctx, runID)
		require.NoError(t, err)

		if diff := cmp.Diff(want, got, cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
			t.Errorf("checkpoint round trip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Load Is Isolated From Caller Mutation", func(t *testing.T) {
		cp := SampleCheckpoint(runID)
		require.NoError(t, store.Save(ctx, runID, cp))

		cp.Session.Risk.Answers["What is your postcode?"] = "mutated"
		cp.Next = "mutated"

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, "3777", loaded.Session.Risk.Answers["What is your postcode?"])
		assert.Equal(t, "assess_defence", loaded.Next)
	})

	t.Run("Last Write Wins", func(t *testing.T) {
		first := SampleCheckpoint(runID)
		second := SampleCheckpoint(runID)
		second.Next = domain.End
		second.Status = domain.StatusCompleted
		second.Session.Apply(domain.Delta{FinalArtifact: []string{"# Plan", "", "- Leave early"}})

		require.NoError(t, store.Save(ctx, runID, first))
		require.NoError(t, store.Save(ctx, runID, second))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, domain.End, loaded.Next)
		assert.Equal(t, []string{"# Plan", "", "- Leave early"}, loaded.Session.FinalArtifact)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, runID, domain.NewCheckpoint(runID, domain.NewSession("why"), "start"))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, id1, domain.NewCheckpoint(id1, domain.NewSession("a"), "start"))
		_ = store.Save(ctx, id2, domain.NewCheckpoint(id2, domain.NewSession("b"), "start"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})

	t.Run("Run IDs Resembling Bookkeeping Keys", func(t *testing.T) {
		ids := []string{runID + "-other", "index", "lock:x", "tmp-test"}
		for _, id := range ids {
			require.NoError(t, store.Save(ctx, id, domain.NewCheckpoint(id, domain.NewSession("m"), "start")), id)
		}
		defer func() {
			for _, id := range ids {
				_ = store.Delete(ctx, id)
			}
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		for _, id := range ids {
			assert.Contains(t, runs, id)
			_, err := store.Load(ctx, id)
			assert.NoError(t, err, id)
		}
	})

	t.Run("Concurrent Distinct Runs", func(t *testing.T) {
		const n = 8
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("%s-c%d", runID, i)
				cp := SampleCheckpoint(id)
				cp.Steps = i
				if err := store.Save(ctx, id, cp); err != nil {
					errs <- err
					return
				}
				loaded, err := store.Load(ctx, id)
				if err != nil {
					errs <- err
					return
				}
				if loaded.Steps != i {
					errs <- fmt.Errorf("run %s: got steps %d, want %d", id, loaded.Steps, i)
				}
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Error(err)
		}
		for i := 0; i < n; i++ {
			_ = store.Delete(ctx, fmt.Sprintf("%s-c%d", runID, i))
		}
	})
}
