package firebreak_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/firebreak"
	"github.com/aretw0/firebreak/internal/bushfire"
	"github.com/aretw0/firebreak/internal/testutils"
	"github.com/aretw0/firebreak/pkg/adapters/memory"
	"github.com/aretw0/firebreak/pkg/domain"
)

func TestPlanner_SuspendAndResume(t *testing.T) {
	store := memory.NewStore()
	prompter := testutils.NewPrompter("3775, Kinglake")
	now := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

	planner, err := firebreak.New(store, bushfire.Offline(), prompter,
		firebreak.WithMaxVisits(25),
		firebreak.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	ctx := context.Background()
	cp, err := planner.Start(ctx, "conversation_1", "We live next to a national park")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuspended, cp.Status)
	assert.Equal(t, bushfire.AskRiskQuestions, cp.Next)

	stored, err := store.Load(ctx, "conversation_1")
	require.NoError(t, err)
	assert.Equal(t, cp.Next, stored.Next)
	assert.Equal(t, now, stored.UpdatedAt)

	prompter.Feed("Dense bush", "yes", "No pump", "leave", "My sister's place in town")
	cp, err = planner.Resume(ctx, "conversation_1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, cp.Status)
	assert.Equal(t, "We live next to a national park", cp.Session.Motivation)
	assert.NotEmpty(t, cp.Session.FinalArtifact)
}

func TestPlanner_DuplicateRun(t *testing.T) {
	planner, err := firebreak.New(memory.NewStore(), bushfire.Offline(), testutils.NewPrompter())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = planner.Start(ctx, "conversation_1", "m")
	require.NoError(t, err)

	_, err = planner.Start(ctx, "conversation_1", "m")
	assert.ErrorIs(t, err, domain.ErrRunExists)
}

func TestPlanner_Graph(t *testing.T) {
	planner, err := firebreak.New(memory.NewStore(), bushfire.Offline(), testutils.NewPrompter())
	require.NoError(t, err)

	assert.Equal(t, bushfire.ClassifyRisk, planner.Graph().Entry())
}

func TestNew_Validation(t *testing.T) {
	_, err := firebreak.New(nil, bushfire.Offline(), testutils.NewPrompter())
	assert.Error(t, err)

	_, err = firebreak.New(memory.NewStore(), nil, testutils.NewPrompter())
	assert.Error(t, err)
}
