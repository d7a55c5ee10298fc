package training_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/training"
	inmemdb "github.com/trezcool/mwalimu/storage/database/inmem"
)

func progress(pct int) training.UpdateProgress { return training.UpdateProgress{Progress: &pct} }

func TestService_UpdateProgress(t *testing.T) {
	ctx := context.Background()
	svc := training.NewService(inmemdb.NewTrainingRepository(inmemdb.NewDB()))

	_, err := svc.UpdateProgress(ctx, 1, 42, progress(10))
	assert.True(t, core.IsNotFound(err))

	cp, err := svc.UpdateProgress(ctx, 1, 3, progress(50))
	require.NoError(t, err)
	assert.Equal(t, "CBC Assessment Strategies", cp.Title)
	assert.False(t, cp.Completed)
	assert.False(t, cp.CompletedAt.Valid)

	cp, err = svc.UpdateProgress(ctx, 1, 3, progress(100))
	require.NoError(t, err)
	assert.True(t, cp.Completed)
	require.True(t, cp.CompletedAt.Valid)
	completedAt := cp.CompletedAt.Time

	// completion time is kept
	cp, err = svc.UpdateProgress(ctx, 1, 3, progress(100))
	require.NoError(t, err)
	assert.Equal(t, completedAt, cp.CompletedAt.Time)

	n, err := svc.CompletedCourses(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = svc.CompletedCourses(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, n)

	cps, err := svc.Courses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cps, 3)
	assert.Equal(t, []training.Level{training.LevelBeginner, training.LevelIntermediate, training.LevelAdvanced},
		[]training.Level{cps[0].Level, cps[1].Level, cps[2].Level})
	assert.Equal(t, []int{0, 0, 100}, []int{cps[0].Progress, cps[1].Progress, cps[2].Progress})

	// no longer completed
	cp, err = svc.UpdateProgress(ctx, 1, 3, progress(75))
	require.NoError(t, err)
	assert.False(t, cp.Completed)
	assert.False(t, cp.CompletedAt.Valid)
}
