// ABOUTME: Tests for exercise and workout store operations
// ABOUTME: Covers CRUD, set ordering, owner listing, and cascade deletes

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestExercise(t *testing.T, s *SQLiteStore, name string) *Exercise {
	t.Helper()
	ex := &Exercise{
		ID:          uuid.NewString(),
		Name:        name,
		MuscleGroup: "legs",
	}
	require.NoError(t, s.CreateExercise(context.Background(), ex))
	return ex
}

func TestExerciseStore_CRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ex := createTestExercise(t, store, "Back Squat")

	got, err := store.GetExercise(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, "Back Squat", got.Name)
	assert.Equal(t, "legs", got.MuscleGroup)

	got.Name = "Front Squat"
	got.DemoURL = "https://example.com/front-squat"
	require.NoError(t, store.UpdateExercise(ctx, got))

	updated, err := store.GetExercise(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, "Front Squat", updated.Name)
	assert.Equal(t, "https://example.com/front-squat", updated.DemoURL)

	require.NoError(t, store.DeleteExercise(ctx, ex.ID))
	_, err = store.GetExercise(ctx, ex.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExerciseStore_DuplicateName(t *testing.T) {
	store := setupTestStore(t)

	createTestExercise(t, store, "Deadlift")
	err := store.CreateExercise(context.Background(), &Exercise{
		ID:   uuid.NewString(),
		Name: "Deadlift",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestExerciseStore_List(t *testing.T) {
	store := setupTestStore(t)

	createTestExercise(t, store, "Squat")
	createTestExercise(t, store, "Bench Press")

	exercises, err := store.ListExercises(context.Background())
	require.NoError(t, err)
	require.Len(t, exercises, 2)

	// Ordered by name
	assert.Equal(t, "Bench Press", exercises[0].Name)
	assert.Equal(t, "Squat", exercises[1].Name)
}

func TestWorkoutStore_CreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	squat := createTestExercise(t, store, "Squat")
	bench := createTestExercise(t, store, "Bench Press")

	w := &Workout{
		ID:          uuid.NewString(),
		Owner:       "alice",
		Title:       "Monday lower",
		Notes:       "felt strong",
		PerformedAt: time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
		Sets: []*Set{
			{ID: uuid.NewString(), ExerciseID: squat.ID, Reps: 5, WeightKg: 100},
			{ID: uuid.NewString(), ExerciseID: squat.ID, Reps: 5, WeightKg: 105},
			{ID: uuid.NewString(), ExerciseID: bench.ID, Reps: 8, WeightKg: 60},
		},
	}
	require.NoError(t, store.CreateWorkout(ctx, w))

	got, err := store.GetWorkout(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, "Monday lower", got.Title)
	require.Len(t, got.Sets, 3)
	assert.Equal(t, squat.ID, got.Sets[0].ExerciseID)
	assert.Equal(t, 105.0, got.Sets[1].WeightKg)
	assert.Equal(t, 8, got.Sets[2].Reps)
}

func TestWorkoutStore_Get_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetWorkout(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkoutStore_ListByOwner(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ex := createTestExercise(t, store, "Squat")

	for i, day := range []int{3, 1, 5} {
		w := &Workout{
			ID:          uuid.NewString(),
			Owner:       "alice",
			Title:       "session",
			PerformedAt: time.Date(2026, 3, day, 18, 0, 0, 0, time.UTC),
			Sets: []*Set{
				{ID: uuid.NewString(), ExerciseID: ex.ID, Reps: 5 + i, WeightKg: 100},
			},
		}
		require.NoError(t, store.CreateWorkout(ctx, w))
	}
	require.NoError(t, store.CreateWorkout(ctx, &Workout{
		ID:          uuid.NewString(),
		Owner:       "bob",
		Title:       "other",
		PerformedAt: time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC),
	}))

	workouts, err := store.ListWorkoutsByOwner(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, workouts, 3)

	// Most recent first
	assert.Equal(t, 5, workouts[0].PerformedAt.Day())
	assert.Equal(t, 3, workouts[1].PerformedAt.Day())
	assert.Equal(t, 1, workouts[2].PerformedAt.Day())
	require.Len(t, workouts[0].Sets, 1)

	limited, err := store.ListWorkoutsByOwner(ctx, "alice", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestWorkoutStore_Update_ReplacesSets(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ex := createTestExercise(t, store, "Squat")

	w := &Workout{
		ID:          uuid.NewString(),
		Owner:       "alice",
		Title:       "session",
		PerformedAt: time.Now().UTC(),
		Sets: []*Set{
			{ID: uuid.NewString(), ExerciseID: ex.ID, Reps: 5, WeightKg: 100},
			{ID: uuid.NewString(), ExerciseID: ex.ID, Reps: 5, WeightKg: 100},
		},
	}
	require.NoError(t, store.CreateWorkout(ctx, w))

	w.Title = "heavy session"
	w.Sets = []*Set{
		{ID: uuid.NewString(), ExerciseID: ex.ID, Reps: 3, WeightKg: 120},
	}
	require.NoError(t, store.UpdateWorkout(ctx, w))

	got, err := store.GetWorkout(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "heavy session", got.Title)
	require.Len(t, got.Sets, 1)
	assert.Equal(t, 3, got.Sets[0].Reps)
}

func TestWorkoutStore_Update_NotFound(t *testing.T) {
	store := setupTestStore(t)

	err := store.UpdateWorkout(context.Background(), &Workout{
		ID:          "missing",
		PerformedAt: time.Now(),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkoutStore_Delete_CascadesSets(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ex := createTestExercise(t, store, "Squat")

	w := &Workout{
		ID:          uuid.NewString(),
		Owner:       "alice",
		Title:       "session",
		PerformedAt: time.Now().UTC(),
		Sets: []*Set{
			{ID: uuid.NewString(), ExerciseID: ex.ID, Reps: 5, WeightKg: 100},
		},
	}
	require.NoError(t, store.CreateWorkout(ctx, w))
	require.NoError(t, store.DeleteWorkout(ctx, w.ID))

	_, err := store.GetWorkout(ctx, w.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	sets, err := store.listSets(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, sets)
}
