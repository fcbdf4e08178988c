// ABOUTME: Workout and set persistence methods on SQLiteStore
// ABOUTME: Sets are written transactionally with their parent workout

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateWorkout inserts a workout and its sets in one transaction
func (s *SQLiteStore) CreateWorkout(ctx context.Context, w *Workout) error {
	now := time.Now().UTC()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workouts (id, owner, title, notes, performed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		w.ID,
		w.Owner,
		w.Title,
		w.Notes,
		w.PerformedAt.UTC().Format(time.RFC3339),
		w.CreatedAt.Format(time.RFC3339),
		w.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting workout: %w", err)
	}

	if err := insertSets(ctx, tx, w.ID, w.Sets); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing workout: %w", err)
	}

	s.logger.Debug("created workout", "id", w.ID, "owner", w.Owner, "sets", len(w.Sets))
	return nil
}

// insertSets inserts the given sets for a workout within a transaction
func insertSets(ctx context.Context, tx *sql.Tx, workoutID string, sets []*Set) error {
	for i, set := range sets {
		set.WorkoutID = workoutID
		if set.OrderIdx == 0 {
			set.OrderIdx = i
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sets (id, workout_id, exercise_id, reps, weight_kg, order_idx)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			set.ID,
			set.WorkoutID,
			set.ExerciseID,
			set.Reps,
			set.WeightKg,
			set.OrderIdx,
		)
		if err != nil {
			if isConstraintViolation(err) {
				return fmt.Errorf("inserting set %d: %w", i, ErrNotFound)
			}
			return fmt.Errorf("inserting set %d: %w", i, err)
		}
	}
	return nil
}

// GetWorkout retrieves a workout with its sets ordered by order_idx.
// Returns ErrNotFound if the workout doesn't exist.
func (s *SQLiteStore) GetWorkout(ctx context.Context, id string) (*Workout, error) {
	query := `
		SELECT id, owner, title, notes, performed_at, created_at, updated_at
		FROM workouts
		WHERE id = ?
	`

	w, err := scanWorkoutRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	sets, err := s.listSets(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	w.Sets = sets

	return w, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for workout scanning
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkoutRow(row rowScanner) (*Workout, error) {
	var w Workout
	var performedAtStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&w.ID,
		&w.Owner,
		&w.Title,
		&w.Notes,
		&performedAtStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning workout: %w", err)
	}

	w.PerformedAt, err = time.Parse(time.RFC3339, performedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing performed_at: %w", err)
	}
	w.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	w.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &w, nil
}

// listSets returns the sets of a workout ordered by order_idx
func (s *SQLiteStore) listSets(ctx context.Context, workoutID string) ([]*Set, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workout_id, exercise_id, reps, weight_kg, order_idx
		FROM sets
		WHERE workout_id = ?
		ORDER BY order_idx
	`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("listing sets: %w", err)
	}
	defer rows.Close()

	sets := []*Set{}
	for rows.Next() {
		var set Set
		if err := rows.Scan(
			&set.ID,
			&set.WorkoutID,
			&set.ExerciseID,
			&set.Reps,
			&set.WeightKg,
			&set.OrderIdx,
		); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		sets = append(sets, &set)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sets: %w", err)
	}

	return sets, nil
}

// ListWorkoutsByOwner returns the owner's workouts, most recent first.
// Sets are loaded for each workout. A limit of 0 means no limit.
func (s *SQLiteStore) ListWorkoutsByOwner(ctx context.Context, owner string, limit int) ([]*Workout, error) {
	query := `
		SELECT id, owner, title, notes, performed_at, created_at, updated_at
		FROM workouts
		WHERE owner = ?
		ORDER BY performed_at DESC
	`
	args := []any{owner}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()

	var workouts []*Workout
	for rows.Next() {
		w, err := scanWorkoutRow(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workouts: %w", err)
	}

	for _, w := range workouts {
		sets, err := s.listSets(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		w.Sets = sets
	}

	return workouts, nil
}

// UpdateWorkout updates a workout and replaces its sets in one transaction.
// Returns ErrNotFound if the workout doesn't exist.
func (s *SQLiteStore) UpdateWorkout(ctx context.Context, w *Workout) error {
	w.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE workouts
		SET title = ?, notes = ?, performed_at = ?, updated_at = ?
		WHERE id = ?
	`,
		w.Title,
		w.Notes,
		w.PerformedAt.UTC().Format(time.RFC3339),
		w.UpdatedAt.Format(time.RFC3339),
		w.ID,
	)
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sets WHERE workout_id = ?`, w.ID); err != nil {
		return fmt.Errorf("clearing sets: %w", err)
	}
	if err := insertSets(ctx, tx, w.ID, w.Sets); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing workout update: %w", err)
	}

	return nil
}

// DeleteWorkout removes a workout and its sets.
// Returns ErrNotFound if the workout doesn't exist.
func (s *SQLiteStore) DeleteWorkout(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted workout", "id", id)
	return nil
}
