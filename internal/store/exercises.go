// ABOUTME: Exercise catalog persistence methods on SQLiteStore
// ABOUTME: Exercises are global catalog entries referenced by workout sets

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateExercise inserts a new exercise. Returns ErrDuplicate if the name is taken.
func (s *SQLiteStore) CreateExercise(ctx context.Context, ex *Exercise) error {
	now := time.Now().UTC()
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = now
	}
	ex.UpdatedAt = now

	query := `
		INSERT INTO exercises (id, name, muscle_group, demo_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		ex.ID,
		ex.Name,
		ex.MuscleGroup,
		ex.DemoURL,
		ex.CreatedAt.Format(time.RFC3339),
		ex.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting exercise: %w", err)
	}

	s.logger.Debug("created exercise", "id", ex.ID, "name", ex.Name)
	return nil
}

// GetExercise retrieves an exercise by ID.
// Returns ErrNotFound if the exercise doesn't exist.
func (s *SQLiteStore) GetExercise(ctx context.Context, id string) (*Exercise, error) {
	query := `
		SELECT id, name, muscle_group, demo_url, created_at, updated_at
		FROM exercises
		WHERE id = ?
	`

	var ex Exercise
	var createdAtStr, updatedAtStr string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&ex.ID,
		&ex.Name,
		&ex.MuscleGroup,
		&ex.DemoURL,
		&createdAtStr,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}

	ex.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	ex.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &ex, nil
}

// ListExercises returns all exercises ordered by name
func (s *SQLiteStore) ListExercises(ctx context.Context) ([]*Exercise, error) {
	query := `
		SELECT id, name, muscle_group, demo_url, created_at, updated_at
		FROM exercises
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	defer rows.Close()

	var exercises []*Exercise
	for rows.Next() {
		var ex Exercise
		var createdAtStr, updatedAtStr string

		if err := rows.Scan(
			&ex.ID,
			&ex.Name,
			&ex.MuscleGroup,
			&ex.DemoURL,
			&createdAtStr,
			&updatedAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}

		ex.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		ex.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}

		exercises = append(exercises, &ex)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exercises: %w", err)
	}

	return exercises, nil
}

// UpdateExercise updates an exercise's mutable fields.
// Returns ErrNotFound if the exercise doesn't exist.
func (s *SQLiteStore) UpdateExercise(ctx context.Context, ex *Exercise) error {
	ex.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE exercises
		SET name = ?, muscle_group = ?, demo_url = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		ex.Name,
		ex.MuscleGroup,
		ex.DemoURL,
		ex.UpdatedAt.Format(time.RFC3339),
		ex.ID,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("updating exercise: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteExercise removes an exercise. Returns ErrNotFound if it doesn't exist.
func (s *SQLiteStore) DeleteExercise(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exercises WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted exercise", "id", id)
	return nil
}
