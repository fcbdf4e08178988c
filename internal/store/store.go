// ABOUTME: Store interface and data types for liftlog persistence
// ABOUTME: Defines User, Exercise, Workout, Set structs and store interfaces

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint would be violated
var ErrDuplicate = errors.New("already exists")

// User represents a stored identity. PasswordHash is a bcrypt hash; the
// plaintext password never touches the store.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Roles        []string
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Exercise represents a catalog entry describing a movement
type Exercise struct {
	ID          string
	Name        string
	MuscleGroup string
	DemoURL     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Workout represents a training session owned by a user
type Workout struct {
	ID          string
	Owner       string // username of the owning user
	Title       string
	Notes       string
	PerformedAt time.Time
	Sets        []*Set
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Set represents one exercise set within a workout
type Set struct {
	ID         string
	WorkoutID  string
	ExerciseID string
	Reps       int
	WeightKg   float64
	OrderIdx   int
}

// UserStore defines the interface for user persistence.
// The auth pipeline consumes only GetUserByUsername; the rest serves
// user management.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	SetUserEnabled(ctx context.Context, username string, enabled bool) error
	SetUserRoles(ctx context.Context, username string, roles []string) error
	SetUserPassword(ctx context.Context, username, passwordHash string) error
	DeleteUser(ctx context.Context, username string) error
}

// ExerciseStore defines the interface for exercise catalog persistence
type ExerciseStore interface {
	CreateExercise(ctx context.Context, ex *Exercise) error
	GetExercise(ctx context.Context, id string) (*Exercise, error)
	ListExercises(ctx context.Context) ([]*Exercise, error)
	UpdateExercise(ctx context.Context, ex *Exercise) error
	DeleteExercise(ctx context.Context, id string) error
}

// WorkoutStore defines the interface for workout persistence
type WorkoutStore interface {
	CreateWorkout(ctx context.Context, w *Workout) error
	GetWorkout(ctx context.Context, id string) (*Workout, error)
	ListWorkoutsByOwner(ctx context.Context, owner string, limit int) ([]*Workout, error)
	UpdateWorkout(ctx context.Context, w *Workout) error
	DeleteWorkout(ctx context.Context, id string) error
}

// Store combines all persistence interfaces
type Store interface {
	UserStore
	ExerciseStore
	WorkoutStore

	// Close releases any resources held by the store
	Close() error
}
