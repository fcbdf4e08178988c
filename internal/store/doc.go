// Package store provides persistent storage for liftlog using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture with specialized
// interfaces:
//
//   - UserStore: User accounts, their bcrypt password hashes, role sets, and
//     enabled flag. The auth pipeline consumes GetUserByUsername only.
//   - ExerciseStore: The global exercise catalog.
//   - WorkoutStore: Workouts and their sets, scoped to an owning user.
//
// SQLiteStore implements all interfaces in a single struct, allowing easy
// composition while maintaining clear interface boundaries.
//
// # Data Models
//
//   - User: Stored identity with username, password hash, roles, enabled flag
//   - Exercise: Catalog entry (name, muscle group, demo URL)
//   - Workout: Training session with a set list, owned by a username
//   - Set: One exercise set (reps, weight, position) inside a workout
//
// # Role Storage
//
// Roles are free-form upper-case strings ("USER", "ADMIN") by application
// convention, persisted as a comma-joined sorted list. The convention is not
// enforced by the schema.
//
// # Errors
//
// Methods return ErrNotFound for missing entities and ErrDuplicate for unique
// constraint violations. Everything else is wrapped with context via fmt.Errorf.
package store
