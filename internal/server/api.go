// ABOUTME: JSON API handlers for exercises, workouts, and user management
// ABOUTME: Role gates live in the route policy; handlers add row-level ownership checks

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/liftlog/liftlog/internal/auth"
	"github.com/liftlog/liftlog/internal/store"
)

// MeResponse is the JSON response for GET /api/me.
type MeResponse struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
}

// ExerciseRequest is the JSON request body for creating or updating an exercise.
type ExerciseRequest struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group,omitempty"`
	DemoURL     string `json:"demo_url,omitempty"`
}

// ExerciseResponse is the JSON representation of an exercise.
type ExerciseResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group,omitempty"`
	DemoURL     string `json:"demo_url,omitempty"`
}

// SetRequest is one set inside a workout create/update request.
type SetRequest struct {
	ExerciseID string  `json:"exercise_id"`
	Reps       int     `json:"reps"`
	WeightKg   float64 `json:"weight_kg,omitempty"`
}

// WorkoutRequest is the JSON request body for creating or updating a workout.
type WorkoutRequest struct {
	Title       string       `json:"title"`
	Notes       string       `json:"notes,omitempty"`
	PerformedAt string       `json:"performed_at,omitempty"` // RFC3339; defaults to now
	Sets        []SetRequest `json:"sets"`
}

// SetResponse is one set inside a workout response.
type SetResponse struct {
	ID         string  `json:"id"`
	ExerciseID string  `json:"exercise_id"`
	Reps       int     `json:"reps"`
	WeightKg   float64 `json:"weight_kg,omitempty"`
}

// WorkoutResponse is the JSON representation of a workout.
type WorkoutResponse struct {
	ID          string        `json:"id"`
	Owner       string        `json:"owner"`
	Title       string        `json:"title"`
	Notes       string        `json:"notes,omitempty"`
	PerformedAt string        `json:"performed_at"`
	Sets        []SetResponse `json:"sets"`
}

// CreateUserRequest is the JSON request body for POST /api/users.
type CreateUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

// UpdateUserRequest is the JSON request body for PUT /api/users/{username}.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	Roles   *[]string `json:"roles,omitempty"`
	Enabled *bool     `json:"enabled,omitempty"`
}

// UserResponse is the JSON representation of a user. The password hash is
// never serialized.
type UserResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Enabled  bool     `json:"enabled"`
}

// sendJSON writes v as a JSON response with the given status code.
func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sendJSONError writes a JSON error response with the given status code.
func sendJSONError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]string{"error": message})
}

// handleMe handles GET /api/me, echoing the authenticated principal.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	principal := auth.FromContext(r.Context())
	if principal == nil {
		auth.WriteUnauthenticated(w)
		return
	}

	roles := principal.Roles
	if roles == nil {
		roles = []string{}
	}
	sendJSON(w, http.StatusOK, MeResponse{Subject: principal.Subject, Roles: roles})
}

// handleExercises handles GET (list) and POST (create) on /api/exercises.
// Creation is ADMIN-gated by the route policy.
func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		exercises, err := s.store.ListExercises(r.Context())
		if err != nil {
			s.logger.Error("listing exercises", "error", err)
			sendJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp := make([]ExerciseResponse, 0, len(exercises))
		for _, ex := range exercises {
			resp = append(resp, exerciseToResponse(ex))
		}
		sendJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var req ExerciseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			sendJSONError(w, http.StatusBadRequest, "name is required")
			return
		}

		ex := &store.Exercise{
			ID:          uuid.NewString(),
			Name:        req.Name,
			MuscleGroup: req.MuscleGroup,
			DemoURL:     req.DemoURL,
		}
		if err := s.store.CreateExercise(r.Context(), ex); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				sendJSONError(w, http.StatusConflict, "exercise name already exists")
				return
			}
			s.logger.Error("creating exercise", "error", err)
			sendJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		sendJSON(w, http.StatusCreated, exerciseToResponse(ex))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleExerciseByID handles GET, PUT, and DELETE on /api/exercises/{id}.
// Writes are ADMIN-gated by the route policy.
func (s *Server) handleExerciseByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/exercises/")
	if id == "" || strings.Contains(id, "/") {
		sendJSONError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		ex, err := s.store.GetExercise(r.Context(), id)
		if err != nil {
			s.respondStoreError(w, err, "getting exercise")
			return
		}
		sendJSON(w, http.StatusOK, exerciseToResponse(ex))

	case http.MethodPut:
		var req ExerciseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			sendJSONError(w, http.StatusBadRequest, "name is required")
			return
		}

		ex := &store.Exercise{
			ID:          id,
			Name:        req.Name,
			MuscleGroup: req.MuscleGroup,
			DemoURL:     req.DemoURL,
		}
		if err := s.store.UpdateExercise(r.Context(), ex); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				sendJSONError(w, http.StatusConflict, "exercise name already exists")
				return
			}
			s.respondStoreError(w, err, "updating exercise")
			return
		}
		sendJSON(w, http.StatusOK, exerciseToResponse(ex))

	case http.MethodDelete:
		if err := s.store.DeleteExercise(r.Context(), id); err != nil {
			s.respondStoreError(w, err, "deleting exercise")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleWorkouts handles GET (list own) and POST (create) on /api/workouts.
func (s *Server) handleWorkouts(w http.ResponseWriter, r *http.Request) {
	principal := auth.FromContext(r.Context())
	if principal == nil {
		auth.WriteUnauthenticated(w)
		return
	}

	switch r.Method {
	case http.MethodGet:
		workouts, err := s.store.ListWorkoutsByOwner(r.Context(), principal.Subject, 0)
		if err != nil {
			s.logger.Error("listing workouts", "error", err)
			sendJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp := make([]WorkoutResponse, 0, len(workouts))
		for _, workout := range workouts {
			resp = append(resp, workoutToResponse(workout))
		}
		sendJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		workout, ok := s.parseWorkoutRequest(w, r, principal.Subject)
		if !ok {
			return
		}
		if err := s.store.CreateWorkout(r.Context(), workout); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				sendJSONError(w, http.StatusBadRequest, "unknown exercise in sets")
				return
			}
			s.logger.Error("creating workout", "error", err)
			sendJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		sendJSON(w, http.StatusCreated, workoutToResponse(workout))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleWorkoutByID handles GET, PUT, and DELETE on /api/workouts/{id}.
// A workout is visible and mutable only by its owner (or an ADMIN); other
// principals get 404 so workout IDs don't leak existence.
func (s *Server) handleWorkoutByID(w http.ResponseWriter, r *http.Request) {
	principal := auth.FromContext(r.Context())
	if principal == nil {
		auth.WriteUnauthenticated(w)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/workouts/")
	if id == "" || strings.Contains(id, "/") {
		sendJSONError(w, http.StatusNotFound, "not found")
		return
	}

	workout, err := s.store.GetWorkout(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, err, "getting workout")
		return
	}
	if workout.Owner != principal.Subject && !principal.HasAnyRole("ADMIN") {
		sendJSONError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		sendJSON(w, http.StatusOK, workoutToResponse(workout))

	case http.MethodPut:
		updated, ok := s.parseWorkoutRequest(w, r, workout.Owner)
		if !ok {
			return
		}
		updated.ID = workout.ID
		if err := s.store.UpdateWorkout(r.Context(), updated); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				sendJSONError(w, http.StatusBadRequest, "unknown exercise in sets")
				return
			}
			s.logger.Error("updating workout", "error", err)
			sendJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		sendJSON(w, http.StatusOK, workoutToResponse(updated))

	case http.MethodDelete:
		if err := s.store.DeleteWorkout(r.Context(), id); err != nil {
			s.respondStoreError(w, err, "deleting workout")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// parseWorkoutRequest decodes and validates a workout body, returning the
// store entity with fresh IDs. Writes the error response itself on failure.
func (s *Server) parseWorkoutRequest(w http.ResponseWriter, r *http.Request, owner string) (*store.Workout, bool) {
	var req WorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if req.Title == "" {
		sendJSONError(w, http.StatusBadRequest, "title is required")
		return nil, false
	}

	performedAt := time.Now().UTC()
	if req.PerformedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.PerformedAt)
		if err != nil {
			sendJSONError(w, http.StatusBadRequest, "performed_at must be RFC3339")
			return nil, false
		}
		performedAt = parsed
	}

	workout := &store.Workout{
		ID:          uuid.NewString(),
		Owner:       owner,
		Title:       req.Title,
		Notes:       req.Notes,
		PerformedAt: performedAt,
	}
	for i, set := range req.Sets {
		if set.ExerciseID == "" {
			sendJSONError(w, http.StatusBadRequest, "sets require exercise_id")
			return nil, false
		}
		if set.Reps <= 0 {
			sendJSONError(w, http.StatusBadRequest, "sets require positive reps")
			return nil, false
		}
		workout.Sets = append(workout.Sets, &store.Set{
			ID:         uuid.NewString(),
			ExerciseID: set.ExerciseID,
			Reps:       set.Reps,
			WeightKg:   set.WeightKg,
			OrderIdx:   i,
		})
	}

	return workout, true
}

// handleUsers handles GET (list) and POST (create) on /api/users.
// The whole subtree is ADMIN-gated by the route policy.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := s.store.ListUsers(r.Context())
		if err != nil {
			s.logger.Error("listing users", "error", err)
			sendJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp := make([]UserResponse, 0, len(users))
		for _, user := range users {
			resp = append(resp, userToResponse(user))
		}
		sendJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Username == "" || req.Password == "" {
			sendJSONError(w, http.StatusBadRequest, "username and password are required")
			return
		}

		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			s.logger.Error("hashing password", "error", err)
			sendJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}

		user := &store.User{
			ID:           uuid.NewString(),
			Username:     req.Username,
			PasswordHash: hash,
			Roles:        req.Roles,
			Enabled:      true,
		}
		if err := s.store.CreateUser(r.Context(), user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				sendJSONError(w, http.StatusConflict, "username already exists")
				return
			}
			s.logger.Error("creating user", "error", err)
			sendJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}

		s.logger.Info("user created", "username", user.Username, "roles", user.Roles)
		sendJSON(w, http.StatusCreated, userToResponse(user))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleUserByName handles PUT (update roles/enabled) and DELETE on
// /api/users/{username}. ADMIN-gated by the route policy.
func (s *Server) handleUserByName(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimPrefix(r.URL.Path, "/api/users/")
	if username == "" || strings.Contains(username, "/") {
		sendJSONError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := s.store.GetUserByUsername(r.Context(), username)
		if err != nil {
			s.respondStoreError(w, err, "getting user")
			return
		}
		sendJSON(w, http.StatusOK, userToResponse(user))

	case http.MethodPut:
		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.Roles != nil {
			if err := s.store.SetUserRoles(r.Context(), username, *req.Roles); err != nil {
				s.respondStoreError(w, err, "setting user roles")
				return
			}
		}
		if req.Enabled != nil {
			if err := s.store.SetUserEnabled(r.Context(), username, *req.Enabled); err != nil {
				s.respondStoreError(w, err, "setting user enabled")
				return
			}
		}

		user, err := s.store.GetUserByUsername(r.Context(), username)
		if err != nil {
			s.respondStoreError(w, err, "getting user")
			return
		}
		sendJSON(w, http.StatusOK, userToResponse(user))

	case http.MethodDelete:
		if err := s.store.DeleteUser(r.Context(), username); err != nil {
			s.respondStoreError(w, err, "deleting user")
			return
		}
		s.logger.Info("user deleted", "username", username)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// respondStoreError maps store errors to HTTP responses: not-found becomes
// 404, everything else is logged and becomes 500.
func (s *Server) respondStoreError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		sendJSONError(w, http.StatusNotFound, "not found")
		return
	}
	s.logger.Error(op, "error", err)
	sendJSONError(w, http.StatusInternalServerError, "internal error")
}

func exerciseToResponse(ex *store.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:          ex.ID,
		Name:        ex.Name,
		MuscleGroup: ex.MuscleGroup,
		DemoURL:     ex.DemoURL,
	}
}

func workoutToResponse(workout *store.Workout) WorkoutResponse {
	sets := make([]SetResponse, 0, len(workout.Sets))
	for _, set := range workout.Sets {
		sets = append(sets, SetResponse{
			ID:         set.ID,
			ExerciseID: set.ExerciseID,
			Reps:       set.Reps,
			WeightKg:   set.WeightKg,
		})
	}
	return WorkoutResponse{
		ID:          workout.ID,
		Owner:       workout.Owner,
		Title:       workout.Title,
		Notes:       workout.Notes,
		PerformedAt: workout.PerformedAt.UTC().Format(time.RFC3339),
		Sets:        sets,
	}
}

func userToResponse(user *store.User) UserResponse {
	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Roles:    roles,
		Enabled:  user.Enabled,
	}
}
