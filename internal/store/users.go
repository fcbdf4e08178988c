// ABOUTME: User entity persistence methods on SQLiteStore
// ABOUTME: Roles are stored as a comma-joined sorted list in the roles column

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// joinRoles serializes a role list into the stored representation.
// Roles are sorted and deduplicated so the stored form is deterministic.
func joinRoles(roles []string) string {
	seen := make(map[string]bool, len(roles))
	var out []string
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// splitRoles parses the stored representation back into a role list.
// Returns an empty slice (not nil) for no roles.
func splitRoles(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// CreateUser inserts a new user. Returns ErrDuplicate if the username is taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, username, password_hash, roles, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		joinRoles(user.Roles),
		user.Enabled,
		user.CreatedAt.Format(time.RFC3339),
		user.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("created user", "username", user.Username, "roles", user.Roles)
	return nil
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// GetUserByUsername retrieves a user by username.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, password_hash, roles, enabled, created_at, updated_at
		FROM users
		WHERE username = ?
	`

	var user User
	var rolesStr, createdAtStr, updatedAtStr string

	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&rolesStr,
		&user.Enabled,
		&createdAtStr,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.Roles = splitRoles(rolesStr)
	user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &user, nil
}

// ListUsers returns all users ordered by username
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*User, error) {
	query := `
		SELECT id, username, password_hash, roles, enabled, created_at, updated_at
		FROM users
		ORDER BY username
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var user User
		var rolesStr, createdAtStr, updatedAtStr string

		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&rolesStr,
			&user.Enabled,
			&createdAtStr,
			&updatedAtStr,
		); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		user.Roles = splitRoles(rolesStr)
		user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		user.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}

		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, nil
}

// SetUserEnabled enables or disables a user account.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) SetUserEnabled(ctx context.Context, username string, enabled bool) error {
	query := `UPDATE users SET enabled = ?, updated_at = ? WHERE username = ?`

	res, err := s.db.ExecContext(ctx, query,
		enabled,
		time.Now().UTC().Format(time.RFC3339),
		username,
	)
	if err != nil {
		return fmt.Errorf("updating user enabled: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Debug("set user enabled", "username", username, "enabled", enabled)
	return nil
}

// SetUserRoles replaces a user's role set.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) SetUserRoles(ctx context.Context, username string, roles []string) error {
	query := `UPDATE users SET roles = ?, updated_at = ? WHERE username = ?`

	res, err := s.db.ExecContext(ctx, query,
		joinRoles(roles),
		time.Now().UTC().Format(time.RFC3339),
		username,
	)
	if err != nil {
		return fmt.Errorf("updating user roles: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Debug("set user roles", "username", username, "roles", roles)
	return nil
}

// SetUserPassword replaces a user's password hash.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) SetUserPassword(ctx context.Context, username, passwordHash string) error {
	query := `UPDATE users SET password_hash = ?, updated_at = ? WHERE username = ?`

	res, err := s.db.ExecContext(ctx, query,
		passwordHash,
		time.Now().UTC().Format(time.RFC3339),
		username,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Debug("set user password", "username", username)
	return nil
}

// DeleteUser removes a user. Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) DeleteUser(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted user", "username", username)
	return nil
}
