package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domainauth "github.com/target/programme-portal/internal/domain/auth"
	apperrors "github.com/target/programme-portal/internal/errors"
	"github.com/target/programme-portal/internal/ports"
)

// ErrRoleAssignmentNotFound is returned by Revoke when the username has no assignment.
var ErrRoleAssignmentNotFound = errors.New("role assignment not found")

// RoleAssignment is one row of the role directory.
type RoleAssignment struct {
	Username  string
	Role      domainauth.Role
	GrantedBy string
	UpdatedAt time.Time
}

// RoleAssignmentRepo is the Postgres-backed role directory.
type RoleAssignmentRepo struct {
	DB *sql.DB
}

var _ ports.RoleDirectory = (*RoleAssignmentRepo)(nil)

// NewRoleAssignmentRepo creates a new RoleAssignmentRepo.
func NewRoleAssignmentRepo(db *sql.DB) *RoleAssignmentRepo {
	return &RoleAssignmentRepo{DB: db}
}

// Lookup returns the assigned role for username.
func (r *RoleAssignmentRepo) Lookup(ctx context.Context, username string) (domainauth.Role, bool, error) {
	var raw string
	err := r.DB.QueryRowContext(ctx,
		`SELECT role FROM role_assignments WHERE username = $1`, username).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup role assignment: %w", apperrors.MapDBError(err))
	}
	role, err := domainauth.ParseRole(raw)
	if err != nil {
		return "", false, fmt.Errorf("role assignment for %q: %w", username, err)
	}
	return role, true, nil
}

// Assign creates or replaces the assignment for username.
func (r *RoleAssignmentRepo) Assign(ctx context.Context, username string, role domainauth.Role, grantedBy string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperrors.ValidationField("username", "username is required")
	}
	if !role.Valid() {
		return apperrors.ValidationField("role", fmt.Sprintf("unknown role %q", role))
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO role_assignments (username, role, granted_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE
		SET role = EXCLUDED.role, granted_by = EXCLUDED.granted_by, updated_at = now()`,
		username, string(role), grantedBy)
	if err != nil {
		return fmt.Errorf("assign role: %w", apperrors.MapDBError(err))
	}
	return nil
}

// Revoke deletes the assignment for username.
func (r *RoleAssignmentRepo) Revoke(ctx context.Context, username string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM role_assignments WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("revoke role: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	if n == 0 {
		return ErrRoleAssignmentNotFound
	}
	return nil
}

// List returns assignments ordered by username, optionally filtered to one role.
func (r *RoleAssignmentRepo) List(ctx context.Context, role domainauth.Role) ([]RoleAssignment, error) {
	query := `SELECT username, role, granted_by, updated_at FROM role_assignments`
	var args []any
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, string(role))
	}
	query += ` ORDER BY username`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list role assignments: %w", apperrors.MapDBError(err))
	}
	defer rows.Close()

	var out []RoleAssignment
	for rows.Next() {
		var (
			a   RoleAssignment
			raw string
		)
		if scanErr := rows.Scan(&a.Username, &raw, &a.GrantedBy, &a.UpdatedAt); scanErr != nil {
			return nil, fmt.Errorf("scan role assignment: %w", scanErr)
		}
		a.Role = domainauth.Role(raw)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role assignments: %w", apperrors.MapDBError(err))
	}
	return out, nil
}
