package users

import (
	"context"
	"database/sql"
	"errors"

	"compliance-backend/internal/shared/storage/db"
)

const emailConstraint = "users_email_lower_key"

type PGRepo struct {
	DB *sql.DB
}

const userColumns = `id, first_name, last_name, email, password_hash, role, permission, organization_id, created_at`

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, first_name, last_name, email, password_hash, role, permission, organization_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		string(user.Permission),
		user.OrganizationID,
	)
	if db.IsUniqueViolation(err, emailConstraint) {
		return ErrEmailTaken
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = $1 LIMIT 1`
	return scanUser(r.DB.QueryRowContext(ctx, query, normalizeEmail(email)))
}

func (r *PGRepo) ListByOrganization(ctx context.Context, orgID string) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE organization_id = $1 ORDER BY created_at ASC, email ASC`
	return r.list(ctx, query, orgID)
}

func (r *PGRepo) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, email ASC`
	return r.list(ctx, query)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *PGRepo) Reset(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `TRUNCATE users CASCADE`)
	return err
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var role, permission string
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&role,
		&permission,
		&user.OrganizationID,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.Role = Role(role)
	user.Permission = Permission(permission)
	return user, nil
}
