package organizations

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, org Organization) error {
	const query = `
INSERT INTO organizations (id, name, created_at)
VALUES ($1, $2, now())`
	_, err := r.DB.ExecContext(ctx, query, org.ID, org.Name)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Organization, error) {
	const query = `
SELECT id, name, created_at
FROM organizations
WHERE id = $1
LIMIT 1`
	var org Organization
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Organization{}, ErrNotFound
		}
		return Organization{}, err
	}
	return org, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Organization, error) {
	const query = `
SELECT id, name, created_at
FROM organizations
ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Organization
	for rows.Next() {
		var org Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, org)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return err
}

// Reset truncates organizations and everything that references them.
func (r *PGRepo) Reset(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `TRUNCATE organizations CASCADE`)
	return err
}
