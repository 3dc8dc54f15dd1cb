package folders

import (
	"context"
	"database/sql"
	"errors"

	"compliance-backend/internal/shared/storage/db"
)

const userFolderConstraint = "folders_user_id_key"

type PGRepo struct {
	DB *sql.DB
}

const folderColumns = `id, name, organization_id, user_id, created_at`

func (r *PGRepo) Create(ctx context.Context, folder Folder) error {
	const query = `
INSERT INTO folders (id, name, organization_id, user_id, created_at)
VALUES ($1, $2, $3, $4, now())`
	_, err := r.DB.ExecContext(ctx, query,
		folder.ID,
		folder.Name,
		folder.OrganizationID,
		nullableString(folder.UserID),
	)
	if db.IsUniqueViolation(err, userFolderConstraint) {
		return ErrUserHasFolder
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = $1 LIMIT 1`
	return scanFolder(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) GetByUser(ctx context.Context, userID string) (Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE user_id = $1 LIMIT 1`
	return scanFolder(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) ListByOrganization(ctx context.Context, orgID string) ([]Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE organization_id = $1 ORDER BY created_at ASC, name ASC`
	return r.list(ctx, query, orgID)
}

func (r *PGRepo) List(ctx context.Context) ([]Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders ORDER BY created_at ASC, name ASC`
	return r.list(ctx, query)
}

func (r *PGRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	return err
}

func (r *PGRepo) Reset(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `TRUNCATE folders CASCADE`)
	return err
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Folder, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, folder)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFolder(row rowScanner) (Folder, error) {
	var folder Folder
	var userID sql.NullString
	err := row.Scan(&folder.ID, &folder.Name, &folder.OrganizationID, &userID, &folder.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Folder{}, ErrNotFound
		}
		return Folder{}, err
	}
	if userID.Valid {
		folder.UserID = userID.String
	}
	return folder, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
