package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, name, link, status, document_type, organization_id, folder_id, storage_key, processed_key, stage, failed_stage, last_error, verdict_correct, verdict_reasoning, created_at, updated_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    name,
    link,
    status,
    document_type,
    organization_id,
    folder_id,
    stage,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.Name,
		doc.Link,
		string(doc.Status),
		string(doc.DocumentType),
		doc.OrganizationID,
		doc.FolderID,
		string(doc.Stage),
		doc.CreatedAt,
	)
	return err
}

// Update persists the pipeline fields of a document whose stored stage is expected.
func (r *PGRepo) Update(ctx context.Context, doc Document, expected Stage) error {
	const query = `
UPDATE documents
SET link = $2,
    status = $3,
    storage_key = $4,
    processed_key = $5,
    stage = $6,
    failed_stage = $7,
    last_error = $8,
    verdict_correct = $9,
    verdict_reasoning = $10,
    updated_at = now()
WHERE id = $1 AND stage = $11`
	var verdict sql.NullBool
	if doc.VerdictCorrect != nil {
		verdict = sql.NullBool{Bool: *doc.VerdictCorrect, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.Link,
		string(doc.Status),
		nullableString(doc.StorageKey),
		nullableString(doc.ProcessedKey),
		string(doc.Stage),
		nullableString(string(doc.FailedStage)),
		nullableString(doc.LastError),
		verdict,
		nullableString(doc.VerdictReasoning),
		string(expected),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return r.missOrConflict(ctx, doc.ID)
	}
	return nil
}

func (r *PGRepo) missOrConflict(ctx context.Context, id string) error {
	var stage string
	err := r.DB.QueryRowContext(ctx, `SELECT stage FROM documents WHERE id = $1`, id).Scan(&stage)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrStageConflict
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 LIMIT 1`
	return scanDocument(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) ListByOrganization(ctx context.Context, orgID string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE organization_id = $1 ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, orgID)
}

func (r *PGRepo) ListByFolder(ctx context.Context, folderID string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE folder_id = $1 ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, folderID)
}

func (r *PGRepo) CountByOrganization(ctx context.Context, orgID string) (map[string]int, error) {
	const query = `
SELECT folder_id, COUNT(*)
FROM documents
WHERE organization_id = $1
GROUP BY folder_id`
	rows, err := r.DB.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var folderID string
		var n int
		if err := rows.Scan(&folderID, &n); err != nil {
			return nil, err
		}
		counts[folderID] = n
	}
	return counts, rows.Err()
}

func (r *PGRepo) List(ctx context.Context) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query)
}

func (r *PGRepo) Reset(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `TRUNCATE documents`)
	return err
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var status, docType, stage string
	var storageKey, processedKey, failedStage, lastError, reasoning sql.NullString
	var verdict sql.NullBool
	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&doc.Link,
		&status,
		&docType,
		&doc.OrganizationID,
		&doc.FolderID,
		&storageKey,
		&processedKey,
		&stage,
		&failedStage,
		&lastError,
		&verdict,
		&reasoning,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	doc.Status = Status(status)
	doc.DocumentType = Type(docType)
	doc.Stage = Stage(stage)
	doc.StorageKey = storageKey.String
	doc.ProcessedKey = processedKey.String
	doc.FailedStage = Stage(failedStage.String)
	doc.LastError = lastError.String
	doc.VerdictReasoning = reasoning.String
	if verdict.Valid {
		v := verdict.Bool
		doc.VerdictCorrect = &v
	}
	return doc, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
