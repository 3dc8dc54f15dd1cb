package documents

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrFolderNotFound = errors.New("folder not found for user")
	// ErrNotResumable is returned when the raw upload is no longer available.
	ErrNotResumable = errors.New("document cannot be resumed")
	// ErrStageConflict is returned when the stored stage no longer matches
	// the caller's, usually because another run advanced the document.
	ErrStageConflict = errors.New("document stage changed concurrently")
)

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	// Update persists doc only if the stored stage equals expected.
	Update(ctx context.Context, doc Document, expected Stage) error
	GetByID(ctx context.Context, id string) (Document, error)
	ListByOrganization(ctx context.Context, orgID string) ([]Document, error)
	ListByFolder(ctx context.Context, folderID string) ([]Document, error)
	// CountByOrganization returns the number of documents per folder id.
	CountByOrganization(ctx context.Context, orgID string) (map[string]int, error)
	List(ctx context.Context) ([]Document, error)
	Reset(ctx context.Context) error
}
