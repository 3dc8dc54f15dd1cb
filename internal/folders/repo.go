package folders

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("folder not found")
	ErrUserHasFolder = errors.New("user already has a folder")
)

type Repo interface {
	Create(ctx context.Context, folder Folder) error
	GetByID(ctx context.Context, id string) (Folder, error)
	GetByUser(ctx context.Context, userID string) (Folder, error)
	ListByOrganization(ctx context.Context, orgID string) ([]Folder, error)
	List(ctx context.Context) ([]Folder, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context) error
}
