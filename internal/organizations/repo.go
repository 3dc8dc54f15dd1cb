package organizations

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("organization not found")

type Repo interface {
	Create(ctx context.Context, org Organization) error
	GetByID(ctx context.Context, id string) (Organization, error)
	List(ctx context.Context) ([]Organization, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context) error
}
