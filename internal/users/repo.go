package users

import "context"

type Repo interface {
	// Create inserts user; ErrEmailTaken if the email exists in any case.
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ListByOrganization(ctx context.Context, orgID string) ([]User, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context) error
}
