package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"compliance-backend/internal/folders"
	"compliance-backend/internal/organizations"
	"compliance-backend/internal/sessions"
	"compliance-backend/internal/shared/server/middleware"
	"compliance-backend/internal/shared/storage/object/local"
	"compliance-backend/internal/staffindex"
)

type fixture struct {
	svc     *Service
	users   *MemoryRepo
	orgs    *organizations.MemoryRepo
	folders *folders.MemoryRepo
	index   *staffindex.Index
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		users:   NewMemoryRepo(),
		orgs:    organizations.NewMemoryRepo(),
		folders: folders.NewMemoryRepo(),
		index:   staffindex.New(local.New(t.TempDir())),
	}
	f.svc = &Service{
		Repo:     f.users,
		Orgs:     f.orgs,
		Folders:  f.folders,
		Sessions: sessions.NewMemoryStore(time.Hour, nil),
		Index:    f.index,
		HashCost: bcrypt.MinCost,
	}
	return f
}

func adminRequest(email string) AdminRegistration {
	return AdminRegistration{
		FirstName:        "Alice",
		LastName:         "Scott",
		Email:            email,
		OrganizationName: "Demo Organization",
		Role:             RoleAdmin,
		Password:         "password",
		ConfirmPassword:  "password",
		AgreeToTerms:     true,
	}
}

func staffRequest(email, orgID string) StaffRegistration {
	return StaffRegistration{
		FirstName:       "Max",
		LastName:        "Smith",
		Email:           email,
		OrganizationID:  orgID,
		Role:            RoleTeacher,
		Password:        "secret",
		ConfirmPassword: "secret",
		AgreeToTerms:    true,
	}
}

func TestRegisterAdminCreatesOrganizationFolderAndIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.RegisterAdmin(ctx, adminRequest("alice@example.com"))
	require.NoError(t, err)
	assert.Equal(t, PermissionAdmin, user.Permission)
	assert.NotEqual(t, "password", user.PasswordHash)

	org, err := f.orgs.GetByID(ctx, user.OrganizationID)
	require.NoError(t, err)
	assert.Equal(t, "Demo Organization", org.Name)

	folder, err := f.folders.GetByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Scott", folder.Name)
	assert.Equal(t, user.OrganizationID, folder.OrganizationID)

	entries, err := f.index.Read(ctx, user.OrganizationID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, staffindex.Entry{
		ID: user.ID, FirstName: "Alice", LastName: "Scott", Email: "alice@example.com",
		Role: "admin", Permission: "admin", OrganizationID: user.OrganizationID,
	}, entries[0])
}

func TestRegisterStaffJoinsOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.svc.RegisterAdmin(ctx, adminRequest("alice@example.com"))
	require.NoError(t, err)

	staff, err := f.svc.RegisterStaff(ctx, staffRequest("max@example.com", admin.OrganizationID))
	require.NoError(t, err)
	assert.Equal(t, PermissionStaff, staff.Permission)
	assert.Equal(t, admin.OrganizationID, staff.OrganizationID)

	entries, err := f.index.Read(ctx, admin.OrganizationID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestEmailUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.svc.RegisterAdmin(ctx, adminRequest("alice@example.com"))
	require.NoError(t, err)

	_, err = f.svc.RegisterStaff(ctx, staffRequest("ALICE@example.com", admin.OrganizationID))
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.svc.RegisterAdmin(ctx, adminRequest("alice@example.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)

	orgs, _ := f.orgs.List(ctx)
	assert.Len(t, orgs, 1, "failed admin registration must not leave an organization behind")
}

func TestStaffRegistrationMissingOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterStaff(ctx, staffRequest("max@example.com", "nope"))
	assert.ErrorIs(t, err, ErrOrganizationNotFound)

	_, err = f.users.GetByEmail(ctx, "max@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistrationValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := adminRequest("alice@example.com")
	req.ConfirmPassword = "different"
	req.AgreeToTerms = false
	req.FirstName = ""
	_, err := f.svc.RegisterAdmin(ctx, req)
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	req.ConfirmPassword = req.Password
	_, err = f.svc.RegisterAdmin(ctx, req)
	assert.ErrorIs(t, err, ErrTermsNotAccepted)

	req.AgreeToTerms = true
	_, err = f.svc.RegisterAdmin(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req.FirstName = "Alice"
	req.Role = "wizard"
	_, err = f.svc.RegisterAdmin(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	all, _ := f.users.List(ctx)
	assert.Empty(t, all)
}

type failingIndex struct{}

func (failingIndex) Append(context.Context, string, staffindex.Entry) error {
	return errors.New("object store unavailable")
}

func TestIndexFailureCompensates(t *testing.T) {
	f := newFixture(t)
	f.svc.Index = failingIndex{}
	ctx := context.Background()

	_, err := f.svc.RegisterAdmin(ctx, adminRequest("alice@example.com"))
	require.Error(t, err)

	all, _ := f.users.List(ctx)
	assert.Empty(t, all)
	fs, _ := f.folders.List(ctx)
	assert.Empty(t, fs)
	orgs, _ := f.orgs.List(ctx)
	assert.Empty(t, orgs)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice, err := f.svc.RegisterAdmin(ctx, adminRequest("alice@example.com"))
	require.NoError(t, err)
	maxUser, err := f.svc.RegisterStaff(ctx, staffRequest("max@example.com", alice.OrganizationID))
	require.NoError(t, err)

	_, _, err = f.svc.Login(ctx, "nobody@example.com", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	token, ok, err := f.svc.Login(ctx, "alice@example.com", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, token)

	aliceToken, ok, err := f.svc.Login(ctx, "Alice@Example.com", "password")
	require.NoError(t, err)
	require.True(t, ok)
	maxToken, ok, err := f.svc.Login(ctx, "max@example.com", "secret")
	require.NoError(t, err)
	require.True(t, ok)

	id, err := f.svc.ResolveToken(ctx, int64(aliceToken))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, id.UserID)
	assert.True(t, id.IsAdmin())

	id, err = f.svc.ResolveToken(ctx, int64(maxToken))
	require.NoError(t, err)
	assert.Equal(t, maxUser.ID, id.UserID)
	assert.False(t, id.IsAdmin())

	require.NoError(t, f.svc.Logout(ctx, aliceToken))
	_, err = f.svc.ResolveToken(ctx, int64(aliceToken))
	assert.ErrorIs(t, err, middleware.ErrInvalidToken)
}
