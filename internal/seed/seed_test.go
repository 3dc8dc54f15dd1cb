package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"compliance-backend/internal/documents"
	"compliance-backend/internal/folders"
	"compliance-backend/internal/organizations"
	"compliance-backend/internal/shared/storage/object/local"
	"compliance-backend/internal/staffindex"
	"compliance-backend/internal/users"
)

func TestDemo(t *testing.T) {
	ctx := context.Background()
	target := Target{
		Orgs:      organizations.NewMemoryRepo(),
		Users:     users.NewMemoryRepo(),
		Folders:   folders.NewMemoryRepo(),
		Documents: documents.NewMemoryRepo(),
		Index:     staffindex.New(local.New(t.TempDir())),
		HashCost:  bcrypt.MinCost,
	}

	orgID, err := Demo(ctx, target)
	require.NoError(t, err)

	members, err := target.Users.ListByOrganization(ctx, orgID)
	require.NoError(t, err)
	assert.Len(t, members, 3)

	alice, err := target.Users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, users.PermissionAdmin, alice.Permission)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(alice.PasswordHash), []byte(DemoPassword)))

	jamie, err := target.Users.GetByEmail(ctx, "jamie@example.com")
	require.NoError(t, err)
	folder, err := target.Folders.GetByUser(ctx, jamie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jamie Garcia", folder.Name)

	counts, err := target.Documents.CountByOrganization(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[folder.ID])

	entries, err := target.Index.Read(ctx, orgID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
