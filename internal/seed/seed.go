package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"compliance-backend/internal/documents"
	"compliance-backend/internal/folders"
	"compliance-backend/internal/organizations"
	"compliance-backend/internal/staffindex"
	"compliance-backend/internal/users"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "password"

// Target is where demo data is written.
type Target struct {
	Orgs      organizations.Repo
	Users     users.Repo
	Folders   folders.Repo
	Documents documents.Repo
	Index     *staffindex.Index
	// HashCost defaults to bcrypt.DefaultCost.
	HashCost int
}

type demoDoc struct {
	owner int
	name  string
	link  string
	kind  documents.Type
}

// Demo loads one organization with an admin, two staff members, their
// folders, and three documents. It returns the organization id.
func Demo(ctx context.Context, t Target) (string, error) {
	now := time.Now().UTC()
	org := organizations.Organization{ID: uuid.NewString(), Name: "Demo Organization", CreatedAt: now}
	if err := t.Orgs.Create(ctx, org); err != nil {
		return "", fmt.Errorf("create organization: %w", err)
	}

	hash, err := users.HashPassword(DemoPassword, t.HashCost)
	if err != nil {
		return "", err
	}

	people := []users.User{
		{FirstName: "Alice", LastName: "Scott", Email: "alice@example.com", Role: users.RoleAdmin, Permission: users.PermissionAdmin},
		{FirstName: "Max", LastName: "Smith", Email: "max@example.com", Role: users.RoleStaff, Permission: users.PermissionStaff},
		{FirstName: "Jamie", LastName: "Garcia", Email: "jamie@example.com", Role: users.RoleStaff, Permission: users.PermissionStaff},
	}
	folderIDs := make([]string, len(people))
	entries := make([]staffindex.Entry, 0, len(people))
	for i := range people {
		u := &people[i]
		u.ID = uuid.NewString()
		u.PasswordHash = hash
		u.OrganizationID = org.ID
		u.CreatedAt = now
		if err := t.Users.Create(ctx, *u); err != nil {
			return "", fmt.Errorf("create user %s: %w", u.Email, err)
		}

		folder := folders.Folder{
			ID:             uuid.NewString(),
			Name:           folders.NameFor(u.FirstName, u.LastName),
			OrganizationID: org.ID,
			UserID:         u.ID,
			CreatedAt:      now,
		}
		if err := t.Folders.Create(ctx, folder); err != nil {
			return "", fmt.Errorf("create folder for %s: %w", u.Email, err)
		}
		folderIDs[i] = folder.ID
		entries = append(entries, users.IndexEntry(*u))
	}

	docs := []demoDoc{
		{owner: 1, name: "Max's Training Certificate", link: "http://example.com/max_training.pdf", kind: documents.TypeOther},
		{owner: 2, name: "Jamie's Background Check", link: "http://example.com/jamie_background_check.pdf", kind: documents.TypeBackgroundCheck},
		{owner: 2, name: "Jamie's Training Certificate", link: "http://example.com/jamie_training.pdf", kind: documents.TypeOther},
	}
	for i, d := range docs {
		created := now.Add(time.Duration(i) * time.Millisecond)
		doc := documents.Document{
			ID:             uuid.NewString(),
			Name:           d.name,
			Link:           d.link,
			Status:         documents.StatusPending,
			DocumentType:   d.kind,
			OrganizationID: org.ID,
			FolderID:       folderIDs[d.owner],
			Stage:          documents.StagePending,
			CreatedAt:      created,
			UpdatedAt:      created,
		}
		if err := t.Documents.Create(ctx, doc); err != nil {
			return "", fmt.Errorf("create document %q: %w", d.name, err)
		}
	}

	if t.Index != nil {
		if err := t.Index.Write(ctx, org.ID, entries); err != nil {
			return "", fmt.Errorf("write staff index: %w", err)
		}
	}
	return org.ID, nil
}
