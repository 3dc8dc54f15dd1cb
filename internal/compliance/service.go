package compliance

import (
	"context"
	"errors"
	"fmt"

	"compliance-backend/internal/documents"
	"compliance-backend/internal/folders"
	"compliance-backend/internal/users"
)

// ErrFolderNotFound is returned for folders missing or outside the caller's organization.
var ErrFolderNotFound = errors.New("folder not found")

// FolderSummary is one row of the compliance-folder view.
type FolderSummary struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	OrganizationID string         `json:"organization_id"`
	NumDocs        int            `json:"num_docs"`
	User           *users.Profile `json:"user"`
}

type Service struct {
	Folders   *folders.Service
	Users     users.Repo
	Documents documents.Repo
}

// FolderSummaries returns every folder in orgID with its owner and document count.
func (s *Service) FolderSummaries(ctx context.Context, orgID string) ([]FolderSummary, error) {
	list, err := s.Folders.ListForOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	members, err := s.Users.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	counts, err := s.Documents.CountByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	profiles := make(map[string]users.Profile, len(members))
	for _, u := range members {
		profiles[u.ID] = u.Profile()
	}

	out := make([]FolderSummary, 0, len(list))
	for _, f := range list {
		row := FolderSummary{
			ID:             f.ID,
			Name:           f.Name,
			OrganizationID: f.OrganizationID,
			NumDocs:        counts[f.ID],
		}
		if p, ok := profiles[f.UserID]; ok {
			row.User = &p
		}
		out = append(out, row)
	}
	return out, nil
}

// FolderDocuments returns the documents filed in folderID.
func (s *Service) FolderDocuments(ctx context.Context, orgID, folderID string) ([]documents.Document, error) {
	if _, err := s.Folders.GetInOrganization(ctx, orgID, folderID); err != nil {
		if errors.Is(err, folders.ErrNotFound) {
			return nil, ErrFolderNotFound
		}
		return nil, err
	}
	return s.Documents.ListByFolder(ctx, folderID)
}
