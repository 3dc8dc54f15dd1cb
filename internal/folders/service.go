package folders

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// ListForOrganization returns every folder in orgID.
func (s *Service) ListForOrganization(ctx context.Context, orgID string) ([]Folder, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("folders service not configured")
	}
	if strings.TrimSpace(orgID) == "" {
		return nil, errors.New("organization id is required")
	}
	list, err := s.Repo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Folder{}
	}
	return list, nil
}

// GetInOrganization returns the folder only if it belongs to orgID.
func (s *Service) GetInOrganization(ctx context.Context, orgID, folderID string) (Folder, error) {
	if s == nil || s.Repo == nil {
		return Folder{}, errors.New("folders service not configured")
	}
	folder, err := s.Repo.GetByID(ctx, folderID)
	if err != nil {
		return Folder{}, err
	}
	if folder.OrganizationID != orgID {
		return Folder{}, ErrNotFound
	}
	return folder, nil
}
