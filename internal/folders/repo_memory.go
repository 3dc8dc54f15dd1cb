package folders

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	folders map[string]Folder
	byUser  map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		folders: make(map[string]Folder),
		byUser:  make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, folder Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if folder.UserID != "" {
		if _, ok := r.byUser[folder.UserID]; ok {
			return ErrUserHasFolder
		}
		r.byUser[folder.UserID] = folder.ID
	}
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = time.Now().UTC()
	}
	r.folders[folder.ID] = folder
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Folder, error) {
	if err := ctx.Err(); err != nil {
		return Folder{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	folder, ok := r.folders[id]
	if !ok {
		return Folder{}, ErrNotFound
	}
	return folder, nil
}

func (r *MemoryRepo) GetByUser(ctx context.Context, userID string) (Folder, error) {
	if err := ctx.Err(); err != nil {
		return Folder{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[userID]
	if !ok {
		return Folder{}, ErrNotFound
	}
	return r.folders[id], nil
}

func (r *MemoryRepo) ListByOrganization(ctx context.Context, orgID string) ([]Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Folder
	for _, folder := range r.folders {
		if folder.OrganizationID == orgID {
			out = append(out, folder)
		}
	}
	sortFolders(out)
	return out, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Folder, 0, len(r.folders))
	for _, folder := range r.folders {
		out = append(out, folder)
	}
	sortFolders(out)
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	folder, ok := r.folders[id]
	if !ok {
		return nil
	}
	if folder.UserID != "" {
		delete(r.byUser, folder.UserID)
	}
	delete(r.folders, id)
	return nil
}

func (r *MemoryRepo) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.folders = make(map[string]Folder)
	r.byUser = make(map[string]string)
	return nil
}

func sortFolders(list []Folder) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].Name < list[j].Name
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
