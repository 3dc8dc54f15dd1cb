package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, doc Document, expected Stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[doc.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Stage != expected {
		return ErrStageConflict
	}
	r.data[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) ListByOrganization(ctx context.Context, orgID string) ([]Document, error) {
	return r.filter(ctx, func(d Document) bool { return d.OrganizationID == orgID })
}

func (r *MemoryRepo) ListByFolder(ctx context.Context, folderID string) ([]Document, error) {
	return r.filter(ctx, func(d Document) bool { return d.FolderID == folderID })
}

func (r *MemoryRepo) CountByOrganization(ctx context.Context, orgID string) (map[string]int, error) {
	docs, err := r.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, d := range docs {
		counts[d.FolderID]++
	}
	return counts, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Document, error) {
	return r.filter(ctx, func(Document) bool { return true })
}

func (r *MemoryRepo) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = make(map[string]Document)
	return nil
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Document) bool) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Document, 0)
	for _, d := range r.data {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
