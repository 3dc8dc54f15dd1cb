// Package staffindex maintains the per-organization staff roster stored as
// a JSON array in object storage.
package staffindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"compliance-backend/internal/shared/storage/object"
	"compliance-backend/internal/shared/telemetry"
)

const (
	contentType       = "application/json"
	defaultMaxRetries = 5
)

// ErrConflict is returned when Append exhausts its retries.
var ErrConflict = errors.New("staff index update conflict")

// Entry is the public profile of one user in the index.
type Entry struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Permission     string `json:"permission"`
	OrganizationID string `json:"organization_id"`
}

// Index reads and writes admin_metadata.json documents.
type Index struct {
	Store      object.ObjectStore
	MaxRetries int
}

func New(store object.ObjectStore) *Index {
	return &Index{Store: store, MaxRetries: defaultMaxRetries}
}

// Key returns the object key of an organization's index.
func Key(orgID string) string {
	return "organization/" + orgID + "/admin_metadata.json"
}

// Read returns the organization's entries, creating an empty index if absent.
func (i *Index) Read(ctx context.Context, orgID string) ([]Entry, error) {
	entries, _, err := i.readVersioned(ctx, orgID)
	return entries, err
}

// Write replaces the organization's index unconditionally.
func (i *Index) Write(ctx context.Context, orgID string, entries []Entry) error {
	data, err := encode(entries)
	if err != nil {
		return err
	}
	if _, err := i.Store.Put(ctx, Key(orgID), contentType, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write staff index: %w", err)
	}
	return nil
}

// Append adds entry with optimistic concurrency, retrying on lost races.
// An entry whose ID is already present is replaced rather than duplicated.
func (i *Index) Append(ctx context.Context, orgID string, entry Entry) error {
	retries := i.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}

	for attempt := 1; attempt <= retries; attempt++ {
		entries, version, err := i.readVersioned(ctx, orgID)
		if err != nil {
			return err
		}

		entries = upsert(entries, entry)
		data, err := encode(entries)
		if err != nil {
			return err
		}

		_, err = i.Store.PutIfVersion(ctx, Key(orgID), contentType, data, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, object.ErrPreconditionFailed) {
			return fmt.Errorf("append staff index: %w", err)
		}
		telemetry.Warn("staffindex.conflict", map[string]any{
			"organization_id": orgID,
			"attempt":         attempt,
		})
	}
	return ErrConflict
}

func (i *Index) readVersioned(ctx context.Context, orgID string) ([]Entry, string, error) {
	data, version, err := i.Store.GetVersioned(ctx, Key(orgID))
	if errors.Is(err, object.ErrNotExist) {
		version, err = i.Store.PutIfVersion(ctx, Key(orgID), contentType, []byte("[]"), "")
		if errors.Is(err, object.ErrPreconditionFailed) {
			// Another writer created it first; read theirs.
			data, version, err = i.Store.GetVersioned(ctx, Key(orgID))
		} else if err == nil {
			return []Entry{}, version, nil
		}
	}
	if err != nil {
		return nil, "", fmt.Errorf("read staff index: %w", err)
	}

	var entries []Entry
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, "", fmt.Errorf("decode staff index: %w", err)
		}
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, version, nil
}

func upsert(entries []Entry, entry Entry) []Entry {
	for idx := range entries {
		if entries[idx].ID == entry.ID {
			entries[idx] = entry
			return entries
		}
	}
	return append(entries, entry)
}

func encode(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode staff index: %w", err)
	}
	return data, nil
}
