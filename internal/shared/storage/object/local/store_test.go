package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"compliance-backend/internal/shared/storage/object"
)

func TestPutAndOpen(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	path, err := store.Put(ctx, "organization/org-1/user-1/raw_documents/doc-1.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasSuffix(path, "doc-1.pdf") {
		t.Fatalf("unexpected path %q", path)
	}

	rc, err := store.Open(ctx, "organization/org-1/user-1/raw_documents/doc-1.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestOpenMissing(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "missing.json"); !errors.Is(err, object.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestRejectsEscapingKeys(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Put(context.Background(), "../outside", "", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for escaping key")
	}
}

func TestPutIfVersion(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	key := "organization/org-1/admin_metadata.json"

	v1, err := store.PutIfVersion(ctx, key, "application/json", []byte("[]"), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.PutIfVersion(ctx, key, "application/json", []byte("[]"), ""); !errors.Is(err, object.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure on second create, got %v", err)
	}

	v2, err := store.PutIfVersion(ctx, key, "application/json", []byte(`[{"id":"u1"}]`), v1)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := store.PutIfVersion(ctx, key, "application/json", []byte(`[]`), v1); !errors.Is(err, object.ErrPreconditionFailed) {
		t.Fatalf("expected stale version to fail, got %v", err)
	}

	data, version, err := store.GetVersioned(ctx, key)
	if err != nil {
		t.Fatalf("GetVersioned: %v", err)
	}
	if version != v2 || string(data) != `[{"id":"u1"}]` {
		t.Fatalf("unexpected state %q %q", data, version)
	}
}

func TestPutIfVersionMissingWithVersion(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.PutIfVersion(context.Background(), "a.json", "", []byte("{}"), "abc"); !errors.Is(err, object.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}
}
