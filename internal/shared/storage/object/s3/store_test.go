package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"compliance-backend/internal/shared/storage/object"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "organization/o/admin_metadata.json", want: "organization/o/admin_metadata.json"},
		{name: "simple prefix", prefix: "root", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.pdf", want: "root/user/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.pdf", want: "root/sub/user/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeS3 struct {
	objects map[string][]byte
	etags   map[string]string
	puts    []*s3.PutObjectInput
	seq     int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, etags: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	key := aws.ToString(in.Key)
	current, exists := f.etags[key]
	if in.IfNoneMatch != nil && exists {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "At least one of the pre-conditions you specified did not hold"}
	}
	if in.IfMatch != nil && (!exists || aws.ToString(in.IfMatch) != current) {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed"}
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.seq++
	etag := fmt.Sprintf(`"etag-%d"`, f.seq)
	f.objects[key] = data
	f.etags[key] = etag
	return &s3.PutObjectOutput{ETag: aws.String(etag)}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	data, ok := f.objects[key]
	if !ok {
		return nil, &s3types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data)), ETag: aws.String(f.etags[key])}, nil
}

func TestPutReturnsURIAndEncrypts(t *testing.T) {
	fake := newFakeS3()
	store := NewWithClient(fake, "carelumi-data", "", "kms-key")

	path, err := store.Put(context.Background(), "organization/o/u/raw_documents/d.pdf", "application/pdf", strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if path != "s3://carelumi-data/organization/o/u/raw_documents/d.pdf" {
		t.Fatalf("unexpected path %q", path)
	}
	if got := fake.puts[0].ServerSideEncryption; got != s3types.ServerSideEncryptionAwsKms {
		t.Fatalf("expected kms encryption, got %q", got)
	}
}

func TestConditionalWrites(t *testing.T) {
	fake := newFakeS3()
	store := NewWithClient(fake, "bucket", "root", "")
	ctx := context.Background()
	key := "organization/o/admin_metadata.json"

	if _, _, err := store.GetVersioned(ctx, key); !errors.Is(err, object.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}

	v1, err := store.PutIfVersion(ctx, key, "application/json", []byte("[]"), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if aws.ToString(fake.puts[0].IfNoneMatch) != "*" {
		t.Fatalf("expected If-None-Match *")
	}
	if _, err := store.PutIfVersion(ctx, key, "application/json", []byte("[]"), ""); !errors.Is(err, object.ErrPreconditionFailed) {
		t.Fatalf("expected precondition failure, got %v", err)
	}

	data, version, err := store.GetVersioned(ctx, key)
	if err != nil {
		t.Fatalf("GetVersioned: %v", err)
	}
	if string(data) != "[]" || version != v1 {
		t.Fatalf("unexpected read %q %q", data, version)
	}
	if _, ok := fake.objects["root/"+key]; !ok {
		t.Fatalf("expected prefixed key to be written")
	}

	if _, err := store.PutIfVersion(ctx, key, "application/json", []byte("[1]"), `"stale"`); !errors.Is(err, object.ErrPreconditionFailed) {
		t.Fatalf("expected stale etag to fail, got %v", err)
	}
	if _, err := store.PutIfVersion(ctx, key, "application/json", []byte("[1]"), v1); err != nil {
		t.Fatalf("update with current etag: %v", err)
	}
}
