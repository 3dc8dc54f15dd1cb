package object

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotExist is returned when no object is stored at the key.
	ErrNotExist = errors.New("object does not exist")
	// ErrPreconditionFailed is returned when a conditional write loses a race.
	ErrPreconditionFailed = errors.New("object version precondition failed")
)

// ObjectStore defines the contract for saving and retrieving binary objects.
// Keys are slash-separated and relative to the store root.
type ObjectStore interface {
	// Put writes r at key and returns the object's addressable path.
	Put(ctx context.Context, key string, contentType string, r io.Reader) (path string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// GetVersioned reads the whole object along with an opaque version token.
	GetVersioned(ctx context.Context, key string) (data []byte, version string, err error)
	// PutIfVersion writes data only if the stored version still equals
	// version; an empty version requires that the object does not exist.
	PutIfVersion(ctx context.Context, key string, contentType string, data []byte, version string) (newVersion string, err error)
}
