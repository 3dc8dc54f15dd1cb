package sessions

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidToken is returned for unknown, revoked, or expired tokens.
var ErrInvalidToken = errors.New("invalid session token")

const maxCreateAttempts = 5

// Token is an opaque positive integer handed to clients after login.
type Token int64

// Store maps session tokens to user IDs.
type Store interface {
	Create(ctx context.Context, userID string) (Token, error)
	Resolve(ctx context.Context, token Token) (string, error)
	Revoke(ctx context.Context, token Token) error
}

// newToken draws a uniformly random positive 63-bit token.
func newToken() (Token, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random token: %w", err)
	}
	v := int64(binary.BigEndian.Uint64(b[:]) & math.MaxInt64)
	if v == 0 {
		v = 1
	}
	return Token(v), nil
}
