package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	"compliance-backend/internal/shared/telemetry"
)

type memoryEntry struct {
	userID    string
	expiresAt time.Time
}

// MemoryStore keeps sessions in process with a per-token TTL.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[Token]memoryEntry
	now     func() time.Time
	// gen is swappable in tests to force collisions.
	gen func() (Token, error)
}

// NewMemoryStore returns a MemoryStore; a non-positive ttl disables expiry.
func NewMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[Token]memoryEntry),
		now:     now,
		gen:     newToken,
	}
}

func (s *MemoryStore) Create(ctx context.Context, userID string) (Token, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		token, err := s.gen()
		if err != nil {
			return 0, err
		}
		if existing, ok := s.entries[token]; ok && !s.expired(existing) {
			continue
		}
		entry := memoryEntry{userID: userID}
		if s.ttl > 0 {
			entry.expiresAt = s.now().Add(s.ttl)
		}
		s.entries[token] = entry
		return token, nil
	}
	return 0, errors.New("could not allocate unique session token")
}

func (s *MemoryStore) Resolve(ctx context.Context, token Token) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[token]
	if !ok {
		return "", ErrInvalidToken
	}
	if s.expired(entry) {
		delete(s.entries, token)
		return "", ErrInvalidToken
	}
	return entry.userID, nil
}

func (s *MemoryStore) Revoke(ctx context.Context, token Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}

// Reset drops every session.
func (s *MemoryStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Token]memoryEntry)
	return nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, entry := range s.entries {
		if s.expired(entry) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps expired sessions every interval until ctx is done.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					telemetry.Info("sessions.sweep", map[string]any{"removed": n})
				}
			}
		}
	}()
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt)
}

var _ Store = (*MemoryStore)(nil)
