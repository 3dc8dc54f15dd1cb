package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Service encapsulates health-related checks.
type Service struct {
	// DB is nil when the process runs on in-memory repositories.
	DB *sql.DB
}

// NewService constructs a new health service.
func NewService(db *sql.DB) *Service {
	return &Service{DB: db}
}

// Status reports overall health and the state of each dependency.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	ok := true
	database := "memory"
	if s != nil && s.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.DB.PingContext(pingCtx); err != nil {
			database = "unavailable"
			ok = false
		} else {
			database = "ok"
		}
	}
	return map[string]any{"ok": ok, "database": database}, ok
}
