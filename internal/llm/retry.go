package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"compliance-backend/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

// StatusCoder is implemented by provider errors that carry an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

type retryingGrader struct {
	base  Grader
	delay time.Duration
}

// WithRetry wraps base with a single retry on transient failures.
func WithRetry(base Grader) Grader {
	if base == nil {
		return nil
	}
	return retryingGrader{base: base, delay: retryBaseDelay}
}

func (r retryingGrader) Grade(ctx context.Context, documentText string) (Verdict, error) {
	v, err := r.base.Grade(ctx, documentText)
	if err == nil || !ShouldRetry(err) {
		return v, err
	}

	telemetry.Warn("llm.retry", map[string]any{"attempt": 1, "error": err.Error()})
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return Verdict{}, ctx.Err()
	}
	return r.base.Grade(ctx, documentText)
}

// ShouldRetry reports whether err looks transient.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrSchemaMismatch) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		code := sc.StatusCode()
		return code == 429 || code >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "unexpected eof")
}
