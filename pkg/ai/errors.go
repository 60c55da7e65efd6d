package ai

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxDiagnosticLength caps how much of an upstream error body is kept.
const MaxDiagnosticLength = 500

var (
	ErrUpstream            = errors.New("upstream error")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamUnreachable = errors.New("upstream request failed")
	ErrEmptyCompletion     = fmt.Errorf("%w: upstream content missing", ErrUpstream)
)

// UpstreamError is returned when the generation service answers with a
// non-success status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

// NewUpstreamError builds an UpstreamError, truncating body to
// MaxDiagnosticLength characters.
func NewUpstreamError(statusCode int, body string) *UpstreamError {
	return &UpstreamError{
		StatusCode: statusCode,
		Body:       truncate(body, MaxDiagnosticLength),
	}
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream error: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// ClassifyError maps a failed call made with ctx onto the package sentinels.
// Errors that are already classified pass through unchanged, as does plain
// cancellation by the caller.
func ClassifyError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUpstream) || errors.Is(err, ErrUpstreamTimeout) || errors.Is(err, ErrUpstreamUnreachable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}
