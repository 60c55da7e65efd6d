package analysis

import (
	"context"
	"time"
)

// Rejected is generator output that could not be turned into a valid graph.
type Rejected struct {
	Raw       string    `json:"raw"`
	Reason    string    `json:"reason"`
	Adapter   string    `json:"adapter"`
	Tier      string    `json:"tier"`
	CharCount int       `json:"char_count"`
	At        time.Time `json:"at"`
}

// Quarantine keeps rejected output for later inspection. It is never read
// back by the service.
type Quarantine interface {
	Store(ctx context.Context, r Rejected) error
}

// NoopQuarantine discards everything.
type NoopQuarantine struct{}

func (NoopQuarantine) Store(context.Context, Rejected) error { return nil }
