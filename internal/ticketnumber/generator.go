// Package ticketnumber builds human-readable ticket labels from a monotonic sequence.
package ticketnumber

import (
	"context"
	"fmt"
	"time"
)

// DefaultPrefix leads every generated number.
const DefaultPrefix = "TIC"

// SequenceStore hands out strictly increasing values.
type SequenceStore interface {
	NextSequence(ctx context.Context) (int64, error)
}

// Clock allows deterministic testing.
type Clock interface{ Now() time.Time }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Generator produces numbers shaped PREFIX-YYYYMMDD-NNNNNN.
type Generator struct {
	prefix string
	store  SequenceStore
	clock  Clock
}

// NewGenerator builds a generator. A nil clock uses UTC wall time.
func NewGenerator(prefix string, store SequenceStore, clock Clock) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Generator{prefix: prefix, store: store, clock: clock}
}

// Next returns the next ticket number.
func (g *Generator) Next(ctx context.Context) (string, error) {
	seq, err := g.store.NextSequence(ctx)
	if err != nil {
		return "", fmt.Errorf("next ticket sequence: %w", err)
	}
	return Format(g.prefix, g.clock.Now(), seq), nil
}

// Format renders a ticket number. Sequences wider than six digits are kept whole.
func Format(prefix string, at time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%06d", prefix, at.Format("20060102"), seq)
}
