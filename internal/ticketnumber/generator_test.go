package ticketnumber

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type counterStore struct {
	n   int64
	err error
}

func (s *counterStore) NextSequence(context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.n++
	return s.n, nil
}

func TestNextIsMonotonicAndDated(t *testing.T) {
	clk := fixedClock{t: time.Date(2025, 10, 4, 23, 59, 0, 0, time.UTC)}
	g := NewGenerator("", &counterStore{}, clk)

	first, err := g.Next(context.Background())
	require.NoError(t, err)
	second, err := g.Next(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "TIC-20251004-000001", first)
	assert.Equal(t, "TIC-20251004-000002", second)
}

func TestNextPropagatesStoreErrors(t *testing.T) {
	g := NewGenerator("TIC", &counterStore{err: errors.New("down")}, nil)

	_, err := g.Next(context.Background())
	assert.ErrorContains(t, err, "down")
}

func TestFormatKeepsWideSequences(t *testing.T) {
	at := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "TIC-20240102-1234567", Format("TIC", at, 1234567))
}
