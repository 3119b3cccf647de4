package txnid

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun-kudva/microbank/internal/clock"
	"github.com/arjun-kudva/microbank/internal/domain"
)

type stubSequencer struct {
	counts map[string]int64
	calls  []string
}

func (s *stubSequencer) Next(_ context.Context, scope, day string) (int64, error) {
	if s.counts == nil {
		s.counts = make(map[string]int64)
	}
	key := scope + "|" + day
	s.counts[key]++
	s.calls = append(s.calls, key)
	return s.counts[key], nil
}

func TestNextTransactionID(t *testing.T) {
	seq := &stubSequencer{}
	g := NewGenerator(seq, clock.Fixed(time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)))

	id, err := g.NextTransactionID(context.Background(), domain.SchemeTypeRD)
	require.NoError(t, err)
	assert.Equal(t, "TXN-RD-20260829-0001", id)

	id, err = g.NextTransactionID(context.Background(), domain.SchemeTypeRD)
	require.NoError(t, err)
	assert.Equal(t, "TXN-RD-20260829-0002", id)

	// Counters are scoped per instrument, so FD restarts at one.
	id, err = g.NextTransactionID(context.Background(), domain.SchemeTypeFD)
	require.NoError(t, err)
	assert.Equal(t, "TXN-FD-20260829-0001", id)
}

func TestNextAccountNumber(t *testing.T) {
	seq := &stubSequencer{}
	g := NewGenerator(seq, clock.Fixed(time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)))

	num, err := g.NextAccountNumber(context.Background(), domain.SchemeTypePigmy)
	require.NoError(t, err)
	assert.Equal(t, "PG-20260829-0001", num)

	// Account and transaction counters do not share scope.
	_, err = g.NextTransactionID(context.Background(), domain.SchemeTypePigmy)
	require.NoError(t, err)
	num, err = g.NextAccountNumber(context.Background(), domain.SchemeTypePigmy)
	require.NoError(t, err)
	assert.Equal(t, "PG-20260829-0002", num)
}
