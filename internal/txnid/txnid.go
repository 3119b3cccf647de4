// Package txnid issues human-readable, sortable display identifiers for
// transactions and scheme accounts. Sequence numbers come from an atomic
// per-day-per-scope counter, never from counting existing rows, so
// concurrent requests cannot mint duplicates.
package txnid

import (
	"context"
	"fmt"

	"github.com/arjun-kudva/microbank/internal/clock"
	"github.com/arjun-kudva/microbank/internal/domain"
)

// Sequencer returns the next value of a named daily counter, starting at 1.
type Sequencer interface {
	Next(ctx context.Context, scope, day string) (int64, error)
}

type Generator struct {
	seq   Sequencer
	clock clock.Clock
}

func NewGenerator(seq Sequencer, clk clock.Clock) *Generator {
	return &Generator{seq: seq, clock: clk}
}

// NextTransactionID produces TXN-<INSTRUMENT>-<YYYYMMDD>-<seq> with a
// four-digit day-scoped sequence.
func (g *Generator) NextTransactionID(ctx context.Context, t domain.SchemeType) (string, error) {
	day := g.clock.Now().Format("20060102")
	seq, err := g.seq.Next(ctx, "txn:"+string(t), day)
	if err != nil {
		return "", fmt.Errorf("NextTransactionID: %w", err)
	}
	return fmt.Sprintf("TXN-%s-%s-%04d", t.AccountPrefix(), day, seq), nil
}

// NextAccountNumber produces <PREFIX>-<YYYYMMDD>-<seq> for new scheme
// accounts, e.g. FD-20260829-0001.
func (g *Generator) NextAccountNumber(ctx context.Context, t domain.SchemeType) (string, error) {
	day := g.clock.Now().Format("20060102")
	seq, err := g.seq.Next(ctx, "acct:"+string(t), day)
	if err != nil {
		return "", fmt.Errorf("NextAccountNumber: %w", err)
	}
	return fmt.Sprintf("%s-%s-%04d", t.AccountPrefix(), day, seq), nil
}
