// Package service hosts background workers that run beside the HTTP
// surface.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/arjun-kudva/microbank/internal/clock"
	"github.com/arjun-kudva/microbank/internal/domain"
)

type sweepSchemeRepo interface {
	ListMaturable(ctx context.Context, now time.Time, limit int) ([]domain.SchemeAccount, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, accountNumber string) (*domain.SchemeAccount, error)
	Update(ctx context.Context, tx *sql.Tx, s *domain.SchemeAccount, newVersion int64) error
}

// MaturityProcessor periodically moves deposit-type schemes whose maturity
// date has passed into the matured state, so payouts become eligible without
// waiting for the next customer-driven transaction to notice the crossing.
type MaturityProcessor struct {
	schemes  sweepSchemeRepo
	db       *sql.DB
	clock    clock.Clock
	logger   *slog.Logger
	interval time.Duration
}

func NewMaturityProcessor(schemes sweepSchemeRepo, db *sql.DB, clk clock.Clock, logger *slog.Logger, interval time.Duration) *MaturityProcessor {
	return &MaturityProcessor{
		schemes:  schemes,
		db:       db,
		clock:    clk,
		logger:   logger,
		interval: interval,
	}
}

func (p *MaturityProcessor) Start(ctx context.Context) {
	p.logger.Info("maturity processor started", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("maturity processor stopped")
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *MaturityProcessor) sweep(ctx context.Context) {
	accounts, err := p.schemes.ListMaturable(ctx, p.clock.Now(), 50)
	if err != nil {
		p.logger.Error("failed to list maturable schemes", "error", err)
		return
	}

	for _, a := range accounts {
		if err := p.mature(ctx, a.AccountNumber); err != nil {
			p.logger.Error("failed to mature scheme",
				"account_number", a.AccountNumber,
				"error", err,
			)
			continue
		}
		p.logger.Info("scheme matured", "account_number", a.AccountNumber)
	}
}

func (p *MaturityProcessor) mature(ctx context.Context, accountNumber string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mature: begin tx: %w", err)
	}
	defer tx.Rollback()

	a, err := p.schemes.GetForUpdate(ctx, tx, accountNumber)
	if err != nil {
		return fmt.Errorf("mature: %w", err)
	}
	if a.Status.Terminal() {
		// A concurrent approval already moved it on.
		return nil
	}
	if !a.Status.CanTransition(domain.SchemeStatusMatured) {
		return fmt.Errorf("mature: %s -> matured: %w", a.Status, domain.ErrStateConflict)
	}
	a.Status = domain.SchemeStatusMatured

	if err := p.schemes.Update(ctx, tx, a, a.Version+1); err != nil {
		return fmt.Errorf("mature: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mature: commit: %w", err)
	}
	return nil
}
