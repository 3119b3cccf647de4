// Package scheme implements the transaction and approval engine: recording
// pending transaction intents, the supervisor decision workflow, and the
// atomic application of approved money movement to scheme accounts and the
// customer's savings balance.
package scheme

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arjun-kudva/microbank/internal/clock"
	"github.com/arjun-kudva/microbank/internal/config"
	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/repository"
)

type customerRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Customer, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance, newVersion int64) error
}

type schemeRepo interface {
	Create(ctx context.Context, s *domain.SchemeAccount) error
	GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.SchemeAccount, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, accountNumber string) (*domain.SchemeAccount, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.SchemeAccount, error)
	Update(ctx context.Context, tx *sql.Tx, s *domain.SchemeAccount, newVersion int64) error
}

type transactionRepo interface {
	Create(ctx context.Context, t *domain.Transaction) error
	CreateInTx(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetPendingForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Transaction, error)
	Resolve(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.TransactionStatus, approverID uuid.UUID, reason *string, resolvedAt time.Time) error
	List(ctx context.Context, f repository.ListFilter) ([]domain.Transaction, error)
}

type ledgerRepo interface {
	Create(ctx context.Context, tx *sql.Tx, e *domain.LedgerEntry) error
}

type idGenerator interface {
	NextTransactionID(ctx context.Context, t domain.SchemeType) (string, error)
	NextAccountNumber(ctx context.Context, t domain.SchemeType) (string, error)
}

type Service struct {
	customers customerRepo
	schemes   schemeRepo
	txns      transactionRepo
	ledger    ledgerRepo
	ids       idGenerator
	db        *sql.DB
	clock     clock.Clock
	cfg       *config.Config
}

func NewService(
	customers customerRepo,
	schemes schemeRepo,
	txns transactionRepo,
	ledger ledgerRepo,
	ids idGenerator,
	db *sql.DB,
	clk clock.Clock,
	cfg *config.Config,
) *Service {
	return &Service{
		customers: customers,
		schemes:   schemes,
		txns:      txns,
		ledger:    ledger,
		ids:       ids,
		db:        db,
		clock:     clk,
		cfg:       cfg,
	}
}

func (s *Service) GetTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	t, err := s.txns.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetTransactionByID: %w", err)
	}
	return t, nil
}

func (s *Service) ListTransactions(ctx context.Context, f repository.ListFilter) ([]domain.Transaction, error) {
	txns, err := s.txns.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return txns, nil
}

func (s *Service) GetScheme(ctx context.Context, accountNumber string) (*domain.SchemeAccount, error) {
	sc, err := s.schemes.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("GetScheme: %w", err)
	}
	return sc, nil
}

func (s *Service) ListSchemes(ctx context.Context, customerID uuid.UUID) ([]domain.SchemeAccount, error) {
	schemes, err := s.schemes.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("ListSchemes: %w", err)
	}
	return schemes, nil
}

// writeSavingsEntry records the audit trail for a savings-balance delta
// inside the mutation's transaction.
func (s *Service) writeSavingsEntry(ctx context.Context, tx *sql.Tx, txnID uuid.UUID, c *domain.Customer, entryType domain.EntryType, amountPaise, balanceAfter int64, now time.Time) error {
	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		TransactionID: txnID,
		CustomerID:    c.ID,
		EntryType:     entryType,
		AmountPaise:   amountPaise,
		BalanceBefore: c.SavingsBalance,
		BalanceAfter:  balanceAfter,
		CreatedAt:     now,
	}
	if err := s.ledger.Create(ctx, tx, entry); err != nil {
		return fmt.Errorf("writeSavingsEntry: %w", err)
	}
	return nil
}
