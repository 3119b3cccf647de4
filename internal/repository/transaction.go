package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/arjun-kudva/microbank/internal/domain"
)

const transactionColumns = `id, display_id, customer_id, scheme_type, account_number,
	kind, amount_paise, installments_covered, penalty_paise, payment_mode, remarks,
	status, approver_id, rejection_reason, created_at, resolved_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	return r.insert(ctx, r.db.ExecContext, t)
}

// CreateInTx records a transaction inside an open database transaction, used
// by the immediate maturity payout which records and resolves in one unit.
func (r *TransactionRepository) CreateInTx(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	return r.insert(ctx, tx.ExecContext, t)
}

type execFunc func(ctx context.Context, query string, args ...any) (sql.Result, error)

func (r *TransactionRepository) insert(ctx context.Context, exec execFunc, t *domain.Transaction) error {
	_, err := exec(ctx,
		`INSERT INTO transactions (
			id, display_id, customer_id, scheme_type, account_number,
			kind, amount_paise, installments_covered, penalty_paise, payment_mode,
			remarks, status, approver_id, rejection_reason, created_at, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		t.ID, t.DisplayID, t.CustomerID, t.SchemeType, t.AccountNumber,
		t.Kind, t.AmountPaise, t.InstallmentsCovered, t.PenaltyPaise, t.PaymentMode,
		t.Remarks, t.Status, t.ApproverID, t.RejectionReason, t.CreatedAt, t.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

// GetPendingForUpdate locks a transaction row that must still be pending.
// A resolved row surfaces as a state conflict, which makes double approval
// idempotent-safe.
func (r *TransactionRepository) GetPendingForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Transaction, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetPendingForUpdate: %w", domain.ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("GetPendingForUpdate: %w", err)
	}
	if t.Status != domain.TransactionStatusPending {
		return nil, fmt.Errorf("GetPendingForUpdate: status %s: %w", t.Status, domain.ErrNotPending)
	}
	return t, nil
}

// Resolve marks a pending transaction approved or rejected, exactly once.
func (r *TransactionRepository) Resolve(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.TransactionStatus, approverID uuid.UUID, reason *string, resolvedAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE transactions SET status = $1, approver_id = $2, rejection_reason = $3, resolved_at = $4
		WHERE id = $5 AND status = 'pending'`,
		status, approverID, reason, resolvedAt, id,
	)
	if err != nil {
		return fmt.Errorf("Resolve: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Resolve: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Resolve: %w", domain.ErrNotPending)
	}
	return nil
}

// ListFilter narrows the transaction query surface. Zero values are ignored.
type ListFilter struct {
	CustomerID    uuid.NullUUID
	AccountNumber string
	SchemeType    domain.SchemeType
	Status        domain.TransactionStatus
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

func (r *TransactionRepository) List(ctx context.Context, f ListFilter) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []any

	add := func(clause string, v any) {
		args = append(args, v)
		query += " AND " + clause + "$" + strconv.Itoa(len(args))
	}

	if f.CustomerID.Valid {
		add("customer_id = ", f.CustomerID.UUID)
	}
	if f.AccountNumber != "" {
		add("account_number = ", f.AccountNumber)
	}
	if f.SchemeType != "" {
		add("scheme_type = ", f.SchemeType)
	}
	if f.Status != "" {
		add("status = ", f.Status)
	}
	if f.From != nil {
		add("created_at >= ", *f.From)
	}
	if f.To != nil {
		add("created_at < ", *f.To)
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return txns, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	var approverID uuid.NullUUID
	err := s.Scan(
		&t.ID, &t.DisplayID, &t.CustomerID, &t.SchemeType, &t.AccountNumber,
		&t.Kind, &t.AmountPaise, &t.InstallmentsCovered, &t.PenaltyPaise, &t.PaymentMode,
		&t.Remarks, &t.Status, &approverID, &t.RejectionReason, &t.CreatedAt, &t.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if approverID.Valid {
		t.ApproverID = &approverID.UUID
	}
	return &t, nil
}
