package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arjun-kudva/microbank/internal/domain"
)

const schemeColumns = `account_number, customer_id, scheme_type, opened_on,
	tenure_value, tenure_unit, annual_rate_pct, status, version, created_at, details`

type SchemeRepository struct {
	db *sql.DB
}

func NewSchemeRepository(db *sql.DB) *SchemeRepository {
	return &SchemeRepository{db: db}
}

func (r *SchemeRepository) Create(ctx context.Context, s *domain.SchemeAccount) error {
	details, err := domain.MarshalSchemeDetails(s.Details)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO scheme_accounts (
			account_number, customer_id, scheme_type, opened_on,
			tenure_value, tenure_unit, annual_rate_pct, status, version,
			created_at, details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.AccountNumber, s.CustomerID, s.Type, s.OpenedOn,
		s.TenureValue, s.TenureUnit, s.AnnualRatePct, s.Status, s.Version,
		s.CreatedAt, details,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *SchemeRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.SchemeAccount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+schemeColumns+` FROM scheme_accounts WHERE account_number = $1`,
		accountNumber,
	)
	s, err := scanScheme(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByAccountNumber: %w", domain.ErrSchemeNotFound)
		}
		return nil, fmt.Errorf("GetByAccountNumber: %w", err)
	}
	return s, nil
}

// GetForUpdate re-resolves and locks the scheme row inside tx. The approval
// workflow never trusts a snapshot read outside the transaction.
func (r *SchemeRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, accountNumber string) (*domain.SchemeAccount, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+schemeColumns+` FROM scheme_accounts WHERE account_number = $1 FOR UPDATE`,
		accountNumber,
	)
	s, err := scanScheme(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrSchemeNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return s, nil
}

func (r *SchemeRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.SchemeAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+schemeColumns+` FROM scheme_accounts
		WHERE customer_id = $1 ORDER BY created_at`, customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByCustomer: %w", err)
	}
	defer rows.Close()

	var schemes []domain.SchemeAccount
	for rows.Next() {
		s, err := scanScheme(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByCustomer: scan: %w", err)
		}
		schemes = append(schemes, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByCustomer: rows: %w", err)
	}
	return schemes, nil
}

// ListMaturable returns active deposit-type schemes whose maturity date in
// the details document has passed, for the maturity sweep.
func (r *SchemeRepository) ListMaturable(ctx context.Context, now time.Time, limit int) ([]domain.SchemeAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+schemeColumns+` FROM scheme_accounts
		WHERE scheme_type IN ('fd', 'rd', 'pigmy', 'goal_savings', 'monthly_income')
		  AND status IN ('active', 'irregular')
		  AND (details->>'maturity_date')::timestamptz <= $1
		ORDER BY created_at
		LIMIT $2`, now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListMaturable: %w", err)
	}
	defer rows.Close()

	var schemes []domain.SchemeAccount
	for rows.Next() {
		s, err := scanScheme(rows)
		if err != nil {
			return nil, fmt.Errorf("ListMaturable: scan: %w", err)
		}
		schemes = append(schemes, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListMaturable: rows: %w", err)
	}
	return schemes, nil
}

// Update writes status and details under the optimistic version check.
func (r *SchemeRepository) Update(ctx context.Context, tx *sql.Tx, s *domain.SchemeAccount, newVersion int64) error {
	details, err := domain.MarshalSchemeDetails(s.Details)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE scheme_accounts SET status = $1, details = $2, version = $3
		WHERE account_number = $4 AND version = $5`,
		s.Status, details, newVersion, s.AccountNumber, newVersion-1,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Update: %w", domain.ErrVersionConflict)
	}
	s.Version = newVersion
	return nil
}

func scanScheme(s scanner) (*domain.SchemeAccount, error) {
	var a domain.SchemeAccount
	var details []byte
	err := s.Scan(
		&a.AccountNumber, &a.CustomerID, &a.Type, &a.OpenedOn,
		&a.TenureValue, &a.TenureUnit, &a.AnnualRatePct, &a.Status, &a.Version,
		&a.CreatedAt, &details,
	)
	if err != nil {
		return nil, err
	}
	a.Details, err = domain.UnmarshalSchemeDetails(a.Type, details)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
