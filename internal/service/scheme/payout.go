package scheme

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/interest"
	"github.com/arjun-kudva/microbank/internal/logging"
	"github.com/arjun-kudva/microbank/internal/penalty"
)

// SystemApproverID marks payouts the engine resolves itself, without a
// supervisor decision.
var SystemApproverID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// fdPayout computes what closing an FD pays today: the full maturity amount
// once the term has elapsed, otherwise the penalty-adjusted figure. An FD
// whose deposit was never collected pays nothing.
func (s *Service) fdPayout(a *domain.SchemeAccount, d domain.FDDetails, now time.Time) (int64, error) {
	if !d.DepositPaid {
		return 0, fmt.Errorf("fdPayout: deposit not paid: %w", domain.ErrIneligibleOperation)
	}
	if !now.Before(d.MaturityDate) {
		return interest.FDMaturity(d.PrincipalPaise, a.AnnualRatePct, a.TenureValue, a.TenureUnit)
	}
	return penalty.FDPremature(d.PrincipalPaise, a.AnnualRatePct, a.TenureValue, a.TenureUnit, a.OpenedOn, now)
}

// installmentPayout computes the closing payout for RD, GoalSavings and
// Pigmy accounts (Pigmy arrives with its fields mapped onto the RD shape).
// The figure is always valued from installments actually collected.
func (s *Service) installmentPayout(a *domain.SchemeAccount, d domain.RDDetails, now time.Time) (int64, error) {
	if d.InstallmentsPaid == 0 {
		return 0, fmt.Errorf("installmentPayout: no installments paid: %w", domain.ErrIneligibleOperation)
	}
	if a.Type == domain.SchemeTypePigmy {
		return penalty.PigmyPremature(d.TotalDepositedPaise, d.InstallmentPaise, a.AnnualRatePct, a.TenureValue, a.TenureUnit, d.InstallmentsPaid, a.OpenedOn, now)
	}
	return penalty.RDPremature(d.InstallmentPaise, a.AnnualRatePct, a.TenureValue, a.TenureUnit, d.InstallmentsPaid, a.OpenedOn, now)
}

// PayoutMaturity closes an eligible scheme and credits the computed payout
// to the customer's savings balance immediately, recording an approved
// transaction in the same atomic unit. It bypasses the pending step: the
// amount is system-computed, so there is nothing for a supervisor to judge.
// Premature requests fail with the penalty engine's eligibility error and
// leave no record.
func (s *Service) PayoutMaturity(ctx context.Context, customerID uuid.UUID, accountNumber string) (int64, *domain.Transaction, error) {
	log := logging.FromContext(ctx)

	account, err := s.schemes.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return 0, nil, fmt.Errorf("PayoutMaturity: %w", err)
	}
	if account.CustomerID != customerID {
		return 0, nil, fmt.Errorf("PayoutMaturity: account %s: %w", accountNumber, domain.ErrSchemeNotFound)
	}

	displayID, err := s.ids.NextTransactionID(ctx, account.Type)
	if err != nil {
		return 0, nil, fmt.Errorf("PayoutMaturity: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("PayoutMaturity: begin tx: %w", err)
	}
	defer tx.Rollback()

	customer, err := s.customers.GetForUpdate(ctx, tx, customerID)
	if err != nil {
		return 0, nil, fmt.Errorf("PayoutMaturity: %w", err)
	}
	account, err = s.schemes.GetForUpdate(ctx, tx, accountNumber)
	if err != nil {
		return 0, nil, fmt.Errorf("PayoutMaturity: %w", err)
	}
	if account.Status == domain.SchemeStatusClosed {
		return 0, nil, fmt.Errorf("PayoutMaturity: %w", domain.ErrSchemeClosed)
	}

	now := s.clock.Now()
	payout, err := s.payoutAmount(account, now)
	if err != nil {
		return 0, nil, fmt.Errorf("PayoutMaturity: %w", err)
	}

	approver := SystemApproverID
	txn := &domain.Transaction{
		ID:            uuid.New(),
		DisplayID:     displayID,
		CustomerID:    customerID,
		SchemeType:    account.Type,
		AccountNumber: accountNumber,
		Kind:          domain.KindMaturityPayout,
		AmountPaise:   payout,
		PaymentMode:   domain.PaymentModeCash,
		Remarks:       "maturity payout",
		Status:        domain.TransactionStatusApproved,
		ApproverID:    &approver,
		CreatedAt:     now,
		ResolvedAt:    &now,
	}
	if err := s.txns.CreateInTx(ctx, tx, txn); err != nil {
		return 0, nil, fmt.Errorf("PayoutMaturity: %w", err)
	}

	if err := s.applySchemeEffect(ctx, tx, txn, customer, account, now); err != nil {
		return 0, nil, fmt.Errorf("PayoutMaturity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, fmt.Errorf("PayoutMaturity: commit: %w", err)
	}

	log.Info("maturity payout",
		"transaction_id", txn.ID,
		"account_number", accountNumber,
		"customer_id", customerID,
		"amount", domain.FormatPaise(payout),
	)

	return payout, txn, nil
}

// payoutAmount computes the closing payout for any instrument.
func (s *Service) payoutAmount(a *domain.SchemeAccount, now time.Time) (int64, error) {
	switch d := a.Details.(type) {
	case domain.FDDetails:
		return s.fdPayout(a, d, now)
	case domain.RDDetails:
		return s.installmentPayout(a, d, now)
	case domain.GoalSavingsDetails:
		return s.installmentPayout(a, d.RDDetails, now)
	case domain.PigmyDetails:
		rd := domain.RDDetails{
			InstallmentPaise:    d.DailyDepositPaise,
			InstallmentsPaid:    d.InstallmentsPaid,
			TotalDepositedPaise: d.TotalDepositedPaise,
			MaturityDate:        d.MaturityDate,
		}
		return s.installmentPayout(a, rd, now)
	case domain.MonthlyIncomeDetails:
		if a.Status == domain.SchemeStatusPending {
			return 0, fmt.Errorf("payoutAmount: deposit not paid: %w", domain.ErrIneligibleOperation)
		}
		if now.Before(d.MaturityDate) {
			return 0, fmt.Errorf("payoutAmount: not yet matured: %w", domain.ErrIneligibleOperation)
		}
		return d.DepositPaise, nil
	case domain.LoanDetails:
		return 0, fmt.Errorf("payoutAmount: loans have no maturity payout: %w", domain.ErrIneligibleOperation)
	default:
		return 0, fmt.Errorf("payoutAmount: unsupported details %T: %w", a.Details, domain.ErrValidation)
	}
}
