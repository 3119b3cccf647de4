package scheme

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/logging"
	"github.com/arjun-kudva/microbank/internal/penalty"
	"github.com/arjun-kudva/microbank/internal/schedule"
)

type RecordTransactionRequest struct {
	CustomerID    uuid.UUID
	AccountNumber string
	Kind          domain.TransactionKind
	AmountPaise   int64
	PaymentMode   domain.PaymentMode
	Remarks       string
}

// RecordTransaction validates a money-movement intent and writes it as a
// pending transaction. No balance or account field changes here; the
// financial effect happens only on approval. Any precondition failure
// returns a typed error and leaves no record behind.
func (s *Service) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("RecordTransaction: invalid kind %q: %w", req.Kind, domain.ErrValidation)
	}
	if !req.PaymentMode.IsValid() {
		return nil, fmt.Errorf("RecordTransaction: invalid payment mode %q: %w", req.PaymentMode, domain.ErrValidation)
	}
	if req.AmountPaise <= 0 {
		return nil, fmt.Errorf("RecordTransaction: amount must be positive: %w", domain.ErrValidation)
	}

	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("RecordTransaction: %w", err)
	}

	now := s.clock.Now()

	var (
		schemeType          domain.SchemeType
		installmentsCovered int
		penaltyPaise        int64
	)

	if req.AccountNumber == customer.SavingsAccountNumber {
		schemeType = domain.SchemeTypeSavings
		if err := s.validateSavings(customer, req); err != nil {
			return nil, fmt.Errorf("RecordTransaction: %w", err)
		}
	} else {
		account, err := s.schemes.GetByAccountNumber(ctx, req.AccountNumber)
		if err != nil {
			return nil, fmt.Errorf("RecordTransaction: %w", err)
		}
		if account.CustomerID != req.CustomerID {
			return nil, fmt.Errorf("RecordTransaction: account %s: %w", req.AccountNumber, domain.ErrSchemeNotFound)
		}
		if account.Status.Terminal() && req.Kind != domain.KindMaturityPayout {
			return nil, fmt.Errorf("RecordTransaction: %w", domain.ErrSchemeClosed)
		}
		schemeType = account.Type

		installmentsCovered, penaltyPaise, err = s.validateSchemeIntent(account, req, now)
		if err != nil {
			return nil, fmt.Errorf("RecordTransaction: %w", err)
		}
	}

	displayID, err := s.ids.NextTransactionID(ctx, schemeType)
	if err != nil {
		return nil, fmt.Errorf("RecordTransaction: %w", err)
	}

	txn := &domain.Transaction{
		ID:                  uuid.New(),
		DisplayID:           displayID,
		CustomerID:          req.CustomerID,
		SchemeType:          schemeType,
		AccountNumber:       req.AccountNumber,
		Kind:                req.Kind,
		AmountPaise:         req.AmountPaise,
		InstallmentsCovered: installmentsCovered,
		PenaltyPaise:        penaltyPaise,
		PaymentMode:         req.PaymentMode,
		Remarks:             req.Remarks,
		Status:              domain.TransactionStatusPending,
		CreatedAt:           now,
	}

	if err := s.txns.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("RecordTransaction: %w", err)
	}

	log.Info("transaction recorded",
		"transaction_id", txn.ID,
		"display_id", txn.DisplayID,
		"customer_id", req.CustomerID,
		"account_number", req.AccountNumber,
		"kind", req.Kind,
		"amount", domain.FormatPaise(req.AmountPaise),
	)

	return txn, nil
}

func (s *Service) validateSavings(c *domain.Customer, req RecordTransactionRequest) error {
	switch req.Kind {
	case domain.KindDeposit:
		return nil
	case domain.KindWithdrawal:
		if req.AmountPaise > s.cfg.SavingsWithdrawalLimit {
			return fmt.Errorf("validateSavings: %w", domain.ErrWithdrawalLimit)
		}
		if req.AmountPaise > c.SavingsBalance {
			return fmt.Errorf("validateSavings: %w", domain.ErrInsufficientFunds)
		}
		return nil
	default:
		return fmt.Errorf("validateSavings: kind %s not allowed on savings: %w", req.Kind, domain.ErrValidation)
	}
}

// validateSchemeIntent checks that the amount matches the instrument's
// required value for the kind and that the operation is eligible. It returns
// the installment count and penalty portion for installment payments.
func (s *Service) validateSchemeIntent(a *domain.SchemeAccount, req RecordTransactionRequest, now time.Time) (int, int64, error) {
	switch d := a.Details.(type) {
	case domain.FDDetails:
		return s.validateFDIntent(a, d, req, now)
	case domain.RDDetails:
		return s.validateInstallmentIntent(a, d, req, now)
	case domain.GoalSavingsDetails:
		return s.validateInstallmentIntent(a, d.RDDetails, req, now)
	case domain.PigmyDetails:
		rd := domain.RDDetails{
			InstallmentPaise:    d.DailyDepositPaise,
			InstallmentsPaid:    d.InstallmentsPaid,
			TotalDepositedPaise: d.TotalDepositedPaise,
			NextDueDate:         d.NextDueDate,
			MaturityDate:        d.MaturityDate,
		}
		return s.validateInstallmentIntent(a, rd, req, now)
	case domain.LoanDetails:
		return s.validateLoanIntent(a, d, req)
	case domain.MonthlyIncomeDetails:
		return s.validateMonthlyIncomeIntent(a, d, req, now)
	default:
		return 0, 0, fmt.Errorf("validateSchemeIntent: unsupported details %T: %w", a.Details, domain.ErrValidation)
	}
}

func (s *Service) validateFDIntent(a *domain.SchemeAccount, d domain.FDDetails, req RecordTransactionRequest, now time.Time) (int, int64, error) {
	switch req.Kind {
	case domain.KindDeposit:
		if d.DepositPaid {
			return 0, 0, fmt.Errorf("validateFDIntent: deposit already paid: %w", domain.ErrStateConflict)
		}
		if req.AmountPaise != d.PrincipalPaise {
			return 0, 0, fmt.Errorf("validateFDIntent: deposit amount must be exactly %s: %w",
				domain.PaiseToDecimal(d.PrincipalPaise), domain.ErrValidation)
		}
		return 0, 0, nil
	case domain.KindMaturityPayout:
		payout, err := s.fdPayout(a, d, now)
		if err != nil {
			return 0, 0, fmt.Errorf("validateFDIntent: %w", err)
		}
		if req.AmountPaise != payout {
			return 0, 0, fmt.Errorf("validateFDIntent: payout amount must be exactly %s: %w",
				domain.PaiseToDecimal(payout), domain.ErrValidation)
		}
		return 0, 0, nil
	default:
		return 0, 0, fmt.Errorf("validateFDIntent: kind %s not allowed on fd: %w", req.Kind, domain.ErrValidation)
	}
}

func (s *Service) validateInstallmentIntent(a *domain.SchemeAccount, d domain.RDDetails, req RecordTransactionRequest, now time.Time) (int, int64, error) {
	switch req.Kind {
	case domain.KindDeposit, domain.KindEMI:
		assessment := penalty.AssessInstallment(a.Type, d.NextDueDate, now,
			d.InstallmentPaise, s.cfg.InstallmentGraceDays, s.cfg.LatePenaltyPerPeriod)
		if req.AmountPaise != assessment.RequiredPaise {
			return 0, 0, fmt.Errorf("validateInstallmentIntent: installment payment must be exactly %s: %w",
				domain.PaiseToDecimal(assessment.RequiredPaise), domain.ErrValidation)
		}
		return assessment.InstallmentsOwed, assessment.PenaltyPaise, nil
	case domain.KindMaturityPayout:
		payout, err := s.installmentPayout(a, d, now)
		if err != nil {
			return 0, 0, fmt.Errorf("validateInstallmentIntent: %w", err)
		}
		if req.AmountPaise != payout {
			return 0, 0, fmt.Errorf("validateInstallmentIntent: payout amount must be exactly %s: %w",
				domain.PaiseToDecimal(payout), domain.ErrValidation)
		}
		return 0, 0, nil
	default:
		return 0, 0, fmt.Errorf("validateInstallmentIntent: kind %s not allowed on %s: %w", req.Kind, a.Type, domain.ErrValidation)
	}
}

func (s *Service) validateLoanIntent(a *domain.SchemeAccount, d domain.LoanDetails, req RecordTransactionRequest) (int, int64, error) {
	switch req.Kind {
	case domain.KindLoanDisbursement:
		if d.Disbursed {
			return 0, 0, fmt.Errorf("validateLoanIntent: loan already disbursed: %w", domain.ErrStateConflict)
		}
		if req.AmountPaise != d.PrincipalPaise {
			return 0, 0, fmt.Errorf("validateLoanIntent: disbursement must be exactly %s: %w",
				domain.PaiseToDecimal(d.PrincipalPaise), domain.ErrValidation)
		}
		return 0, 0, nil
	case domain.KindEMI:
		if !d.Disbursed || a.Status != domain.SchemeStatusActive {
			return 0, 0, fmt.Errorf("validateLoanIntent: emi on inactive loan: %w", domain.ErrIneligibleOperation)
		}
		if req.AmountPaise != d.EMIPaise {
			return 0, 0, fmt.Errorf("validateLoanIntent: EMI amount must be exactly %s: %w",
				domain.PaiseToDecimal(d.EMIPaise), domain.ErrValidation)
		}
		return 1, 0, nil
	case domain.KindEMIPrepayment:
		if !d.Disbursed || a.Status != domain.SchemeStatusActive {
			return 0, 0, fmt.Errorf("validateLoanIntent: prepayment on inactive loan: %w", domain.ErrIneligibleOperation)
		}
		if err := penalty.CheckLoanPrepayment(d.OutstandingPaise, req.AmountPaise); err != nil {
			return 0, 0, fmt.Errorf("validateLoanIntent: %w", err)
		}
		return 0, 0, nil
	default:
		return 0, 0, fmt.Errorf("validateLoanIntent: kind %s not allowed on loan: %w", req.Kind, domain.ErrValidation)
	}
}

func (s *Service) validateMonthlyIncomeIntent(a *domain.SchemeAccount, d domain.MonthlyIncomeDetails, req RecordTransactionRequest, now time.Time) (int, int64, error) {
	switch req.Kind {
	case domain.KindDeposit:
		if a.Status != domain.SchemeStatusPending {
			return 0, 0, fmt.Errorf("validateMonthlyIncomeIntent: deposit already paid: %w", domain.ErrStateConflict)
		}
		if req.AmountPaise != d.DepositPaise {
			return 0, 0, fmt.Errorf("validateMonthlyIncomeIntent: deposit must be exactly %s: %w",
				domain.PaiseToDecimal(d.DepositPaise), domain.ErrValidation)
		}
		return 0, 0, nil
	case domain.KindWithdrawal:
		// Monthly interest payout. One payout per elapsed month, never
		// beyond the tenure.
		if a.Status != domain.SchemeStatusActive {
			return 0, 0, fmt.Errorf("validateMonthlyIncomeIntent: payout on inactive scheme: %w", domain.ErrIneligibleOperation)
		}
		if d.PayoutsMade >= monthlyPayoutsEntitled(a, now) {
			return 0, 0, fmt.Errorf("validateMonthlyIncomeIntent: monthly payout not yet due: %w", domain.ErrIneligibleOperation)
		}
		if req.AmountPaise != d.MonthlyPayoutPaise {
			return 0, 0, fmt.Errorf("validateMonthlyIncomeIntent: monthly payout must be exactly %s: %w",
				domain.PaiseToDecimal(d.MonthlyPayoutPaise), domain.ErrValidation)
		}
		return 0, 0, nil
	case domain.KindMaturityPayout:
		if a.Status == domain.SchemeStatusPending {
			return 0, 0, fmt.Errorf("validateMonthlyIncomeIntent: deposit not paid: %w", domain.ErrIneligibleOperation)
		}
		if now.Before(d.MaturityDate) {
			return 0, 0, fmt.Errorf("validateMonthlyIncomeIntent: scheme not yet matured: %w", domain.ErrIneligibleOperation)
		}
		if req.AmountPaise != d.DepositPaise {
			return 0, 0, fmt.Errorf("validateMonthlyIncomeIntent: maturity payout must be exactly %s: %w",
				domain.PaiseToDecimal(d.DepositPaise), domain.ErrValidation)
		}
		return 0, 0, nil
	default:
		return 0, 0, fmt.Errorf("validateMonthlyIncomeIntent: kind %s not allowed on monthly income: %w", req.Kind, domain.ErrValidation)
	}
}

// monthlyPayoutsEntitled is how many monthly interest payouts the account
// / has earned so far: whole months since opening, capped at the tenure.
func monthlyPayoutsEntitled(a *domain.SchemeAccount, now time.Time) int {
	entitled := schedule.MonthsElapsed(a.OpenedOn, now)
	if tenure := schedule.TenureMonths(a.TenureValue, a.TenureUnit); entitled > tenure {
		entitled = tenure
	}
	return entitled
}
