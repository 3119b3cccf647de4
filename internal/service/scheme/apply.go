package scheme

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/interest"
	"github.com/arjun-kudva/microbank/internal/penalty"
	"github.com/arjun-kudva/microbank/internal/schedule"
)

// applySavings mutates the customer's savings balance for an approved
// savings deposit or withdrawal, with the audit entry in the same tx.
func (s *Service) applySavings(ctx context.Context, tx *sql.Tx, txn *domain.Transaction, c *domain.Customer, now time.Time) error {
	var (
		newBalance int64
		entryType  domain.EntryType
	)
	switch txn.Kind {
	case domain.KindDeposit:
		newBalance = c.SavingsBalance + txn.AmountPaise
		entryType = domain.EntryTypeCredit
	case domain.KindWithdrawal:
		// Re-check under the lock: the balance may have shrunk since the
		// intent was recorded.
		if txn.AmountPaise > c.SavingsBalance {
			return fmt.Errorf("applySavings: %w", domain.ErrInsufficientFunds)
		}
		newBalance = c.SavingsBalance - txn.AmountPaise
		entryType = domain.EntryTypeDebit
	default:
		return fmt.Errorf("applySavings: kind %s: %w", txn.Kind, domain.ErrValidation)
	}

	if err := s.writeSavingsEntry(ctx, tx, txn.ID, c, entryType, txn.AmountPaise, newBalance, now); err != nil {
		return fmt.Errorf("applySavings: %w", err)
	}
	if err := s.customers.UpdateBalance(ctx, tx, c.ID, newBalance, c.Version+1); err != nil {
		return fmt.Errorf("applySavings: %w", err)
	}
	c.SavingsBalance = newBalance
	c.Version++
	return nil
}

// creditSavings moves a scheme payout or disbursement into the customer's
// savings balance.
func (s *Service) creditSavings(ctx context.Context, tx *sql.Tx, txn *domain.Transaction, c *domain.Customer, amountPaise int64, now time.Time) error {
	newBalance := c.SavingsBalance + amountPaise
	if err := s.writeSavingsEntry(ctx, tx, txn.ID, c, domain.EntryTypeCredit, amountPaise, newBalance, now); err != nil {
		return fmt.Errorf("creditSavings: %w", err)
	}
	if err := s.customers.UpdateBalance(ctx, tx, c.ID, newBalance, c.Version+1); err != nil {
		return fmt.Errorf("creditSavings: %w", err)
	}
	c.SavingsBalance = newBalance
	c.Version++
	return nil
}

// applySchemeEffect dispatches the kind-specific mutation for an approved
// transaction targeting a scheme account and persists the updated account.
func (s *Service) applySchemeEffect(ctx context.Context, tx *sql.Tx, txn *domain.Transaction, c *domain.Customer, a *domain.SchemeAccount, now time.Time) error {
	var err error
	switch d := a.Details.(type) {
	case domain.FDDetails:
		err = s.applyFD(ctx, tx, txn, c, a, d, now)
	case domain.RDDetails:
		a.Details, err = s.applyInstallment(ctx, tx, txn, c, a, d, now)
	case domain.GoalSavingsDetails:
		var rd domain.SchemeDetails
		rd, err = s.applyInstallment(ctx, tx, txn, c, a, d.RDDetails, now)
		if err == nil {
			d.RDDetails = rd.(domain.RDDetails)
			a.Details = d
		}
	case domain.PigmyDetails:
		err = s.applyPigmy(ctx, tx, txn, c, a, d, now)
	case domain.LoanDetails:
		err = s.applyLoan(ctx, tx, txn, c, a, d, now)
	case domain.MonthlyIncomeDetails:
		err = s.applyMonthlyIncome(ctx, tx, txn, c, a, d, now)
	default:
		err = fmt.Errorf("unsupported details %T: %w", a.Details, domain.ErrValidation)
	}
	if err != nil {
		return fmt.Errorf("applySchemeEffect: %w", err)
	}

	if err := s.schemes.Update(ctx, tx, a, a.Version+1); err != nil {
		return fmt.Errorf("applySchemeEffect: %w", err)
	}
	return nil
}

func transition(a *domain.SchemeAccount, to domain.SchemeStatus) error {
	if a.Status == to {
		return nil
	}
	if !a.Status.CanTransition(to) {
		return fmt.Errorf("transition %s -> %s: %w", a.Status, to, domain.ErrStateConflict)
	}
	a.Status = to
	return nil
}

func (s *Service) applyFD(ctx context.Context, tx *sql.Tx, txn *domain.Transaction, c *domain.Customer, a *domain.SchemeAccount, d domain.FDDetails, now time.Time) error {
	switch txn.Kind {
	case domain.KindDeposit:
		if d.DepositPaid {
			return fmt.Errorf("applyFD: deposit already paid: %w", domain.ErrStateConflict)
		}
		d.DepositPaid = true
		// Same calculator as at opening; the figures must agree.
		amount, err := interest.FDMaturity(d.PrincipalPaise, a.AnnualRatePct, a.TenureValue, a.TenureUnit)
		if err != nil {
			return fmt.Errorf("applyFD: %w", err)
		}
		d.MaturityAmountPaise = amount
		a.Details = d
		return transition(a, domain.SchemeStatusActive)

	case domain.KindMaturityPayout:
		payout, err := s.fdPayout(a, d, now)
		if err != nil {
			return fmt.Errorf("applyFD: %w", err)
		}
		// The credited amount must equal the approved row; penalty buckets
		// can shift between recording and approval.
		if payout != txn.AmountPaise {
			return fmt.Errorf("applyFD: payout recomputed to %s, recorded %s: %w",
				domain.FormatPaise(payout), domain.FormatPaise(txn.AmountPaise), domain.ErrStateConflict)
		}
		if err := s.creditSavings(ctx, tx, txn, c, payout, now); err != nil {
			return fmt.Errorf("applyFD: %w", err)
		}
		closed := now
		d.ClosedOn = &closed
		a.Details = d
		return transition(a, domain.SchemeStatusClosed)

	default:
		return fmt.Errorf("applyFD: kind %s: %w", txn.Kind, domain.ErrValidation)
	}
}

// applyInstallment handles RD and GoalSavings installment payments and
// payouts; the shared RDDetails shape flows through unchanged.
func (s *Service) applyInstallment(ctx context.Context, tx *sql.Tx, txn *domain.Transaction, c *domain.Customer, a *domain.SchemeAccount, d domain.RDDetails, now time.Time) (domain.SchemeDetails, error) {
	switch txn.Kind {
	case domain.KindDeposit, domain.KindEMI:
		covered := txn.InstallmentsCovered
		if covered < 1 {
			covered = 1
		}
		d.InstallmentsPaid += covered
		d.TotalDepositedPaise += txn.AmountPaise
		d.PenaltyPaidPaise += txn.PenaltyPaise

		// Step from the previous due date, not from today: late payments
		// must not drift the schedule.
		months, days := schedule.InstallmentPeriod(a.Type)
		d.NextDueDate = schedule.AddPeriods(d.NextDueDate, months, days, covered)

		// The running maturity figure comes from the same canonical
		// formula used at opening.
		amount, err := interest.RDMaturity(d.InstallmentPaise, a.AnnualRatePct, a.TenureValue, a.TenureUnit)
		if err != nil {
			return nil, fmt.Errorf("applyInstallment: %w", err)
		}
		d.MaturityAmountPaise = amount

		// The first collected installment activates the account; an
		// irregular account keeps collecting without changing state.
		if a.Status == domain.SchemeStatusPending {
			if err := transition(a, domain.SchemeStatusActive); err != nil {
				return nil, fmt.Errorf("applyInstallment: %w", err)
			}
		}
		if txn.PenaltyPaise > 0 {
			if err := transition(a, domain.SchemeStatusIrregular); err != nil {
				return nil, fmt.Errorf("applyInstallment: %w", err)
			}
		}
		// Maturity-date crossing check after the due date moved. The final
		// installment lands the next due date exactly on the maturity date.
		if !d.NextDueDate.Before(d.MaturityDate) {
			if err := transition(a, domain.SchemeStatusMatured); err != nil {
				return nil, fmt.Errorf("applyInstallment: %w", err)
			}
		}
		return d, nil

	case domain.KindMaturityPayout:
		payout, err := s.installmentPayout(a, d, now)
		if err != nil {
			return nil, fmt.Errorf("applyInstallment: %w", err)
		}
		if payout != txn.AmountPaise {
			return nil, fmt.Errorf("applyInstallment: payout recomputed to %s, recorded %s: %w",
				domain.FormatPaise(payout), domain.FormatPaise(txn.AmountPaise), domain.ErrStateConflict)
		}
		if err := s.creditSavings(ctx, tx, txn, c, payout, now); err != nil {
			return nil, fmt.Errorf("applyInstallment: %w", err)
		}
		if err := transition(a, domain.SchemeStatusClosed); err != nil {
			return nil, fmt.Errorf("applyInstallment: %w", err)
		}
		return d, nil

	default:
		return nil, fmt.Errorf("applyInstallment: kind %s: %w", txn.Kind, domain.ErrValidation)
	}
}

func (s *Service) applyPigmy(ctx context.Context, tx *sql.Tx, txn *domain.Transaction, c *domain.Customer, a *domain.SchemeAccount, d domain.PigmyDetails, now time.Time) error {
	rd := domain.RDDetails{
		InstallmentPaise:    d.DailyDepositPaise,
		InstallmentsPaid:    d.InstallmentsPaid,
		TotalDepositedPaise: d.TotalDepositedPaise,
		NextDueDate:         d.NextDueDate,
		MaturityDate:        d.MaturityDate,
		MaturityAmountPaise: d.MaturityAmountPaise,
	}

	switch txn.Kind {
	case domain.KindDeposit, domain.KindEMI:
		covered := txn.InstallmentsCovered
		if covered < 1 {
			covered = 1
		}
		d.InstallmentsPaid += covered
		d.TotalDepositedPaise += txn.AmountPaise
		months, days := schedule.InstallmentPeriod(a.Type)
		d.NextDueDate = schedule.AddPeriods(d.NextDueDate, months, days, covered)

		amount, err := interest.PigmyMaturity(d.DailyDepositPaise, a.AnnualRatePct, a.TenureValue, a.TenureUnit)
		if err != nil {
			return fmt.Errorf("applyPigmy: %w", err)
		}
		d.MaturityAmountPaise = amount
		a.Details = d

		if a.Status == domain.SchemeStatusPending {
			if err := transition(a, domain.SchemeStatusActive); err != nil {
				return fmt.Errorf("applyPigmy: %w", err)
			}
		}
		if !d.NextDueDate.Before(d.MaturityDate) {
			if err := transition(a, domain.SchemeStatusMatured); err != nil {
				return fmt.Errorf("applyPigmy: %w", err)
			}
		}
		return nil

	case domain.KindMaturityPayout:
		payout, err := s.installmentPayout(a, rd, now)
		if err != nil {
			return fmt.Errorf("applyPigmy: %w", err)
		}
		if payout != txn.AmountPaise {
			return fmt.Errorf("applyPigmy: payout recomputed to %s, recorded %s: %w",
				domain.FormatPaise(payout), domain.FormatPaise(txn.AmountPaise), domain.ErrStateConflict)
		}
		if err := s.creditSavings(ctx, tx, txn, c, payout, now); err != nil {
			return fmt.Errorf("applyPigmy: %w", err)
		}
		a.Details = d
		return transition(a, domain.SchemeStatusClosed)

	default:
		return fmt.Errorf("applyPigmy: kind %s: %w", txn.Kind, domain.ErrValidation)
	}
}

func (s *Service) applyLoan(ctx context.Context, tx *sql.Tx, txn *domain.Transaction, c *domain.Customer, a *domain.SchemeAccount, d domain.LoanDetails, now time.Time) error {
	switch txn.Kind {
	case domain.KindLoanDisbursement:
		if d.Disbursed {
			return fmt.Errorf("applyLoan: already disbursed: %w", domain.ErrStateConflict)
		}
		d.Disbursed = true
		d.OutstandingPaise = d.PrincipalPaise
		d.NextEMIDate = now.AddDate(0, d.EMIFrequency.MonthsPerEMI(), 0)
		if err := s.creditSavings(ctx, tx, txn, c, d.PrincipalPaise, now); err != nil {
			return fmt.Errorf("applyLoan: %w", err)
		}
		a.Details = d
		return transition(a, domain.SchemeStatusActive)

	case domain.KindEMI:
		if !d.Disbursed {
			return fmt.Errorf("applyLoan: emi before disbursement: %w", domain.ErrIneligibleOperation)
		}
		d.OutstandingPaise -= txn.AmountPaise
		if d.OutstandingPaise < 0 {
			d.OutstandingPaise = 0
		}
		d.RemainingEMIs--
		last := now
		d.LastEMIDate = &last
		d.NextEMIDate = d.NextEMIDate.AddDate(0, d.EMIFrequency.MonthsPerEMI(), 0)
		a.Details = d
		if d.RemainingEMIs <= 0 || d.OutstandingPaise == 0 {
			closed := now
			d.ClosedOn = &closed
			a.Details = d
			return transition(a, domain.SchemeStatusClosed)
		}
		return nil

	case domain.KindEMIPrepayment:
		if err := penalty.CheckLoanPrepayment(d.OutstandingPaise, txn.AmountPaise); err != nil {
			return fmt.Errorf("applyLoan: %w", err)
		}
		d.OutstandingPaise = 0
		d.RemainingEMIs = 0
		closed := now
		d.ClosedOn = &closed
		a.Details = d
		return transition(a, domain.SchemeStatusClosed)

	default:
		return fmt.Errorf("applyLoan: kind %s: %w", txn.Kind, domain.ErrValidation)
	}
}

func (s *Service) applyMonthlyIncome(ctx context.Context, tx *sql.Tx, txn *domain.Transaction, c *domain.Customer, a *domain.SchemeAccount, d domain.MonthlyIncomeDetails, now time.Time) error {
	switch txn.Kind {
	case domain.KindDeposit:
		if a.Status != domain.SchemeStatusPending {
			return fmt.Errorf("applyMonthlyIncome: deposit already paid: %w", domain.ErrStateConflict)
		}
		d.MonthlyPayoutPaise = interest.MonthlyIncomePayout(d.DepositPaise, a.AnnualRatePct)
		a.Details = d
		return transition(a, domain.SchemeStatusActive)

	case domain.KindWithdrawal:
		// Monthly interest payout into savings; principal stays put. The
		// entitlement re-check under the lock stops a queue of pending
		// withdrawals from paying the same month twice.
		if d.PayoutsMade >= monthlyPayoutsEntitled(a, now) {
			return fmt.Errorf("applyMonthlyIncome: monthly payout not yet due: %w", domain.ErrIneligibleOperation)
		}
		d.PayoutsMade++
		if err := s.creditSavings(ctx, tx, txn, c, d.MonthlyPayoutPaise, now); err != nil {
			return fmt.Errorf("applyMonthlyIncome: %w", err)
		}
		a.Details = d
		return nil

	case domain.KindMaturityPayout:
		if a.Status == domain.SchemeStatusPending {
			return fmt.Errorf("applyMonthlyIncome: deposit not paid: %w", domain.ErrIneligibleOperation)
		}
		if now.Before(d.MaturityDate) {
			return fmt.Errorf("applyMonthlyIncome: not yet matured: %w", domain.ErrIneligibleOperation)
		}
		// Interest was distributed monthly; maturity returns the deposit.
		if err := s.creditSavings(ctx, tx, txn, c, d.DepositPaise, now); err != nil {
			return fmt.Errorf("applyMonthlyIncome: %w", err)
		}
		a.Details = d
		return transition(a, domain.SchemeStatusClosed)

	default:
		return fmt.Errorf("applyMonthlyIncome: kind %s: %w", txn.Kind, domain.ErrValidation)
	}
}
