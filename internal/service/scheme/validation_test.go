package scheme

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun-kudva/microbank/internal/config"
	"github.com/arjun-kudva/microbank/internal/domain"
)

func newServiceWithConfig() *Service {
	return &Service{
		cfg: &config.Config{
			SavingsWithdrawalLimit: 2_500_000,
			InstallmentGraceDays:   7,
			LatePenaltyPerPeriod:   1_000,
		},
	}
}

func TestValidateSavings(t *testing.T) {
	svc := newServiceWithConfig()
	customer := &domain.Customer{SavingsBalance: 1_000_000}

	tests := []struct {
		name    string
		kind    domain.TransactionKind
		amount  int64
		wantErr error
	}{
		{"deposit any amount", domain.KindDeposit, 9_000_000, nil},
		{"withdrawal within balance", domain.KindWithdrawal, 500_000, nil},
		{"withdrawal at limit", domain.KindWithdrawal, 2_500_000, domain.ErrInsufficientFunds},
		{"withdrawal over limit", domain.KindWithdrawal, 2_500_001, domain.ErrWithdrawalLimit},
		{"withdrawal over balance", domain.KindWithdrawal, 1_000_001, domain.ErrInsufficientFunds},
		{"emi on savings", domain.KindEMI, 100, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.validateSavings(customer, RecordTransactionRequest{
				Kind:        tt.kind,
				AmountPaise: tt.amount,
			})
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateFDIntent(t *testing.T) {
	svc := newServiceWithConfig()
	opened := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	fdAccount := func(paid bool) *domain.SchemeAccount {
		return &domain.SchemeAccount{
			Type:          domain.SchemeTypeFD,
			OpenedOn:      opened,
			TenureValue:   12,
			TenureUnit:    domain.TenureUnitMonth,
			AnnualRatePct: decimal.NewFromInt(10),
			Status:        domain.SchemeStatusActive,
			Details: domain.FDDetails{
				PrincipalPaise: 1_000_000,
				DepositPaid:    paid,
				MaturityDate:   opened.AddDate(0, 12, 0),
			},
		}
	}

	t.Run("deposit exact principal", func(t *testing.T) {
		a := fdAccount(false)
		_, _, err := svc.validateSchemeIntent(a, RecordTransactionRequest{
			Kind:        domain.KindDeposit,
			AmountPaise: 1_000_000,
		}, opened)
		require.NoError(t, err)
	})
	t.Run("deposit wrong amount names the figure", func(t *testing.T) {
		a := fdAccount(false)
		_, _, err := svc.validateSchemeIntent(a, RecordTransactionRequest{
			Kind:        domain.KindDeposit,
			AmountPaise: 900_000,
		}, opened)
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "must be exactly 10000")
	})
	t.Run("second deposit refused", func(t *testing.T) {
		a := fdAccount(true)
		_, _, err := svc.validateSchemeIntent(a, RecordTransactionRequest{
			Kind:        domain.KindDeposit,
			AmountPaise: 1_000_000,
		}, opened)
		require.ErrorIs(t, err, domain.ErrStateConflict)
	})
	t.Run("payout locked before half tenure", func(t *testing.T) {
		a := fdAccount(true)
		_, _, err := svc.validateSchemeIntent(a, RecordTransactionRequest{
			Kind:        domain.KindMaturityPayout,
			AmountPaise: 1_100_000,
		}, opened.AddDate(0, 3, 0))
		require.ErrorIs(t, err, domain.ErrIneligibleOperation)
	})
	t.Run("payout on unfunded deposit refused", func(t *testing.T) {
		a := fdAccount(false)
		_, _, err := svc.validateSchemeIntent(a, RecordTransactionRequest{
			Kind:        domain.KindMaturityPayout,
			AmountPaise: 1_100_000,
		}, opened.AddDate(0, 14, 0))
		require.ErrorIs(t, err, domain.ErrIneligibleOperation)
	})
}

func TestValidateInstallmentIntent(t *testing.T) {
	svc := newServiceWithConfig()
	opened := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	rdAccount := func() *domain.SchemeAccount {
		return &domain.SchemeAccount{
			Type:          domain.SchemeTypeRD,
			OpenedOn:      opened,
			TenureValue:   12,
			TenureUnit:    domain.TenureUnitMonth,
			AnnualRatePct: decimal.NewFromInt(8),
			Status:        domain.SchemeStatusActive,
			Details: domain.RDDetails{
				InstallmentPaise: 100_000,
				NextDueDate:      opened,
				MaturityDate:     opened.AddDate(0, 12, 0),
			},
		}
	}

	t.Run("on time exact installment", func(t *testing.T) {
		covered, penalty, err := svc.validateSchemeIntent(rdAccount(), RecordTransactionRequest{
			Kind:        domain.KindDeposit,
			AmountPaise: 100_000,
		}, opened)
		require.NoError(t, err)
		assert.Equal(t, 1, covered)
		assert.Equal(t, int64(0), penalty)
	})
	t.Run("three periods late includes penalties", func(t *testing.T) {
		covered, penalty, err := svc.validateSchemeIntent(rdAccount(), RecordTransactionRequest{
			Kind:        domain.KindDeposit,
			AmountPaise: 3*100_000 + 3*1_000,
		}, opened.AddDate(0, 2, 10))
		require.NoError(t, err)
		assert.Equal(t, 3, covered)
		assert.Equal(t, int64(3_000), penalty)
	})
	t.Run("wrong amount rejected", func(t *testing.T) {
		_, _, err := svc.validateSchemeIntent(rdAccount(), RecordTransactionRequest{
			Kind:        domain.KindDeposit,
			AmountPaise: 50_000,
		}, opened)
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestValidateLoanIntent(t *testing.T) {
	svc := newServiceWithConfig()

	loanAccount := func(disbursed bool) *domain.SchemeAccount {
		return &domain.SchemeAccount{
			Type:   domain.SchemeTypeLoan,
			Status: domain.SchemeStatusActive,
			Details: domain.LoanDetails{
				PrincipalPaise:   1_000_000,
				OutstandingPaise: 1_000_000,
				EMIPaise:         51_667,
				Disbursed:        disbursed,
			},
		}
	}

	t.Run("emi before disbursement", func(t *testing.T) {
		a := loanAccount(false)
		_, _, err := svc.validateSchemeIntent(a, RecordTransactionRequest{
			Kind:        domain.KindEMI,
			AmountPaise: 51_667,
		}, time.Now())
		require.ErrorIs(t, err, domain.ErrIneligibleOperation)
	})
	t.Run("emi exact amount", func(t *testing.T) {
		covered, _, err := svc.validateSchemeIntent(loanAccount(true), RecordTransactionRequest{
			Kind:        domain.KindEMI,
			AmountPaise: 51_667,
		}, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 1, covered)
	})
	t.Run("emi wrong amount names the figure", func(t *testing.T) {
		_, _, err := svc.validateSchemeIntent(loanAccount(true), RecordTransactionRequest{
			Kind:        domain.KindEMI,
			AmountPaise: 50_000,
		}, time.Now())
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "must be exactly 516.67")
	})
	t.Run("partial prepayment rejected", func(t *testing.T) {
		_, _, err := svc.validateSchemeIntent(loanAccount(true), RecordTransactionRequest{
			Kind:        domain.KindEMIPrepayment,
			AmountPaise: 400_000,
		}, time.Now())
		require.ErrorIs(t, err, domain.ErrValidation)
	})
	t.Run("full prepayment accepted", func(t *testing.T) {
		_, _, err := svc.validateSchemeIntent(loanAccount(true), RecordTransactionRequest{
			Kind:        domain.KindEMIPrepayment,
			AmountPaise: 1_000_000,
		}, time.Now())
		require.NoError(t, err)
	})
}

func TestValidateMonthlyIncomeIntent(t *testing.T) {
	svc := newServiceWithConfig()
	opened := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	miAccount := func(status domain.SchemeStatus, payoutsMade int) *domain.SchemeAccount {
		return &domain.SchemeAccount{
			Type:          domain.SchemeTypeMonthlyIncome,
			OpenedOn:      opened,
			TenureValue:   12,
			TenureUnit:    domain.TenureUnitMonth,
			AnnualRatePct: decimal.NewFromInt(8),
			Status:        status,
			Details: domain.MonthlyIncomeDetails{
				DepositPaise:       15_000_000,
				MonthlyPayoutPaise: 100_000,
				PayoutsMade:        payoutsMade,
				MaturityDate:       opened.AddDate(0, 12, 0),
			},
		}
	}

	t.Run("payout due after a month", func(t *testing.T) {
		a := miAccount(domain.SchemeStatusActive, 0)
		_, _, err := svc.validateSchemeIntent(a, RecordTransactionRequest{
			Kind:        domain.KindWithdrawal,
			AmountPaise: 100_000,
		}, opened.AddDate(0, 1, 0))
		require.NoError(t, err)
	})
	t.Run("payout before the month elapses refused", func(t *testing.T) {
		a := miAccount(domain.SchemeStatusActive, 0)
		_, _, err := svc.validateSchemeIntent(a, RecordTransactionRequest{
			Kind:        domain.KindWithdrawal,
			AmountPaise: 100_000,
		}, opened.AddDate(0, 0, 20))
		require.ErrorIs(t, err, domain.ErrIneligibleOperation)
	})
	t.Run("second payout in the same month refused", func(t *testing.T) {
		a := miAccount(domain.SchemeStatusActive, 1)
		_, _, err := svc.validateSchemeIntent(a, RecordTransactionRequest{
			Kind:        domain.KindWithdrawal,
			AmountPaise: 100_000,
		}, opened.AddDate(0, 1, 10))
		require.ErrorIs(t, err, domain.ErrIneligibleOperation)
	})
	t.Run("payouts capped at the tenure", func(t *testing.T) {
		a := miAccount(domain.SchemeStatusActive, 12)
		_, _, err := svc.validateSchemeIntent(a, RecordTransactionRequest{
			Kind:        domain.KindWithdrawal,
			AmountPaise: 100_000,
		}, opened.AddDate(0, 20, 0))
		require.ErrorIs(t, err, domain.ErrIneligibleOperation)
	})
	t.Run("maturity payout on unfunded deposit refused", func(t *testing.T) {
		a := miAccount(domain.SchemeStatusPending, 0)
		_, _, err := svc.validateSchemeIntent(a, RecordTransactionRequest{
			Kind:        domain.KindMaturityPayout,
			AmountPaise: 15_000_000,
		}, opened.AddDate(0, 14, 0))
		require.ErrorIs(t, err, domain.ErrIneligibleOperation)
	})
}
