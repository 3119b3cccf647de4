package penalty

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/interest"
)

const (
	graceDays        = 7
	penaltyPerPeriod = 1_000 // Rs 10
	installment      = 100_000
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAssessInstallment(t *testing.T) {
	tests := []struct {
		name        string
		nextDue     time.Time
		now         time.Time
		wantOwed    int
		wantPenalty int64
		wantLate    bool
	}{
		{
			name:     "ahead of due date still covers one installment",
			nextDue:  date(2026, 3, 10),
			now:      date(2026, 3, 1),
			wantOwed: 1,
		},
		{
			name:     "on the due date",
			nextDue:  date(2026, 3, 10),
			now:      date(2026, 3, 10),
			wantOwed: 1,
		},
		{
			name:     "inside grace",
			nextDue:  date(2026, 3, 10),
			now:      date(2026, 3, 15),
			wantOwed: 1,
		},
		{
			name:        "two periods past grace, third still current",
			nextDue:     date(2026, 1, 10),
			now:         date(2026, 3, 15),
			wantOwed:    3,
			wantPenalty: 2 * penaltyPerPeriod,
			wantLate:    true,
		},
		{
			name:        "single missed period",
			nextDue:     date(2026, 2, 10),
			now:         date(2026, 2, 20),
			wantOwed:    1,
			wantPenalty: penaltyPerPeriod,
			wantLate:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AssessInstallment(domain.SchemeTypeRD, tc.nextDue, tc.now, installment, graceDays, penaltyPerPeriod)
			assert.Equal(t, tc.wantOwed, got.InstallmentsOwed)
			assert.Equal(t, tc.wantPenalty, got.PenaltyPaise)
			assert.Equal(t, int64(tc.wantOwed)*installment+tc.wantPenalty, got.RequiredPaise)
			assert.Equal(t, tc.wantLate, got.Late)
		})
	}
}

func TestAssessInstallment_PigmyCountsDays(t *testing.T) {
	// Five daily deposits due, the first two past grace.
	got := AssessInstallment(domain.SchemeTypePigmy, date(2026, 3, 1), date(2026, 3, 5), 5_000, 2, 500)
	assert.Equal(t, 5, got.InstallmentsOwed)
	assert.Equal(t, int64(2*500), got.PenaltyPaise)
	assert.True(t, got.Late)
}

func TestFDPremature(t *testing.T) {
	opened := date(2026, 1, 15)
	r := decimal.NewFromInt(10)

	t.Run("locked before half tenure", func(t *testing.T) {
		_, err := FDPremature(100_000, r, 12, domain.TenureUnitMonth, opened, date(2026, 4, 20))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrIneligibleOperation)
		assert.Contains(t, err.Error(), "cannot withdraw before 6 months")
	})

	t.Run("mid bucket recomputes at rate minus two", func(t *testing.T) {
		now := date(2026, 8, 20) // 7 months elapsed of 12
		got, err := FDPremature(100_000, r, 12, domain.TenureUnitMonth, opened, now)
		require.NoError(t, err)

		want, err := interest.FDMaturity(100_000, decimal.NewFromInt(8), 7, domain.TenureUnitMonth)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("late bucket recomputes at rate minus one", func(t *testing.T) {
		now := date(2026, 11, 20) // 10 months elapsed of 12
		got, err := FDPremature(100_000, r, 12, domain.TenureUnitMonth, opened, now)
		require.NoError(t, err)

		want, err := interest.FDMaturity(100_000, decimal.NewFromInt(9), 10, domain.TenureUnitMonth)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("past tenure pays full contracted maturity", func(t *testing.T) {
		got, err := FDPremature(100_000, r, 12, domain.TenureUnitMonth, opened, date(2027, 3, 1))
		require.NoError(t, err)

		want, err := interest.FDMaturity(100_000, r, 12, domain.TenureUnitMonth)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestRDPremature(t *testing.T) {
	opened := date(2026, 1, 15)
	r := decimal.NewFromInt(8)

	t.Run("locked before half tenure", func(t *testing.T) {
		_, err := RDPremature(100_000, r, 24, domain.TenureUnitMonth, 4, opened, date(2026, 6, 1))
		assert.ErrorIs(t, err, domain.ErrIneligibleOperation)
	})

	t.Run("mid bucket uses reduced rate over paid installments", func(t *testing.T) {
		now := date(2027, 2, 20) // 13 months elapsed of 24
		got, err := RDPremature(100_000, r, 24, domain.TenureUnitMonth, 13, opened, now)
		require.NoError(t, err)

		want, err := interest.RDMaturity(100_000, decimal.NewFromInt(6), 13, domain.TenureUnitMonth)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("past tenure values only what was collected", func(t *testing.T) {
		now := date(2028, 3, 1) // past the 24-month tenure
		got, err := RDPremature(100_000, r, 24, domain.TenureUnitMonth, 13, opened, now)
		require.NoError(t, err)

		want, err := interest.RDMaturity(100_000, r, 13, domain.TenureUnitMonth)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		full, err := interest.RDMaturity(100_000, r, 24, domain.TenureUnitMonth)
		require.NoError(t, err)
		assert.Less(t, got, full)
	})
}

func TestPigmyPremature(t *testing.T) {
	opened := date(2026, 1, 1)
	r := decimal.NewFromInt(5)

	t.Run("locked inside thirty days", func(t *testing.T) {
		_, err := PigmyPremature(100_000, 5_000, r, 365, domain.TenureUnitDay, 20, opened, date(2026, 1, 20))
		assert.ErrorIs(t, err, domain.ErrIneligibleOperation)
	})

	t.Run("five percent charge before half tenure", func(t *testing.T) {
		got, err := PigmyPremature(100_000, 5_000, r, 365, domain.TenureUnitDay, 20, opened, date(2026, 3, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(95_000), got)
	})

	t.Run("two percent charge after half tenure", func(t *testing.T) {
		got, err := PigmyPremature(100_000, 5_000, r, 365, domain.TenureUnitDay, 20, opened, date(2026, 9, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(98_000), got)
	})

	t.Run("full term pays maturity on full deposits", func(t *testing.T) {
		got, err := PigmyPremature(1_825_000, 5_000, r, 365, domain.TenureUnitDay, 365, opened, date(2027, 2, 1))
		require.NoError(t, err)

		want, err := interest.PigmyMaturity(5_000, r, 365, domain.TenureUnitDay)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("full term values only deposits made", func(t *testing.T) {
		got, err := PigmyPremature(500_000, 5_000, r, 365, domain.TenureUnitDay, 100, opened, date(2027, 2, 1))
		require.NoError(t, err)

		want, err := interest.PigmyMaturity(5_000, r, 100, domain.TenureUnitDay)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestCheckLoanPrepayment(t *testing.T) {
	assert.NoError(t, CheckLoanPrepayment(100_000, 100_000))
	assert.NoError(t, CheckLoanPrepayment(100_000, 150_000))

	err := CheckLoanPrepayment(100_000, 99_999)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "1000.00")
}
