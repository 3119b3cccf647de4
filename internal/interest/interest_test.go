package interest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun-kudva/microbank/internal/domain"
)

func rate(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFDMaturity(t *testing.T) {
	tests := []struct {
		name        string
		principal   int64
		rate        string
		tenureValue int
		tenureUnit  domain.TenureUnit
		want        int64
	}{
		{
			name:        "whole years compound exactly",
			principal:   100_000, // Rs 1000
			rate:        "10",
			tenureValue: 2,
			tenureUnit:  domain.TenureUnitYear,
			want:        121_000, // 1000 * 1.1^2
		},
		{
			name:        "single year",
			principal:   50_000_00,
			rate:        "7.5",
			tenureValue: 1,
			tenureUnit:  domain.TenureUnitYear,
			want:        53_750_00,
		},
		{
			name:        "zero rate returns principal",
			principal:   123_456,
			rate:        "0",
			tenureValue: 5,
			tenureUnit:  domain.TenureUnitYear,
			want:        123_456,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FDMaturity(tc.principal, rate(tc.rate), tc.tenureValue, tc.tenureUnit)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFDMaturity_FractionalYears(t *testing.T) {
	// 18 months at 8% is more than 12 months and less than 24 months.
	oneYear, err := FDMaturity(100_000_00, rate("8"), 12, domain.TenureUnitMonth)
	require.NoError(t, err)
	midway, err := FDMaturity(100_000_00, rate("8"), 18, domain.TenureUnitMonth)
	require.NoError(t, err)
	twoYears, err := FDMaturity(100_000_00, rate("8"), 24, domain.TenureUnitMonth)
	require.NoError(t, err)

	assert.Equal(t, int64(108_000_00), oneYear)
	assert.Greater(t, midway, oneYear)
	assert.Less(t, midway, twoYears)
}

func TestRDMaturity(t *testing.T) {
	t.Run("zero rate accumulates installments", func(t *testing.T) {
		got, err := RDMaturity(100_000, rate("0"), 12, domain.TenureUnitMonth)
		require.NoError(t, err)
		assert.Equal(t, int64(1_200_000), got)
	})

	t.Run("standard quarterly compounding", func(t *testing.T) {
		// Rs 1000/month, 8%, 12 months: i=0.02, n=4,
		// M = 1000 * (1.02^4 - 1) / (1 - 1.02^(-1/3)) ~ Rs 12529.32
		got, err := RDMaturity(100_000, rate("8"), 12, domain.TenureUnitMonth)
		require.NoError(t, err)
		assert.InDelta(t, 12529.32, float64(got)/100, 1.0)
		assert.Greater(t, got, int64(1_200_000))
	})

	t.Run("longer tenure earns more", func(t *testing.T) {
		short, err := RDMaturity(100_000, rate("7"), 12, domain.TenureUnitMonth)
		require.NoError(t, err)
		long, err := RDMaturity(100_000, rate("7"), 24, domain.TenureUnitMonth)
		require.NoError(t, err)
		assert.Greater(t, long, 2*short)
	})
}

func TestPigmyMaturity(t *testing.T) {
	t.Run("zero rate accumulates daily deposits", func(t *testing.T) {
		got, err := PigmyMaturity(5_000, rate("0"), 365, domain.TenureUnitDay)
		require.NoError(t, err)
		assert.Equal(t, int64(5_000*365), got)
	})

	t.Run("positive rate beats raw deposits", func(t *testing.T) {
		got, err := PigmyMaturity(5_000, rate("5"), 365, domain.TenureUnitDay)
		require.NoError(t, err)
		assert.Greater(t, got, int64(5_000*365))
		// Daily compounding at 5% over a year stays under 6% of deposits.
		assert.Less(t, got, int64(float64(5_000*365)*1.06))
	})
}

func TestLoanTotalInterest(t *testing.T) {
	// Rs 1000 at 12% for 2 years simple = Rs 240.
	got := LoanTotalInterest(100_000, rate("12"), 2, domain.TenureUnitYear)
	assert.Equal(t, int64(24_000), got)

	// Month tenures use fractional years: 6 months at 12% = Rs 60.
	got = LoanTotalInterest(100_000, rate("12"), 6, domain.TenureUnitMonth)
	assert.Equal(t, int64(6_000), got)
}

func TestLoanEMICount(t *testing.T) {
	tests := []struct {
		name        string
		tenureValue int
		tenureUnit  domain.TenureUnit
		freq        domain.EMIFrequency
		want        int
	}{
		{"two years monthly", 2, domain.TenureUnitYear, domain.EMIFrequencyMonthly, 24},
		{"two years quarterly", 2, domain.TenureUnitYear, domain.EMIFrequencyQuarterly, 8},
		{"one year yearly", 1, domain.TenureUnitYear, domain.EMIFrequencyYearly, 1},
		{"never below one", 1, domain.TenureUnitMonth, domain.EMIFrequencyYearly, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LoanEMICount(tc.tenureValue, tc.tenureUnit, tc.freq))
		})
	}
}

func TestLoanEMI(t *testing.T) {
	assert.Equal(t, int64(10_000), LoanEMI(120_000, 0, 12))
	// Uneven split rounds half up at the paisa: Rs 1000 / 3 = 333.33.
	assert.Equal(t, int64(33_333), LoanEMI(100_000, 0, 3))
	assert.Equal(t, int64(11_200), LoanEMI(100_000, 34_400, 12))
}

func TestMonthlyIncomePayout(t *testing.T) {
	// Rs 12000 at 10% pays Rs 100 per month.
	assert.Equal(t, int64(10_000), MonthlyIncomePayout(1_200_000, rate("10")))
	assert.Equal(t, int64(0), MonthlyIncomePayout(1_200_000, rate("0")))
}
