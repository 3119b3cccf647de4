// Package interest computes maturity and payout amounts per instrument.
// Every function is pure: account parameters in, paise out, no clock and no
// rate lookups. Arithmetic runs on decimals end to end; rounding to paise
// happens exactly once, at the return.
package interest

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/schedule"
)

const powPrecision = 18

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// FDMaturity is compound growth principal x (1 + r/100)^years with annual
// compounding. Month tenures produce fractional-year exponents.
func FDMaturity(principalPaise int64, annualRatePct decimal.Decimal, tenureValue int, tenureUnit domain.TenureUnit) (int64, error) {
	years := schedule.TenureYears(tenureValue, tenureUnit)
	base := one.Add(annualRatePct.Div(hundred))
	factor, err := base.PowWithPrecision(years, powPrecision)
	if err != nil {
		return 0, fmt.Errorf("FDMaturity: %w", err)
	}
	return domain.RoundPaise(domain.PaiseToDecimal(principalPaise).Mul(factor)), nil
}

// RDMaturity is the canonical recurring-deposit formula, used both for the
// estimate at account opening and for the running figure at every approved
// installment:
//
//	i = r/400, n = quarters in tenure
//	M = P x ((1+i)^n - 1) / (1 - (1+i)^(-1/3))
func RDMaturity(installmentPaise int64, annualRatePct decimal.Decimal, tenureValue int, tenureUnit domain.TenureUnit) (int64, error) {
	i := annualRatePct.Div(decimal.NewFromInt(400))
	base := one.Add(i)
	quarters := schedule.TenureYears(tenureValue, tenureUnit).Mul(decimal.NewFromInt(4))

	growth, err := base.PowWithPrecision(quarters, powPrecision)
	if err != nil {
		return 0, fmt.Errorf("RDMaturity: %w", err)
	}
	monthRoot, err := base.PowWithPrecision(decimal.NewFromInt(-1).Div(decimal.NewFromInt(3)), powPrecision)
	if err != nil {
		return 0, fmt.Errorf("RDMaturity: %w", err)
	}

	numerator := growth.Sub(one)
	denominator := one.Sub(monthRoot)
	if denominator.IsZero() {
		// Zero rate degenerates to simple accumulation.
		months := schedule.TenureMonths(tenureValue, tenureUnit)
		return installmentPaise * int64(months), nil
	}
	m := domain.PaiseToDecimal(installmentPaise).Mul(numerator).Div(denominator)
	return domain.RoundPaise(m), nil
}

// PigmyMaturity is the daily analog of RDMaturity: daily deposits with daily
// compounding, i = r/36500 and n = tenure in days.
func PigmyMaturity(dailyDepositPaise int64, annualRatePct decimal.Decimal, tenureValue int, tenureUnit domain.TenureUnit) (int64, error) {
	i := annualRatePct.Div(decimal.NewFromInt(36500))
	base := one.Add(i)
	days := schedule.TenureDays(tenureValue, tenureUnit)

	growth, err := base.PowInt32(int32(days))
	if err != nil {
		return 0, fmt.Errorf("PigmyMaturity: %w", err)
	}
	if i.IsZero() {
		return dailyDepositPaise * int64(days), nil
	}
	// 1 - (1+i)^(-1) == i/(1+i)
	denominator := i.Div(base)
	m := domain.PaiseToDecimal(dailyDepositPaise).Mul(growth.Sub(one)).Div(denominator)
	return domain.RoundPaise(m), nil
}

// LoanTotalInterest is simple interest principal x rate x years / 100.
func LoanTotalInterest(principalPaise int64, annualRatePct decimal.Decimal, tenureValue int, tenureUnit domain.TenureUnit) int64 {
	years := schedule.TenureYears(tenureValue, tenureUnit)
	return domain.RoundPaise(domain.PaiseToDecimal(principalPaise).Mul(annualRatePct).Mul(years).Div(hundred))
}

// LoanEMICount derives the installment count from tenure and EMI frequency,
// rounded to the nearest whole installment, never below one.
func LoanEMICount(tenureValue int, tenureUnit domain.TenureUnit, freq domain.EMIFrequency) int {
	months := decimal.NewFromInt(int64(schedule.TenureMonths(tenureValue, tenureUnit)))
	per := decimal.NewFromInt(int64(freq.MonthsPerEMI()))
	n := int(months.Div(per).Round(0).IntPart())
	if n < 1 {
		n = 1
	}
	return n
}

// LoanEMI splits principal plus total simple interest evenly across the EMI
// count, rounding half up to the paisa.
func LoanEMI(principalPaise, totalInterestPaise int64, emiCount int) int64 {
	total := domain.PaiseToDecimal(principalPaise + totalInterestPaise)
	return domain.RoundPaise(total.Div(decimal.NewFromInt(int64(emiCount))))
}

// MonthlyIncomePayout is the flat monthly interest deposit x rate / 1200.
// The maturity payout for the instrument is the original deposit itself;
// interest has already been distributed month by month.
func MonthlyIncomePayout(depositPaise int64, annualRatePct decimal.Decimal) int64 {
	return domain.RoundPaise(domain.PaiseToDecimal(depositPaise).Mul(annualRatePct).Div(decimal.NewFromInt(1200)))
}
