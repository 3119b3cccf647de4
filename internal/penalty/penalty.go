// Package penalty implements the late-installment and premature-withdrawal
// policies. Like the interest calculators these are pure: account state and
// the current date in, amounts or eligibility errors out.
package penalty

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/interest"
	"github.com/arjun-kudva/microbank/internal/schedule"
)

// Premature-withdrawal rate reductions for FD and RD tenure buckets.
var (
	midBucketReduction  = decimal.NewFromInt(2) // [tenure/2, 3/4 tenure)
	lateBucketReduction = decimal.NewFromInt(1) // [3/4 tenure, tenure)
)

// Pigmy service charges on deposited principal.
var (
	pigmyEarlyChargePct = decimal.NewFromInt(5) // [30 days, tenure/2)
	pigmyMidChargePct   = decimal.NewFromInt(2) // [tenure/2, tenure)
)

const pigmyMinHoldDays = 30

// LateAssessment is the outcome of checking an installment payment against
// its schedule.
type LateAssessment struct {
	InstallmentsOwed int
	PenaltyPaise     int64
	RequiredPaise    int64
	// Late marks the payment as past grace; approving it moves the scheme
	// to irregular.
	Late bool
}

// AssessInstallment computes what an RD/GoalSavings/Pigmy customer must pay
// now. Each due date gets graceDays of grace; every due date whose grace has
// fully elapsed adds penaltyPerPeriodPaise. The required amount is
// owed x installment + accumulated penalty.
func AssessInstallment(schemeType domain.SchemeType, nextDue, now time.Time, installmentPaise int64, graceDays int, penaltyPerPeriodPaise int64) LateAssessment {
	months, days := schedule.InstallmentPeriod(schemeType)

	owed := schedule.CountDue(nextDue, now, months, days)
	if owed == 0 {
		// Paying ahead of the due date still covers one installment.
		owed = 1
	}

	missed := 0
	for d := nextDue; !d.After(now); d = schedule.AddPeriods(d, months, days, 1) {
		if d.AddDate(0, 0, graceDays).Before(now) {
			missed++
		}
	}

	penalty := int64(missed) * penaltyPerPeriodPaise
	return LateAssessment{
		InstallmentsOwed: owed,
		PenaltyPaise:     penalty,
		RequiredPaise:    int64(owed)*installmentPaise + penalty,
		Late:             missed > 0,
	}
}

// depositBucketRate maps elapsed time into the premature-withdrawal buckets
// and returns the penalty-adjusted rate. Elapsed and tenure are in months.
func depositBucketRate(ratePct decimal.Decimal, elapsedMonths, tenureMonths int) (decimal.Decimal, error) {
	lock := tenureMonths / 2
	switch {
	case elapsedMonths < lock:
		return decimal.Zero, fmt.Errorf("cannot withdraw before %d months: %w", lock, domain.ErrIneligibleOperation)
	case elapsedMonths < tenureMonths*3/4:
		return ratePct.Sub(midBucketReduction), nil
	case elapsedMonths < tenureMonths:
		return ratePct.Sub(lateBucketReduction), nil
	default:
		return ratePct, nil
	}
}

// FDPremature computes the payout for closing an FD before maturity. The
// payout is recomputed from the elapsed time at the penalty-adjusted rate,
// never taken from the originally quoted maturity amount.
func FDPremature(principalPaise int64, ratePct decimal.Decimal, tenureValue int, tenureUnit domain.TenureUnit, opened, now time.Time) (int64, error) {
	tenureMonths := schedule.TenureMonths(tenureValue, tenureUnit)
	elapsed := schedule.MonthsElapsed(opened, now)

	adjRate, err := depositBucketRate(ratePct, elapsed, tenureMonths)
	if err != nil {
		return 0, fmt.Errorf("FDPremature: %w", err)
	}
	if elapsed >= tenureMonths {
		return interest.FDMaturity(principalPaise, ratePct, tenureValue, tenureUnit)
	}
	payout, err := interest.FDMaturity(principalPaise, adjRate, elapsed, domain.TenureUnitMonth)
	if err != nil {
		return 0, fmt.Errorf("FDPremature: %w", err)
	}
	return payout, nil
}

// RDPremature computes the payout for closing an RD or GoalSavings account,
// using the canonical RD formula over the installments actually paid. The
// bucket eligibility runs on elapsed calendar time, but the money is always
// valued from what was collected, so an underfunded account is never paid
// the full-schedule maturity.
func RDPremature(installmentPaise int64, ratePct decimal.Decimal, tenureValue int, tenureUnit domain.TenureUnit, installmentsPaid int, opened, now time.Time) (int64, error) {
	tenureMonths := schedule.TenureMonths(tenureValue, tenureUnit)
	elapsed := schedule.MonthsElapsed(opened, now)

	adjRate, err := depositBucketRate(ratePct, elapsed, tenureMonths)
	if err != nil {
		return 0, fmt.Errorf("RDPremature: %w", err)
	}
	if elapsed >= tenureMonths {
		adjRate = ratePct
	}
	payout, err := interest.RDMaturity(installmentPaise, adjRate, installmentsPaid, domain.TenureUnitMonth)
	if err != nil {
		return 0, fmt.Errorf("RDPremature: %w", err)
	}
	return payout, nil
}

// PigmyPremature applies the daily-deposit exit rules: no withdrawal inside
// the first 30 days, a service charge on deposited principal before the
// tenure elapses, and interest on the deposits actually made afterwards.
func PigmyPremature(totalDepositedPaise, dailyDepositPaise int64, ratePct decimal.Decimal, tenureValue int, tenureUnit domain.TenureUnit, depositsMade int, opened, now time.Time) (int64, error) {
	tenureDays := schedule.TenureDays(tenureValue, tenureUnit)
	elapsed := int(now.Sub(opened).Hours() / 24)

	switch {
	case elapsed < pigmyMinHoldDays:
		return 0, fmt.Errorf("PigmyPremature: cannot withdraw before %d days: %w", pigmyMinHoldDays, domain.ErrIneligibleOperation)
	case elapsed < tenureDays/2:
		return chargedPrincipal(totalDepositedPaise, pigmyEarlyChargePct), nil
	case elapsed < tenureDays:
		return chargedPrincipal(totalDepositedPaise, pigmyMidChargePct), nil
	default:
		return interest.PigmyMaturity(dailyDepositPaise, ratePct, depositsMade, domain.TenureUnitDay)
	}
}

func chargedPrincipal(principalPaise int64, chargePct decimal.Decimal) int64 {
	p := domain.PaiseToDecimal(principalPaise)
	charge := p.Mul(chargePct).Div(decimal.NewFromInt(100))
	return domain.RoundPaise(p.Sub(charge))
}

// CheckLoanPrepayment enforces the only loan exit rule: a prepayment must
// cover the entire outstanding balance and closes the loan immediately.
func CheckLoanPrepayment(outstandingPaise, amountPaise int64) error {
	if amountPaise < outstandingPaise {
		return fmt.Errorf("prepayment must be at least the outstanding %s: %w",
			domain.FormatPaise(outstandingPaise), domain.ErrValidation)
	}
	return nil
}
