// Package schedule holds the calendar arithmetic shared by the interest and
// penalty calculators and the approval workflow: tenure conversion, maturity
// dates, and installment due-date stepping.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/arjun-kudva/microbank/internal/domain"
)

// MaturityDate returns the date the instrument's contracted term ends.
func MaturityDate(opened time.Time, value int, unit domain.TenureUnit) time.Time {
	switch unit {
	case domain.TenureUnitDay:
		return opened.AddDate(0, 0, value)
	case domain.TenureUnitWeek:
		return opened.AddDate(0, 0, 7*value)
	case domain.TenureUnitMonth:
		return opened.AddDate(0, value, 0)
	default:
		return opened.AddDate(value, 0, 0)
	}
}

// TenureYears expresses a tenure as a decimal year count for compounding
// exponents. Days use a 365-day year, months a 12-month year.
func TenureYears(value int, unit domain.TenureUnit) decimal.Decimal {
	v := decimal.NewFromInt(int64(value))
	switch unit {
	case domain.TenureUnitDay:
		return v.Div(decimal.NewFromInt(365))
	case domain.TenureUnitWeek:
		return v.Mul(decimal.NewFromInt(7)).Div(decimal.NewFromInt(365))
	case domain.TenureUnitMonth:
		return v.Div(decimal.NewFromInt(12))
	default:
		return v
	}
}

// TenureDays approximates the tenure in days (months as 30, years as 365).
func TenureDays(value int, unit domain.TenureUnit) int {
	switch unit {
	case domain.TenureUnitDay:
		return value
	case domain.TenureUnitWeek:
		return 7 * value
	case domain.TenureUnitMonth:
		return 30 * value
	default:
		return 365 * value
	}
}

// TenureMonths approximates the tenure in whole months (weeks and days do
// not occur for month-granular instruments; they floor to zero months each).
func TenureMonths(value int, unit domain.TenureUnit) int {
	switch unit {
	case domain.TenureUnitMonth:
		return value
	case domain.TenureUnitYear:
		return 12 * value
	default:
		return TenureDays(value, unit) / 30
	}
}

// InstallmentPeriod returns the due-date step for installment instruments as
// a (months, days) pair. RD and GoalSavings collect monthly, Pigmy daily.
func InstallmentPeriod(t domain.SchemeType) (months, days int) {
	if t == domain.SchemeTypePigmy {
		return 0, 1
	}
	return 1, 0
}

// AddPeriods steps a due date forward k periods. Stepping from the previous
// due date rather than from today keeps the schedule anchored to the opening
// date even when payments arrive late.
func AddPeriods(t time.Time, months, days, k int) time.Time {
	return t.AddDate(0, months*k, days*k)
}

// CountDue returns how many due dates starting at nextDue have been reached
// by now (zero when nextDue is still in the future).
func CountDue(nextDue, now time.Time, months, days int) int {
	n := 0
	for d := nextDue; !d.After(now); d = AddPeriods(d, months, days, 1) {
		n++
	}
	return n
}

// MonthsElapsed counts whole calendar months between two dates, anchored to
// the day of month of from.
func MonthsElapsed(from, to time.Time) int {
	return CountDue(from.AddDate(0, 1, 0), to, 1, 0)
}
