package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arjun-kudva/microbank/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMaturityDate(t *testing.T) {
	opened := date(2026, 1, 15)

	tests := []struct {
		name  string
		value int
		unit  domain.TenureUnit
		want  time.Time
	}{
		{"days", 90, domain.TenureUnitDay, date(2026, 4, 15)},
		{"weeks", 2, domain.TenureUnitWeek, date(2026, 1, 29)},
		{"months", 18, domain.TenureUnitMonth, date(2027, 7, 15)},
		{"years", 3, domain.TenureUnitYear, date(2029, 1, 15)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MaturityDate(opened, tc.value, tc.unit))
		})
	}
}

func TestTenureConversions(t *testing.T) {
	assert.Equal(t, "2", TenureYears(2, domain.TenureUnitYear).String())
	assert.Equal(t, "1.5", TenureYears(18, domain.TenureUnitMonth).String())

	assert.Equal(t, 24, TenureMonths(2, domain.TenureUnitYear))
	assert.Equal(t, 18, TenureMonths(18, domain.TenureUnitMonth))
	assert.Equal(t, 3, TenureMonths(90, domain.TenureUnitDay))

	assert.Equal(t, 365, TenureDays(1, domain.TenureUnitYear))
	assert.Equal(t, 60, TenureDays(2, domain.TenureUnitMonth))
}

func TestInstallmentPeriod(t *testing.T) {
	months, days := InstallmentPeriod(domain.SchemeTypePigmy)
	assert.Equal(t, 0, months)
	assert.Equal(t, 1, days)

	months, days = InstallmentPeriod(domain.SchemeTypeRD)
	assert.Equal(t, 1, months)
	assert.Equal(t, 0, days)

	months, days = InstallmentPeriod(domain.SchemeTypeGoalSavings)
	assert.Equal(t, 1, months)
	assert.Equal(t, 0, days)
}

func TestAddPeriods_AnchorsToOriginalDate(t *testing.T) {
	due := date(2026, 1, 10)
	assert.Equal(t, date(2026, 4, 10), AddPeriods(due, 1, 0, 3))
	assert.Equal(t, date(2026, 1, 13), AddPeriods(due, 0, 1, 3))
}

func TestCountDue(t *testing.T) {
	nextDue := date(2026, 1, 10)

	assert.Equal(t, 0, CountDue(nextDue, date(2026, 1, 9), 1, 0))
	assert.Equal(t, 1, CountDue(nextDue, date(2026, 1, 10), 1, 0))
	assert.Equal(t, 3, CountDue(nextDue, date(2026, 3, 15), 1, 0))
	assert.Equal(t, 31, CountDue(nextDue, date(2026, 2, 9), 0, 1))
}
