package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SchemeType string

const (
	SchemeTypeSavings       SchemeType = "savings"
	SchemeTypeFD            SchemeType = "fd"
	SchemeTypeRD            SchemeType = "rd"
	SchemeTypeLoan          SchemeType = "loan"
	SchemeTypePigmy         SchemeType = "pigmy"
	SchemeTypeGoalSavings   SchemeType = "goal_savings"
	SchemeTypeMonthlyIncome SchemeType = "monthly_income"
)

func (t SchemeType) IsValid() bool {
	switch t {
	case SchemeTypeSavings, SchemeTypeFD, SchemeTypeRD, SchemeTypeLoan,
		SchemeTypePigmy, SchemeTypeGoalSavings, SchemeTypeMonthlyIncome:
		return true
	}
	return false
}

// AccountPrefix is the human-readable account number prefix per instrument.
func (t SchemeType) AccountPrefix() string {
	switch t {
	case SchemeTypeSavings:
		return "SB"
	case SchemeTypeFD:
		return "FD"
	case SchemeTypeRD:
		return "RD"
	case SchemeTypeLoan:
		return "LN"
	case SchemeTypePigmy:
		return "PG"
	case SchemeTypeGoalSavings:
		return "GS"
	case SchemeTypeMonthlyIncome:
		return "MI"
	}
	return "XX"
}

type TenureUnit string

const (
	TenureUnitDay   TenureUnit = "day"
	TenureUnitWeek  TenureUnit = "week"
	TenureUnitMonth TenureUnit = "month"
	TenureUnitYear  TenureUnit = "year"
)

func (u TenureUnit) IsValid() bool {
	switch u {
	case TenureUnitDay, TenureUnitWeek, TenureUnitMonth, TenureUnitYear:
		return true
	}
	return false
}

type SchemeStatus string

const (
	SchemeStatusPending   SchemeStatus = "pending"
	SchemeStatusActive    SchemeStatus = "active"
	SchemeStatusIrregular SchemeStatus = "irregular"
	SchemeStatusMatured   SchemeStatus = "matured"
	SchemeStatusClosed    SchemeStatus = "closed"
)

var schemeStatusRank = map[SchemeStatus]int{
	SchemeStatusPending:   0,
	SchemeStatusActive:    1,
	SchemeStatusIrregular: 2,
	SchemeStatusMatured:   3,
	SchemeStatusClosed:    4,
}

// Terminal reports whether no further transitions are allowed.
func (s SchemeStatus) Terminal() bool {
	return s == SchemeStatusMatured || s == SchemeStatusClosed
}

// CanTransition enforces the one-directional lifecycle:
// pending -> active -> irregular -> matured -> closed, forward jumps allowed.
func (s SchemeStatus) CanTransition(to SchemeStatus) bool {
	if s.Terminal() && !(s == SchemeStatusMatured && to == SchemeStatusClosed) {
		return false
	}
	return schemeStatusRank[to] > schemeStatusRank[s]
}

type EMIFrequency string

const (
	EMIFrequencyMonthly   EMIFrequency = "monthly"
	EMIFrequencyQuarterly EMIFrequency = "quarterly"
	EMIFrequencyYearly    EMIFrequency = "yearly"
)

func (f EMIFrequency) IsValid() bool {
	switch f {
	case EMIFrequencyMonthly, EMIFrequencyQuarterly, EMIFrequencyYearly:
		return true
	}
	return false
}

// MonthsPerEMI returns the number of months between EMIs.
func (f EMIFrequency) MonthsPerEMI() int {
	switch f {
	case EMIFrequencyQuarterly:
		return 3
	case EMIFrequencyYearly:
		return 12
	default:
		return 1
	}
}

// SchemeAccount is the per-instrument state machine. Type discriminates the
// concrete Details variant; only that variant's fields exist for a given
// account.
type SchemeAccount struct {
	AccountNumber string
	CustomerID    uuid.UUID
	Type          SchemeType
	OpenedOn      time.Time
	TenureValue   int
	TenureUnit    TenureUnit
	AnnualRatePct decimal.Decimal
	Status        SchemeStatus
	Version       int64
	CreatedAt     time.Time
	Details       SchemeDetails
}

// SchemeDetails is the closed set of per-instrument variants.
type SchemeDetails interface {
	schemeType() SchemeType
}

type FDDetails struct {
	PrincipalPaise      int64      `json:"principal_paise"`
	DepositPaid         bool       `json:"deposit_paid"`
	MaturityDate        time.Time  `json:"maturity_date"`
	MaturityAmountPaise int64      `json:"maturity_amount_paise"`
	ClosedOn            *time.Time `json:"closed_on,omitempty"`
}

func (FDDetails) schemeType() SchemeType { return SchemeTypeFD }

type RDDetails struct {
	InstallmentPaise    int64     `json:"installment_paise"`
	InstallmentsPaid    int       `json:"installments_paid"`
	TotalDepositedPaise int64     `json:"total_deposited_paise"`
	PenaltyPaidPaise    int64     `json:"penalty_paid_paise"`
	NextDueDate         time.Time `json:"next_due_date"`
	MaturityDate        time.Time `json:"maturity_date"`
	MaturityAmountPaise int64     `json:"maturity_amount_paise"`
}

func (RDDetails) schemeType() SchemeType { return SchemeTypeRD }

// GoalSavingsDetails shares the RD shape; the goal target is its own field.
type GoalSavingsDetails struct {
	RDDetails
	GoalAmountPaise int64 `json:"goal_amount_paise"`
}

func (GoalSavingsDetails) schemeType() SchemeType { return SchemeTypeGoalSavings }

type LoanDetails struct {
	PrincipalPaise     int64        `json:"principal_paise"`
	TotalInterestPaise int64        `json:"total_interest_paise"`
	OutstandingPaise   int64        `json:"outstanding_paise"`
	EMIPaise           int64        `json:"emi_paise"`
	EMIFrequency       EMIFrequency `json:"emi_frequency"`
	TotalEMIs          int          `json:"total_emis"`
	RemainingEMIs      int          `json:"remaining_emis"`
	NextEMIDate        time.Time    `json:"next_emi_date"`
	LastEMIDate        *time.Time   `json:"last_emi_date,omitempty"`
	Disbursed          bool         `json:"disbursed"`
	ClosedOn           *time.Time   `json:"closed_on,omitempty"`
}

func (LoanDetails) schemeType() SchemeType { return SchemeTypeLoan }

type PigmyDetails struct {
	DailyDepositPaise   int64     `json:"daily_deposit_paise"`
	InstallmentsPaid    int       `json:"installments_paid"`
	TotalDepositedPaise int64     `json:"total_deposited_paise"`
	NextDueDate         time.Time `json:"next_due_date"`
	MaturityDate        time.Time `json:"maturity_date"`
	MaturityAmountPaise int64     `json:"maturity_amount_paise"`
}

func (PigmyDetails) schemeType() SchemeType { return SchemeTypePigmy }

type MonthlyIncomeDetails struct {
	DepositPaise       int64     `json:"deposit_paise"`
	MonthlyPayoutPaise int64     `json:"monthly_payout_paise"`
	PayoutsMade        int       `json:"payouts_made"`
	MaturityDate       time.Time `json:"maturity_date"`
}

func (MonthlyIncomeDetails) schemeType() SchemeType { return SchemeTypeMonthlyIncome }

// MarshalSchemeDetails encodes the variant for the JSONB details column.
func MarshalSchemeDetails(d SchemeDetails) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("MarshalSchemeDetails: nil details")
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("MarshalSchemeDetails: %w", err)
	}
	return b, nil
}

// UnmarshalSchemeDetails decodes the variant selected by the discriminant.
func UnmarshalSchemeDetails(t SchemeType, raw []byte) (SchemeDetails, error) {
	var (
		d   SchemeDetails
		err error
	)
	switch t {
	case SchemeTypeFD:
		var v FDDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case SchemeTypeRD:
		var v RDDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case SchemeTypeGoalSavings:
		var v GoalSavingsDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case SchemeTypeLoan:
		var v LoanDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case SchemeTypePigmy:
		var v PigmyDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case SchemeTypeMonthlyIncome:
		var v MonthlyIncomeDetails
		err = json.Unmarshal(raw, &v)
		d = v
	default:
		return nil, fmt.Errorf("UnmarshalSchemeDetails: unknown scheme type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("UnmarshalSchemeDetails: %s: %w", t, err)
	}
	return d, nil
}
