package scheme

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/interest"
	"github.com/arjun-kudva/microbank/internal/logging"
	"github.com/arjun-kudva/microbank/internal/schedule"
)

// OpenParams is the closed set of per-instrument opening parameters; each
// variant carries exactly the fields its instrument accepts.
type OpenParams interface {
	SchemeType() domain.SchemeType
	Tenure() (int, domain.TenureUnit)
	Rate() decimal.Decimal
	validate() error
}

type TenureSpec struct {
	Value int
	Unit  domain.TenureUnit
}

type baseParams struct {
	TenureSpec    TenureSpec
	AnnualRatePct decimal.Decimal
}

func (p baseParams) Tenure() (int, domain.TenureUnit) { return p.TenureSpec.Value, p.TenureSpec.Unit }
func (p baseParams) Rate() decimal.Decimal            { return p.AnnualRatePct }

func (p baseParams) validateBase() error {
	if p.TenureSpec.Value <= 0 || !p.TenureSpec.Unit.IsValid() {
		return fmt.Errorf("invalid tenure: %w", domain.ErrValidation)
	}
	if p.AnnualRatePct.IsNegative() {
		return fmt.Errorf("negative interest rate: %w", domain.ErrValidation)
	}
	return nil
}

type OpenFDParams struct {
	baseParams
	PrincipalPaise int64
}

func NewOpenFDParams(principalPaise int64, rate decimal.Decimal, tenure TenureSpec) OpenFDParams {
	return OpenFDParams{baseParams{tenure, rate}, principalPaise}
}

func (p OpenFDParams) SchemeType() domain.SchemeType { return domain.SchemeTypeFD }

func (p OpenFDParams) validate() error {
	if err := p.validateBase(); err != nil {
		return err
	}
	if p.PrincipalPaise <= 0 {
		return fmt.Errorf("principal must be positive: %w", domain.ErrValidation)
	}
	return nil
}

type OpenRDParams struct {
	baseParams
	InstallmentPaise int64
}

func NewOpenRDParams(installmentPaise int64, rate decimal.Decimal, tenure TenureSpec) OpenRDParams {
	return OpenRDParams{baseParams{tenure, rate}, installmentPaise}
}

func (p OpenRDParams) SchemeType() domain.SchemeType { return domain.SchemeTypeRD }

func (p OpenRDParams) validate() error {
	if err := p.validateBase(); err != nil {
		return err
	}
	if p.InstallmentPaise <= 0 {
		return fmt.Errorf("installment must be positive: %w", domain.ErrValidation)
	}
	return nil
}

type OpenGoalSavingsParams struct {
	baseParams
	InstallmentPaise int64
	GoalAmountPaise  int64
}

func NewOpenGoalSavingsParams(installmentPaise, goalPaise int64, rate decimal.Decimal, tenure TenureSpec) OpenGoalSavingsParams {
	return OpenGoalSavingsParams{baseParams{tenure, rate}, installmentPaise, goalPaise}
}

func (p OpenGoalSavingsParams) SchemeType() domain.SchemeType { return domain.SchemeTypeGoalSavings }

func (p OpenGoalSavingsParams) validate() error {
	if err := p.validateBase(); err != nil {
		return err
	}
	if p.InstallmentPaise <= 0 {
		return fmt.Errorf("installment must be positive: %w", domain.ErrValidation)
	}
	if p.GoalAmountPaise <= 0 {
		return fmt.Errorf("goal amount must be positive: %w", domain.ErrValidation)
	}
	return nil
}

type OpenLoanParams struct {
	baseParams
	PrincipalPaise int64
	EMIFrequency   domain.EMIFrequency
}

func NewOpenLoanParams(principalPaise int64, rate decimal.Decimal, tenure TenureSpec, freq domain.EMIFrequency) OpenLoanParams {
	return OpenLoanParams{baseParams{tenure, rate}, principalPaise, freq}
}

func (p OpenLoanParams) SchemeType() domain.SchemeType { return domain.SchemeTypeLoan }

func (p OpenLoanParams) validate() error {
	if err := p.validateBase(); err != nil {
		return err
	}
	if p.PrincipalPaise <= 0 {
		return fmt.Errorf("principal must be positive: %w", domain.ErrValidation)
	}
	if !p.EMIFrequency.IsValid() {
		return fmt.Errorf("invalid emi frequency: %w", domain.ErrValidation)
	}
	return nil
}

type OpenPigmyParams struct {
	baseParams
	DailyDepositPaise int64
}

func NewOpenPigmyParams(dailyDepositPaise int64, rate decimal.Decimal, tenure TenureSpec) OpenPigmyParams {
	return OpenPigmyParams{baseParams{tenure, rate}, dailyDepositPaise}
}

func (p OpenPigmyParams) SchemeType() domain.SchemeType { return domain.SchemeTypePigmy }

func (p OpenPigmyParams) validate() error {
	if err := p.validateBase(); err != nil {
		return err
	}
	if p.DailyDepositPaise <= 0 {
		return fmt.Errorf("daily deposit must be positive: %w", domain.ErrValidation)
	}
	return nil
}

type OpenMonthlyIncomeParams struct {
	baseParams
	DepositPaise int64
}

func NewOpenMonthlyIncomeParams(depositPaise int64, rate decimal.Decimal, tenure TenureSpec) OpenMonthlyIncomeParams {
	return OpenMonthlyIncomeParams{baseParams{tenure, rate}, depositPaise}
}

func (p OpenMonthlyIncomeParams) SchemeType() domain.SchemeType {
	return domain.SchemeTypeMonthlyIncome
}

func (p OpenMonthlyIncomeParams) validate() error {
	if err := p.validateBase(); err != nil {
		return err
	}
	if p.DepositPaise <= 0 {
		return fmt.Errorf("deposit must be positive: %w", domain.ErrValidation)
	}
	return nil
}

// OpenScheme creates a scheme account in pending state. No money moves until
// the first recorded transaction is approved.
func (s *Service) OpenScheme(ctx context.Context, customerID uuid.UUID, params OpenParams) (*domain.SchemeAccount, error) {
	log := logging.FromContext(ctx)

	if err := params.validate(); err != nil {
		return nil, fmt.Errorf("OpenScheme: %w", err)
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("OpenScheme: %w", err)
	}

	now := s.clock.Now()
	tenureValue, tenureUnit := params.Tenure()
	maturity := schedule.MaturityDate(now, tenureValue, tenureUnit)

	details, err := buildDetails(params, now, maturity)
	if err != nil {
		return nil, fmt.Errorf("OpenScheme: %w", err)
	}

	accountNumber, err := s.ids.NextAccountNumber(ctx, params.SchemeType())
	if err != nil {
		return nil, fmt.Errorf("OpenScheme: %w", err)
	}

	account := &domain.SchemeAccount{
		AccountNumber: accountNumber,
		CustomerID:    customerID,
		Type:          params.SchemeType(),
		OpenedOn:      now,
		TenureValue:   tenureValue,
		TenureUnit:    tenureUnit,
		AnnualRatePct: params.Rate(),
		Status:        domain.SchemeStatusPending,
		Version:       1,
		CreatedAt:     now,
		Details:       details,
	}

	if err := s.schemes.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("OpenScheme: %w", err)
	}

	log.Info("scheme opened",
		"account_number", account.AccountNumber,
		"customer_id", customerID,
		"scheme_type", account.Type,
		"tenure", fmt.Sprintf("%d %s", tenureValue, tenureUnit),
	)

	return account, nil
}

// buildDetails computes the per-instrument opening state, including the
// maturity estimate from the same calculator that approval uses later.
func buildDetails(params OpenParams, opened, maturity time.Time) (domain.SchemeDetails, error) {
	switch p := params.(type) {
	case OpenFDParams:
		amount, err := interest.FDMaturity(p.PrincipalPaise, p.AnnualRatePct, p.TenureSpec.Value, p.TenureSpec.Unit)
		if err != nil {
			return nil, err
		}
		return domain.FDDetails{
			PrincipalPaise:      p.PrincipalPaise,
			MaturityDate:        maturity,
			MaturityAmountPaise: amount,
		}, nil

	case OpenRDParams:
		amount, err := interest.RDMaturity(p.InstallmentPaise, p.AnnualRatePct, p.TenureSpec.Value, p.TenureSpec.Unit)
		if err != nil {
			return nil, err
		}
		return domain.RDDetails{
			InstallmentPaise:    p.InstallmentPaise,
			NextDueDate:         firstDueDate(domain.SchemeTypeRD, opened),
			MaturityDate:        maturity,
			MaturityAmountPaise: amount,
		}, nil

	case OpenGoalSavingsParams:
		amount, err := interest.RDMaturity(p.InstallmentPaise, p.AnnualRatePct, p.TenureSpec.Value, p.TenureSpec.Unit)
		if err != nil {
			return nil, err
		}
		return domain.GoalSavingsDetails{
			RDDetails: domain.RDDetails{
				InstallmentPaise:    p.InstallmentPaise,
				NextDueDate:         firstDueDate(domain.SchemeTypeGoalSavings, opened),
				MaturityDate:        maturity,
				MaturityAmountPaise: amount,
			},
			GoalAmountPaise: p.GoalAmountPaise,
		}, nil

	case OpenLoanParams:
		totalInterest := interest.LoanTotalInterest(p.PrincipalPaise, p.AnnualRatePct, p.TenureSpec.Value, p.TenureSpec.Unit)
		emiCount := interest.LoanEMICount(p.TenureSpec.Value, p.TenureSpec.Unit, p.EMIFrequency)
		emi := interest.LoanEMI(p.PrincipalPaise, totalInterest, emiCount)
		return domain.LoanDetails{
			PrincipalPaise:     p.PrincipalPaise,
			TotalInterestPaise: totalInterest,
			EMIPaise:           emi,
			EMIFrequency:       p.EMIFrequency,
			TotalEMIs:          emiCount,
			RemainingEMIs:      emiCount,
			NextEMIDate:        opened.AddDate(0, p.EMIFrequency.MonthsPerEMI(), 0),
		}, nil

	case OpenPigmyParams:
		amount, err := interest.PigmyMaturity(p.DailyDepositPaise, p.AnnualRatePct, p.TenureSpec.Value, p.TenureSpec.Unit)
		if err != nil {
			return nil, err
		}
		return domain.PigmyDetails{
			DailyDepositPaise:   p.DailyDepositPaise,
			NextDueDate:         firstDueDate(domain.SchemeTypePigmy, opened),
			MaturityDate:        maturity,
			MaturityAmountPaise: amount,
		}, nil

	case OpenMonthlyIncomeParams:
		return domain.MonthlyIncomeDetails{
			DepositPaise:       p.DepositPaise,
			MonthlyPayoutPaise: interest.MonthlyIncomePayout(p.DepositPaise, p.AnnualRatePct),
			MaturityDate:       maturity,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported scheme params %T: %w", params, domain.ErrValidation)
	}
}

// firstDueDate: the first installment falls due on the opening date itself,
// so the first approved payment advances the schedule to opening + 1 period.
func firstDueDate(_ domain.SchemeType, opened time.Time) time.Time {
	return opened
}
