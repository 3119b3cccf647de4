package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionKind string

const (
	KindDeposit          TransactionKind = "deposit"
	KindWithdrawal       TransactionKind = "withdrawal"
	KindEMI              TransactionKind = "emi"
	KindMaturityPayout   TransactionKind = "maturity_payout"
	KindLoanDisbursement TransactionKind = "loan_disbursement"
	KindEMIPrepayment    TransactionKind = "emi_prepayment"
)

func (k TransactionKind) IsValid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindEMI, KindMaturityPayout,
		KindLoanDisbursement, KindEMIPrepayment:
		return true
	}
	return false
}

type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeCheque PaymentMode = "cheque"
	PaymentModeOnline PaymentMode = "online"
)

func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeCheque, PaymentModeOnline:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusRejected TransactionStatus = "rejected"
)

// Transaction is an immutable intent-plus-outcome record. It is created
// pending by RecordTransaction and resolved exactly once by the approval
// workflow; rows are never deleted.
type Transaction struct {
	ID                  uuid.UUID
	DisplayID           string // TXN-<TYPE>-<YYYYMMDD>-<seq>
	CustomerID          uuid.UUID
	SchemeType          SchemeType
	AccountNumber       string
	Kind                TransactionKind
	AmountPaise         int64
	InstallmentsCovered int   // installment-based instruments
	PenaltyPaise        int64 // late-payment component of AmountPaise
	PaymentMode         PaymentMode
	Remarks             string
	Status              TransactionStatus
	ApproverID          *uuid.UUID
	RejectionReason     *string
	CreatedAt           time.Time
	ResolvedAt          *time.Time
}
