package scheme

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/logging"
)

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

type ApproveTransactionRequest struct {
	TransactionID uuid.UUID
	Decision      Decision
	ApproverID    uuid.UUID
	Reason        string
}

// ApproveTransaction resolves a pending transaction. Rejection records the
// reason and reverses nothing, because nothing was applied. Approval applies
// the kind-specific financial effect and persists the account mutation and
// the transaction resolution as one database transaction: either both land
// or neither does. A transaction that is no longer pending fails with a
// state conflict, so calling twice cannot double-apply.
func (s *Service) ApproveTransaction(ctx context.Context, req ApproveTransactionRequest) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	if req.Decision != DecisionApproved && req.Decision != DecisionRejected {
		return nil, fmt.Errorf("ApproveTransaction: invalid decision %q: %w", req.Decision, domain.ErrValidation)
	}
	if req.Decision == DecisionRejected && req.Reason == "" {
		return nil, fmt.Errorf("ApproveTransaction: rejection requires a reason: %w", domain.ErrValidation)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ApproveTransaction: begin tx: %w", err)
	}
	defer tx.Rollback()

	txn, err := s.txns.GetPendingForUpdate(ctx, tx, req.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("ApproveTransaction: %w", err)
	}

	now := s.clock.Now()

	if req.Decision == DecisionRejected {
		reason := req.Reason
		if err := s.txns.Resolve(ctx, tx, txn.ID, domain.TransactionStatusRejected, req.ApproverID, &reason, now); err != nil {
			return nil, fmt.Errorf("ApproveTransaction: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("ApproveTransaction: commit: %w", err)
		}
		log.Info("transaction rejected",
			"transaction_id", txn.ID,
			"approver_id", req.ApproverID,
			"reason", reason,
		)
		txn.Status = domain.TransactionStatusRejected
		txn.ApproverID = &req.ApproverID
		txn.RejectionReason = &reason
		txn.ResolvedAt = &now
		return txn, nil
	}

	// Customer row first, then the scheme row: a fixed lock order across
	// every approval path.
	customer, err := s.customers.GetForUpdate(ctx, tx, txn.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("ApproveTransaction: %w", err)
	}

	if txn.SchemeType == domain.SchemeTypeSavings {
		if err := s.applySavings(ctx, tx, txn, customer, now); err != nil {
			return nil, fmt.Errorf("ApproveTransaction: %w", err)
		}
	} else {
		// Re-resolve the scheme account under the lock; the snapshot used
		// at record time may be stale.
		account, err := s.schemes.GetForUpdate(ctx, tx, txn.AccountNumber)
		if err != nil {
			return nil, fmt.Errorf("ApproveTransaction: %w", err)
		}
		// Matured accounts still settle their maturity payout; closed
		// accounts accept nothing.
		if account.Status == domain.SchemeStatusClosed ||
			(account.Status.Terminal() && txn.Kind != domain.KindMaturityPayout) {
			return nil, fmt.Errorf("ApproveTransaction: %w", domain.ErrSchemeClosed)
		}
		if err := s.applySchemeEffect(ctx, tx, txn, customer, account, now); err != nil {
			return nil, fmt.Errorf("ApproveTransaction: %w", err)
		}
	}

	if err := s.txns.Resolve(ctx, tx, txn.ID, domain.TransactionStatusApproved, req.ApproverID, nil, now); err != nil {
		return nil, fmt.Errorf("ApproveTransaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ApproveTransaction: commit: %w", err)
	}

	log.Info("transaction approved",
		"transaction_id", txn.ID,
		"display_id", txn.DisplayID,
		"approver_id", req.ApproverID,
		"kind", txn.Kind,
		"amount", domain.FormatPaise(txn.AmountPaise),
	)

	txn.Status = domain.TransactionStatusApproved
	txn.ApproverID = &req.ApproverID
	txn.ResolvedAt = &now
	return txn, nil
}
