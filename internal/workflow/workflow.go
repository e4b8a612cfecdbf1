// Package workflow drives withdrawal requests through their state
// machine: Pending -> Approved -> Executed, with no other transitions.
// A request becomes Approved only once every owner other than the
// requester has approved it, and only the requester may execute it,
// exactly once.
package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quorumledger/joint-account-ledger/internal/access"
	"github.com/quorumledger/joint-account-ledger/internal/interfaces"
	"github.com/quorumledger/joint-account-ledger/internal/models"
	"github.com/quorumledger/joint-account-ledger/internal/models/events"
)

type Workflow struct {
	store  interfaces.AccountStore
	events interfaces.EventPublisher
}

func New(store interfaces.AccountStore, publisher interfaces.EventPublisher) *Workflow {
	return &Workflow{store: store, events: publisher}
}

// RequestWithdraw appends a new pending request and returns its id.
// The amount is validated against the live balance only; pending
// requests do not reserve funds against each other, so the balance is
// re-validated when the request is executed.
func (w *Workflow) RequestWithdraw(ctx context.Context, accountID uint64, caller models.Identity, amount int64) (uint64, error) {
	acct, err := w.store.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if !access.IsOwner(acct, caller) {
		return 0, models.ErrNotOwner
	}
	if amount <= 0 || amount > acct.Balance {
		return 0, models.ErrInvalidAmount
	}

	now := time.Now().UTC()
	id, err := w.store.AppendRequest(ctx, accountID, models.WithdrawalRequest{
		Requester: caller,
		Amount:    amount,
		State:     models.RequestPending,
		CreatedAt: now,
	})
	if err != nil {
		return 0, err
	}

	_ = w.events.Publish(events.TopicWithdrawRequested, events.WithdrawRequested{
		EventID:    uuid.New().String(),
		AccountID:  accountID,
		RequestID:  id,
		Requester:  caller,
		Amount:     amount,
		OccurredAt: now,
	})
	return id, nil
}

// ApproveWithdraw records the caller's approval. When the final
// non-requester owner approves, the request transitions to Approved and
// WithdrawApproved is emitted; earlier approvals only grow the set.
func (w *Workflow) ApproveWithdraw(ctx context.Context, accountID, requestID uint64, caller models.Identity) error {
	acct, err := w.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	req, ok := acct.Request(requestID)
	if !ok {
		return models.ErrRequestNotFound
	}
	if !access.IsOwner(acct, caller) {
		return models.ErrNotOwner
	}
	if caller == req.Requester {
		return models.ErrSelfApproval
	}
	if req.State != models.RequestPending || req.HasApproved(caller) {
		return models.ErrAlreadyApproved
	}

	req.Approvals = append(req.Approvals, caller)
	approved := access.QuorumMet(acct, req)
	if approved {
		req.State = models.RequestApproved
	}
	if err := w.store.UpdateRequest(ctx, accountID, req); err != nil {
		return err
	}

	if approved {
		_ = w.events.Publish(events.TopicWithdrawApproved, events.WithdrawApproved{
			EventID:    uuid.New().String(),
			AccountID:  accountID,
			RequestID:  requestID,
			Approver:   caller,
			Approvals:  len(req.Approvals),
			OccurredAt: time.Now().UTC(),
		})
	}
	return nil
}

// GetApprovals returns the request's current approval count.
func (w *Workflow) GetApprovals(ctx context.Context, accountID, requestID uint64) (int, error) {
	req, err := w.request(ctx, accountID, requestID)
	if err != nil {
		return 0, err
	}
	return len(req.Approvals), nil
}

// GetIsApproved reports whether the request has reached quorum. It
// stays true after execution; states only move forward.
func (w *Workflow) GetIsApproved(ctx context.Context, accountID, requestID uint64) (bool, error) {
	req, err := w.request(ctx, accountID, requestID)
	if err != nil {
		return false, err
	}
	return req.State == models.RequestApproved || req.State == models.RequestExecuted, nil
}

// Withdraw executes an approved request: it debits the balance and
// marks the request Executed in one atomic store write. The balance was
// sufficient at request time but may have shrunk since, so it is
// re-validated here. A second call on the same request fails with
// ErrNotApproved because the state is already Executed.
func (w *Workflow) Withdraw(ctx context.Context, accountID, requestID uint64, caller models.Identity) (int64, error) {
	acct, err := w.store.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	req, ok := acct.Request(requestID)
	if !ok {
		return 0, models.ErrRequestNotFound
	}
	if caller != req.Requester {
		return 0, models.ErrNotRequester
	}
	if req.State != models.RequestApproved {
		return 0, models.ErrNotApproved
	}
	if acct.Balance < req.Amount {
		return 0, models.ErrInsufficientBalance
	}

	req.State = models.RequestExecuted
	balance := acct.Balance - req.Amount
	if err := w.store.ExecuteWithdrawal(ctx, accountID, req, balance); err != nil {
		return 0, err
	}

	_ = w.events.Publish(events.TopicWithdrew, events.Withdrew{
		EventID:    uuid.New().String(),
		AccountID:  accountID,
		RequestID:  requestID,
		Requester:  caller,
		Amount:     req.Amount,
		Balance:    balance,
		OccurredAt: time.Now().UTC(),
	})
	return balance, nil
}

func (w *Workflow) request(ctx context.Context, accountID, requestID uint64) (models.WithdrawalRequest, error) {
	acct, err := w.store.GetAccount(ctx, accountID)
	if err != nil {
		return models.WithdrawalRequest{}, err
	}
	req, ok := acct.Request(requestID)
	if !ok {
		return models.WithdrawalRequest{}, models.ErrRequestNotFound
	}
	return req, nil
}
