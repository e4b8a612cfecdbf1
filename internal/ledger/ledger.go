// Package ledger owns account balances: credits from deposits and the
// debit performed by a successful withdrawal execution.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quorumledger/joint-account-ledger/internal/access"
	"github.com/quorumledger/joint-account-ledger/internal/interfaces"
	"github.com/quorumledger/joint-account-ledger/internal/models"
	"github.com/quorumledger/joint-account-ledger/internal/models/events"
)

type Ledger struct {
	store  interfaces.AccountStore
	events interfaces.EventPublisher
}

func New(store interfaces.AccountStore, publisher interfaces.EventPublisher) *Ledger {
	return &Ledger{store: store, events: publisher}
}

// Deposit credits the account and returns the new balance. The external
// custody transfer of the deposited amount is assumed to have happened
// atomically with this call; the ledger only records it.
func (l *Ledger) Deposit(ctx context.Context, accountID uint64, caller models.Identity, amount int64) (int64, error) {
	acct, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if !access.IsOwner(acct, caller) {
		return 0, models.ErrNotOwner
	}
	if amount <= 0 {
		return 0, models.ErrInvalidAmount
	}

	balance := acct.Balance + amount
	if err := l.store.UpdateBalance(ctx, accountID, balance); err != nil {
		return 0, err
	}

	_ = l.events.Publish(events.TopicDeposited, events.Deposited{
		EventID:    uuid.New().String(),
		AccountID:  accountID,
		Depositor:  caller,
		Amount:     amount,
		Balance:    balance,
		OccurredAt: time.Now().UTC(),
	})
	return balance, nil
}

// GetAccountBalance returns the current balance.
func (l *Ledger) GetAccountBalance(ctx context.Context, accountID uint64) (int64, error) {
	acct, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}
