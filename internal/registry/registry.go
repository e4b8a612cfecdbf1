// Package registry owns the set of accounts and their owner lists.
package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quorumledger/joint-account-ledger/internal/interfaces"
	"github.com/quorumledger/joint-account-ledger/internal/models"
	"github.com/quorumledger/joint-account-ledger/internal/models/events"
)

// Registry enforces the creation-time invariants: 1–4 distinct owners
// per account and at most 3 accounts per identity. Owner sets are fixed
// for the account's lifetime; no operation adds or removes owners.
type Registry struct {
	store  interfaces.AccountStore
	events interfaces.EventPublisher
}

func New(store interfaces.AccountStore, publisher interfaces.EventPublisher) *Registry {
	return &Registry{store: store, events: publisher}
}

// OpenAccount creates an account owned by the creator plus otherOwners,
// with a zero balance and no requests, and returns the new account id.
// All checks run before any write, so a failed open leaves the registry
// untouched.
func (r *Registry) OpenAccount(ctx context.Context, creator models.Identity, otherOwners []models.Identity) (uint64, error) {
	owners := append([]models.Identity{creator}, otherOwners...)
	if len(owners) > models.MaxOwners {
		return 0, models.ErrInvalidOwnerSet
	}
	seen := make(map[models.Identity]bool, len(owners))
	for _, o := range owners {
		if o == "" || seen[o] {
			return 0, models.ErrInvalidOwnerSet
		}
		seen[o] = true
	}
	for _, o := range owners {
		n, err := r.store.OwnedCount(ctx, o)
		if err != nil {
			return 0, err
		}
		if n >= models.MaxAccountsPerOwner {
			return 0, models.ErrOwnerLimitExceeded
		}
	}

	now := time.Now().UTC()
	id, err := r.store.CreateAccount(ctx, models.Account{
		Owners:    owners,
		CreatedAt: now,
	})
	if err != nil {
		return 0, err
	}

	_ = r.events.Publish(events.TopicAccountOpened, events.AccountOpened{
		EventID:    uuid.New().String(),
		AccountID:  id,
		Creator:    creator,
		Owners:     owners,
		OccurredAt: now,
	})
	return id, nil
}

// GetUserAccounts returns, in ascending id order, every account the
// identity owns.
func (r *Registry) GetUserAccounts(ctx context.Context, identity models.Identity) ([]uint64, error) {
	return r.store.AccountIDsByOwner(ctx, identity)
}

// GetAccountOwners returns the owner list in its original insertion
// order.
func (r *Registry) GetAccountOwners(ctx context.Context, accountID uint64) ([]models.Identity, error) {
	acct, err := r.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return acct.Owners, nil
}
