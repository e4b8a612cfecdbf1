package interfaces

import (
	"context"

	"github.com/quorumledger/joint-account-ledger/internal/models"
)

// AccountStore is the persistence seam for joint accounts. The caller
// (the service facade) serializes every operation, so implementations
// only need to be individually thread-safe, not transactional across
// calls — except ExecuteWithdrawal, which must commit the balance debit
// and the request state flip as one unit.
type AccountStore interface {
	// CreateAccount stores a new account and returns its id. Ids are
	// sequential starting at zero; the incoming account's ID field is
	// ignored.
	CreateAccount(ctx context.Context, acct models.Account) (uint64, error)
	// GetAccount returns a deep copy of the account, requests included.
	// Returns models.ErrAccountNotFound for unassigned ids.
	GetAccount(ctx context.Context, accountID uint64) (models.Account, error)
	// AccountIDsByOwner returns, in ascending order, every account id
	// the identity appears on as an owner.
	AccountIDsByOwner(ctx context.Context, owner models.Identity) ([]uint64, error)
	// OwnedCount returns how many accounts the identity is an owner of.
	OwnedCount(ctx context.Context, owner models.Identity) (int, error)
	// UpdateBalance overwrites the account's balance.
	UpdateBalance(ctx context.Context, accountID uint64, balance int64) error
	// AppendRequest appends a withdrawal request and returns its id
	// (its position in the account's request sequence).
	AppendRequest(ctx context.Context, accountID uint64, req models.WithdrawalRequest) (uint64, error)
	// UpdateRequest overwrites the stored request at req.ID.
	UpdateRequest(ctx context.Context, accountID uint64, req models.WithdrawalRequest) error
	// ExecuteWithdrawal atomically stores the executed request and the
	// debited balance.
	ExecuteWithdrawal(ctx context.Context, accountID uint64, req models.WithdrawalRequest, balance int64) error
}
