// Package memory is the in-memory implementation of
// interfaces.AccountStore. It is the authoritative backend when no
// database is configured, and the backend every test runs against.
package memory

import (
	"context"
	"sync"

	"github.com/quorumledger/joint-account-ledger/internal/interfaces"
	"github.com/quorumledger/joint-account-ledger/internal/models"
)

// AccountStore keeps accounts in a map keyed by id plus a per-owner
// index for the account-cap check and owner listings. Everything handed
// out is a deep copy so callers can never alias internal state.
type AccountStore struct {
	mu       sync.Mutex
	nextID   uint64
	accounts map[uint64]*models.Account
	byOwner  map[models.Identity][]uint64
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[uint64]*models.Account),
		byOwner:  make(map[models.Identity][]uint64),
	}
}

func (s *AccountStore) CreateAccount(ctx context.Context, acct models.Account) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := acct.Clone()
	cp.ID = s.nextID
	s.nextID++

	s.accounts[cp.ID] = &cp
	for _, o := range cp.Owners {
		s.byOwner[o] = append(s.byOwner[o], cp.ID)
	}
	return cp.ID, nil
}

func (s *AccountStore) GetAccount(ctx context.Context, accountID uint64) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return models.Account{}, models.ErrAccountNotFound
	}
	return acct.Clone(), nil
}

func (s *AccountStore) AccountIDsByOwner(ctx context.Context, owner models.Identity) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ids are appended in creation order, so the index is already
	// ascending.
	ids := make([]uint64, len(s.byOwner[owner]))
	copy(ids, s.byOwner[owner])
	return ids, nil
}

func (s *AccountStore) OwnedCount(ctx context.Context, owner models.Identity) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byOwner[owner]), nil
}

func (s *AccountStore) UpdateBalance(ctx context.Context, accountID uint64, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return models.ErrAccountNotFound
	}
	acct.Balance = balance
	return nil
}

func (s *AccountStore) AppendRequest(ctx context.Context, accountID uint64, req models.WithdrawalRequest) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return 0, models.ErrAccountNotFound
	}
	cp := req.Clone()
	cp.ID = uint64(len(acct.Requests))
	acct.Requests = append(acct.Requests, cp)
	return cp.ID, nil
}

func (s *AccountStore) UpdateRequest(ctx context.Context, accountID uint64, req models.WithdrawalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateRequestLocked(accountID, req)
}

func (s *AccountStore) ExecuteWithdrawal(ctx context.Context, accountID uint64, req models.WithdrawalRequest, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.updateRequestLocked(accountID, req); err != nil {
		return err
	}
	s.accounts[accountID].Balance = balance
	return nil
}

func (s *AccountStore) updateRequestLocked(accountID uint64, req models.WithdrawalRequest) error {
	acct, ok := s.accounts[accountID]
	if !ok {
		return models.ErrAccountNotFound
	}
	if req.ID >= uint64(len(acct.Requests)) {
		return models.ErrRequestNotFound
	}
	acct.Requests[req.ID] = req.Clone()
	return nil
}

var _ interfaces.AccountStore = (*AccountStore)(nil)
