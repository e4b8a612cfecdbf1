// Package service composes the registry, ledger and workflow behind a
// single facade that serializes every call under one mutex. One call
// runs to completion before the next begins, so each operation is
// atomic with respect to all ledger state: either every check passes
// and the full effect commits, or nothing changes. The components
// underneath carry no locks of their own.
package service

import (
	"context"
	"sync"

	"github.com/quorumledger/joint-account-ledger/internal/interfaces"
	"github.com/quorumledger/joint-account-ledger/internal/ledger"
	"github.com/quorumledger/joint-account-ledger/internal/models"
	"github.com/quorumledger/joint-account-ledger/internal/registry"
	"github.com/quorumledger/joint-account-ledger/internal/workflow"
)

type Service struct {
	mu       sync.Mutex
	registry *registry.Registry
	ledger   *ledger.Ledger
	workflow *workflow.Workflow
}

func New(store interfaces.AccountStore, publisher interfaces.EventPublisher) *Service {
	return &Service{
		registry: registry.New(store, publisher),
		ledger:   ledger.New(store, publisher),
		workflow: workflow.New(store, publisher),
	}
}

func (s *Service) OpenAccount(ctx context.Context, creator models.Identity, otherOwners []models.Identity) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.OpenAccount(ctx, creator, otherOwners)
}

func (s *Service) GetUserAccounts(ctx context.Context, identity models.Identity) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.GetUserAccounts(ctx, identity)
}

func (s *Service) GetAccountOwners(ctx context.Context, accountID uint64) ([]models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.GetAccountOwners(ctx, accountID)
}

func (s *Service) Deposit(ctx context.Context, accountID uint64, caller models.Identity, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Deposit(ctx, accountID, caller, amount)
}

func (s *Service) GetAccountBalance(ctx context.Context, accountID uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.GetAccountBalance(ctx, accountID)
}

func (s *Service) RequestWithdraw(ctx context.Context, accountID uint64, caller models.Identity, amount int64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflow.RequestWithdraw(ctx, accountID, caller, amount)
}

func (s *Service) ApproveWithdraw(ctx context.Context, accountID, requestID uint64, caller models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflow.ApproveWithdraw(ctx, accountID, requestID, caller)
}

func (s *Service) GetApprovals(ctx context.Context, accountID, requestID uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflow.GetApprovals(ctx, accountID, requestID)
}

func (s *Service) GetIsApproved(ctx context.Context, accountID, requestID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflow.GetIsApproved(ctx, accountID, requestID)
}

func (s *Service) Withdraw(ctx context.Context, accountID, requestID uint64, caller models.Identity) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflow.Withdraw(ctx, accountID, requestID, caller)
}
