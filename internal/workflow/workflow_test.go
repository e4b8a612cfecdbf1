package workflow

import (
	"context"
	"fmt"
	"testing"

	eventsmemory "github.com/quorumledger/joint-account-ledger/internal/events/memory"
	"github.com/quorumledger/joint-account-ledger/internal/ledger"
	"github.com/quorumledger/joint-account-ledger/internal/models"
	"github.com/quorumledger/joint-account-ledger/internal/models/events"
	"github.com/quorumledger/joint-account-ledger/internal/registry"
	storagememory "github.com/quorumledger/joint-account-ledger/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	workflow *Workflow
	ledger   *ledger.Ledger
	bus      *eventsmemory.Bus
	account  uint64
}

// newFixture opens an account for the given owners and deposits the
// given balance from the first owner.
func newFixture(t *testing.T, balance int64, owners ...models.Identity) *fixture {
	t.Helper()
	ctx := context.Background()
	store := storagememory.NewAccountStore()
	bus := eventsmemory.NewBus()

	id, err := registry.New(store, bus).OpenAccount(ctx, owners[0], owners[1:])
	require.NoError(t, err)

	l := ledger.New(store, bus)
	if balance > 0 {
		_, err = l.Deposit(ctx, id, owners[0], balance)
		require.NoError(t, err)
	}
	return &fixture{workflow: New(store, bus), ledger: l, bus: bus, account: id}
}

func TestRequestWithdraw(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, "alice", "bob")

	id, err := f.workflow.RequestWithdraw(ctx, f.account, "alice", 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	approvals, err := f.workflow.GetApprovals(ctx, f.account, id)
	require.NoError(t, err)
	assert.Zero(t, approvals)

	approved, err := f.workflow.GetIsApproved(ctx, f.account, id)
	require.NoError(t, err)
	assert.False(t, approved)

	// Request ids are positions in the account's sequence.
	id2, err := f.workflow.RequestWithdraw(ctx, f.account, "bob", 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id2)
}

func TestRequestWithdrawRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, "alice", "bob")

	_, err := f.workflow.RequestWithdraw(ctx, f.account, "mallory", 50)
	assert.ErrorIs(t, err, models.ErrNotOwner)

	_, err = f.workflow.RequestWithdraw(ctx, f.account, "alice", 0)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	// The live balance bounds the request amount.
	_, err = f.workflow.RequestWithdraw(ctx, f.account, "alice", 101)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = f.workflow.RequestWithdraw(ctx, 99, "alice", 50)
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestApproveWithdrawUnanimity(t *testing.T) {
	ctx := context.Background()
	all := []models.Identity{"u1", "u2", "u3", "u4"}

	for n := 2; n <= 4; n++ {
		t.Run(fmt.Sprintf("%d owners", n), func(t *testing.T) {
			f := newFixture(t, 100, all[:n]...)

			id, err := f.workflow.RequestWithdraw(ctx, f.account, "u1", 100)
			require.NoError(t, err)

			// Each non-requester approval short of the last leaves the
			// request pending.
			for i := 1; i < n-1; i++ {
				require.NoError(t, f.workflow.ApproveWithdraw(ctx, f.account, id, all[i]))

				approved, err := f.workflow.GetIsApproved(ctx, f.account, id)
				require.NoError(t, err)
				assert.False(t, approved, "approved after %d of %d approvals", i, n-1)
			}

			require.NoError(t, f.workflow.ApproveWithdraw(ctx, f.account, id, all[n-1]))

			approved, err := f.workflow.GetIsApproved(ctx, f.account, id)
			require.NoError(t, err)
			assert.True(t, approved)

			approvals, err := f.workflow.GetApprovals(ctx, f.account, id)
			require.NoError(t, err)
			assert.Equal(t, n-1, approvals)
		})
	}
}

func TestApproveWithdrawRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, "alice", "bob", "carol")

	id, err := f.workflow.RequestWithdraw(ctx, f.account, "alice", 100)
	require.NoError(t, err)

	assert.ErrorIs(t, f.workflow.ApproveWithdraw(ctx, f.account, 7, "bob"), models.ErrRequestNotFound)
	assert.ErrorIs(t, f.workflow.ApproveWithdraw(ctx, f.account, id, "mallory"), models.ErrNotOwner)
	assert.ErrorIs(t, f.workflow.ApproveWithdraw(ctx, f.account, id, "alice"), models.ErrSelfApproval)

	require.NoError(t, f.workflow.ApproveWithdraw(ctx, f.account, id, "bob"))
	assert.ErrorIs(t, f.workflow.ApproveWithdraw(ctx, f.account, id, "bob"), models.ErrAlreadyApproved)

	// None of the rejections moved the count.
	approvals, err := f.workflow.GetApprovals(ctx, f.account, id)
	require.NoError(t, err)
	assert.Equal(t, 1, approvals)
}

func TestApproveApprovedRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, "alice", "bob")

	id, err := f.workflow.RequestWithdraw(ctx, f.account, "alice", 100)
	require.NoError(t, err)
	require.NoError(t, f.workflow.ApproveWithdraw(ctx, f.account, id, "bob"))

	// Once the request left Pending, every further approval attempt is
	// rejected, the approver's own duplicate included.
	assert.ErrorIs(t, f.workflow.ApproveWithdraw(ctx, f.account, id, "bob"), models.ErrAlreadyApproved)
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, "alice", "bob")

	id, err := f.workflow.RequestWithdraw(ctx, f.account, "alice", 100)
	require.NoError(t, err)
	require.NoError(t, f.workflow.ApproveWithdraw(ctx, f.account, id, "bob"))

	balance, err := f.workflow.Withdraw(ctx, f.account, id, "alice")
	require.NoError(t, err)
	assert.Zero(t, balance)

	got, err := f.ledger.GetAccountBalance(ctx, f.account)
	require.NoError(t, err)
	assert.Zero(t, got)

	// Execution is exactly-once: the state is already Executed.
	_, err = f.workflow.Withdraw(ctx, f.account, id, "alice")
	assert.ErrorIs(t, err, models.ErrNotApproved)

	// The approval record survives execution.
	approvals, err := f.workflow.GetApprovals(ctx, f.account, id)
	require.NoError(t, err)
	assert.Equal(t, 1, approvals)
	approved, err := f.workflow.GetIsApproved(ctx, f.account, id)
	require.NoError(t, err)
	assert.True(t, approved)
}

func TestWithdrawRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, "alice", "bob")

	id, err := f.workflow.RequestWithdraw(ctx, f.account, "alice", 100)
	require.NoError(t, err)

	_, err = f.workflow.Withdraw(ctx, f.account, 7, "alice")
	assert.ErrorIs(t, err, models.ErrRequestNotFound)

	// Unapproved requests cannot be executed, by the requester included.
	_, err = f.workflow.Withdraw(ctx, f.account, id, "alice")
	assert.ErrorIs(t, err, models.ErrNotApproved)

	require.NoError(t, f.workflow.ApproveWithdraw(ctx, f.account, id, "bob"))

	// Only the requester may execute, approvers included.
	_, err = f.workflow.Withdraw(ctx, f.account, id, "bob")
	assert.ErrorIs(t, err, models.ErrNotRequester)
	_, err = f.workflow.Withdraw(ctx, f.account, id, "mallory")
	assert.ErrorIs(t, err, models.ErrNotRequester)
}

func TestPendingRequestsDoNotReserveFunds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, "alice", "bob")

	// Two requests that together exceed the balance are both accepted
	// and both approvable; funds are only claimed at execution.
	first, err := f.workflow.RequestWithdraw(ctx, f.account, "alice", 80)
	require.NoError(t, err)
	second, err := f.workflow.RequestWithdraw(ctx, f.account, "alice", 80)
	require.NoError(t, err)

	require.NoError(t, f.workflow.ApproveWithdraw(ctx, f.account, first, "bob"))
	require.NoError(t, f.workflow.ApproveWithdraw(ctx, f.account, second, "bob"))

	_, err = f.workflow.Withdraw(ctx, f.account, first, "alice")
	require.NoError(t, err)

	// The balance shrank since request time, so the second execution
	// fails the re-validation.
	_, err = f.workflow.Withdraw(ctx, f.account, second, "alice")
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)

	balance, err := f.ledger.GetAccountBalance(ctx, f.account)
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance)
}

func TestWithdrawalEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 100, "alice", "bob", "carol")

	id, err := f.workflow.RequestWithdraw(ctx, f.account, "alice", 60)
	require.NoError(t, err)
	require.NoError(t, f.workflow.ApproveWithdraw(ctx, f.account, id, "bob"))
	require.NoError(t, f.workflow.ApproveWithdraw(ctx, f.account, id, "carol"))
	_, err = f.workflow.Withdraw(ctx, f.account, id, "alice")
	require.NoError(t, err)

	var topics []string
	for _, env := range f.bus.Events() {
		topics = append(topics, env.Topic)
	}
	// The first approval does not reach quorum, so it emits nothing.
	assert.Equal(t, []string{
		events.TopicAccountOpened,
		events.TopicDeposited,
		events.TopicWithdrawRequested,
		events.TopicWithdrawApproved,
		events.TopicWithdrew,
	}, topics)

	log := f.bus.Events()
	approvedEv, ok := log[3].Event.(events.WithdrawApproved)
	require.True(t, ok)
	assert.Equal(t, models.Identity("carol"), approvedEv.Approver)
	assert.Equal(t, 2, approvedEv.Approvals)

	withdrewEv, ok := log[4].Event.(events.Withdrew)
	require.True(t, ok)
	assert.Equal(t, int64(60), withdrewEv.Amount)
	assert.Equal(t, int64(40), withdrewEv.Balance)
	assert.Equal(t, models.Identity("alice"), withdrewEv.Requester)
}
