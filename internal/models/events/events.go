// Package events holds the payloads emitted after every successful
// mutating operation. Each payload carries the acting identity, the ids
// and amounts involved, and the time the mutation committed.
package events

import (
	"time"

	"github.com/quorumledger/joint-account-ledger/internal/models"
)

// One topic per event kind.
const (
	TopicAccountOpened     = "account_opened"
	TopicDeposited         = "deposited"
	TopicWithdrawRequested = "withdraw_requested"
	TopicWithdrawApproved  = "withdraw_approved"
	TopicWithdrew          = "withdrew"
)

type AccountOpened struct {
	EventID    string            `json:"event_id"`
	AccountID  uint64            `json:"account_id"`
	Creator    models.Identity   `json:"creator"`
	Owners     []models.Identity `json:"owners"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type Deposited struct {
	EventID    string          `json:"event_id"`
	AccountID  uint64          `json:"account_id"`
	Depositor  models.Identity `json:"depositor"`
	Amount     int64           `json:"amount"`
	Balance    int64           `json:"balance"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type WithdrawRequested struct {
	EventID    string          `json:"event_id"`
	AccountID  uint64          `json:"account_id"`
	RequestID  uint64          `json:"request_id"`
	Requester  models.Identity `json:"requester"`
	Amount     int64           `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// WithdrawApproved is emitted once per request, when the final
// non-requester owner approves and the request becomes executable.
type WithdrawApproved struct {
	EventID    string          `json:"event_id"`
	AccountID  uint64          `json:"account_id"`
	RequestID  uint64          `json:"request_id"`
	Approver   models.Identity `json:"approver"`
	Approvals  int             `json:"approvals"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type Withdrew struct {
	EventID    string          `json:"event_id"`
	AccountID  uint64          `json:"account_id"`
	RequestID  uint64          `json:"request_id"`
	Requester  models.Identity `json:"requester"`
	Amount     int64           `json:"amount"`
	Balance    int64           `json:"balance"`
	OccurredAt time.Time       `json:"occurred_at"`
}
