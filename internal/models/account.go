package models

import "time"

// Identity is an opaque caller token minted by the authentication layer
// upstream of this service. The core never interprets it; identities are
// only compared for equality.
type Identity string

// RequestState tracks a withdrawal request through its lifecycle.
// Transitions are one-directional: Pending -> Approved -> Executed.
type RequestState string

const (
	RequestPending  RequestState = "PENDING"
	RequestApproved RequestState = "APPROVED"
	RequestExecuted RequestState = "EXECUTED"
)

const (
	// MaxOwners is the largest owner set an account may be opened with.
	MaxOwners = 4
	// MaxAccountsPerOwner caps how many accounts a single identity may
	// appear on as an owner.
	MaxAccountsPerOwner = 3
)

// WithdrawalRequest is one entry in an account's request sequence. Its ID
// is its position in that sequence, assigned at creation.
type WithdrawalRequest struct {
	ID        uint64
	Requester Identity
	Amount    int64
	Approvals []Identity
	State     RequestState
	CreatedAt time.Time
}

// HasApproved reports whether the given identity already approved this
// request.
func (r WithdrawalRequest) HasApproved(id Identity) bool {
	for _, a := range r.Approvals {
		if a == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can never alias store-internal
// approval slices.
func (r WithdrawalRequest) Clone() WithdrawalRequest {
	cp := r
	cp.Approvals = append([]Identity(nil), r.Approvals...)
	return cp
}

// Account is a joint account: a fixed owner set sharing one balance and
// one append-only sequence of withdrawal requests. Amounts are whole
// units held as int64; the balance never goes negative.
type Account struct {
	ID        uint64
	Owners    []Identity
	Balance   int64
	Requests  []WithdrawalRequest
	CreatedAt time.Time
}

// Request returns the request at the given position, if it exists.
func (a Account) Request(requestID uint64) (WithdrawalRequest, bool) {
	if requestID >= uint64(len(a.Requests)) {
		return WithdrawalRequest{}, false
	}
	return a.Requests[requestID], true
}

// Clone returns a deep copy of the account, requests included.
func (a Account) Clone() Account {
	cp := a
	cp.Owners = append([]Identity(nil), a.Owners...)
	cp.Requests = make([]WithdrawalRequest, len(a.Requests))
	for i, r := range a.Requests {
		cp.Requests[i] = r.Clone()
	}
	return cp
}
