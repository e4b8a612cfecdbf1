// Package access holds the authorization predicates for joint accounts.
// All functions are pure queries over account values: they never mutate
// state and never return errors. Mutating operations re-check the same
// predicates and fail closed.
package access

import "github.com/quorumledger/joint-account-ledger/internal/models"

// IsOwner reports whether the caller is listed on the account.
func IsOwner(acct models.Account, caller models.Identity) bool {
	for _, o := range acct.Owners {
		if o == caller {
			return true
		}
	}
	return false
}

// CanApprove reports whether the caller may add an approval to the
// request: an owner, not the requester, and not yet counted.
func CanApprove(acct models.Account, requestID uint64, caller models.Identity) bool {
	req, ok := acct.Request(requestID)
	if !ok {
		return false
	}
	return IsOwner(acct, caller) && caller != req.Requester && !req.HasApproved(caller)
}

// CanExecute reports whether the caller may execute the request: only
// the original requester, and only once the request is approved.
func CanExecute(acct models.Account, requestID uint64, caller models.Identity) bool {
	req, ok := acct.Request(requestID)
	if !ok {
		return false
	}
	return caller == req.Requester && req.State == models.RequestApproved
}

// QuorumMet reports whether every owner other than the requester has
// approved. Unanimity among non-requester owners is the quorum rule, so
// it scales with the owner count rather than being a fixed threshold.
func QuorumMet(acct models.Account, req models.WithdrawalRequest) bool {
	return len(req.Approvals) == len(acct.Owners)-1
}
