package models

import "errors"

// Every rejection the core can return. All are synchronous and leave no
// partial state behind; callers match them with errors.Is.
var (
	ErrInvalidOwnerSet     = errors.New("invalid owner set")
	ErrOwnerLimitExceeded  = errors.New("identity already owns the maximum number of accounts")
	ErrAccountNotFound     = errors.New("account not found")
	ErrRequestNotFound     = errors.New("withdrawal request not found")
	ErrNotOwner            = errors.New("caller is not an owner of this account")
	ErrSelfApproval        = errors.New("requester cannot approve their own request")
	ErrAlreadyApproved     = errors.New("request already approved")
	ErrNotRequester        = errors.New("caller did not create this request")
	ErrNotApproved         = errors.New("request is not in the approved state")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("balance no longer covers the requested amount")
)
