package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quorumledger/joint-account-ledger/internal/models"
)

type errorBody struct {
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	kind, code := errorKind(err)
	writeJSON(w, code, errorBody{Kind: kind, Message: err.Error()})
}

// errorKind maps each core rejection to its wire name and HTTP status.
// The kind string is surfaced verbatim for the presentation layer.
func errorKind(err error) (string, int) {
	switch {
	case errors.Is(err, models.ErrAccountNotFound):
		return "AccountNotFound", http.StatusNotFound
	case errors.Is(err, models.ErrRequestNotFound):
		return "RequestNotFound", http.StatusNotFound
	case errors.Is(err, models.ErrNotOwner):
		return "NotOwner", http.StatusForbidden
	case errors.Is(err, models.ErrSelfApproval):
		return "SelfApproval", http.StatusForbidden
	case errors.Is(err, models.ErrNotRequester):
		return "NotRequester", http.StatusForbidden
	case errors.Is(err, models.ErrAlreadyApproved):
		return "AlreadyApproved", http.StatusConflict
	case errors.Is(err, models.ErrNotApproved):
		return "NotApproved", http.StatusConflict
	case errors.Is(err, models.ErrInsufficientBalance):
		return "InsufficientBalance", http.StatusConflict
	case errors.Is(err, models.ErrInvalidOwnerSet):
		return "InvalidOwnerSet", http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrOwnerLimitExceeded):
		return "OwnerLimitExceeded", http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidAmount):
		return "InvalidAmount", http.StatusUnprocessableEntity
	}
	return "Internal", http.StatusInternalServerError
}
