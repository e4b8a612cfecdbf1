package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/quorumledger/joint-account-ledger/internal/models"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) openAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		s.missingIdentity(w)
		return
	}

	var req struct {
		OtherOwners []models.Identity `json:"other_owners"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	accountID, err := s.svc.OpenAccount(r.Context(), id, req.OtherOwners)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"account_id": accountID})
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		s.missingIdentity(w)
		return
	}

	ids, err := s.svc.GetUserAccounts(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	writeJSON(w, http.StatusOK, map[string][]uint64{"account_ids": ids})
}

func (s *Server) accountOwners(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(r, "id")
	if !ok {
		writeErr(w, models.ErrAccountNotFound)
		return
	}

	owners, err := s.svc.GetAccountOwners(r.Context(), accountID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.Identity{"owners": owners})
}

func (s *Server) accountBalance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(r, "id")
	if !ok {
		writeErr(w, models.ErrAccountNotFound)
		return
	}

	balance, err := s.svc.GetAccountBalance(r.Context(), accountID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": accountID,
		"balance":    balance,
	})
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		s.missingIdentity(w)
		return
	}
	accountID, ok := pathID(r, "id")
	if !ok {
		writeErr(w, models.ErrAccountNotFound)
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	balance, err := s.svc.Deposit(r.Context(), accountID, id, req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": accountID,
		"balance":    balance,
	})
}

func (s *Server) requestWithdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		s.missingIdentity(w)
		return
	}
	accountID, ok := pathID(r, "id")
	if !ok {
		writeErr(w, models.ErrAccountNotFound)
		return
	}

	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	requestID, err := s.svc.RequestWithdraw(r.Context(), accountID, id, req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"request_id": requestID})
}

func (s *Server) withdrawalStatus(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(r, "id")
	if !ok {
		writeErr(w, models.ErrAccountNotFound)
		return
	}
	requestID, ok := pathID(r, "rid")
	if !ok {
		writeErr(w, models.ErrRequestNotFound)
		return
	}

	approvals, err := s.svc.GetApprovals(r.Context(), accountID, requestID)
	if err != nil {
		writeErr(w, err)
		return
	}
	approved, err := s.svc.GetIsApproved(r.Context(), accountID, requestID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": accountID,
		"request_id": requestID,
		"approvals":  approvals,
		"approved":   approved,
	})
}

func (s *Server) approveWithdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		s.missingIdentity(w)
		return
	}
	accountID, ok := pathID(r, "id")
	if !ok {
		writeErr(w, models.ErrAccountNotFound)
		return
	}
	requestID, ok := pathID(r, "rid")
	if !ok {
		writeErr(w, models.ErrRequestNotFound)
		return
	}

	if err := s.svc.ApproveWithdraw(r.Context(), accountID, requestID, id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(r)
	if !ok {
		s.missingIdentity(w)
		return
	}
	accountID, ok := pathID(r, "id")
	if !ok {
		writeErr(w, models.ErrAccountNotFound)
		return
	}
	requestID, ok := pathID(r, "rid")
	if !ok {
		writeErr(w, models.ErrRequestNotFound)
		return
	}

	balance, err := s.svc.Withdraw(r.Context(), accountID, requestID, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": accountID,
		"request_id": requestID,
		"balance":    balance,
	})
}

func (s *Server) missingIdentity(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorBody{
		Kind:    "MissingIdentity",
		Message: "the " + IdentityHeader + " header is required",
	})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Kind: "BadRequest", Message: msg})
}

func pathID(r *http.Request, name string) (uint64, bool) {
	v, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
