// Package server exposes the joint-account service over HTTP. Each
// handler validates the request, resolves the caller identity from the
// X-Caller-Identity header (authentication happens upstream), calls the
// service, and writes a JSON response. Error kinds are surfaced
// verbatim in the body so the presentation layer can relay them.
package server

import (
	"net/http"
	"time"

	"github.com/quorumledger/joint-account-ledger/internal/models"
	"github.com/quorumledger/joint-account-ledger/internal/service"
	"go.uber.org/zap"
)

// IdentityHeader carries the pre-authenticated caller identity.
const IdentityHeader = "X-Caller-Identity"

type Server struct {
	svc *service.Service
	log *zap.Logger
}

func New(svc *service.Service, log *zap.Logger) *Server {
	return &Server{svc: svc, log: log}
}

// Router wires every endpoint on a method+path mux.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health)

	mux.HandleFunc("POST /accounts", s.openAccount)
	mux.HandleFunc("GET /accounts", s.listAccounts)
	mux.HandleFunc("GET /accounts/{id}/owners", s.accountOwners)
	mux.HandleFunc("GET /accounts/{id}/balance", s.accountBalance)
	mux.HandleFunc("POST /accounts/{id}/deposits", s.deposit)

	mux.HandleFunc("POST /accounts/{id}/withdrawals", s.requestWithdraw)
	mux.HandleFunc("GET /accounts/{id}/withdrawals/{rid}", s.withdrawalStatus)
	mux.HandleFunc("POST /accounts/{id}/withdrawals/{rid}/approvals", s.approveWithdraw)
	mux.HandleFunc("POST /accounts/{id}/withdrawals/{rid}/executions", s.withdraw)

	return s.logged(mux)
}

func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// caller pulls the authenticated identity off the request. An empty
// header is a transport-level failure, not a core rejection.
func caller(r *http.Request) (models.Identity, bool) {
	id := r.Header.Get(IdentityHeader)
	return models.Identity(id), id != ""
}
