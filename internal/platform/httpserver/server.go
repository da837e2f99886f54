package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	electionengine "electra/contexts/election-core/election-engine"
	electionerrors "electra/contexts/election-core/election-engine/domain/errors"
	electionhttp "electra/contexts/election-core/election-engine/transport/http"
	walletledger "electra/contexts/finance-core/wallet-ledger"
	walleterrors "electra/contexts/finance-core/wallet-ledger/domain/errors"
	wallethttp "electra/contexts/finance-core/wallet-ledger/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "electra/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	election electionengine.Module
	wallet   walletledger.Module
}

func New(
	election electionengine.Module,
	wallet walletledger.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		election: election,
		wallet:   wallet,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/election/cycles", s.handleStartCycle)
	s.mux.HandleFunc("POST /v1/election/cycles/close", s.handleCloseCycle)
	s.mux.HandleFunc("GET /v1/election/cycle", s.handleCycleStatus)
	s.mux.HandleFunc("POST /v1/election/candidates", s.handleRegisterCandidate)
	s.mux.HandleFunc("GET /v1/election/candidates", s.handleStandings)
	s.mux.HandleFunc("POST /v1/election/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /v1/election/pledges", s.handlePledge)
	s.mux.HandleFunc("POST /v1/election/delegations", s.handleDelegate)
	s.mux.HandleFunc("POST /v1/election/elect", s.handleElect)
	s.mux.HandleFunc("POST /v1/election/claims/winner", s.handleWinnerClaim)
	s.mux.HandleFunc("POST /v1/election/claims/backer", s.handleBackerClaim)

	s.mux.HandleFunc("POST /v1/wallet/deposits", s.handleWalletDeposit)
	s.mux.HandleFunc("GET /v1/wallet/accounts/{account_id}", s.handleWalletBalance)
	s.mux.HandleFunc("GET /v1/wallet/step", s.handleWalletStep)
}

func (s *Server) handleStartCycle(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req electionhttp.StartCycleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.election.Handler.StartCycleHandler(r.Context(), caller, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCloseCycle(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.election.Handler.CloseCycleHandler(r.Context(), caller)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCycleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.CycleStatusHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterCandidate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req electionhttp.RegisterCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.election.Handler.RegisterCandidateHandler(r.Context(), caller, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.StandingsHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req electionhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.election.Handler.CastVoteHandler(r.Context(), caller, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handlePledge(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req electionhttp.PledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.election.Handler.PledgeHandler(r.Context(), caller, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req electionhttp.DelegateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.election.Handler.DelegateHandler(r.Context(), caller, req); err != nil {
		writeElectionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleElect(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.election.Handler.ElectHandler(r.Context(), caller)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWinnerClaim(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.election.Handler.WinnerClaimHandler(r.Context(), caller)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBackerClaim(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	resp, err := s.election.Handler.BackerClaimHandler(r.Context(), caller)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWalletDeposit(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var req wallethttp.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeWalletError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.wallet.Handler.DepositHandler(r.Context(), caller, req)
	if err != nil {
		writeWalletDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleWalletBalance(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("account_id")
	resp, err := s.wallet.Handler.BalanceHandler(r.Context(), accountID)
	if err != nil {
		writeWalletDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWalletStep(w http.ResponseWriter, r *http.Request) {
	resp, err := s.wallet.Handler.StepHandler(r.Context())
	if err != nil {
		writeWalletDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeElectionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, electionerrors.ErrInvalidInput):
		writeElectionError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, electionerrors.ErrNotAdmin):
		writeElectionError(w, http.StatusForbidden, "not_admin", err.Error())
	case errors.Is(err, electionerrors.ErrNotWinner):
		writeElectionError(w, http.StatusForbidden, "not_winner", err.Error())
	case errors.Is(err, electionerrors.ErrNotVotedForThisCandidate):
		writeElectionError(w, http.StatusForbidden, "not_voted_for_candidate", err.Error())
	case errors.Is(err, electionerrors.ErrNotACandidate),
		errors.Is(err, electionerrors.ErrCandidateNotFound):
		writeElectionError(w, http.StatusNotFound, "candidate_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrPhaseViolation):
		writeElectionError(w, http.StatusConflict, "phase_violation", err.Error())
	case errors.Is(err, electionerrors.ErrAlreadyCandidate):
		writeElectionError(w, http.StatusConflict, "already_candidate", err.Error())
	case errors.Is(err, electionerrors.ErrAlreadyVoted):
		writeElectionError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, electionerrors.ErrNoCandidates):
		writeElectionError(w, http.StatusConflict, "no_candidates", err.Error())
	case errors.Is(err, electionerrors.ErrNoWinner):
		writeElectionError(w, http.StatusConflict, "no_winner", err.Error())
	case errors.Is(err, electionerrors.ErrNothingToClaim):
		writeElectionError(w, http.StatusConflict, "nothing_to_claim", err.Error())
	case errors.Is(err, electionerrors.ErrBelowThreshold):
		writeElectionError(w, http.StatusUnprocessableEntity, "below_threshold", err.Error())
	case errors.Is(err, electionerrors.ErrSelfDelegation):
		writeElectionError(w, http.StatusUnprocessableEntity, "self_delegation", err.Error())
	case errors.Is(err, electionerrors.ErrTransferFailed):
		writeElectionError(w, http.StatusBadGateway, "transfer_failed", err.Error())
	default:
		writeElectionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeWalletDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, walleterrors.ErrInvalidAccount):
		writeWalletError(w, http.StatusBadRequest, "invalid_account", err.Error())
	case errors.Is(err, walleterrors.ErrInvalidAmount):
		writeWalletError(w, http.StatusUnprocessableEntity, "invalid_amount", err.Error())
	case errors.Is(err, walleterrors.ErrAccountNotFound):
		writeWalletError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, walleterrors.ErrInsufficientFunds):
		writeWalletError(w, http.StatusConflict, "insufficient_funds", err.Error())
	default:
		writeWalletError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeElectionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, electionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeWalletError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, wallethttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if caller == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return caller, true
}
