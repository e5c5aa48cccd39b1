package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dmaiga/solidavenir/pkg/types"
)

const maxBodyBytes = 1 << 20

// handleCreateWallet handles POST /create-wallet
func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var req types.CreateAccountRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.service.CreateAccount(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleTransfer handles POST /transfer
func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req types.TransferRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.service.Transfer(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleBalance handles GET /balance/{accountId}
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.GetBalance(r.Context(), mux.Vars(r)["accountId"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleAccountExists handles GET /accounts/{accountId}/exists
func (s *Server) handleAccountExists(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.CheckAccount(r.Context(), mux.Vars(r)["accountId"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleCreateTopic handles POST /create-topic
func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	var req types.CreateTopicRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.service.CreateTopic(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleSendMessage handles POST /send-message
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req types.TopicMessage
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.service.SubmitTopicMessage(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.service.HealthCheck(r.Context())

	status := http.StatusOK
	if !report.Healthy() {
		s.logger.WithContext(r.Context()).WithField("error", report.Error).Error("Health check failed")
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, report)
}

// decodeBody reads an optional JSON body into dst. An empty body leaves dst untouched.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	s.writeError(w, r, types.NewValidationError(types.ErrCodeInvalidBody, "invalid JSON body: "+err.Error(), nil))
	return false
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

// writeError writes the failure envelope for err
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := types.HTTPStatus(err)

	entry := s.logger.WithContext(r.Context()).WithError(err).WithField("status_code", status)
	var gerr *types.GatewayError
	if errors.As(err, &gerr) {
		entry = entry.WithFields(map[string]interface{}{
			"error_type": string(gerr.Type),
			"error_code": gerr.Code,
		})
	}
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	s.writeJSON(w, status, types.FailureResult(err))
}
