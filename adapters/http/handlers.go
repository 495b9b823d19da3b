package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// HealthResponse is the body of the public health probe.
type HealthResponse struct {
	Status string `json:"status"`
}

// ExampleResponse is the body of the demo protected endpoint.
type ExampleResponse struct {
	Message          string `json:"message"`
	CreditsRemaining int64  `json:"credits_remaining"`
}

// CreditsResponse reports an account's balance to its owner.
type CreditsResponse struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Credits   int64  `json:"credits"`
}

// APIHandler serves the JSON endpoints behind the gate.
type APIHandler struct {
	logger zerolog.Logger
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(logger zerolog.Logger) *APIHandler {
	return &APIHandler{logger: logger}
}

// Health is the public liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// Example is a protected demo endpoint. Reaching it costs one credit; the
// response echoes the post-charge balance.
func (h *APIHandler) Example(w http.ResponseWriter, r *http.Request) {
	acct, ok := AccountFrom(r.Context())
	if !ok {
		// Only reachable if the route is mounted outside the pipeline.
		writeError(w, http.StatusUnauthorized, "Invalid API key")
		return
	}
	writeJSON(w, http.StatusOK, ExampleResponse{
		Message:          "This is a protected endpoint. One credit was deducted.",
		CreditsRemaining: acct.Credits,
	})
}

// Credits reports the caller's remaining balance. The lookup itself is a
// protected request and therefore costs one credit.
func (h *APIHandler) Credits(w http.ResponseWriter, r *http.Request) {
	acct, ok := AccountFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid API key")
		return
	}
	writeJSON(w, http.StatusOK, CreditsResponse{
		AccountID: acct.ID,
		Email:     acct.Email,
		Credits:   acct.Credits,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
