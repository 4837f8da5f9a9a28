package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ampco/intake-cli/internal/stage"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, Response{Success: status < 400, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeEnvelope(w, status, Response{Error: &APIError{Code: code, Message: msg}})
}

func writeEnvelope(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

// stageStatus maps a failing stage to an HTTP status. Input problems are
// 422; upstream failures are 502.
func stageStatus(err error) (int, string) {
	name, ok := stage.Of(err)
	if !ok {
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
	code := strings.ToUpper(string(name)) + "_FAILED"
	switch name {
	case stage.Extract, stage.Parse, stage.Validate:
		return http.StatusUnprocessableEntity, code
	default:
		return http.StatusBadGateway, code
	}
}
