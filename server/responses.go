package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/varsityhq/varsity-server/internal/metrics"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Error codes returned in structured error bodies.
const (
	CodeInvalidToken            = "INVALID_TOKEN"
	CodeInvalidRefreshToken     = "INVALID_REFRESH_TOKEN"
	CodeTokenAlreadyBlacklisted = "TOKEN_ALREADY_BLACKLISTED"
	CodeMemberNotFound          = "MEMBER_NOT_FOUND"
	CodeOAuthProcessingError    = "OAUTH_PROCESSING_ERROR"
	CodeEventNotFound           = "EVENT_NOT_FOUND"
	CodeNotificationNotFound    = "NOTIFICATION_NOT_FOUND"
	CodeBadRequest              = "BAD_REQUEST"
	CodeInternalError           = "INTERNAL_ERROR"
)

// errorBody is the stable error envelope: code, human-readable message,
// timestamp. Raw internal failures are never surfaced.
type errorBody struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, route string, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
	metrics.HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
}

func writeError(w http.ResponseWriter, route string, status int, code, message string) {
	writeJSON(w, route, status, errorBody{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
