package http

import (
	"encoding/json"
	"net/http"

	"claimsetter/backend/internal/domain/admin"

	"github.com/rs/zerolog/log"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Fail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, APIError{Message: msg})
}

// FailAdmin writes err using the status and code of its admin.Kind.
func FailAdmin(w http.ResponseWriter, err error) {
	status, code := mapAdminError(err)
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	WriteJSON(w, status, APIError{Message: msg, Code: code})
}

func mapAdminError(err error) (int, string) {
	switch admin.KindOf(err) {
	case admin.KindUserNotFound:
		return 404, "user_not_found"
	case admin.KindInvalidEmail:
		return 400, "invalid_email"
	case admin.KindPermissionDenied:
		return 403, "permission_denied"
	case admin.KindNetworkError:
		return 502, "network_error"
	case admin.KindInvalidCredential:
		log.Error().Err(err).Msg("service credential rejected")
		return 500, "invalid_credential"
	default:
		log.Error().Err(err).Msg("admin operation failed")
		return 500, "unknown"
	}
}
