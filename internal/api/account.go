package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/pairing-core/internal/account"
	"github.com/nerrad567/pairing-core/internal/auth"
)

// changePasswordRequest is the body of PUT /account/password.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// handleChangePassword changes the authenticated account's password.
// A confirmation email is sent by the account service.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "missing bearer token")
		return
	}

	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeBadRequest(w, "current_password and new_password are required")
		return
	}

	err := s.passwords.ChangePassword(r.Context(), claims.Subject, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, account.ErrPasswordTooShort),
		errors.Is(err, account.ErrPasswordTooLong),
		errors.Is(err, account.ErrPasswordUnchanged):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusForbidden, ErrCodeForbidden, "current password is incorrect")
	case errors.Is(err, auth.ErrAccountNotFound), errors.Is(err, auth.ErrAccountInactive):
		writeUnauthorized(w, "account unavailable")
	default:
		s.logger.Error("password change failed",
			"account_id", claims.Subject,
			"error", err,
		)
		writeInternalError(w, "failed to change password")
	}
}
