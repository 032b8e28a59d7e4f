package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nerrad567/pairing-core/internal/audit"
	"github.com/nerrad567/pairing-core/internal/auth"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessTokenTTL returns the configured access token lifetime.
func (s *Server) accessTokenTTL() time.Duration {
	minutes := s.secCfg.JWT.AccessTokenTTL
	if minutes <= 0 {
		minutes = 15 //nolint:mnd // default 15 minutes
	}
	return time.Duration(minutes) * time.Minute
}

// handleLogin authenticates an account and returns a JWT access token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	account, err := auth.Authenticate(r.Context(), s.accounts, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAccountInactive) {
			s.recordLogin(r, audit.ActionLoginFailed, "", map[string]any{
				"email":  req.Email,
				"reason": err.Error(),
			})
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeInternalError(w, "authentication failed")
		return
	}

	ttl := s.accessTokenTTL()
	token, err := auth.GenerateAccessToken(account, s.secCfg.JWT.Secret, ttl)
	if err != nil {
		s.logger.Error("failed to generate access token", "error", err)
		writeInternalError(w, "failed to generate token")
		return
	}

	s.recordLogin(r, audit.ActionLogin, account.ID, nil)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
	})
}

// recordLogin writes a login audit entry. Failures are logged only.
func (s *Server) recordLogin(r *http.Request, action, accountID string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	details["remote"] = clientIP(r)

	// The entry must be written even if the client has gone away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), healthCheckTimeout)
	defer cancel()

	err := s.audit.Record(ctx, &audit.Entry{
		Action:     action,
		EntityType: audit.EntityAccount,
		EntityID:   accountID,
		AccountID:  accountID,
		Source:     audit.SourceAPI,
		Details:    details,
	})
	if err != nil {
		s.logger.Error("audit write failed", "action", action, "error", err)
	}
}
