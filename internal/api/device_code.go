package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/pairing-core/internal/pairing"
)

// Input bounds for the device code endpoint.
const (
	maxStateLength     = 256
	maxPackagingLength = 64
)

// deviceCodeResponse is the body returned to the device. packaging_type is
// stored with the session but not returned.
type deviceCodeResponse struct {
	State      string `json:"state"`
	Token      string `json:"token"`
	Expiration int    `json:"expiration"`
	Code       string `json:"code"`
}

// handleDeviceCode issues a pairing code for the state supplied by the device.
func (s *Server) handleDeviceCode(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
			return
		}
		writeBadRequest(w, "invalid form body")
		return
	}
	state := r.Form.Get("state")
	packaging := r.Form.Get("packaging")

	switch {
	case state == "":
		writeBadRequest(w, "state is required")
		return
	case len(state) > maxStateLength:
		writeBadRequest(w, "state is too long")
		return
	case len(packaging) > maxPackagingLength:
		writeBadRequest(w, "packaging is too long")
		return
	}

	session, err := s.issuer.Issue(r.Context(), state, packaging)
	if err != nil {
		switch {
		case errors.Is(err, pairing.ErrStateRequired):
			writeBadRequest(w, "state is required")
		case errors.Is(err, pairing.ErrCodeSpaceExhausted):
			s.logger.Error("pairing code issuance exhausted", "error", err)
			writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "no pairing code available, retry later")
		default:
			s.logger.Error("pairing code issuance failed",
				"error", err,
				"request_id", r.Context().Value(ctxKeyRequestID),
			)
			writeInternalError(w, "failed to issue pairing code")
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, deviceCodeResponse{
		State:      session.State,
		Token:      session.Token,
		Expiration: session.Expiration,
		Code:       session.Code,
	})
}
