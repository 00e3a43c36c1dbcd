package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"homelist/auth"
	"homelist/property"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("httpapi: encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Success: false, Message: message})
}

// respondServiceError maps domain errors to the taxonomy: bad input and
// conflicts are 400, missing resources 404, anything unexpected 500 with
// detail suppressed outside development mode.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, auth.ErrDuplicateEmail):
		respondError(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, auth.ErrWeakPassword):
		respondError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
	case errors.Is(err, auth.ErrInvalidInput), errors.Is(err, property.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrVerificationFailed):
		respondError(w, http.StatusBadRequest, "Invalid or expired token")
	case errors.Is(err, auth.ErrAlreadyVerified):
		respondError(w, http.StatusBadRequest, "Email already verified")
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, property.ErrNotFound):
		respondError(w, http.StatusNotFound, "Property not found")
	default:
		log.Printf("httpapi: internal error: %v", err)
		resp := errorResponse{Success: false, Message: "Server error"}
		if s.devMode {
			resp.Error = err.Error()
		}
		respondJSON(w, http.StatusInternalServerError, resp)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
