package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"homelist/auth"
)

type authResponse struct {
	Success bool            `json:"success"`
	Token   string          `json:"token"`
	User    auth.PublicUser `json:"user"`
	// Returned in lieu of a mail integration; clients drive the
	// verification flow with it.
	VerificationToken string `json:"verification_token,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.auth.Register(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	resp := authResponse{
		Success: true,
		Token:   result.Token,
		User:    result.User.Public(),
	}
	if result.User.VerificationToken != nil {
		resp.VerificationToken = *result.User.VerificationToken
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.auth.Login(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{
		Success: true,
		Token:   result.Token,
		User:    result.User.Public(),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user.Public(),
	})
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req updateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.auth.UpdateProfile(r.Context(), caller.ID, auth.UpdateProfileParams{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		AgencyName:    req.AgencyName,
		AgencyLicense: req.AgencyLicense,
		AgencyAddress: req.AgencyAddress,
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user.Public(),
	})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := s.auth.VerifyEmail(r.Context(), req.Token); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Email verified successfully",
	})
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := s.auth.ResendVerification(r.Context(), req.Email)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"message":            "Verification email sent",
		"verification_token": token,
	})
}

type updateUserRequest struct {
	Name          *string    `json:"name"`
	Email         *string    `json:"email"`
	Phone         *string    `json:"phone"`
	Role          *auth.Role `json:"role"`
	AgencyName    *string    `json:"agency_name"`
	AgencyLicense *string    `json:"agency_license"`
	AgencyAddress *string    `json:"agency_address"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.ListUsers(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	public := make([]auth.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	respondJSON(w, http.StatusOK, public)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Public())
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	targetID := chi.URLParam(r, "id")
	if targetID != caller.ID && caller.Role != auth.RoleAdmin {
		respondError(w, http.StatusForbidden, "Not authorized")
		return
	}

	var req updateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Only admins may change roles; a self-update quietly drops the field.
	if req.Role != nil && caller.Role != auth.RoleAdmin {
		req.Role = nil
	}

	user, err := s.auth.UpdateProfile(r.Context(), targetID, auth.UpdateProfileParams{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Role:          req.Role,
		AgencyName:    req.AgencyName,
		AgencyLicense: req.AgencyLicense,
		AgencyAddress: req.AgencyAddress,
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Public())
}

func (s *Server) handleSetUserVerified(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsVerified bool `json:"is_verified"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.auth.SetVerified(r.Context(), chi.URLParam(r, "id"), req.IsVerified)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user.Public())
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User removed",
	})
}
