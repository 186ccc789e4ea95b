package httpapi

import (
	"encoding/json"
	"net/http"
	"time"
)

// maxBodyBytes caps JSON request bodies. It leaves headroom above the
// decoded attachment ceiling for base64 overhead.
const maxBodyBytes = 10 * 1024 * 1024

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.TokenValidityDuration / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	user, token, err := s.users.Signup(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	s.setSessionCookie(w, token)
	respondJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	s.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	respondMessage(w, http.StatusOK, "Logged out successfully")
}

// handleCheck returns the authenticated user, for session probes on page
// load.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	ProfilePic string `json:"profilePic"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateProfileRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	updated, err := s.users.UpdateProfilePic(r.Context(), user.ID, req.ProfilePic)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}
