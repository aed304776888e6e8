package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"moviemirror/api"
	"moviemirror/internal/authstate"
	"moviemirror/models"
	"moviemirror/services/accounts"
	"moviemirror/services/sessions"
)

// AuthHandler handles authentication endpoints. All session state flows
// through the auth state store; the handler never talks to the sessions
// service directly except for Refresh, which rotates expiry in place.
type AuthHandler struct {
	store    *authstate.Store
	sessions *sessions.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(store *authstate.Store, sessionsSvc *sessions.Service) *AuthHandler {
	return &AuthHandler{
		store:    store,
		sessions: sessionsSvc,
	}
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SessionResponse represents a signed-in session.
type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

// AccountResponse represents account info for the current session.
type AccountResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Login authenticates an account and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	session, err := h.store.Login(req.Email, req.Password, r.Header.Get("User-Agent"), api.ClientIP(r), req.RememberMe)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	setSessionCookie(w, session)
	writeSessionResponse(w, session)
}

// Register creates an account and signs it in immediately.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	session, err := h.store.Register(req.Email, req.Password, req.Name, r.Header.Get("User-Agent"), api.ClientIP(r))
	if err != nil {
		writeAuthError(w, err)
		return
	}

	setSessionCookie(w, session)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sessionResponseFor(session))
}

// Logout invalidates the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := api.ExtractToken(r)
	if token == "" {
		http.Error(w, `{"error": "no session token"}`, http.StatusBadRequest)
		return
	}

	if err := h.store.Logout(token); err != nil {
		// Session not found is OK - might already be expired
		if !errors.Is(err, sessions.ErrSessionNotFound) {
			http.Error(w, `{"error": "failed to revoke session"}`, http.StatusInternalServerError)
			return
		}
	}

	clearSessionCookie(w)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "logged out"})
}

// Me returns the current authentication state for the caller's token.
// Unlike the guarded endpoints this one answers 200 for anonymous
// callers so the client can render its signed-out view.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	state := h.store.Current(api.ExtractToken(r))
	if state.IsLoading {
		w.Header().Set("Retry-After", "1")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "authentication state loading"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if !state.IsAuthenticated {
		json.NewEncoder(w).Encode(map[string]any{"isAuthenticated": false})
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"isAuthenticated": true,
		"user": AccountResponse{
			ID:    state.User.AccountID,
			Email: state.User.Email,
			Name:  state.User.Name,
		},
	})
}

// Refresh extends the session expiration.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := api.ExtractToken(r)
	if token == "" {
		http.Error(w, `{"error": "not authenticated"}`, http.StatusUnauthorized)
		return
	}

	session, err := h.sessions.Refresh(token)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid or expired session"})
		return
	}

	setSessionCookie(w, session)
	writeSessionResponse(w, session)
}

// writeAuthError maps account and session errors to HTTP statuses.
func writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, accounts.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "invalid email or password"
	case errors.Is(err, accounts.ErrEmailExists):
		status = http.StatusConflict
		message = "an account with this email already exists"
	case errors.Is(err, accounts.ErrWeakPassword):
		status = http.StatusBadRequest
		message = "password must be at least 6 characters"
	case errors.Is(err, accounts.ErrEmailRequired), errors.Is(err, accounts.ErrPasswordRequired):
		status = http.StatusBadRequest
		message = "email and password are required"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeSessionResponse(w http.ResponseWriter, session models.Session) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessionResponseFor(session))
}

func sessionResponseFor(session models.Session) SessionResponse {
	return SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		AccountID: session.AccountID,
		Email:     session.Email,
		Name:      session.Name,
	}
}

func setSessionCookie(w http.ResponseWriter, session models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     api.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     api.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
