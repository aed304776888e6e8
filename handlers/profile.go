package handlers

import (
	"net/http"
	"time"

	"moviemirror/internal/auth"
	"moviemirror/services/accounts"
	"moviemirror/services/history"
	"moviemirror/services/sessions"
)

// ProfileHandler serves the signed-in profile page data. All routes are
// behind the session middleware, so the account ID is always present.
type ProfileHandler struct {
	accounts *accounts.Service
	sessions *sessions.Service
	history  *history.Service
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(accountsSvc *accounts.Service, sessionsSvc *sessions.Service, historySvc *history.Service) *ProfileHandler {
	return &ProfileHandler{
		accounts: accountsSvc,
		sessions: sessionsSvc,
		history:  historySvc,
	}
}

// ProfileResponse is the payload for GET /api/profile.
type ProfileResponse struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Name          string   `json:"name"`
	CreatedAt     string   `json:"createdAt"`
	SearchHistory []string `json:"searchHistory"`
}

// Get returns the current account's profile and search history.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := auth.GetAccountID(r)

	account, ok := h.accounts.Get(accountID)
	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	searchHistory := h.history.List(accountID)
	if searchHistory == nil {
		searchHistory = []string{}
	}

	writeJSON(w, ProfileResponse{
		ID:            account.ID,
		Email:         account.Email,
		Name:          account.Name,
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
		SearchHistory: searchHistory,
	})
}

// ClearHistory wipes the account's search history.
func (h *ProfileHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Clear(auth.GetAccountID(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	writeJSON(w, map[string]string{"status": "cleared"})
}

// Logout everywhere: revokes every session for the account.
func (h *ProfileHandler) RevokeAllSessions(w http.ResponseWriter, r *http.Request) {
	count := h.sessions.RevokeAllForAccount(auth.GetAccountID(r))
	clearSessionCookie(w)
	writeJSON(w, map[string]int{"revoked": count})
}
