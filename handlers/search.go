package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"moviemirror/internal/auth"
	"moviemirror/internal/search"
	"moviemirror/models"
	"moviemirror/services/catalog"
	"moviemirror/services/history"
)

// SearchHandler drives one search controller per account. Anonymous
// visitors share a single controller keyed by the anonymous account ID,
// matching how the rest of the app treats signed-out browsing.
type SearchHandler struct {
	catalog *catalog.Service
	history *history.Service

	mu          sync.Mutex
	controllers map[string]*search.Controller
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(catalogSvc *catalog.Service, historySvc *history.Service) *SearchHandler {
	return &SearchHandler{
		catalog:     catalogSvc,
		history:     historySvc,
		controllers: make(map[string]*search.Controller),
	}
}

func (h *SearchHandler) controllerFor(r *http.Request) *search.Controller {
	accountID := auth.GetAccountID(r)
	if accountID == "" {
		accountID = models.AnonymousAccountID
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	ctrl, ok := h.controllers[accountID]
	if !ok {
		ctrl = search.NewController(accountID, h.catalog, h.history)
		h.controllers[accountID] = ctrl
	}
	return ctrl
}

// SubmitRequest represents a new search submission.
type SubmitRequest struct {
	Query string `json:"query"`
}

// PageRequest represents a page change for the active query.
type PageRequest struct {
	Page int `json:"page"`
}

// Submit runs a fresh search and returns the first page of results.
func (h *SearchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.controllerFor(r).Submit(r.Context(), req.Query)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, snap)
}

// State returns the current search state without fetching anything.
func (h *SearchHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.controllerFor(r).State())
}

// ChangePage moves the active query to another result page.
func (h *SearchHandler) ChangePage(w http.ResponseWriter, r *http.Request) {
	var req PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.controllerFor(r).ChangePage(r.Context(), req.Page)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, snap)
}

// Clear resets the active query and results.
func (h *SearchHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.controllerFor(r).Clear()
	writeJSON(w, map[string]string{"status": "cleared"})
}

// History returns the account's recent queries, most recent first.
func (h *SearchHandler) History(w http.ResponseWriter, r *http.Request) {
	queries := h.controllerFor(r).History()
	if queries == nil {
		queries = []string{}
	}
	writeJSON(w, map[string][]string{"history": queries})
}

// SelectHistory re-runs a remembered query.
func (h *SearchHandler) SelectHistory(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.controllerFor(r).SelectHistory(r.Context(), req.Query)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, snap)
}

// ClearHistory wipes the account's recent queries.
func (h *SearchHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.controllerFor(r).ClearHistory(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	writeJSON(w, map[string]string{"status": "cleared"})
}

func writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, "search query is empty")
	case errors.Is(err, search.ErrPageOutOfRange):
		writeError(w, http.StatusBadRequest, "page out of range")
	case errors.Is(err, search.ErrNoActiveQuery):
		writeError(w, http.StatusBadRequest, "no active search query")
	default:
		writeCatalogError(w, err)
	}
}
