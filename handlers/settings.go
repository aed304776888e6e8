package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"moviemirror/services/catalog"
)

// SettingsHandler exposes runtime configuration changes. Only the
// catalog API key can be rotated without a restart.
type SettingsHandler struct {
	catalog *catalog.Service
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(catalogSvc *catalog.Service) *SettingsHandler {
	return &SettingsHandler{catalog: catalogSvc}
}

// UpdateCatalogKeyRequest is the payload for PUT /api/settings/catalog-key.
type UpdateCatalogKeyRequest struct {
	APIKey string `json:"apiKey"`
}

// UpdateCatalogKey rotates the catalog API key and drops cached
// responses so subsequent fetches use the new key.
func (h *SettingsHandler) UpdateCatalogKey(w http.ResponseWriter, r *http.Request) {
	var req UpdateCatalogKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		writeError(w, http.StatusBadRequest, "apiKey is required")
		return
	}

	h.catalog.UpdateAPIKey(key)
	log.Printf("[settings] catalog API key rotated")
	writeJSON(w, map[string]string{"status": "updated"})
}
