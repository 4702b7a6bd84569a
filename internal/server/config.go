// SPDX-License-Identifier: Apache-2.0

package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/projeval/evalctl/internal/config"
	"github.com/projeval/evalctl/internal/logger"
)

// importResponse mirrors the structured success/failure contract of the
// resolver's import operation.
type importResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// getConfig returns the effective settings. Recognized query parameters on
// the request (api_base, debug, mock) overlay the response transiently,
// which lets a page pass its own URL parameters through without mutating
// the session.
func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	settings := config.OverlayQuery(h.resolver.Snapshot(), r.URL.Query())
	h.writeJSON(w, r, http.StatusOK, settings)
}

// updateConfig applies a JSON patch object to the live settings.
func (h *Handler) updateConfig(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, importResponse{Success: false, Message: "invalid patch body"})
		return
	}

	h.resolver.Apply(r.Context(), patch)
	h.writeJSON(w, r, http.StatusOK, h.resolver.Snapshot())
}

// resetConfig restores the defaults.
func (h *Handler) resetConfig(w http.ResponseWriter, r *http.Request) {
	h.resolver.Reset(r.Context())
	h.writeJSON(w, r, http.StatusOK, h.resolver.Snapshot())
}

// exportConfig returns the versioned export envelope.
func (h *Handler) exportConfig(w http.ResponseWriter, r *http.Request) {
	out, err := h.resolver.Export()
	if err != nil {
		logger.FromRequest(r).Error().Err(err).Msg("exporting settings")
		h.writeJSON(w, r, http.StatusInternalServerError, importResponse{Success: false, Message: "export failed"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="evalctl-settings.json"`)
	_, _ = w.Write([]byte(out))
}

// importConfig replaces the live settings from an export envelope. A bad
// payload is a structured 400, never an applied fragment.
func (h *Handler) importConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, importResponse{Success: false, Message: "unreadable body"})
		return
	}

	if err := h.resolver.Import(r.Context(), string(body)); err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, importResponse{Success: false, Message: err.Error()})
		return
	}

	h.writeJSON(w, r, http.StatusOK, importResponse{Success: true})
}
