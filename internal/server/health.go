// SPDX-License-Identifier: Apache-2.0

package server

import "net/http"

// health runs one connectivity probe against the configured backend. The
// response is always 200 with the probe outcome in the body; an unreachable
// backend is a defined result, not a server error.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	result := h.checker.Check(r.Context())
	h.writeJSON(w, r, http.StatusOK, result)
}
