package handlers

import "net/http"

// getTrackLayout returns the full layout snapshot: sections, switches,
// accessories and connections in one response, enough to render the whole
// board.
func (rt *Router) getTrackLayout(w http.ResponseWriter, req *http.Request) {
	snap, err := rt.layout.Snapshot(flagQuery(req, "includeInactive"))
	if err != nil {
		rt.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}
