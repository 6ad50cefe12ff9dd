package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/railstack/layoutd/internal/apperrors"
	"github.com/railstack/layoutd/internal/models"
	"github.com/railstack/layoutd/internal/services/control"
	"github.com/railstack/layoutd/internal/ws"
)

// accessoryOn forwards an explicit on command, bypassing the dispatch
// table. Explicit commands work on inactive accessories too; they are the
// maintenance override.
func (rt *Router) accessoryOn(w http.ResponseWriter, req *http.Request) {
	acc, ok := rt.loadAccessory(w, req)
	if !ok {
		return
	}
	if err := rt.control.On(acc); err != nil {
		rt.respondError(w, err)
		return
	}
	rt.broadcast(ws.Event{Type: "accessoryAction", AccessoryID: acc.ID, Payload: map[string]string{"action": "on"}})
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) accessoryOff(w http.ResponseWriter, req *http.Request) {
	acc, ok := rt.loadAccessory(w, req)
	if !ok {
		return
	}
	if err := rt.control.Off(acc); err != nil {
		rt.respondError(w, err)
		return
	}
	rt.broadcast(ws.Event{Type: "accessoryAction", AccessoryID: acc.ID, Payload: map[string]string{"action": "off"}})
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) accessoryPulse(w http.ResponseWriter, req *http.Request) {
	acc, ok := rt.loadAccessory(w, req)
	if !ok {
		return
	}

	ms, err := strconv.Atoi(mux.Vars(req)["ms"])
	if err != nil {
		rt.respondError(w, apperrors.Validation("milliseconds must be an integer"))
		return
	}
	if err := rt.control.Pulse(acc, ms); err != nil {
		rt.respondError(w, err)
		return
	}
	rt.broadcast(ws.Event{Type: "accessoryAction", AccessoryID: acc.ID, Payload: map[string]interface{}{"action": "pulse", "milliseconds": ms}})
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// accessoryApply performs the action implied by the accessory's control
// type. The body is optional.
func (rt *Router) accessoryApply(w http.ResponseWriter, req *http.Request) {
	acc, ok := rt.loadAccessory(w, req)
	if !ok {
		return
	}

	var applyReq control.ApplyRequest
	if req.Body != nil && req.ContentLength != 0 {
		if err := decodeBody(req, &applyReq); err != nil {
			rt.respondError(w, err)
			return
		}
	}

	result, err := rt.control.Apply(acc, applyReq)
	if err != nil {
		rt.respondError(w, err)
		return
	}
	rt.broadcast(ws.Event{Type: "accessoryAction", AccessoryID: acc.ID, Payload: result})
	respondJSON(w, http.StatusOK, result)
}

// loadAccessory resolves the {id} route variable; a false return means the
// error response was already written.
func (rt *Router) loadAccessory(w http.ResponseWriter, req *http.Request) (*models.Accessory, bool) {
	id, err := pathID(req)
	if err != nil {
		rt.respondError(w, err)
		return nil, false
	}
	row, err := rt.layout.Accessory(id)
	if err != nil {
		rt.respondError(w, err)
		return nil, false
	}
	return row, true
}
