package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/railstack/layoutd/internal/apperrors"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondDetail sends the uniform error shape {"detail": "<message>"}
func respondDetail(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}

// respondError maps a classified error to its status code; unclassified
// errors are logged and hidden behind a generic 500.
func (rt *Router) respondError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		rt.logger.Error("request failed", zap.Error(err))
		respondDetail(w, status, "Internal Server Error")
		return
	}
	respondDetail(w, status, err.Error())
}

// decodeBody parses a JSON request body into dst.
func decodeBody(req *http.Request, dst interface{}) error {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		return apperrors.Validation("Invalid request payload")
	}
	return nil
}

// pathID extracts the {id} route variable.
func pathID(req *http.Request) (uint, error) {
	raw := mux.Vars(req)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperrors.Validationf("invalid id %q", raw)
	}
	return uint(id), nil
}

// boolQuery returns nil when the parameter is absent.
func boolQuery(req *http.Request, name string) (*bool, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.Validationf("invalid boolean %q for %s", raw, name)
	}
	return &v, nil
}

// flagQuery treats an absent parameter as false.
func flagQuery(req *http.Request, name string) bool {
	v, err := strconv.ParseBool(req.URL.Query().Get(name))
	return err == nil && v
}

// uintQuery returns nil when the parameter is absent.
func uintQuery(req *http.Request, name string) (*uint, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, apperrors.Validationf("invalid id %q for %s", raw, name)
	}
	u := uint(v)
	return &u, nil
}

// limitOffset applies the pagination defaults: limit 50, capped at 500.
func limitOffset(req *http.Request) (limit, offset int) {
	limit = 50
	if raw := req.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 && v <= 500 {
			limit = v
		}
	}
	if raw := req.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
