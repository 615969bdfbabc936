package apiserver

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// writeJSONResponse writes a JSON success body with the given status code.
func writeJSONResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// pageParams reads the cursor and limit query parameters. limit is 0 when
// absent or unparseable; the service applies the default.
func pageParams(r *http.Request) (cursor string, limit int) {
	cursor = r.URL.Query().Get("cursor")
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	return cursor, limit
}
