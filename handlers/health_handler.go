package handlers

import "net/http"

func Health(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil)
}
