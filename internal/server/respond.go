package server

import (
	"net/http"

	"github.com/goccy/go-json"
)

// All responses use the same envelope: {"ok": true, "data": ...} on
// success, {"ok": false, "error": "..."} on failure.

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": msg})
}
