package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"mercato/apperr"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]any{"success": false, "message": msg})
}

// RespondWithAppError maps a tagged error to its status code. The underlying
// cause is logged, never echoed to the client.
func RespondWithAppError(w http.ResponseWriter, err error) {
	if apperr.KindOf(err) == apperr.Internal {
		log.Printf("internal error: %v", err)
	}
	RespondWithError(w, apperr.StatusCode(err), apperr.Message(err))
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

type M map[string]interface{}
