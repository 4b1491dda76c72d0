package response

import (
	"encoding/json"
	"net/http"
)

type ErrorMessage struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func WriteError(w http.ResponseWriter, err ErrorMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(err)
}

// Envelope wraps successful payloads
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}
