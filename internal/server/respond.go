package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/OmarSalvatierra99/cleandoc/upload"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError reports err as JSON. Upload errors carry their own status and
// message; anything else is an internal error whose details stay in the log.
func writeError(w http.ResponseWriter, err error) {
	var uerr *upload.Error
	if errors.As(err, &uerr) {
		writeJSON(w, uerr.Status(), errorResponse{Error: uerr.Error(), Status: uerr.Status()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "Error interno del servidor",
		Message: "Ocurrió un error procesando los archivos",
	})
}
