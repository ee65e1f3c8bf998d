package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// writeJSON writes data with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode json response", zap.Error(err))
	}
}

// writeJSONError writes {"error": msg} with the given status code.
func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSONError(w, http.StatusBadRequest, msg)
}
