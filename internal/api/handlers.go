package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mattjoyce/taskgate/internal/task"
)

// handleRunTask dispatches a single task and returns its result.
//
// Malformed requests (bad JSON, missing id, unknown action) are protocol
// faults and come back as 400 with an error body. Operational failures are
// ordinary results: 200 with success=false and a structured error.
func (s *Server) handleRunTask(w http.ResponseWriter, r *http.Request) {
	var t task.Task
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	result, err := s.dispatcher.Dispatch(r.Context(), &t)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// handleDefinition serves the task-language definition document.
func (s *Server) handleDefinition(w http.ResponseWriter, r *http.Request) {
	doc, err := s.definition()
	if err != nil {
		s.logger.Error("failed to read definition document", "error", err)
		s.writeError(w, http.StatusInternalServerError, "definition document unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// handleHealthz reports liveness and the registered actions.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Actions:       s.actions,
	})
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
