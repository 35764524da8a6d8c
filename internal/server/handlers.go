package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/OpsDeck/OpsDeck/internal/agents"
	"github.com/OpsDeck/OpsDeck/internal/billing"
	"github.com/OpsDeck/OpsDeck/internal/store"
	"github.com/OpsDeck/OpsDeck/internal/tasks"
	"github.com/OpsDeck/OpsDeck/internal/warroom"
)

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	writeCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tasks.ErrValidation),
		errors.Is(err, warroom.ErrValidation),
		errors.Is(err, billing.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, tasks.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: %v", err)
		return false
	}
	return true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	data := s.store.Read()
	counts := map[string]int{}
	for _, t := range data.Tasks {
		counts[t.Status]++
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"version":   s.cfg.Version,
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"agent_cli": s.cfg.Integrations.AgentCLI,
		"tasks":     len(data.Tasks),
		"by_status": counts,
		"messages":  len(data.WarRoom.Messages),
	})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	data := s.store.Read()

	roster, err := s.directory.List(r.Context())
	if err != nil || len(roster) == 0 {
		roster = agents.FallbackRoster()
	}
	sessions := s.directory.Sessions(r.Context(), roster)

	writeJSON(w, http.StatusOK, map[string]any{
		"agents":   roster,
		"sessions": sessions,
		"tasks":    data.Tasks,
		"war_room": data.WarRoom.Tail(warroom.ThreadWindow),
	})
}

type createTaskRequest struct {
	Title   string `json:"title"`
	AgentID string `json:"agentId"`
	Details string `json:"details"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	task, err := s.dispatcher.Create(r.Context(), req.Title, req.AgentID, req.Details)
	if err != nil {
		writeError(w, statusFor(err), "%v", err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleDispatchTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, err := s.dispatcher.Dispatch(r.Context(), id)
	if err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			writeError(w, http.StatusNotFound, "%v", err)
			return
		}
		// The agent run failed; the task carries the failure detail.
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": err.Error(),
			"task":  task,
		})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleWarRoomGet(w http.ResponseWriter, r *http.Request) {
	thread := s.room.Thread()
	if thread == nil {
		thread = []store.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": thread})
}

type warRoomPostRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

func (s *Server) handleWarRoomPost(w http.ResponseWriter, r *http.Request) {
	var req warRoomPostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.room.Post(r.Context(), req.Author, req.Text)
	if err != nil {
		writeError(w, statusFor(err), "%v", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req billing.QuoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	q, err := s.billing.CreateQuote(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), "%v", err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req billing.QuoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	inv, err := s.billing.CreateInvoice(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), "%v", err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req billing.Booking
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := s.billing.CreateBooking(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), "%v", err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleIntegrations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Integrations)
}
