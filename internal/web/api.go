package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/salon-agenda/internal/booking"
	"github.com/example/salon-agenda/internal/schedule"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) handleAPISlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workingHours": s.Hours,
		"slots":        s.slots,
		"stylists":     s.Stylists,
		"services":     s.Services,
	})
}

func (s *Server) handleAPIGrid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = s.today()
	}
	if !schedule.ValidDate(date) {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "date must be YYYY-MM-DD"})
		return
	}
	writeJSON(w, http.StatusOK, schedule.Project(s.Store.All(), date, s.slots, s.Stylists))
}

type createRequest struct {
	Date string `json:"date"`
	booking.Form
}

// handleAPICreate runs a whole open+submit cycle for one JSON request.
func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return
	}
	if req.Date == "" {
		req.Date = s.today()
	}

	wf := booking.New(s.Store, s.Log)
	if err := wf.Open(req.Time, req.Stylist); err != nil {
		writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
		return
	}
	a, err := wf.Submit(r.Context(), req.Date, req.Form)
	if err != nil {
		var fe *booking.FieldError
		if errors.As(err, &fe) {
			writeJSON(w, http.StatusBadRequest, apiError{Error: fe.Error(), Field: fe.Field})
			return
		}
		s.Log.Error("booking failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusCreated, a)
}
