// File: internal/infra/web/handlers.go
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"care-compass/internal/domain"
	"care-compass/internal/domain/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "care-compass-api",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// --- chat ---

type sessionCreateRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateRequest
	// Body is optional; an anonymous caller posts an empty body.
	_ = json.NewDecoder(r.Body).Decode(&req)

	sess, welcome, err := s.chatUC.CreateSession(r.Context(), req.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"session_id":      sess.ID,
		"message":         "Chat session created successfully",
		"welcome_message": welcome,
	})
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	reply, err := s.chatUC.HandleMessage(r.Context(), req.SessionID, req.UserID, req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleSessionSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	summary, err := s.chatUC.Summary(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	// Deleting an unknown session still reports success.
	if _, err := s.chatUC.EndSession(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "Session ended successfully",
		"session_id": id,
	})
}

func (s *Server) handleChatHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.chatUC.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "unhealthy",
			"service": "chatbot",
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"service":         "chatbot",
		"active_sessions": stats.ActiveCount,
		"model":           s.modelName,
	})
}

func (s *Server) handleChatStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.chatUC.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active_sessions":            stats.ActiveCount,
		"oldest_session_age_seconds": int(stats.OldestSessionAge.Seconds()),
	})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if s.pool != nil {
		if err := s.pool.Submit(func(ctx context.Context) error {
			_, err := s.chatUC.SweepExpired(ctx)
			return err
		}); err == nil {
			writeJSON(w, http.StatusAccepted, map[string]string{
				"message": "Session cleanup started in background",
			})
			return
		}
		// Queue saturated; fall back to the inline sweep.
	}
	n, err := s.chatUC.SweepExpired(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":          "Session cleanup completed",
		"sessions_removed": n,
	})
}

type quickActionRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Location  string `json:"location"`
}

// handleQuickAction routes a canned message through the normal pipeline.
func (s *Server) handleQuickAction(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quickActionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		reply, err := s.chatUC.HandleMessage(r.Context(), req.SessionID, req.UserID, message)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

func (s *Server) handleQuickFindClinics(w http.ResponseWriter, r *http.Request) {
	var req quickActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Location == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "location is required"})
		return
	}
	reply, err := s.chatUC.HandleMessage(r.Context(), req.SessionID, req.UserID, "Find clinics near "+req.Location)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// --- clinics ---

func (s *Server) clinicsReady(w http.ResponseWriter) bool {
	if s.clinicUC == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "clinic database not configured"})
		return false
	}
	return true
}

func (s *Server) handleListClinics(w http.ResponseWriter, r *http.Request) {
	if !s.clinicsReady(w) {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	clinics, err := s.clinicUC.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if clinics == nil {
		clinics = []*model.Clinic{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clinics": clinics,
		"total":   len(clinics),
	})
}

func (s *Server) handleGetClinic(w http.ResponseWriter, r *http.Request) {
	if !s.clinicsReady(w) {
		return
	}
	clinic, err := s.clinicUC.Get(r.Context(), chi.URLParam(r, "clinicID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clinic)
}

func (s *Server) handleCreateClinic(w http.ResponseWriter, r *http.Request) {
	if !s.clinicsReady(w) {
		return
	}
	var c model.Clinic
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	created, err := s.clinicUC.Create(r.Context(), &c)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type clinicSearchRequest struct {
	Lat           float64  `json:"lat"`
	Lng           float64  `json:"lng"`
	RadiusMiles   float64  `json:"radius_miles"`
	ServiceType   string   `json:"service_type"`
	Languages     []string `json:"languages"`
	WalkInOnly    bool     `json:"walk_in_only"`
	LGBTQFriendly *bool    `json:"lgbtq_friendly"`
	ImmigrantSafe *bool    `json:"immigrant_safe"`
	Limit         int      `json:"limit"`
}

func (s *Server) handleSearchClinics(w http.ResponseWriter, r *http.Request) {
	if !s.clinicsReady(w) {
		return
	}
	var req clinicSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	filter := model.ClinicFilter{
		ServiceType:   req.ServiceType,
		Languages:     req.Languages,
		WalkInOnly:    req.WalkInOnly,
		LGBTQFriendly: req.LGBTQFriendly,
		ImmigrantSafe: req.ImmigrantSafe,
	}
	result, err := s.clinicUC.Search(r.Context(), req.Lat, req.Lng, req.RadiusMiles, filter, req.Limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if result.Clinics == nil {
		result.Clinics = []*model.Clinic{}
	}
	writeJSON(w, http.StatusOK, result)
}
