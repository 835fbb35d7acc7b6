package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/workout"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.svc.Templates(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tpl, ok, err := s.svc.Registry.Template(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var tpl models.WorkoutTemplate
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.svc.Registry.Update(r.Context(), name, tpl); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleResetTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.svc.Registry.Reset(r.Context(), name); err != nil {
		s.writeError(w, err)
		return
	}
	tpl, ok, err := s.svc.Registry.Template(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		// Reset of a non-default name is a no-op.
		writeJSON(w, http.StatusOK, map[string]string{"status": "unchanged"})
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleListSplits(w http.ResponseWriter, r *http.Request) {
	splits, err := s.svc.Splits.Splits(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if splits == nil {
		splits = []models.WorkoutSplit{}
	}
	writeJSON(w, http.StatusOK, splits)
}

func (s *Server) handleActiveSplit(w http.ResponseWriter, r *http.Request) {
	active, err := s.svc.Splits.ActiveSplit(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if active == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active split"})
		return
	}
	writeJSON(w, http.StatusOK, active)
}

type createSplitRequest struct {
	Name string   `json:"name"`
	Days []string `json:"days"`
}

func (s *Server) handleCreateSplit(w http.ResponseWriter, r *http.Request) {
	var req createSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	split, err := s.svc.Splits.Create(r.Context(), req.Name, req.Days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, split)
}

func (s *Server) handleDeleteSplit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.Splits.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleActivateSplit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.Splits.Activate(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

func (s *Server) handleSkipDay(w http.ResponseWriter, r *http.Request) {
	split, err := s.svc.Splits.SkipDay(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, split)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.svc.Sessions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sessions == nil {
		sessions = []models.WorkoutSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

type startSessionRequest struct {
	WorkoutType string `json:"workoutType"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.WorkoutType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workoutType is required"})
		return
	}
	sess, err := s.svc.Recorder.Start(r.Context(), req.WorkoutType)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// currentSessionView is the in-progress session plus its rest countdown.
type currentSessionView struct {
	Session       models.WorkoutSession `json:"session"`
	RestRemaining int                   `json:"restRemaining"`
}

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.svc.Recorder.Current()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no session in progress"})
		return
	}
	writeJSON(w, http.StatusOK, currentSessionView{
		Session:       sess,
		RestRemaining: s.svc.Recorder.RestRemaining(),
	})
}

type updateSetRequest struct {
	Exercise int     `json:"exercise"`
	Set      int     `json:"set"`
	Field    string  `json:"field"`
	Value    float64 `json:"value"`
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var req updateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.svc.Recorder.UpdateSet(r.Context(), req.Exercise, req.Set, workout.SetField(req.Field), req.Value); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type completeSetRequest struct {
	Exercise int `json:"exercise"`
	Set      int `json:"set"`
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	var req completeSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.svc.Recorder.CompleteSet(r.Context(), req.Exercise, req.Set); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "completed",
		"restRemaining": s.svc.Recorder.RestRemaining(),
	})
}

func (s *Server) handleFinalizeSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Recorder.Finalize(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Progress(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTopLifts(w http.ResponseWriter, r *http.Request) {
	lifts, err := s.svc.TopLifts(r.Context(), 5)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if lifts == nil {
		lifts = []workout.Lift{}
	}
	writeJSON(w, http.StatusOK, lifts)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workout.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, workout.ErrNotFound), errors.Is(err, workout.ErrNoActiveSession):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, workout.ErrLastSplit), errors.Is(err, workout.ErrSessionCompleted):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		s.log.Error("handler error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
