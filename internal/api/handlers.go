package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dharsanguruparan/FabIntake/internal/intake"
	"github.com/dharsanguruparan/FabIntake/internal/model"
)

type ctxKey struct{}

type sessionView struct {
	ID string `json:"id"`
	intake.State
}

type ingestView struct {
	sessionView
	// Rejected holds every rejection of the batch; the error slot in the
	// state only keeps the last one.
	Rejected []string `json:"rejected"`
}

type deviceView struct {
	model.Device
	Accept string `json:"accept"`
}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		in, ok := s.store.Get(id)
		if !ok {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, in)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) (string, *intake.Intake) {
	return chi.URLParam(r, "sessionID"), r.Context().Value(ctxKey{}).(*intake.Intake)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	out := make([]deviceView, len(model.Catalog))
	for i, d := range model.Catalog {
		out[i] = deviceView{Device: d, Accept: d.Accept()}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	id, in := s.store.Open()
	respondJSON(w, http.StatusCreated, sessionView{ID: id, State: in.State()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, in := sessionFrom(r)
	respondJSON(w, http.StatusOK, sessionView{ID: id, State: in.State()})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	id, _ := sessionFrom(r)
	s.store.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectDevice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Device string `json:"device"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, in := sessionFrom(r)
	if err := in.SelectDevice(model.DeviceType(body.Device)); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sessionView{ID: id, State: in.State()})
}

func (s *Server) handleSelectPriority(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Priority string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id, in := sessionFrom(r)
	if err := in.SelectPriority(model.Priority(body.Priority)); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sessionView{ID: id, State: in.State()})
}

// handleIngest is the drop and file-picker adapter: every "files" part of the
// multipart body becomes one candidate, in body order.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	id, in := sessionFrom(r)
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		respondError(w, http.StatusBadRequest, "expecting multipart form")
		return
	}
	files, err := spoolFiles(s.cfg.StagingDir, mr)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.logger.Warn("spool upload failed", slog.String("session_id", id), slog.String("error", err.Error()))
		respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	report, err := in.Ingest(files)
	if err != nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	rejected := make([]string, len(report.Rejected))
	for i, rej := range report.Rejected {
		rejected[i] = rej.Message
	}
	respondJSON(w, http.StatusOK, ingestView{
		sessionView: sessionView{ID: id, State: in.State()},
		Rejected:    rejected,
	})
}

func (s *Server) handleRemoveFile(w http.ResponseWriter, r *http.Request) {
	id, in := sessionFrom(r)
	in.RemoveStaged(chi.URLParam(r, "fileID"))
	respondJSON(w, http.StatusOK, sessionView{ID: id, State: in.State()})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, in := sessionFrom(r)
	// The submission runs to completion even if the client disconnects.
	err := in.Submit(context.WithoutCancel(r.Context()))
	status := http.StatusOK
	switch {
	case err == nil:
	case errors.Is(err, intake.ErrEmptyBatch):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, intake.ErrSubmitInProgress):
		status = http.StatusConflict
	case errors.Is(err, intake.ErrSubmissionFailed):
		status = http.StatusBadGateway
	case errors.Is(err, intake.ErrClosed):
		respondError(w, http.StatusNotFound, "session not found")
		return
	default:
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, sessionView{ID: id, State: in.State()})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
