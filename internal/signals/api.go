package signals

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

// Handler provides HTTP handlers for behavioral signals
type Handler struct {
	repo *Repository
}

// NewHandler creates a new signals handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Register mounts the signal routes on the given router
func (h *Handler) Register(r chi.Router) {
	r.Route("/subjects/{subjectCode}/signals", func(r chi.Router) {
		r.Get("/", h.ListSignals)
		r.Get("/latest", h.GetLatest)
		r.Post("/", h.CreateSignal)
	})
	r.Delete("/signals/{signalID}", h.DeleteSignal)
}

// CreateSignal records one day's behavioral observation
func (h *Handler) CreateSignal(w http.ResponseWriter, r *http.Request) {
	subjectCode, ok := subjectFromURL(w, r)
	if !ok {
		return
	}

	var s Signal
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	s.ID = types.NewID()
	s.SubjectCode = subjectCode
	s.CreatedAt = time.Now().UTC()

	if err := s.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), &s); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, s)
}

// ListSignals lists a subject's signals, newest first
func (h *Handler) ListSignals(w http.ResponseWriter, r *http.Request) {
	subjectCode, ok := subjectFromURL(w, r)
	if !ok {
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, _ = strconv.Atoi(l)
	}

	list, err := h.repo.ListBySubject(r.Context(), subjectCode, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  list,
		"total": len(list),
	})
}

// GetLatest returns the subject's most recent signal
func (h *Handler) GetLatest(w http.ResponseWriter, r *http.Request) {
	subjectCode, ok := subjectFromURL(w, r)
	if !ok {
		return
	}

	s, err := h.repo.GetLatest(r.Context(), subjectCode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// DeleteSignal removes a signal
func (h *Handler) DeleteSignal(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "signalID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid signal ID"))
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Helpers ---

func subjectFromURL(w http.ResponseWriter, r *http.Request) (types.SubjectID, bool) {
	code := types.SubjectID(chi.URLParam(r, "subjectCode"))
	if !code.IsValid() {
		writeError(w, errors.BadRequest("invalid subject code"))
		return "", false
	}
	return code, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*errors.AppError); ok {
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
