package subject

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/auth"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/events"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

// Handler provides HTTP handlers for the subject module
type Handler struct {
	repo    *Repository
	service *Service
	bus     *events.Bus
}

// NewHandler creates a new subject handler
func NewHandler(repo *Repository, service *Service, bus *events.Bus) *Handler {
	return &Handler{repo: repo, service: service, bus: bus}
}

// Register mounts the subject routes on the given router
func (h *Handler) Register(r chi.Router) {
	r.Route("/subjects", func(r chi.Router) {
		r.Get("/", h.ListSubjects)
		r.Post("/", h.EnrollSubject)

		r.Route("/{subjectCode}", func(r chi.Router) {
			r.Get("/", h.GetSubject)
			r.Put("/status", h.UpdateStatus)
		})
	})
}

// EnrollSubject allocates the next subject code and enrolls a subject
func (h *Handler) EnrollSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errors.BadRequest("invalid request body"))
			return
		}
	}

	subj, err := h.service.Enroll(r.Context(), req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, "subject.enrolled", map[string]any{"subject_code": subj.Code})

	writeJSON(w, http.StatusCreated, subj)
}

// ListSubjects lists subjects, optionally filtered by status
func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))

	subjects, err := h.repo.List(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  subjects,
		"total": len(subjects),
	})
}

// GetSubject gets a subject by code
func (h *Handler) GetSubject(w http.ResponseWriter, r *http.Request) {
	code := types.SubjectID(chi.URLParam(r, "subjectCode"))
	if !code.IsValid() {
		writeError(w, errors.BadRequest("invalid subject code"))
		return
	}

	subj, err := h.repo.Get(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subj)
}

// UpdateStatus changes a subject's support status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	code := types.SubjectID(chi.URLParam(r, "subjectCode"))
	if !code.IsValid() {
		writeError(w, errors.BadRequest("invalid subject code"))
		return
	}

	var req struct {
		Status Status `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	switch req.Status {
	case StatusActive, StatusPaused, StatusClosed:
	default:
		writeError(w, errors.Validation("invalid status", map[string]string{
			"status": "must be active, paused or closed",
		}))
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), code, req.Status, req.Notes); err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, "subject.status_changed", map[string]any{
		"subject_code": code,
		"status":       req.Status,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// --- Helpers ---

func (h *Handler) publish(r *http.Request, eventType string, data map[string]any) {
	if h.bus == nil {
		return
	}

	event := events.NewEvent(eventType, "subject", data)
	if user := auth.GetUser(r.Context()); user != nil {
		event = event.WithActor(user.ID.String(), user.UserType)
	}

	_ = h.bus.Publish(r.Context(), event)
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
