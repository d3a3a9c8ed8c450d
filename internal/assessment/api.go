package assessment

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/auth"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/events"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

// Handler provides HTTP handlers for the assessment module
type Handler struct {
	repo      *Repository
	extractor *Extractor
	bus       *events.Bus
}

// NewHandler creates a new assessment handler. The bus may be nil when
// the audit trail is disabled.
func NewHandler(repo *Repository, extractor *Extractor, bus *events.Bus) *Handler {
	return &Handler{repo: repo, extractor: extractor, bus: bus}
}

// Register mounts the assessment routes on the given router
func (h *Handler) Register(r chi.Router) {
	r.Route("/subjects/{subjectCode}/assessments", func(r chi.Router) {
		r.Get("/", h.ListAssessments)
		r.Get("/current", h.GetCurrent)
		r.Post("/extract", h.Extract)
		r.Post("/", h.CreateFromData)
	})

	r.Route("/assessments/{assessmentID}", func(r chi.Router) {
		r.Get("/", h.GetAssessment)
		r.Put("/", h.ReplaceAssessment)
		r.Delete("/", h.DeleteAssessment)
	})
}

// Extract runs the extraction pipeline on raw narrative text
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	subjectCode, ok := subjectFromURL(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	a, err := h.extractor.Extract(r.Context(), subjectCode, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.repo.Create(r.Context(), a); err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, "assessment.extracted", map[string]any{
		"assessment_id": a.ID,
		"subject_code":  a.SubjectCode,
		"confidence":    a.Confidence,
		"warnings":      len(a.Warnings),
	})

	writeJSON(w, http.StatusCreated, a)
}

// CreateFromData stores a directly uploaded structured assessment
func (h *Handler) CreateFromData(w http.ResponseWriter, r *http.Request) {
	subjectCode, ok := subjectFromURL(w, r)
	if !ok {
		return
	}

	var data AssessmentData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	a := NewFromData(subjectCode, data)
	if err := h.repo.Create(r.Context(), a); err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, "assessment.uploaded", map[string]any{
		"assessment_id": a.ID,
		"subject_code":  a.SubjectCode,
	})

	writeJSON(w, http.StatusCreated, a)
}

// ListAssessments lists a subject's assessments, newest first
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	subjectCode, ok := subjectFromURL(w, r)
	if !ok {
		return
	}

	assessments, err := h.repo.ListBySubject(r.Context(), subjectCode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  assessments,
		"total": len(assessments),
	})
}

// GetCurrent returns the subject's latest assessment
func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	subjectCode, ok := subjectFromURL(w, r)
	if !ok {
		return
	}

	a, err := h.repo.GetCurrent(r.Context(), subjectCode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// GetAssessment gets an assessment by ID
func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := h.repo.Get(r.Context(), chi.URLParam(r, "assessmentID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// ReplaceAssessment replaces the full data record of an assessment
func (h *Handler) ReplaceAssessment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "assessmentID")

	a, err := h.repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var data AssessmentData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	data.Normalize()

	a.Data = data
	a.UpdatedAt = time.Now().UTC()

	if err := h.repo.Replace(r.Context(), a); err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, "assessment.replaced", map[string]any{
		"assessment_id": a.ID,
		"subject_code":  a.SubjectCode,
	})

	writeJSON(w, http.StatusOK, a)
}

// DeleteAssessment removes an assessment
func (h *Handler) DeleteAssessment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "assessmentID")

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, "assessment.deleted", map[string]any{"assessment_id": id})

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Helpers ---

func (h *Handler) publish(r *http.Request, eventType string, data map[string]any) {
	if h.bus == nil {
		return
	}

	event := events.NewEvent(eventType, "assessment", data)
	if user := auth.GetUser(r.Context()); user != nil {
		event = event.WithActor(user.ID.String(), user.UserType)
	}

	// Audit publishing is best-effort; the write already succeeded
	_ = h.bus.Publish(r.Context(), event)
}

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
