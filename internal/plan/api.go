package plan

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/assessment"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/auth"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/events"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/signals"
)

// Handler provides HTTP handlers for support-plan generation
type Handler struct {
	generator   *Generator
	assessments *assessment.Repository
	signals     *signals.Repository
	bus         *events.Bus
}

// NewHandler creates a new plan handler
func NewHandler(generator *Generator, assessments *assessment.Repository, sigRepo *signals.Repository, bus *events.Bus) *Handler {
	return &Handler{
		generator:   generator,
		assessments: assessments,
		signals:     sigRepo,
		bus:         bus,
	}
}

// Register mounts the plan routes on the given router
func (h *Handler) Register(r chi.Router) {
	r.Post("/subjects/{subjectCode}/plans/generate", h.GeneratePlan)
}

// GeneratePlan generates a fresh plan from the subject's latest
// assessment and recent behavioral signals
func (h *Handler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	subjectCode := types.SubjectID(chi.URLParam(r, "subjectCode"))
	if !subjectCode.IsValid() {
		writeError(w, errors.BadRequest("invalid subject code"))
		return
	}

	var req struct {
		UseNarrative bool   `json:"useNarrative"`
		AssessmentID string `json:"assessmentId"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errors.BadRequest("invalid request body"))
			return
		}
	}

	var a *assessment.Assessment
	var err error
	if req.AssessmentID != "" {
		a, err = h.assessments.Get(r.Context(), req.AssessmentID)
	} else {
		a, err = h.assessments.GetCurrent(r.Context(), subjectCode)
	}
	if err != nil {
		// A plan can still be generated without an assessment
		if appErr, ok := err.(*errors.AppError); !ok || appErr.Code != "NOT_FOUND" {
			writeError(w, err)
			return
		}
		a = nil
	}
	if a != nil && a.SubjectCode != subjectCode {
		writeError(w, errors.BadRequest("assessment belongs to a different subject"))
		return
	}

	sigs, err := h.signals.ListBySubject(r.Context(), subjectCode, 30)
	if err != nil {
		writeError(w, err)
		return
	}

	result := h.generator.GeneratePlan(r.Context(), subjectCode, a, sigs, req.UseNarrative)

	h.publish(r, result)

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) publish(r *http.Request, result *Result) {
	if h.bus == nil {
		return
	}

	event := events.NewEvent("plan.generated", "plan", map[string]any{
		"plan_id":       result.Plan.ID,
		"subject_code":  result.Plan.SubjectCode,
		"generated_by":  result.Plan.GeneratedBy,
		"used_fallback": result.UsedFallback,
		"risk_level":    result.Plan.RiskLevel,
	})
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
