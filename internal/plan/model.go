package plan

import (
	"time"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

// GoalTerm is the planning horizon of a support goal
type GoalTerm string

const (
	TermShort GoalTerm = "short"
	TermMid   GoalTerm = "mid"
	TermLong  GoalTerm = "long"
)

// RiskLevel classifies the subject's current stability
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// SupportGoal is one goal in the plan, ordered short to long term
type SupportGoal struct {
	Term            GoalTerm `json:"term"`
	TargetPeriod    string   `json:"targetPeriod"`
	Goal            string   `json:"goal"`
	Actions         []string `json:"actions"`
	SuccessCriteria []string `json:"successCriteria"`
}

// SupportMethod describes one concrete support approach
type SupportMethod struct {
	Category        string `json:"category"`
	Approach        string `json:"approach"`
	Cadence         string `json:"cadence"`
	ExpectedOutcome string `json:"expectedOutcome"`
}

// RoleAssignment maps a team role to its responsibility
type RoleAssignment struct {
	Role           string `json:"role"`
	Responsibility string `json:"responsibility"`
}

// EvaluationMetric is one measurable follow-up item
type EvaluationMetric struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Method string `json:"method"`
}

// SimilarCase references a matched case card from the reference set
type SimilarCase struct {
	CaseID     string   `json:"caseId"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	Similarity int      `json:"similarity"`
	Summary    string   `json:"summary"`
}

// RiskEntry pairs an identified risk with its preventive measure
type RiskEntry struct {
	Risk       string `json:"risk"`
	Preventive string `json:"preventive"`
}

// SupportPlan is regenerated whole from an assessment plus behavioral
// signals; it is never hand-edited field by field or merged with a
// prior plan.
type SupportPlan struct {
	ID                 string              `json:"id"`
	SubjectCode        types.SubjectID     `json:"subjectCode"`
	AssessmentID       string              `json:"assessmentId"`
	AssessmentSummary  string              `json:"assessmentSummary"`
	RiskLevel          RiskLevel           `json:"riskLevel"`
	CurrentStatus      string              `json:"currentStatus"`
	Strengths          []string            `json:"strengths"`
	Challenges         []string            `json:"challenges"`
	Goals              []SupportGoal       `json:"goals"`
	Methods            []SupportMethod     `json:"methods"`
	RoleAssignments    []RoleAssignment    `json:"roleAssignments"`
	EvaluationMetrics  []EvaluationMetric  `json:"evaluationMetrics"`
	SimilarCases       []SimilarCase       `json:"similarCases"`
	Risks              []RiskEntry         `json:"risks"`
	PlanDate           time.Time           `json:"planDate"`
	NextEvaluationDate time.Time           `json:"nextEvaluationDate"`
	GeneratedBy        string              `json:"generatedBy"` // deterministic or narrative
	CreatedAt          time.Time           `json:"createdAt"`
}

// Result carries the plan plus a side channel reporting whether
// narrative synthesis silently fell back to deterministic assembly.
// The plan itself is always usable.
type Result struct {
	Plan           *SupportPlan `json:"plan"`
	UsedFallback   bool         `json:"usedFallback"`
	FallbackReason string       `json:"fallbackReason,omitempty"`
}

// nextEvaluationMonths is the fixed evaluation cadence
const nextEvaluationMonths = 3

// addMonthsClamped adds calendar months and clamps the day to the target
// month's length, so Nov 30 + 3 months is Feb 28 (29 in a leap year)
// rather than the normalized Mar 2.
func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()

	day := t.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
