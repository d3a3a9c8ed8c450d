package assessment

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

// BasicInfo holds demographic context without identifying fields
type BasicInfo struct {
	Age             string `json:"age"`
	Gender          string `json:"gender"`
	FamilyStructure string `json:"familyStructure"`
	LivingSituation string `json:"livingSituation"`
	EconomicStatus  string `json:"economicStatus"`
}

// ConsultationHistory describes how support contact began
type ConsultationHistory struct {
	Route           string   `json:"route"`
	FirstContact    string   `json:"firstContact"`
	PreviousSupport string   `json:"previousSupport"`
	MedicalHistory  string   `json:"medicalHistory"`
	CurrentServices []string `json:"currentServices"`
}

// WithdrawalEpisode captures the withdrawal period and its circumstances
type WithdrawalEpisode struct {
	StartAge      string   `json:"startAge"`
	Duration      string   `json:"duration"`
	Trigger       string   `json:"trigger"`
	Circumstances string   `json:"circumstances"`
	CurrentState  string   `json:"currentState"`
	PastEpisodes  []string `json:"pastEpisodes"`
}

// DevelopmentalHistory covers childhood and developmental background
type DevelopmentalHistory struct {
	ChildhoodNotes   string   `json:"childhoodNotes"`
	SchoolAdjustment string   `json:"schoolAdjustment"`
	Diagnoses        []string `json:"diagnoses"`
	Traits           string   `json:"traits"`
}

// EmploymentEntry is one education or work period
type EmploymentEntry struct {
	Age     string `json:"age"`
	Period  string `json:"period"`
	Content string `json:"content"`
}

// EducationEmployment covers schooling and work history
type EducationEmployment struct {
	FinalEducation    string            `json:"finalEducation"`
	SchoolExperience  string            `json:"schoolExperience"`
	EmploymentHistory []EmploymentEntry `json:"employmentHistory"`
	CurrentOccupation string            `json:"currentOccupation"`
}

// CurrentLifeStatus describes the subject's daily life right now
type CurrentLifeStatus struct {
	DailyRoutine    string `json:"dailyRoutine"`
	SleepSchedule   string `json:"sleepSchedule"`
	MealStatus      string `json:"mealStatus"`
	Hygiene         string `json:"hygiene"`
	OutingFrequency string `json:"outingFrequency"`
	InternetUsage   string `json:"internetUsage"`
}

// BehavioralPsychological captures observed behavior and mental state
type BehavioralPsychological struct {
	CommunicationStyle string   `json:"communicationStyle"`
	EmotionalState     string   `json:"emotionalState"`
	Interests          []string `json:"interests"`
	Strengths          []string `json:"strengths"`
	FamilyRelationship string   `json:"familyRelationship"`
	ViolenceOrSelfHarm bool     `json:"violenceOrSelfHarm"`
}

// SupportNeeds records stated wishes and support priorities
type SupportNeeds struct {
	SubjectWishes     string   `json:"subjectWishes"`
	FamilyWishes      string   `json:"familyWishes"`
	UrgentIssues      []string `json:"urgentIssues"`
	SupportPriorities []string `json:"supportPriorities"`
}

// AssessmentData is the structured record extracted from narrative text.
// Every field is optional; absent means unknown, never inferred. All
// fields default to their empty value so consumers only check emptiness.
type AssessmentData struct {
	BasicInfo               BasicInfo               `json:"basicInfo"`
	ConsultationHistory     ConsultationHistory     `json:"consultationHistory"`
	WithdrawalEpisode       WithdrawalEpisode       `json:"withdrawalEpisode"`
	DevelopmentalHistory    DevelopmentalHistory    `json:"developmentalHistory"`
	EducationEmployment     EducationEmployment     `json:"educationEmployment"`
	CurrentLifeStatus       CurrentLifeStatus       `json:"currentLifeStatus"`
	BehavioralPsychological BehavioralPsychological `json:"behavioralPsychological"`
	SupportNeeds            SupportNeeds            `json:"supportNeeds"`
	SupplementaryNotes      string                  `json:"supplementaryNotes"`
}

// Normalize replaces nil slices with empty ones so serialized records
// never contain null for a list field
func (d *AssessmentData) Normalize() {
	if d.ConsultationHistory.CurrentServices == nil {
		d.ConsultationHistory.CurrentServices = []string{}
	}
	if d.WithdrawalEpisode.PastEpisodes == nil {
		d.WithdrawalEpisode.PastEpisodes = []string{}
	}
	if d.DevelopmentalHistory.Diagnoses == nil {
		d.DevelopmentalHistory.Diagnoses = []string{}
	}
	if d.EducationEmployment.EmploymentHistory == nil {
		d.EducationEmployment.EmploymentHistory = []EmploymentEntry{}
	}
	if d.BehavioralPsychological.Interests == nil {
		d.BehavioralPsychological.Interests = []string{}
	}
	if d.BehavioralPsychological.Strengths == nil {
		d.BehavioralPsychological.Strengths = []string{}
	}
	if d.SupportNeeds.UrgentIssues == nil {
		d.SupportNeeds.UrgentIssues = []string{}
	}
	if d.SupportNeeds.SupportPriorities == nil {
		d.SupportNeeds.SupportPriorities = []string{}
	}
}

// Assessment is a stored assessment record for one subject. A subject
// accumulates assessments over time; the one with the latest CreatedAt
// is current. Confidence is a field-fill ratio, not an accuracy
// probability, and must be presented as completeness only.
type Assessment struct {
	ID          string          `json:"id"`
	SubjectCode types.SubjectID `json:"subjectCode"`
	Data        AssessmentData  `json:"data"`
	SourceText  string          `json:"sourceText"`
	Confidence  int             `json:"extractionConfidence"`
	Warnings    []string        `json:"warnings,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// newAssessmentID builds an opaque record ID from a millisecond timestamp
// and a random suffix. Collisions are negligible at this workload.
func newAssessmentID(now time.Time) string {
	suffix := uuid.New().String()[:8]
	return strconv.FormatInt(now.UnixMilli(), 36) + "-" + suffix
}
