package signals

import (
	"time"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

// Emotion is the dominant emotional tone observed on a given day
type Emotion string

const (
	EmotionPositive Emotion = "positive"
	EmotionNeutral  Emotion = "neutral"
	EmotionAnxious  Emotion = "anxious"
	EmotionNegative Emotion = "negative"
)

// Signal is one day's behavioral observation for a subject. Levels are
// 1 (poor/low) to 5 (good/high).
type Signal struct {
	ID                types.ID        `json:"id"`
	SubjectCode       types.SubjectID `json:"subjectCode"`
	RecordedOn        time.Time       `json:"recordedOn"`
	Emotion           Emotion         `json:"emotion"`
	StressLevel       int             `json:"stressLevel"`
	SleepQuality      int             `json:"sleepQuality"`
	ActivityLevel     int             `json:"activityLevel"`
	ConversationCount int             `json:"conversationCount"`
	Summary           string          `json:"summary"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Validate checks field ranges before storage
func (s *Signal) Validate() error {
	details := map[string]string{}

	switch s.Emotion {
	case EmotionPositive, EmotionNeutral, EmotionAnxious, EmotionNegative, "":
	default:
		details["emotion"] = "must be positive, neutral, anxious or negative"
	}
	if s.StressLevel < 0 || s.StressLevel > 5 {
		details["stressLevel"] = "must be between 0 and 5"
	}
	if s.SleepQuality < 0 || s.SleepQuality > 5 {
		details["sleepQuality"] = "must be between 0 and 5"
	}
	if s.ActivityLevel < 0 || s.ActivityLevel > 5 {
		details["activityLevel"] = "must be between 0 and 5"
	}
	if s.ConversationCount < 0 {
		details["conversationCount"] = "must not be negative"
	}
	if s.RecordedOn.IsZero() {
		details["recordedOn"] = "is required"
	}

	if len(details) > 0 {
		return errors.Validation("invalid behavioral signal", details)
	}
	return nil
}
