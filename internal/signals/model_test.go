package signals

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
)

func validSignal() *Signal {
	return &Signal{
		SubjectCode:       "25-001",
		RecordedOn:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Emotion:           EmotionNeutral,
		StressLevel:       3,
		SleepQuality:      3,
		ActivityLevel:     2,
		ConversationCount: 1,
	}
}

func TestSignalValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Signal)
		wantKey string
	}{
		{"valid", func(s *Signal) {}, ""},
		{"empty emotion allowed", func(s *Signal) { s.Emotion = "" }, ""},
		{"unknown emotion", func(s *Signal) { s.Emotion = "ecstatic" }, "emotion"},
		{"stress too high", func(s *Signal) { s.StressLevel = 6 }, "stressLevel"},
		{"stress negative", func(s *Signal) { s.StressLevel = -1 }, "stressLevel"},
		{"sleep too high", func(s *Signal) { s.SleepQuality = 9 }, "sleepQuality"},
		{"activity too high", func(s *Signal) { s.ActivityLevel = 6 }, "activityLevel"},
		{"negative conversations", func(s *Signal) { s.ConversationCount = -2 }, "conversationCount"},
		{"missing date", func(s *Signal) { s.RecordedOn = time.Time{} }, "recordedOn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSignal()
			tt.mutate(s)

			err := s.Validate()
			if tt.wantKey == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Fatal("Validate() = nil, want validation error")
			}
			var appErr *apperrors.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("Validate() returned %T, want *AppError", err)
			}
			if _, ok := appErr.Details[tt.wantKey]; !ok {
				t.Errorf("Details = %v, want key %q", appErr.Details, tt.wantKey)
			}
		})
	}
}

func TestSignalValidateCollectsAllViolations(t *testing.T) {
	s := &Signal{Emotion: "bad", StressLevel: 7, ConversationCount: -1}

	err := s.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want validation error")
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Validate() returned %T, want *AppError", err)
	}
	for _, key := range []string{"emotion", "stressLevel", "conversationCount", "recordedOn"} {
		if _, ok := appErr.Details[key]; !ok {
			t.Errorf("Details missing %q: %v", key, appErr.Details)
		}
	}
}
