package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/llm"
	apperrors "github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
)

// fakeCompleter returns a canned response or error and records calls
type fakeCompleter struct {
	response   string
	err        error
	configured bool
	calls      int
	lastOpts   llm.CompletionOptions
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string, opts llm.CompletionOptions) (string, error) {
	f.calls++
	f.lastOpts = opts
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeCompleter) Configured() bool { return f.configured }

const sampleResponse = `{
	"basicInfo": {"age": "20代後半", "gender": "男性", "familyStructure": "両親と同居"},
	"withdrawalEpisode": {"startAge": "22歳", "duration": "約5年", "trigger": "就職活動の失敗"},
	"currentLifeStatus": {"sleepSchedule": "昼夜逆転", "dailyRoutine": "夜間にゲーム"},
	"supportNeeds": {"subjectWishes": "働きたい気持ちはある"},
	"consultationHistory": {"route": "母親からの電話相談"}
}`

func TestExtract(t *testing.T) {
	completer := &fakeCompleter{response: sampleResponse, configured: true}
	extractor := NewExtractor(completer, nil)

	a, err := extractor.Extract(context.Background(), "25-001", "相談記録テキスト")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if a.ID == "" {
		t.Error("expected a generated assessment ID")
	}
	if a.SubjectCode != "25-001" {
		t.Errorf("SubjectCode = %q, want %q", a.SubjectCode, "25-001")
	}
	if a.SourceText != "相談記録テキスト" {
		t.Errorf("SourceText = %q, want original input", a.SourceText)
	}
	if a.Data.BasicInfo.Age != "20代後半" {
		t.Errorf("BasicInfo.Age = %q, want extracted value", a.Data.BasicInfo.Age)
	}
	if !completer.lastOpts.JSONResponse {
		t.Error("expected a JSON-mode completion request")
	}
	if completer.lastOpts.Temperature != extractionTemperature {
		t.Errorf("Temperature = %v, want pinned %v regardless of backend default",
			completer.lastOpts.Temperature, extractionTemperature)
	}
	if a.Data.WithdrawalEpisode.Duration != "約5年" {
		t.Errorf("WithdrawalEpisode.Duration = %q, want extracted value", a.Data.WithdrawalEpisode.Duration)
	}
	if a.Confidence <= 0 || a.Confidence > 100 {
		t.Errorf("Confidence = %d, want within (0,100]", a.Confidence)
	}
	if a.CreatedAt.IsZero() || !a.CreatedAt.Equal(a.UpdatedAt) {
		t.Error("expected CreatedAt and UpdatedAt stamped and equal")
	}
}

func TestExtractDefaultsAbsentFields(t *testing.T) {
	completer := &fakeCompleter{response: sampleResponse, configured: true}
	extractor := NewExtractor(completer, nil)

	a, err := extractor.Extract(context.Background(), "25-001", "記録")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	// Sections absent from the response map to empty values, never null
	if a.Data.DevelopmentalHistory.ChildhoodNotes != "" {
		t.Errorf("absent string field = %q, want empty", a.Data.DevelopmentalHistory.ChildhoodNotes)
	}
	if a.Data.DevelopmentalHistory.Diagnoses == nil {
		t.Error("absent list field is nil, want empty slice")
	}
	if a.Data.EducationEmployment.EmploymentHistory == nil {
		t.Error("absent employment history is nil, want empty slice")
	}
	if a.Data.BehavioralPsychological.ViolenceOrSelfHarm {
		t.Error("absent bool field = true, want false")
	}
}

func TestExtractEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t "} {
		completer := &fakeCompleter{response: sampleResponse, configured: true}
		extractor := NewExtractor(completer, nil)

		_, err := extractor.Extract(context.Background(), "25-001", input)
		if !errors.Is(err, apperrors.ErrEmptyInput) {
			t.Errorf("Extract(%q) error = %v, want ErrEmptyInput", input, err)
		}
		if completer.calls != 0 {
			t.Errorf("Extract(%q) called the backend %d times, want 0", input, completer.calls)
		}
	}
}

func TestExtractBackendNotConfigured(t *testing.T) {
	completer := &fakeCompleter{configured: false}
	extractor := NewExtractor(completer, nil)

	_, err := extractor.Extract(context.Background(), "25-001", "記録")
	if !errors.Is(err, apperrors.ErrServiceUnavailable) {
		t.Errorf("error = %v, want ErrServiceUnavailable", err)
	}
	if completer.calls != 0 {
		t.Errorf("backend called %d times, want 0", completer.calls)
	}

	extractor = NewExtractor(nil, nil)
	_, err = extractor.Extract(context.Background(), "25-001", "記録")
	if !errors.Is(err, apperrors.ErrServiceUnavailable) {
		t.Errorf("nil completer error = %v, want ErrServiceUnavailable", err)
	}
}

func TestExtractBackendFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("connection refused"), configured: true}
	extractor := NewExtractor(completer, nil)

	_, err := extractor.Extract(context.Background(), "25-001", "記録")
	if !errors.Is(err, apperrors.ErrServiceUnavailable) {
		t.Errorf("error = %v, want ErrServiceUnavailable", err)
	}
}

func TestExtractMalformedResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"empty response", ""},
		{"whitespace response", "  \n "},
		{"not json", "すみません、抽出できませんでした。"},
		{"wrong shape", `{"basicInfo": "not an object"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{response: tt.response, configured: true}
			extractor := NewExtractor(completer, nil)

			_, err := extractor.Extract(context.Background(), "25-001", "記録")
			if !errors.Is(err, apperrors.ErrMalformedResponse) {
				t.Errorf("error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestExtractWarnings(t *testing.T) {
	// Response missing duration, wishes and sleep schedule
	completer := &fakeCompleter{
		response:   `{"basicInfo": {"age": "30代", "familyStructure": "母と二人暮らし"}, "consultationHistory": {"route": "保健所の紹介"}}`,
		configured: true,
	}
	extractor := NewExtractor(completer, nil)

	a, err := extractor.Extract(context.Background(), "25-001", "記録")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if len(a.Warnings) == 0 {
		t.Fatal("expected completeness warnings for missing fields")
	}

	wantWarnings := []string{
		"ひきこもりの継続期間が記録されていません",
		"睡眠状況が記録されていません",
		"本人または家族の希望が記録されていません",
	}
	for _, want := range wantWarnings {
		found := false
		for _, got := range a.Warnings {
			if got == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing warning %q in %v", want, a.Warnings)
		}
	}
}

func TestNewFromData(t *testing.T) {
	data := AssessmentData{}
	data.BasicInfo.Age = "40代"

	a := NewFromData("25-002", data)
	if a.SubjectCode != "25-002" {
		t.Errorf("SubjectCode = %q, want 25-002", a.SubjectCode)
	}
	if a.Data.SupportNeeds.UrgentIssues == nil {
		t.Error("expected normalized slices on direct upload")
	}
	if len(a.Warnings) == 0 {
		t.Error("expected completeness warnings for sparse upload")
	}
}
