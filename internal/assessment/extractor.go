package assessment

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/llm"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/errors"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/metrics"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/types"
)

// Extraction runs at a pinned low temperature regardless of the
// backend's configured default, which may be tuned for narrative
// synthesis instead.
const extractionTemperature = 0.1

// Extractor turns raw narrative text into a structured assessment record
// using a completion backend. It performs no retries and no partial
// success: either a full valid record is produced or an error is
// returned.
type Extractor struct {
	completer llm.Completer
	log       *slog.Logger
}

// NewExtractor creates an extractor. The completer may be nil or
// unconfigured; Extract then fails with a service-unavailable error.
func NewExtractor(completer llm.Completer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{completer: completer, log: logger}
}

// Extract produces an assessment for the subject from raw narrative
// text. Configuration and empty-input failures are reported before any
// backend call is made.
func (e *Extractor) Extract(ctx context.Context, subjectCode types.SubjectID, rawText string) (*Assessment, error) {
	if e.completer == nil || !e.completer.Configured() {
		metrics.RecordExtraction("unavailable")
		return nil, errors.ServiceUnavailable("extraction backend not configured")
	}

	trimmed := strings.TrimSpace(rawText)
	if trimmed == "" {
		metrics.RecordExtraction("empty_input")
		return nil, errors.EmptyInput("narrative text is empty")
	}

	start := time.Now()
	response, err := e.completer.Complete(ctx, buildExtractionInstruction(), trimmed, llm.CompletionOptions{
		Temperature:  extractionTemperature,
		JSONResponse: true,
	})
	if err != nil {
		metrics.RecordExtraction("unavailable")
		e.log.Error("extraction completion failed",
			"subject", subjectCode,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, errors.ServiceUnavailable("extraction backend unreachable")
	}

	assessment, err := e.buildAssessment(subjectCode, rawText, response)
	if err != nil {
		metrics.RecordExtraction("malformed")
		e.log.Error("extraction response rejected",
			"subject", subjectCode,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	metrics.RecordExtraction("ok")
	metrics.RecordExtractionConfidence(assessment.Confidence)
	e.log.Info("assessment extracted",
		"subject", subjectCode,
		"assessment_id", assessment.ID,
		"confidence", assessment.Confidence,
		"warnings", len(assessment.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return assessment, nil
}

// buildAssessment parses, validates and maps the completion response
func (e *Extractor) buildAssessment(subjectCode types.SubjectID, sourceText, response string) (*Assessment, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, errors.MalformedResponse(nil)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		return nil, errors.MalformedResponse(err)
	}

	if err := llm.ValidateJSONAgainstSchema(extractionSchema(), []byte(response)); err != nil {
		return nil, errors.MalformedResponse(err)
	}

	// Confidence is computed on the parsed response before mapping so
	// fields the model omitted entirely do not inflate the total.
	confidence := CalculateConfidence(parsed)

	var data AssessmentData
	if err := json.Unmarshal([]byte(response), &data); err != nil {
		return nil, errors.MalformedResponse(err)
	}
	data.Normalize()

	now := time.Now().UTC()
	return &Assessment{
		ID:          newAssessmentID(now),
		SubjectCode: subjectCode,
		Data:        data,
		SourceText:  sourceText,
		Confidence:  confidence,
		Warnings:    completenessWarnings(&data),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// NewFromData builds an assessment from directly uploaded structured
// data, bypassing extraction. Used by the manual-entry path.
func NewFromData(subjectCode types.SubjectID, data AssessmentData) *Assessment {
	data.Normalize()
	now := time.Now().UTC()
	return &Assessment{
		ID:          newAssessmentID(now),
		SubjectCode: subjectCode,
		Data:        data,
		Warnings:    completenessWarnings(&data),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
