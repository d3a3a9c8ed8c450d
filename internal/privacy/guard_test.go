package privacy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/config"
)

func textHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	})
}

func serveThroughGuard(t *testing.T, g *Guard, next http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	g.Middleware(next).ServeHTTP(rec, req)
	return rec
}

func TestGuardRedactsResponseBody(t *testing.T) {
	g := NewGuard(config.PrivacyConfig{LogDetections: true}, nil)

	body := `{"summary":"田中さんは面談に応じた"}`
	rec := serveThroughGuard(t, g, textHandler(http.StatusOK, body), "/api/v1/subjects/25-001")

	got := rec.Body.String()
	if strings.Contains(got, "田中") {
		t.Errorf("response still contains a personal name: %q", got)
	}
	if !strings.Contains(got, RedactionToken+"さん") {
		t.Errorf("response missing redaction token: %q", got)
	}
	if rec.Header().Get("X-Names-Redacted") != "true" {
		t.Error("X-Names-Redacted header not set on a redacted response")
	}
}

func TestGuardRedactsWhenDetectionLoggingDisabled(t *testing.T) {
	g := NewGuard(config.PrivacyConfig{LogDetections: false}, nil)

	rec := serveThroughGuard(t, g, textHandler(http.StatusOK, "氏名: 高橋大輔"), "/api/v1/records")

	if strings.Contains(rec.Body.String(), "高橋") {
		t.Errorf("response still contains a personal name: %q", rec.Body.String())
	}
	if rec.Header().Get("X-Names-Redacted") != "true" {
		t.Error("X-Names-Redacted header not set")
	}
}

func TestGuardLeavesCleanResponsesAlone(t *testing.T) {
	g := NewGuard(config.PrivacyConfig{}, nil)

	body := `{"status":"healthy"}`
	rec := serveThroughGuard(t, g, textHandler(http.StatusOK, body), "/health")

	if rec.Body.String() != body {
		t.Errorf("clean body was modified: %q", rec.Body.String())
	}
	if rec.Header().Get("X-Names-Redacted") != "" {
		t.Error("X-Names-Redacted header set on a clean response")
	}
}

func TestGuardPreservesStatusCode(t *testing.T) {
	g := NewGuard(config.PrivacyConfig{}, nil)

	rec := serveThroughGuard(t, g, textHandler(http.StatusNotFound, "佐藤様の記録はありません"), "/api/v1/records/x")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if strings.Contains(rec.Body.String(), "佐藤") {
		t.Errorf("error body still contains a personal name: %q", rec.Body.String())
	}
}

func TestGuardExemptPaths(t *testing.T) {
	g := NewGuard(config.PrivacyConfig{
		ExemptPaths:    []string{"/metrics"},
		ExemptPrefixes: []string{"/internal/"},
	}, nil)

	body := "山田さん" // would be redacted on any guarded path

	tests := []struct {
		name string
		path string
	}{
		{"exact exempt path", "/metrics"},
		{"exempt prefix", "/internal/debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveThroughGuard(t, g, textHandler(http.StatusOK, body), tt.path)

			if rec.Body.String() != body {
				t.Errorf("exempt response was modified: %q", rec.Body.String())
			}
			if rec.Header().Get("X-Names-Redacted") != "" {
				t.Error("X-Names-Redacted header set on an exempt path")
			}
		})
	}
}
