package privacy

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/config"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/metrics"
)

// Guard is middleware that redacts personal-name spans from outbound
// response bodies. Every display surface goes through it so a handler
// that forgets to redact cannot leak a name.
type Guard struct {
	exemptPaths    []string
	exemptPrefixes []string
	logDetections  bool
	log            *slog.Logger
}

// NewGuard creates a response-redaction guard from config
func NewGuard(cfg config.PrivacyConfig, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		exemptPaths:    cfg.ExemptPaths,
		exemptPrefixes: cfg.ExemptPrefixes,
		logDetections:  cfg.LogDetections,
		log:            logger,
	}
}

// Middleware returns the HTTP middleware function
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.isExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		wrapper := &responseWrapper{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapper, r)

		body := wrapper.body.String()
		redacted := Redact(body)

		if redacted != body {
			spans := DetectPersonalNames(body)
			metrics.RecordRedactions("response", len(spans))
			if g.logDetections {
				g.log.Warn("personal names redacted from response",
					"path", r.URL.Path,
					"method", r.Method,
					"spans", len(spans),
				)
			}
			w.Header().Set("X-Names-Redacted", "true")
		}

		w.WriteHeader(wrapper.statusCode)
		w.Write([]byte(redacted))
	})
}

// isExempt checks if a path skips response redaction
func (g *Guard) isExempt(path string) bool {
	for _, exempt := range g.exemptPaths {
		if path == exempt {
			return true
		}
	}
	for _, prefix := range g.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// responseWrapper buffers the response body so it can be redacted before
// it reaches the client
type responseWrapper struct {
	http.ResponseWriter
	body       *bytes.Buffer
	statusCode int
}

func (w *responseWrapper) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *responseWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
}
