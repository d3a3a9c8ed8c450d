package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/adapters/reimport"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/assessment"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/llm"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/plan"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/privacy"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/auth"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/config"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/database"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/events"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/metrics"
	secmiddleware "github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/middleware"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/signals"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/subject"
)

// backgroundStopper is anything that keeps running after startup and
// must be stopped with the server
type backgroundStopper interface {
	Stop(ctx context.Context) error
}

// App holds all application dependencies
type App struct {
	Config   *config.Config
	DB       *database.DB
	Bus      *events.Bus
	Guard    *privacy.Guard
	Importer backgroundStopper
}

// stopBackground stops long-running components during shutdown
func (app *App) stopBackground(ctx context.Context) {
	if app.Importer != nil {
		if err := app.Importer.Stop(ctx); err != nil {
			fmt.Printf("Legacy reimport shutdown error: %v\n", err)
		}
	}
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	app := &App{Config: cfg}

	// Initialize database (optional - skip if not available)
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		fmt.Printf("Warning: Database not available: %v\n", err)
		fmt.Println("Running in limited mode without database...")
	} else {
		app.DB = db
		defer db.Close()

		if err := database.Migrate(ctx, db.Pool); err != nil {
			fmt.Printf("Warning: Migration failed: %v\n", err)
		}
	}

	// Initialize event bus with KurrentDB (optional - skip if not available)
	bus, err := events.NewBus(ctx, cfg.KurrentDB)
	if err != nil {
		fmt.Printf("Warning: KurrentDB not available: %v\n", err)
		fmt.Println("Running without the event audit trail...")
	} else {
		app.Bus = bus
		defer bus.Close()
		fmt.Println("KurrentDB event trail initialized")
	}

	// Completion backend shared by extraction and plan synthesis
	completer := llm.NewOpenAIClient(cfg.OpenAI, nil)
	extractor := assessment.NewExtractor(completer, nil)
	generator := plan.NewGenerator(completer, rand.New(rand.NewSource(time.Now().UnixNano())), nil)

	// Name-redaction guard over every display surface
	if cfg.Privacy.EnableGuard {
		app.Guard = privacy.NewGuard(cfg.Privacy, nil)
		fmt.Println("Name-redaction guard enabled")
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(metrics.Middleware)

	if app.Guard != nil {
		r.Use(app.Guard.Middleware)
	}

	// Health checks (unauthenticated)
	r.Get("/health", healthHandler(app))
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())

	r.Get("/", infoHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		registerAPI(r, app, cfg, extractor, generator)
	})

	// Legacy consultation-note importer. Runs until shutdown; stopped
	// alongside the HTTP server, not when route registration ends.
	if app.DB != nil && cfg.Reimport.Enabled && cfg.Reimport.DSN != "" {
		checkpoints := reimport.NewCheckpointStore(app.DB.Pool)
		assessmentRepo := assessment.NewRepository(app.DB.Pool)
		importer := reimport.New(cfg.Reimport, extractor, assessmentRepo, checkpoints, nil)
		if err := importer.Start(ctx); err != nil {
			fmt.Printf("Warning: Legacy reimport failed to start: %v\n", err)
		} else {
			app.Importer = importer
			fmt.Printf("Legacy reimport enabled (table: %s)\n", cfg.Reimport.NotesTable)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		fmt.Println("\nShutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
		app.stopBackground(ctx)
		close(done)
	}()

	fmt.Println("============================================")
	fmt.Println("Comorin Hikikomori Support Platform")
	fmt.Println("============================================")
	fmt.Printf("Environment:     %s\n", cfg.Server.Env)
	fmt.Printf("Server:          http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("API:             http://localhost:%d/api/v1\n", cfg.Server.Port)
	fmt.Printf("Health:          http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Printf("Redaction guard: %v\n", cfg.Privacy.EnableGuard)
	fmt.Printf("Extraction:      %v (model: %s)\n", completer.Configured(), cfg.OpenAI.Model)
	fmt.Printf("KurrentDB:       %s:%d\n", cfg.KurrentDB.Host, cfg.KurrentDB.Port)
	fmt.Println("============================================")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	<-done
	fmt.Println("Server stopped")
}

// registerAPI wires the module handlers under /api/v1. Registration
// must not start or stop anything long-running.
func registerAPI(r chi.Router, app *App, cfg *config.Config, extractor *assessment.Extractor, generator *plan.Generator) {
	r.Use(secmiddleware.InputSanitizer)
	r.Use(secmiddleware.NewIPRateLimiter(20, 40).Middleware)

	if cfg.Auth.Enabled {
		r.Use(auth.Middleware(cfg.Auth))
	}

	if app.DB == nil {
		return
	}

	subjectRepo := subject.NewRepository(app.DB.Pool)
	subjectService := subject.NewService(subjectRepo)
	subjectHandler := subject.NewHandler(subjectRepo, subjectService, app.Bus)
	subjectHandler.Register(r)

	signalRepo := signals.NewRepository(app.DB.Pool)
	signalHandler := signals.NewHandler(signalRepo)
	signalHandler.Register(r)

	assessmentRepo := assessment.NewRepository(app.DB.Pool)
	assessmentHandler := assessment.NewHandler(assessmentRepo, extractor, app.Bus)
	assessmentHandler.Register(r)

	planHandler := plan.NewHandler(generator, assessmentRepo, signalRepo, app.Bus)
	planHandler.Register(r)
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"name":    "Comorin Hikikomori Support Platform",
		"version": "0.1.0",
		"docs":    "/api/v1",
	})
}

func healthHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
		}

		if app.DB != nil {
			if err := app.DB.Health(r.Context()); err != nil {
				checks["database"] = "not ready: " + err.Error()
			} else {
				checks["database"] = "ready"
			}
		} else {
			checks["database"] = "not configured"
		}

		if app.Bus != nil {
			if err := app.Bus.Health(); err != nil {
				checks["kurrentdb"] = "not ready: " + err.Error()
			} else {
				checks["kurrentdb"] = "ready"
			}
		} else {
			checks["kurrentdb"] = "not configured"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" && status != "not configured" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}
