package main

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/assessment"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/plan"
	"github.com/Yossy1123/Comorin-Cloud-sub000/internal/shared/config"
)

type recordingStopper struct {
	stopped bool
}

func (s *recordingStopper) Stop(ctx context.Context) error {
	s.stopped = true
	return nil
}

// Route registration closures run synchronously while the router is
// built, so a background component started before registration must
// not be touched by it. It is stopped only on the shutdown path.
func TestImporterSurvivesRouteRegistration(t *testing.T) {
	cfg := &config.Config{}
	importer := &recordingStopper{}
	app := &App{Config: cfg, Importer: importer}

	extractor := assessment.NewExtractor(nil, nil)
	generator := plan.NewGenerator(nil, nil, nil)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		registerAPI(r, app, cfg, extractor, generator)
	})

	if importer.stopped {
		t.Fatal("importer was stopped during route registration")
	}

	app.stopBackground(context.Background())
	if !importer.stopped {
		t.Fatal("importer was not stopped on shutdown")
	}
}

func TestStopBackgroundWithoutImporter(t *testing.T) {
	app := &App{Config: &config.Config{}}
	app.stopBackground(context.Background())
}
