package stepform_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-stepform"
	"github.com/goliatone/go-stepform/internal/config"
	"github.com/goliatone/go-stepform/pkg/field"
	"github.com/goliatone/go-stepform/pkg/onboarding"
	"github.com/goliatone/go-stepform/pkg/renderers/tui"
	"github.com/goliatone/go-stepform/pkg/testsupport"
)

const petsFlow = `name: pets
title: Pets
submit:
  method: POST
  path: /api/users/{user_id}/pets/
next_page: /welcome/common/
steps:
  - fields:
      - kind: TEXT
        name: pet_name
        required: true
`

const petsDocument = `{
  "openapi": "3.0.3",
  "info": {"title": "Pets", "version": "1.0.0"},
  "paths": {
    "/api/pets/": {
      "post": {
        "operationId": "createPet",
        "summary": "Add a pet",
        "requestBody": {
          "content": {
            "application/x-www-form-urlencoded": {
              "schema": {
                "type": "object",
                "required": ["pet_name"],
                "properties": {
                  "pet_name": {"type": "string"}
                }
              }
            }
          }
        },
        "responses": {"201": {"description": "created"}}
      }
    }
  }
}`

type scriptedDriver struct {
	answers []string
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.answers) == 0 {
		return "", tui.ErrAborted
	}
	answer := d.answers[0]
	d.answers = d.answers[1:]
	return answer, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	return 0, nil
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func newApp(t *testing.T, backendURL string) *stepform.App {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pets.yml"), []byte(petsFlow), 0o644); err != nil {
		t.Fatalf("write flow: %v", err)
	}
	cfg := config.Default()
	cfg.APIBaseURL = backendURL
	cfg.FlowsDir = dir
	app, err := stepform.NewApp(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return app
}

func TestRunFlowSubmitsDeclarativeFlow(t *testing.T) {
	backend := testsupport.NewBackend(t)
	backend.Respond(http.MethodPost, "/api/users/7/pets/", http.StatusCreated, map[string]any{})
	app := newApp(t, backend.URL())

	if !app.Catalog.Has("pets") {
		t.Fatalf("expected the pets flow in %v", app.Catalog.Names())
	}

	driver := &scriptedDriver{answers: []string{"Rex"}}
	target, err := app.RunFlow(context.Background(), "pets", onboarding.Params{UserID: "7"}, tui.WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("run flow: %v", err)
	}
	if target != "/welcome/common/" {
		t.Fatalf("unexpected target %q", target)
	}
	req, ok := backend.Last(http.MethodPost, "/api/users/7/pets/")
	if !ok {
		t.Fatalf("expected a submission, got %+v", backend.Requests())
	}
	if diff := cmp.Diff(map[string]string{"pet_name": "Rex"}, req.Form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRenderersNegotiatesByAccept(t *testing.T) {
	registry, err := stepform.NewRenderers("")
	if err != nil {
		t.Fatalf("renderers: %v", err)
	}
	cases := map[string]string{
		"":                                "html",
		"text/html,application/xhtml+xml": "html",
		"application/json":                "json",
		"application/*;q=0.9":             "json",
	}
	for accept, want := range cases {
		renderer, err := registry.Negotiate(accept)
		if err != nil {
			t.Fatalf("negotiate %q: %v", accept, err)
		}
		if renderer.Name() != want {
			t.Errorf("accept %q: want %s, got %s", accept, want, renderer.Name())
		}
	}
}

func TestLoadOpenAPIDefinition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pets.json")
	if err := os.WriteFile(path, []byte(petsDocument), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	def, err := stepform.LoadOpenAPIDefinition(context.Background(), path, "createPet")
	if err != nil {
		t.Fatalf("load definition: %v", err)
	}
	want := onboarding.Definition{
		Name:   "createPet",
		Title:  "Add a pet",
		Submit: onboarding.SubmitDefinition{Method: http.MethodPost, Path: "/api/pets/"},
		Steps: []onboarding.StepDefinition{{Fields: []field.Spec{{
			Kind:     field.KindText,
			Name:     "pet_name",
			Required: true,
		}}}},
	}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", diff)
	}
}

func TestEmbeddedFilesystems(t *testing.T) {
	if _, err := stepform.AssetsFS().Open("stepform.css"); err != nil {
		t.Fatalf("stylesheet: %v", err)
	}
	if _, err := stepform.EmbeddedTemplates().Open("templates"); err != nil {
		t.Fatalf("templates: %v", err)
	}
}
