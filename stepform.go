// Package stepform assembles the onboarding wizards: configuration, the API
// client, the flow catalog and the renderers shared by the web server and
// the terminal runner.
package stepform

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-stepform/internal/config"
	"github.com/goliatone/go-stepform/internal/openapi/loader"
	"github.com/goliatone/go-stepform/internal/server"
	"github.com/goliatone/go-stepform/pkg/api"
	"github.com/goliatone/go-stepform/pkg/onboarding"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/renderers/html"
	"github.com/goliatone/go-stepform/pkg/renderers/jsonview"
	"github.com/goliatone/go-stepform/pkg/renderers/tui"
)

// openAPITimeout bounds fetching a remote OpenAPI document.
const openAPITimeout = 10 * time.Second

// App bundles everything a server or terminal session needs.
type App struct {
	Config    config.Config
	Logger    zerolog.Logger
	Client    *api.Client
	Catalog   *onboarding.Catalog
	Renderers *render.Registry
}

// NewApp wires an App from cfg. Flows found in cfg.FlowsDir and extra
// definitions are registered on top of the built-in flows.
func NewApp(cfg config.Config, logger zerolog.Logger, extra ...onboarding.Definition) (*App, error) {
	client, err := api.NewClient(cfg.APIBaseURL, api.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("stepform: api client: %w", err)
	}

	var defs []onboarding.Definition
	if cfg.FlowsDir != "" {
		defs, err = onboarding.LoadFlows(os.DirFS(cfg.FlowsDir))
		if err != nil {
			return nil, fmt.Errorf("stepform: flows %q: %w", cfg.FlowsDir, err)
		}
	}
	defs = append(defs, extra...)

	renderers, err := NewRenderers(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}

	catalog := onboarding.NewCatalog(
		api.NewOnboardingService(client),
		client,
		onboarding.WithDefinitions(defs...),
		onboarding.WithCatalogLogger(logger),
	)
	logger.Debug().Strs("flows", catalog.Names()).Msg("catalog ready")

	return &App{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Catalog:   catalog,
		Renderers: renderers,
	}, nil
}

// NewRenderers registers the HTML renderer, the default, and the JSON view.
// A non-empty templatesDir overrides the embedded templates.
func NewRenderers(templatesDir string) (*render.Registry, error) {
	options := []html.Option{
		html.WithStylesheet(server.AssetsPrefix + html.StylesheetName),
		html.WithAckURL(server.AckPath),
	}
	if templatesDir != "" {
		options = append(options, html.WithTemplatesDir(templatesDir))
	}
	page, err := html.New(options...)
	if err != nil {
		return nil, fmt.Errorf("stepform: html renderer: %w", err)
	}

	registry := render.NewRegistry()
	if err := registry.Register(page); err != nil {
		return nil, err
	}
	if err := registry.Register(jsonview.New()); err != nil {
		return nil, err
	}
	return registry, nil
}

// Server builds the web app over the catalog.
func (a *App) Server(options ...server.Option) (*server.Server, error) {
	base := []server.Option{
		server.WithDefaults(onboarding.Params{ReturnYear: a.Config.ReturnYear}),
		server.WithSessionTimeout(a.Config.ActivityTimeout, a.Config.Countdown, a.Config.LogoutURL),
		server.WithAssets(AssetsFS()),
		server.WithLogger(a.Logger),
	}
	return server.New(a.Catalog, a.Renderers, append(base, options...)...)
}

// RunFlow drives the named flow in the terminal and returns the page the flow
// navigated to. Unset next pages follow the web routes.
func (a *App) RunFlow(ctx context.Context, name string, p onboarding.Params, options ...tui.Option) (string, error) {
	runner := tui.New(append([]tui.Option{tui.WithLogger(a.Logger)}, options...)...)

	if p.ReturnYear == "" {
		p.ReturnYear = a.Config.ReturnYear
	}
	if route, ok := server.DefaultRoutes()[name]; ok {
		if p.NextPage == "" {
			p.NextPage = route.Next
		}
		if p.NextPageAlt == "" {
			p.NextPageAlt = route.NextAlt
		}
	}
	if p.Self == "" {
		p.Self = server.OnboardingPrefix + name
	}
	p.Navigator = runner

	logger := a.Logger.With().Str("flow", name).Logger()
	flow, err := a.Catalog.Build(ctx, name, p)
	if err != nil {
		return "", err
	}
	ctrl, err := flow.Controller(runner, logger)
	if err != nil {
		return "", err
	}
	defer ctrl.Close()

	return runner.Run(ctx, tui.Session{
		Flow:       flow.Name,
		Title:      flow.Title,
		Notes:      flow.Notes,
		Controller: ctrl,
	})
}

// LoadOpenAPIDefinition reads the document at location, a path or an
// http(s) URL, and derives a flow from operationID.
func LoadOpenAPIDefinition(ctx context.Context, location, operationID string) (onboarding.Definition, error) {
	l := loader.New(loader.Options{
		AllowHTTPFallback: true,
		RequestTimeout:    openAPITimeout,
	})
	raw, err := l.Load(ctx, location)
	if err != nil {
		return onboarding.Definition{}, err
	}
	return onboarding.FromOpenAPI(ctx, raw, operationID)
}

// EmbeddedTemplates exposes the built-in page templates so callers can copy
// and override them through templates_dir.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// AssetsFS exposes the stylesheet served under /assets/.
func AssetsFS() fs.FS {
	return html.AssetsFS()
}
