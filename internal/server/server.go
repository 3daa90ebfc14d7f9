// Package server hosts onboarding wizards over HTTP. Every browser session
// owns its wizards and an inactivity guard; each step action is a form post
// answered with a redirect or a re-rendered step.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-stepform/pkg/onboarding"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/timeout"
)

// Route paths.
const (
	OnboardingPrefix = "/onboarding/"
	StatusPath       = "/session/status"
	ActivityPath     = "/session/activity"
	AckPath          = "/session/ack"
	HealthPath       = "/healthz"
	AssetsPrefix     = "/assets/"
)

// FlowBuilder resolves flow names. *onboarding.Catalog satisfies it.
type FlowBuilder interface {
	Has(name string) bool
	Build(ctx context.Context, name string, p onboarding.Params) (onboarding.Flow, error)
}

// Route is where a flow goes after it submits.
type Route struct {
	Next    string
	NextAlt string
}

// DefaultRoutes chains the built-in onboarding flows in application order.
func DefaultRoutes() map[string]Route {
	return map[string]Route{
		onboarding.FlowInfo:       {Next: OnboardingPrefix + onboarding.FlowAddress},
		onboarding.FlowAddress:    {Next: OnboardingPrefix + onboarding.FlowStatus},
		onboarding.FlowStatus:     {Next: OnboardingPrefix + onboarding.FlowSpouse, NextAlt: OnboardingPrefix + onboarding.FlowDependents},
		onboarding.FlowSpouse:     {Next: OnboardingPrefix + onboarding.FlowDependents},
		onboarding.FlowDependents: {Next: OnboardingPrefix + onboarding.FlowMisc},
		onboarding.FlowMisc:       {Next: "/welcome/common/"},
	}
}

// Option configures a Server.
type Option func(*Server)

// WithRoutes overrides the next pages of flows.
func WithRoutes(routes map[string]Route) Option {
	return func(s *Server) {
		for name, route := range routes {
			s.routes[name] = route
		}
	}
}

// WithDefaults sets the params every flow starts from, typically the return
// year. Query parameters override them per request.
func WithDefaults(p onboarding.Params) Option {
	return func(s *Server) {
		s.defaults = p
	}
}

// WithSessionTimeout configures the inactivity guard of every session.
func WithSessionTimeout(inactivity, countdown time.Duration, logoutURL string) Option {
	return func(s *Server) {
		if inactivity > 0 {
			s.inactivity = inactivity
		}
		if countdown > 0 {
			s.countdown = countdown
		}
		if logoutURL != "" {
			s.logoutURL = logoutURL
		}
	}
}

// WithClock replaces the clock driving the session guards.
func WithClock(clock timeout.Clock) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithAssets serves files under /assets/.
func WithAssets(assets fs.FS) Option {
	return func(s *Server) {
		s.assets = assets
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secureCookies = secure
	}
}

// Server is the onboarding web app.
type Server struct {
	flows     FlowBuilder
	renderers *render.Registry
	routes    map[string]Route
	defaults  onboarding.Params
	assets    fs.FS
	logger    zerolog.Logger

	inactivity    time.Duration
	countdown     time.Duration
	logoutURL     string
	clock         timeout.Clock
	secureCookies bool

	sessions *store
	router   *mux.Router
}

// New builds a server resolving flows through flows and rendering through
// renderers.
func New(flows FlowBuilder, renderers *render.Registry, options ...Option) (*Server, error) {
	if flows == nil {
		return nil, errors.New("server: flow builder is required")
	}
	if renderers == nil || len(renderers.List()) == 0 {
		return nil, errors.New("server: at least one renderer is required")
	}
	s := &Server{
		flows:      flows,
		renderers:  renderers,
		routes:     DefaultRoutes(),
		logger:     zerolog.Nop(),
		inactivity: timeout.DefaultInactivity,
		countdown:  timeout.DefaultCountdown,
		logoutURL:  timeout.DefaultLogoutURL,
		clock:      timeout.RealClock{},
		sessions:   newStore(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	s.router = s.newRouter()
	return s, nil
}

func (s *Server) newRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			s.logger.Debug().Err(err).Msg("write health response")
		}
	}).Methods(http.MethodGet)

	r.HandleFunc(OnboardingPrefix+"{flow}", s.withSession(s.handleShow)).Methods(http.MethodGet)
	r.HandleFunc(OnboardingPrefix+"{flow}/advance", s.withSession(s.handleAdvance)).Methods(http.MethodPost)
	r.HandleFunc(OnboardingPrefix+"{flow}/back", s.withSession(s.handleBack)).Methods(http.MethodPost)
	r.HandleFunc(OnboardingPrefix+"{flow}/choice", s.withSession(s.handleChoice)).Methods(http.MethodPost)

	r.HandleFunc(StatusPath, s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc(ActivityPath, s.withSession(s.handleActivity)).Methods(http.MethodPost)
	r.HandleFunc(AckPath, s.withSession(s.handleAck)).Methods(http.MethodPost)

	if s.assets != nil {
		r.PathPrefix(AssetsPrefix).Handler(http.StripPrefix(AssetsPrefix, http.FileServer(http.FS(s.assets)))).Methods(http.MethodGet)
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops every session guard and releases the wizards.
func (s *Server) Close() {
	for _, sess := range s.sessions.drain() {
		sess.close()
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		s.Close()
		if err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}
