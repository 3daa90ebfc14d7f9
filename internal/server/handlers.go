package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/goliatone/go-stepform/pkg/onboarding"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/submit"
	"github.com/goliatone/go-stepform/pkg/timeout"
	"github.com/goliatone/go-stepform/pkg/wizard"
)

// Query parameters a flow page accepts. They mirror the record ids and next
// pages the hosting page passes to each wizard.
const (
	ParamUser     = "user"
	ParamAddress  = "address_id"
	ParamSpouse   = "spouse_id"
	ParamReturn   = "return_id"
	ParamYear     = "year"
	ParamNext     = "next"
	ParamNextAlt  = "next_alt"
	activityField = "kind"
)

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request, sess *session) {
	name := mux.Vars(r)["flow"]
	st, ok := sess.flow(name)
	if !ok || st.ctrl.Snapshot().Submitted {
		var status int
		st, status = s.startFlow(r, sess, name)
		if st == nil {
			http.Error(w, http.StatusText(status), status)
			return
		}
	}
	s.render(w, r, sess, st, http.StatusOK, nil)
}

func (s *Server) startFlow(r *http.Request, sess *session, name string) (*flowState, int) {
	if !s.flows.Has(name) {
		return nil, http.StatusNotFound
	}
	logger := s.logger.With().Str("session", sess.id).Str("flow", name).Logger()

	nav := &redirector{}
	p := s.params(r, name)
	p.Navigator = nav
	flow, err := s.flows.Build(r.Context(), name, p)
	if err != nil {
		logger.Error().Err(err).Msg("build flow")
		if errors.Is(err, onboarding.ErrUnknownFlow) {
			return nil, http.StatusNotFound
		}
		return nil, http.StatusBadGateway
	}
	ctrl, err := flow.Controller(nav, logger)
	if err != nil {
		logger.Error().Err(err).Msg("configure wizard")
		return nil, http.StatusInternalServerError
	}
	ctrl.Mount()

	st := &flowState{
		flow:   flow,
		ctrl:   ctrl,
		nav:    nav,
		action: OnboardingPrefix + name,
		self:   p.Self,
	}
	sess.putFlow(name, st)
	logger.Debug().Int("steps", len(flow.Steps)).Msg("flow started")
	return st, http.StatusOK
}

// params seeds the flow params from the server defaults, the flow's route and
// the query string.
func (s *Server) params(r *http.Request, name string) onboarding.Params {
	p := s.defaults
	q := r.URL.Query()
	set := func(dst *string, key string) {
		if value := strings.TrimSpace(q.Get(key)); value != "" {
			*dst = value
		}
	}
	set(&p.UserID, ParamUser)
	set(&p.AddressID, ParamAddress)
	set(&p.SpouseID, ParamSpouse)
	set(&p.ReturnID, ParamReturn)
	set(&p.ReturnYear, ParamYear)

	if route, ok := s.routes[name]; ok {
		p.NextPage = route.Next
		p.NextPageAlt = route.NextAlt
	}
	if next := q.Get(ParamNext); localPath(next) {
		p.NextPage = next
	}
	if alt := q.Get(ParamNextAlt); localPath(alt) {
		p.NextPageAlt = alt
	}
	p.Self = r.URL.RequestURI()
	return p
}

// localPath accepts same-origin absolute paths only, so query parameters
// cannot redirect off site.
func localPath(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	u, err := url.Parse(target)
	return err == nil && u.Scheme == "" && u.Host == ""
}

func (s *Server) activeFlow(w http.ResponseWriter, r *http.Request, sess *session) (*flowState, bool) {
	name := mux.Vars(r)["flow"]
	st, ok := sess.flow(name)
	if !ok {
		// The wizard expired or was never opened in this session.
		http.Redirect(w, r, OnboardingPrefix+name, http.StatusSeeOther)
		return nil, false
	}
	return st, true
}

func stepIndex(r *http.Request) (int, error) {
	return strconv.Atoi(strings.TrimSpace(r.PostFormValue(render.StepFieldName)))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request, sess *session) {
	st, ok := s.activeFlow(w, r, sess)
	if !ok {
		return
	}
	index, err := stepIndex(r)
	if err != nil {
		http.Error(w, "missing step", http.StatusBadRequest)
		return
	}
	sess.guard.Activity(timeout.KeyUp)

	inputs := stepInputs(st.ctrl.Snapshot(), index, r)
	err = st.ctrl.Advance(r.Context(), index, inputs)
	s.finish(w, r, sess, st, err, inputs)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request, sess *session) {
	st, ok := s.activeFlow(w, r, sess)
	if !ok {
		return
	}
	index, err := stepIndex(r)
	if err != nil {
		http.Error(w, "missing step", http.StatusBadRequest)
		return
	}
	sess.guard.Activity(timeout.MouseMove)
	s.finish(w, r, sess, st, st.ctrl.Back(index), nil)
}

func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request, sess *session) {
	st, ok := s.activeFlow(w, r, sess)
	if !ok {
		return
	}
	index, err := stepIndex(r)
	if err != nil {
		http.Error(w, "missing step", http.StatusBadRequest)
		return
	}
	name, choice, ok := parseChoice(r.PostFormValue(render.ChoiceFieldName))
	if !ok {
		http.Error(w, "malformed choice", http.StatusBadRequest)
		return
	}
	sess.guard.Activity(timeout.MouseMove)
	s.finish(w, r, sess, st, st.ctrl.Choose(r.Context(), index, name, choice), nil)
}

// parseChoice splits a binary button value "name:index".
func parseChoice(value string) (string, int, bool) {
	cut := strings.LastIndex(value, ":")
	if cut <= 0 {
		return "", 0, false
	}
	choice, err := strconv.Atoi(value[cut+1:])
	if err != nil {
		return "", 0, false
	}
	return value[:cut], choice, true
}

// stepInputs collects the posted values of the fields on step index.
func stepInputs(snap wizard.Snapshot, index int, r *http.Request) map[string]string {
	if index < 0 || index >= len(snap.Steps) {
		return nil
	}
	inputs := make(map[string]string, len(snap.Steps[index].Fields))
	for _, desc := range snap.Steps[index].Fields {
		name := desc.Base().Name
		if values, ok := r.PostForm[name]; ok && len(values) > 0 {
			inputs[name] = strings.TrimSpace(values[0])
		}
	}
	return inputs
}

// finish answers a step action. A pending navigation wins; a plain step move
// redirects back to the flow page; failures re-render the step.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, sess *session, st *flowState, err error, inputs map[string]string) {
	if target, ok := st.nav.take(); ok {
		sess.dropFlow(st.flow.Name)
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	var reqErr *submit.RequestError
	switch {
	case err == nil:
		http.Redirect(w, r, st.self, http.StatusSeeOther)
	case errors.Is(err, wizard.ErrInvalid), errors.As(err, &reqErr):
		s.render(w, r, sess, st, http.StatusUnprocessableEntity, inputs)
	case errors.Is(err, wizard.ErrDisabled), errors.Is(err, submit.ErrInFlight):
		s.render(w, r, sess, st, http.StatusConflict, inputs)
	case errors.Is(err, wizard.ErrIndexOutOfRange), errors.Is(err, wizard.ErrUnknownField):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, wizard.ErrNotActive):
		// A stale page; show the step the wizard is really on.
		http.Redirect(w, r, st.self, http.StatusSeeOther)
	case errors.Is(err, wizard.ErrClosed):
		sess.dropFlow(st.flow.Name)
		http.Redirect(w, r, st.self, http.StatusSeeOther)
	default:
		s.logger.Error().Err(err).Str("session", sess.id).Str("flow", st.flow.Name).Msg("step action failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, sess *session, st *flowState, status int, inputs map[string]string) {
	renderer, err := s.renderers.Negotiate(r.Header.Get("Accept"))
	if err != nil {
		s.logger.Error().Err(err).Msg("negotiate renderer")
		http.Error(w, http.StatusText(http.StatusNotAcceptable), http.StatusNotAcceptable)
		return
	}
	guardStatus := sess.guard.Status()
	page := render.Page{
		Flow:   st.flow.Name,
		Title:  st.flow.Title,
		Notes:  st.flow.Notes,
		Wizard: st.ctrl.Snapshot(),
	}
	out, err := renderer.Render(r.Context(), page, render.RenderOptions{
		Action:  st.action,
		Inputs:  inputs,
		Hidden:  map[string]string{render.CSRFFieldName: sess.csrf},
		Session: &guardStatus,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("flow", st.flow.Name).Str("renderer", renderer.Name()).Msg("render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		s.logger.Debug().Err(err).Msg("write page")
	}
}

// handleStatus reports the guard state without creating a session.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := timeout.Status{State: timeout.LoggedOut}
	if sess, ok := s.lookupSession(r); ok {
		status = sess.guard.Status()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request, sess *session) {
	kind := timeout.MouseMove
	if raw := r.PostFormValue(activityField); raw != "" {
		parsed, ok := timeout.ParseActivity(raw)
		if !ok {
			http.Error(w, "unknown activity", http.StatusBadRequest)
			return
		}
		kind = parsed
	}
	sess.guard.Activity(kind)
	w.WriteHeader(http.StatusNoContent)
}

// handleAck dismisses the inactivity warning and sends a form post back to
// the page it came from.
func (s *Server) handleAck(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.guard.Acknowledge()
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && localPath(ref.RequestURI()) {
		if ref.Host == "" || ref.Host == r.Host {
			http.Redirect(w, r, ref.RequestURI(), http.StatusSeeOther)
			return
		}
	}
	writeJSON(w, http.StatusOK, sess.guard.Status())
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
