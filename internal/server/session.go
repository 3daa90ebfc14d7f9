package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-stepform/pkg/api"
	"github.com/goliatone/go-stepform/pkg/onboarding"
	"github.com/goliatone/go-stepform/pkg/render"
	"github.com/goliatone/go-stepform/pkg/timeout"
	"github.com/goliatone/go-stepform/pkg/wizard"
)

// SessionCookie carries the session id.
const SessionCookie = "stepform_session"

// redirector is the navigator handed to wizards and guards. It records the
// target; the handler that triggered the navigation answers with a redirect.
type redirector struct {
	mu     sync.Mutex
	target string
	set    bool
}

func (r *redirector) Navigate(_ context.Context, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = target
	r.set = true
	return nil
}

func (r *redirector) take() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.target, r.set
	r.target, r.set = "", false
	return target, ok
}

type flowState struct {
	flow   onboarding.Flow
	ctrl   *wizard.Controller
	nav    *redirector
	action string
	self   string
}

type session struct {
	id    string
	csrf  string
	guard *timeout.Guard

	mu    sync.Mutex
	flows map[string]*flowState
}

func (s *session) flow(name string) (*flowState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.flows[name]
	return st, ok
}

func (s *session) putFlow(name string, st *flowState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.flows[name]; ok {
		old.ctrl.Close()
	}
	s.flows[name] = st
}

func (s *session) dropFlow(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.flows[name]; ok {
		st.ctrl.Close()
		delete(s.flows, name)
	}
}

func (s *session) closeFlows() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, st := range s.flows {
		st.ctrl.Close()
		delete(s.flows, name)
	}
}

func (s *session) close() {
	s.guard.Stop()
	s.closeFlows()
}

func (s *session) validCSRF(r *http.Request) bool {
	token := r.PostFormValue(render.CSRFFieldName)
	if token == "" {
		token = r.Header.Get(api.CSRFHeader)
	}
	return token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.csrf)) == 1
}

// store keeps the live sessions by id. A session leaves the store as soon as
// its guard signs it out.
type store struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newStore() *store {
	return &store{sessions: make(map[string]*session)}
}

func (st *store) get(id string) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[id]
	return sess, ok
}

func (st *store) put(sess *session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sess.id] = sess
}

func (st *store) remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *store) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func (st *store) drain() []*session {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]*session, 0, len(st.sessions))
	for id, sess := range st.sessions {
		out = append(out, sess)
		delete(st.sessions, id)
	}
	return out
}

func (s *Server) newSession() (*session, error) {
	sess := &session{
		id:    uuid.NewString(),
		csrf:  uuid.NewString(),
		flows: make(map[string]*flowState),
	}
	guard, err := timeout.NewGuard(
		&logoutNavigator{sess: sess, sessions: s.sessions},
		timeout.WithClock(s.clock),
		timeout.WithInactivity(s.inactivity),
		timeout.WithCountdown(s.countdown),
		timeout.WithLogoutURL(s.logoutURL),
		timeout.WithLogger(s.logger.With().Str("session", sess.id).Logger()),
	)
	if err != nil {
		return nil, err
	}
	sess.guard = guard
	guard.Start()
	s.sessions.put(sess)
	return sess, nil
}

// logoutNavigator is the guard's navigator. Signing out forgets the session
// and releases its wizards; the browser is sent to the logout page on its
// next request, when its cookie no longer resolves.
type logoutNavigator struct {
	sess     *session
	sessions *store
}

func (n *logoutNavigator) Navigate(_ context.Context, _ string) error {
	n.sessions.remove(n.sess.id)
	n.sess.closeFlows()
	return nil
}

func sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (s *Server) lookupSession(r *http.Request) (*session, bool) {
	id, ok := sessionID(r)
	if !ok {
		return nil, false
	}
	return s.sessions.get(id)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session)

// withSession resolves or creates the session. A cookie naming a session
// that no longer exists belongs to a signed out browser: the cookie is
// cleared and the browser is sent to the logout page.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, hasCookie := sessionID(r)
		sess, ok := s.sessions.get(id)
		switch {
		case ok:
		case hasCookie:
			s.setSessionCookie(w, "", -1)
			s.logger.Info().Str("session", id).Str("target", s.logoutURL).Msg("redirecting signed out session")
			http.Redirect(w, r, s.logoutURL, http.StatusSeeOther)
			return
		default:
			var err error
			sess, err = s.newSession()
			if err != nil {
				s.logger.Error().Err(err).Msg("create session")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			s.setSessionCookie(w, sess.id, 0)
			s.logger.Debug().Str("session", sess.id).Msg("session created")
		}

		if r.Method == http.MethodPost {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "malformed form", http.StatusBadRequest)
				return
			}
			if !sess.validCSRF(r) {
				s.logger.Warn().Str("session", sess.id).Str("path", r.URL.Path).Msg("csrf token rejected")
				http.Error(w, "invalid csrf token", http.StatusForbidden)
				return
			}
		}
		next(w, r, sess)
	}
}
