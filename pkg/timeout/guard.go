package timeout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-stepform/pkg/submit"
)

const (
	// DefaultInactivity is how long a session may be idle before the warning.
	DefaultInactivity = 9 * time.Minute
	// DefaultCountdown is how long the warning stays up before sign-out.
	DefaultCountdown = 60 * time.Second
	// DefaultLogoutURL is the navigation target once the countdown ends.
	DefaultLogoutURL = "/account/logout"

	tick = time.Second
)

// Option configures a Guard.
type Option func(*Guard)

// WithClock overrides the clock, mainly for tests.
func WithClock(clock Clock) Option {
	return func(g *Guard) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithPrompt sets the warning prompt.
func WithPrompt(prompt Prompt) Option {
	return func(g *Guard) {
		if prompt != nil {
			g.prompt = prompt
		}
	}
}

// WithDismisser sets the callback that closes other open modals.
func WithDismisser(dismiss Dismisser) Option {
	return func(g *Guard) {
		g.dismiss = dismiss
	}
}

// WithInactivity overrides the inactivity limit.
func WithInactivity(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.inactivity = d
		}
	}
}

// WithCountdown overrides the warning countdown. Values are rounded down to
// whole seconds; anything below one second becomes one second.
func WithCountdown(d time.Duration) Option {
	return func(g *Guard) {
		d = d.Truncate(tick)
		if d < tick {
			d = tick
		}
		g.countdown = d
	}
}

// WithLogoutURL overrides the logout target.
func WithLogoutURL(target string) Option {
	return func(g *Guard) {
		if target != "" {
			g.logoutURL = target
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// Guard is the inactivity state machine. At most one inactivity timer or
// countdown tick is pending at a time; every transition cancels the previous
// one. Methods are safe for concurrent use.
type Guard struct {
	mu sync.Mutex

	clock      Clock
	prompt     Prompt
	dismiss    Dismisser
	navigator  submit.Navigator
	logger     zerolog.Logger
	inactivity time.Duration
	countdown  time.Duration
	logoutURL  string

	state    State
	timeLeft time.Duration
	timer    Timer
	// generation invalidates callbacks that were already queued when their
	// timer was replaced.
	generation uint64
	started    bool
}

// NewGuard builds a guard that navigates with navigator once the countdown
// ends. The guard is idle until Start.
func NewGuard(navigator submit.Navigator, options ...Option) (*Guard, error) {
	if navigator == nil {
		return nil, errors.New("timeout: navigator is required")
	}
	g := &Guard{
		clock:      RealClock{},
		prompt:     nopPrompt{},
		navigator:  navigator,
		logger:     zerolog.Nop(),
		inactivity: DefaultInactivity,
		countdown:  DefaultCountdown,
		logoutURL:  DefaultLogoutURL,
	}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	g.timeLeft = g.countdown
	return g, nil
}

// Start arms the inactivity timer. Calling it on a running guard is a no-op.
func (g *Guard) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started || g.state == LoggedOut {
		return
	}
	g.started = true
	g.state = Active
	g.timeLeft = g.countdown
	g.armLocked(g.inactivity, g.onInactive)
}

// Stop cancels any pending timer. The guard can be started again unless it
// already signed the session out.
func (g *Guard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return
	}
	g.started = false
	g.cancelLocked()
	if g.state == Warning {
		g.state = Active
		g.timeLeft = g.countdown
		g.prompt.Hide()
	}
}

// Activity records a user interaction. It restarts the inactivity timer while
// Active and is ignored in every other state.
func (g *Guard) Activity(kind ActivityKind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started || g.state != Active {
		return
	}
	g.armLocked(g.inactivity, g.onInactive)
	g.logger.Trace().Str("activity", string(kind)).Msg("session activity")
}

// Acknowledge dismisses the warning. The countdown resets and the session is
// Active again with a fresh inactivity timer.
func (g *Guard) Acknowledge() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started || g.state != Warning {
		return
	}
	g.prompt.Hide()
	g.state = Active
	g.timeLeft = g.countdown
	g.armLocked(g.inactivity, g.onInactive)
	g.logger.Debug().Msg("inactivity warning acknowledged")
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// TimeLeft returns the remaining countdown.
func (g *Guard) TimeLeft() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timeLeft
}

// Status returns state and remaining countdown in milliseconds.
func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Status{State: g.state, TimeLeft: g.timeLeft.Milliseconds()}
}

func (g *Guard) onInactive(generation uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if generation != g.generation || g.state != Active {
		return
	}
	g.timer = nil
	if g.dismiss != nil {
		g.dismiss()
	}
	g.state = Warning
	g.timeLeft = g.countdown
	g.prompt.Show(g.timeLeft)
	g.armLocked(tick, g.onTick)
	g.logger.Info().Dur("countdown", g.countdown).Msg("session inactive, warning shown")
}

func (g *Guard) onTick(generation uint64) {
	g.mu.Lock()
	if generation != g.generation || g.state != Warning {
		g.mu.Unlock()
		return
	}
	g.timer = nil
	if g.timeLeft > tick {
		g.timeLeft -= tick
		g.prompt.Update(g.timeLeft)
		g.armLocked(tick, g.onTick)
		g.mu.Unlock()
		return
	}

	g.timeLeft = 0
	g.state = LoggedOut
	g.started = false
	g.generation++
	target := g.logoutURL
	g.mu.Unlock()

	g.logger.Info().Str("target", target).Msg("session timed out")
	if err := g.navigator.Navigate(context.Background(), target); err != nil {
		g.logger.Error().Err(err).Str("target", target).Msg("logout navigation failed")
	}
}

func (g *Guard) armLocked(d time.Duration, fn func(uint64)) {
	g.cancelLocked()
	generation := g.generation
	g.timer = g.clock.AfterFunc(d, func() { fn(generation) })
}

func (g *Guard) cancelLocked() {
	g.generation++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
