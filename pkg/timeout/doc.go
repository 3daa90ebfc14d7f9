// Package timeout signs idle sessions out. A Guard watches user activity,
// shows a warning prompt after a period of inactivity and navigates to the
// logout endpoint when the countdown runs out.
//
// Timing, prompting and navigation are injected so the guard can be driven
// by a browser session, a terminal or a manual clock in tests.
package timeout
