package timeout

import "time"

// Copy shown by warning prompts.
const (
	PromptTitle  = "Are you still there?"
	PromptBody   = "You are about to be signed out due to inactivity. Please click below to stay signed in."
	PromptButton = "Stay signed in"
)

// Prompt displays the inactivity warning.
type Prompt interface {
	Show(timeLeft time.Duration)
	Update(timeLeft time.Duration)
	Hide()
}

// Dismisser closes whatever other modal is open before the warning shows.
type Dismisser func()

type nopPrompt struct{}

func (nopPrompt) Show(time.Duration)   {}
func (nopPrompt) Update(time.Duration) {}
func (nopPrompt) Hide()                {}
