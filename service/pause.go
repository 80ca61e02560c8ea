package service

import "sync/atomic"

// PauseState is the operator-controlled switch for the whole giveaway. It is
// injected into the services and admin commands that need it rather than held
// as package state, so tests can run isolated instances.
type PauseState struct {
	paused atomic.Bool
}

// NewPauseState returns an unpaused state
func NewPauseState() *PauseState {
	return &PauseState{}
}

// Pause stops the giveaway; true if the state changed
func (p *PauseState) Pause() bool {
	return p.paused.CompareAndSwap(false, true)
}

// Resume restarts the giveaway; true if the state changed
func (p *PauseState) Resume() bool {
	return p.paused.CompareAndSwap(true, false)
}

// IsPaused reports whether the giveaway is paused
func (p *PauseState) IsPaused() bool {
	return p.paused.Load()
}
