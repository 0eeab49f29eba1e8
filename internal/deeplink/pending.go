package deeplink

import (
	stderrors "errors"
	"sync"
)

// ErrPendingOccupied is returned by Set when an intent is already waiting.
var ErrPendingOccupied = stderrors.New("a pending intent is already set")

// Pending holds the intent that launched the app until the bridge reads it.
// The platform entry point sets it once; the bridge takes it once.
type Pending struct {
	mu     sync.Mutex
	intent *Intent
}

// Set stores intent. It fails if an earlier intent has not been taken yet.
func (p *Pending) Set(intent *Intent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.intent != nil {
		return ErrPendingOccupied
	}
	p.intent = intent
	return nil
}

// Take returns the pending intent, or nil, and clears the slot.
func (p *Pending) Take() *Intent {
	p.mu.Lock()
	defer p.mu.Unlock()
	intent := p.intent
	p.intent = nil
	return intent
}
