package testsupport

import (
	"context"
	"sync"
)

// RecordingNavigator captures navigation targets instead of following them.
type RecordingNavigator struct {
	mu      sync.Mutex
	targets []string
	// Err is returned from Navigate when set.
	Err error
}

// Navigate records target.
func (n *RecordingNavigator) Navigate(_ context.Context, target string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
	return n.Err
}

// Targets returns a copy of every recorded target in call order.
func (n *RecordingNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

// Count returns how many navigations were recorded.
func (n *RecordingNavigator) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.targets)
}
