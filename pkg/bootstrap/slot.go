package bootstrap

import (
	"sync"

	"github.com/jllopis/surveyshell/pkg/settings"
)

// Slot is the well-known place where the settings manager is published.
// The first published manager wins and is never replaced.
type Slot struct {
	mu      sync.RWMutex
	manager *settings.Manager
}

// GlobalSlot is the process-wide slot other code reads the manager from.
var GlobalSlot = NewSlot()

// NewSlot returns an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Publish stores m if the slot is empty and reports whether it did.
func (s *Slot) Publish(m *settings.Manager) bool {
	if m == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.manager != nil {
		return false
	}
	s.manager = m
	return true
}

// Get returns the published manager or nil.
func (s *Slot) Get() *settings.Manager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manager
}
