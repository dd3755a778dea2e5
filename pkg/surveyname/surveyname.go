// Package surveyname keeps the name of the survey being edited in sync
// across every open view ("tab") of the shell.
//
// All views attached to a Hub share one backing store. A change made
// through one view is persisted and announced to every other view.
package surveyname

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jllopis/surveyshell/pkg/errors"
	"github.com/jllopis/surveyshell/pkg/settings"
)

const (
	// Key is the storage key holding the name.
	Key = "survey_name"
	// MaxLength caps a stored name, in runes.
	MaxLength = 120
)

// Normalize trims surrounding space and caps the name at MaxLength runes.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= MaxLength {
		return name
	}
	return strings.TrimSpace(string([]rune(name)[:MaxLength]))
}

// Hub connects the views sharing one backing store.
type Hub struct {
	backing settings.Store

	mu    sync.Mutex
	views map[*Store]struct{}
}

// NewHub creates a hub over backing.
func NewHub(backing settings.Store) *Hub {
	return &Hub{
		backing: backing,
		views:   make(map[*Store]struct{}),
	}
}

// Attach opens a new view on the hub.
func (h *Hub) Attach() *Store {
	s := &Store{hub: h}
	h.mu.Lock()
	h.views[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Views returns the number of attached views.
func (h *Hub) Views() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.views)
}

func (h *Hub) broadcast(from *Store, name string) {
	h.mu.Lock()
	targets := make([]*Store, 0, len(h.views))
	for s := range h.views {
		if s != from {
			targets = append(targets, s)
		}
	}
	h.mu.Unlock()

	for _, s := range targets {
		s.notify(name)
	}
}

// Store is one view's handle on the shared survey name.
type Store struct {
	hub *Hub

	mu        sync.Mutex
	listeners []func(name string)
}

// Get returns the current name, or "" when none is set.
func (s *Store) Get(ctx context.Context) (string, error) {
	v, _, err := s.hub.backing.Get(ctx, Key)
	if err != nil {
		return "", errors.New(errors.CodeStorage, "failed to read survey name", err).WithRecoverable(true)
	}
	return v, nil
}

// Set stores the normalized name and tells the other views. A name that
// is empty after trimming clears the value instead.
func (s *Store) Set(ctx context.Context, name string) (string, error) {
	name = Normalize(name)
	if name == "" {
		return "", s.Clear(ctx)
	}
	if err := s.hub.backing.Set(ctx, Key, name); err != nil {
		return "", errors.New(errors.CodeStorage, "failed to write survey name", err).WithRecoverable(true)
	}
	s.hub.broadcast(s, name)
	return name, nil
}

// Clear removes the name and tells the other views with an empty name.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.hub.backing.Delete(ctx, Key); err != nil {
		return errors.New(errors.CodeStorage, "failed to clear survey name", err).WithRecoverable(true)
	}
	s.hub.broadcast(s, "")
	return nil
}

// OnChange registers fn for changes made by other views.
func (s *Store) OnChange(fn func(name string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Detach removes the view from its hub. It stops receiving changes.
func (s *Store) Detach() {
	s.hub.mu.Lock()
	delete(s.hub.views, s)
	s.hub.mu.Unlock()
}

func (s *Store) notify(name string) {
	s.mu.Lock()
	listeners := make([]func(string), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(name)
	}
}
