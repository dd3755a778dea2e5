// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package elements is the registry of UI element definitions.
//
// Definitions follow custom element naming: lowercase, starting with a
// letter and containing a hyphen. Each name can be defined once per
// registry. WhenDefined lets a caller wait for a definition that another
// component performs later, which is how the bootstrap chain confirms the
// header registration without sleeping.
package elements

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)+$`)

// Definition describes a registered element.
type Definition struct {
	// Module is the resource that performed the definition.
	Module string
	// ObservedAttributes lists attributes the element reacts to.
	ObservedAttributes []string
}

// Registry maps element names to their definitions.
type Registry struct {
	mu      sync.Mutex
	defs    map[string]Definition
	waiters map[string]chan struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:    make(map[string]Definition),
		waiters: make(map[string]chan struct{}),
	}
}

// ValidName reports whether name is an acceptable element name.
func ValidName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid element name %q: must be lowercase and contain a hyphen", name)
	}
	return nil
}

// Define registers name. Redefining an existing name is an error.
func (r *Registry) Define(name string, def Definition) error {
	if err := ValidName(name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[name]; exists {
		return fmt.Errorf("element %q is already defined", name)
	}
	def.ObservedAttributes = append([]string(nil), def.ObservedAttributes...)
	r.defs[name] = def
	close(r.waiterLocked(name))
	return nil
}

// IsDefined reports whether name has been defined.
func (r *Registry) IsDefined(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.defs[name]
	return ok
}

// Get returns the definition for name.
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.defs[name]
	if ok {
		def.ObservedAttributes = append([]string(nil), def.ObservedAttributes...)
	}
	return def, ok
}

// WhenDefined returns a channel closed once name is defined.
// The channel is already closed when the definition exists.
func (r *Registry) WhenDefined(name string) <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waiterLocked(name)
}

func (r *Registry) waiterLocked(name string) chan struct{} {
	ch, ok := r.waiters[name]
	if !ok {
		ch = make(chan struct{})
		r.waiters[name] = ch
	}
	return ch
}

// Names returns the defined element names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.defs))
	for name := range r.defs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
