// Package theme resolves the light/dark color scheme of the shell chrome.
package theme

import (
	"fmt"
	"strings"
	"sync"
)

// Mode is a user-selectable color scheme.
type Mode string

const (
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
	ModeSystem Mode = "system"
)

// ParseMode parses a stored or user-provided mode. Empty means system.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeSystem:
		return ModeSystem, nil
	case ModeLight:
		return ModeLight, nil
	case ModeDark:
		return ModeDark, nil
	default:
		return "", fmt.Errorf("unknown theme mode %q", value)
	}
}

// Resolve turns a mode into a concrete light or dark scheme.
func Resolve(mode Mode, prefersDark bool) Mode {
	switch mode {
	case ModeLight, ModeDark:
		return mode
	default:
		if prefersDark {
			return ModeDark
		}
		return ModeLight
	}
}

// Palette maps CSS custom property names to values.
type Palette map[string]string

func (p Palette) clone() Palette {
	out := make(Palette, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

var defaults = map[Mode]Palette{
	ModeLight: {
		"--header-bg":       "#ffffff",
		"--header-fg":       "#1f2933",
		"--breadcrumb-link": "#2563eb",
		"--surface":         "#f8fafc",
	},
	ModeDark: {
		"--header-bg":       "#111827",
		"--header-fg":       "#f9fafb",
		"--breadcrumb-link": "#93c5fd",
		"--surface":         "#1f2937",
	},
}

// Registry holds the palettes available to the chrome.
type Registry struct {
	mu       sync.RWMutex
	palettes map[Mode]Palette
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{palettes: make(map[Mode]Palette)}
}

// LoadDefaults registers the built-in light and dark palettes.
func (r *Registry) LoadDefaults() {
	for mode, p := range defaults {
		_ = r.Register(mode, p)
	}
}

// Register installs or replaces the palette for a concrete mode.
func (r *Registry) Register(mode Mode, p Palette) error {
	if mode != ModeLight && mode != ModeDark {
		return fmt.Errorf("palettes can only be registered for %q or %q, got %q", ModeLight, ModeDark, mode)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.palettes[mode] = p.clone()
	return nil
}

// Loaded reports whether both concrete palettes are available.
func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, light := r.palettes[ModeLight]
	_, dark := r.palettes[ModeDark]
	return light && dark
}

// Palette returns a copy of the palette for mode after resolving system.
func (r *Registry) Palette(mode Mode, prefersDark bool) (Palette, error) {
	resolved := Resolve(mode, prefersDark)
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.palettes[resolved]
	if !ok {
		return nil, fmt.Errorf("no palette registered for %q", resolved)
	}
	return p.clone(), nil
}
