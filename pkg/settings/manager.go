// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jllopis/surveyshell/pkg/errors"
	"github.com/jllopis/surveyshell/pkg/theme"
)

// Well-known setting keys.
const (
	KeyTheme       = "theme"
	KeyEnvironment = "environment"
)

// ChangeFunc is notified after a key changes. An empty value with
// deleted=true means the key was removed.
type ChangeFunc func(key, value string, deleted bool)

// Manager is the global settings handle. One Manager is created per
// bootstrap and shared by every view collaborator.
type Manager struct {
	id     string
	store  Store
	themes *theme.Registry

	mu        sync.RWMutex
	listeners []ChangeFunc
}

// NewManager creates a manager over store. themes validates and resolves
// the theme setting; it may be nil when theming is not needed.
func NewManager(store Store, themes *theme.Registry) *Manager {
	return &Manager{
		id:     uuid.NewString(),
		store:  store,
		themes: themes,
	}
}

// ID identifies this manager instance.
func (m *Manager) ID() string {
	return m.id
}

// Get returns the value stored under key.
func (m *Manager) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validKey(key); err != nil {
		return "", false, err
	}
	v, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return "", false, storageError("read", key, err)
	}
	return v, ok, nil
}

// Set stores value under key and notifies listeners.
func (m *Manager) Set(ctx context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if key == KeyTheme {
		mode, err := theme.ParseMode(value)
		if err != nil {
			return errors.New(errors.CodeInvalidInput, "invalid theme", err).WithContext("value", value)
		}
		value = string(mode)
	}
	if err := m.store.Set(ctx, key, value); err != nil {
		return storageError("write", key, err)
	}
	m.notify(key, value, false)
	return nil
}

// Delete removes key and notifies listeners.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, key); err != nil {
		return storageError("delete", key, err)
	}
	m.notify(key, "", true)
	return nil
}

// Snapshot returns a copy of every stored setting.
func (m *Manager) Snapshot(ctx context.Context) (map[string]string, error) {
	keys, err := m.store.Keys(ctx)
	if err != nil {
		return nil, storageError("list", "", err)
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := m.store.Get(ctx, k)
		if err != nil {
			return nil, storageError("read", k, err)
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

// Theme returns the stored theme mode, defaulting to system.
func (m *Manager) Theme(ctx context.Context) (theme.Mode, error) {
	v, _, err := m.Get(ctx, KeyTheme)
	if err != nil {
		return "", err
	}
	return theme.ParseMode(v)
}

// SetTheme stores the theme mode.
func (m *Manager) SetTheme(ctx context.Context, mode theme.Mode) error {
	return m.Set(ctx, KeyTheme, string(mode))
}

// Palette resolves the stored theme into CSS custom properties.
func (m *Manager) Palette(ctx context.Context, prefersDark bool) (theme.Palette, error) {
	if m.themes == nil {
		return nil, errors.New(errors.CodeNotFound, "no theme registry configured", nil)
	}
	mode, err := m.Theme(ctx)
	if err != nil {
		return nil, err
	}
	return m.themes.Palette(mode, prefersDark)
}

// OnChange registers fn to be called after every Set or Delete.
func (m *Manager) OnChange(fn ChangeFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notify(key, value string, deleted bool) {
	m.mu.RLock()
	listeners := make([]ChangeFunc, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, fn := range listeners {
		fn(key, value, deleted)
	}
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New(errors.CodeInvalidInput, "setting key is empty", nil)
	}
	return nil
}

func storageError(op, key string, err error) error {
	return errors.New(errors.CodeStorage, "settings "+op+" failed", err).
		WithContext("key", key).
		WithRecoverable(true)
}
