// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// fileStamp identifies one observed version of a watched file.
type fileStamp struct {
	modTime time.Time
	size    int64
	missing bool
}

func stampOf(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{missing: true}
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}
}

// Watcher polls the config file (and its profile file) and reloads the
// configuration with the same CLI arguments when either changes. A reload
// that fails to load or validate keeps the previous configuration.
type Watcher struct {
	args     []string
	paths    []string
	interval time.Duration
	logger   *slog.Logger

	mu        sync.RWMutex
	stamps    map[string]fileStamp
	current   *Config
	listeners []func(*Config)

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets the polling interval for file changes.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatchLogger sets the logger for the watcher.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher loads the configuration described by args (see LoadWithCLI)
// and records the files it was read from.
func NewWatcher(args []string, opts ...WatcherOption) (*Watcher, error) {
	cli, err := parseCLIOverrides(args)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadWithCLI(args)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		args:     append([]string(nil), args...),
		interval: time.Second,
		logger:   slog.Default(),
		stamps:   make(map[string]fileStamp),
		current:  cfg,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if cli.path != "" {
		w.paths = append(w.paths, cli.path)
		if p := profileConfigPath(cli.path, cli.profile); p != "" {
			w.paths = append(w.paths, p)
		}
	}
	for _, path := range w.paths {
		w.stamps[path] = stampOf(path)
	}
	return w, nil
}

// Paths returns the files being watched, config file first.
func (w *Watcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

// OnChange registers fn to receive every successfully reloaded config.
func (w *Watcher) OnChange(fn func(*Config)) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Config returns the current configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Start polls in a goroutine until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Stop ends polling and waits for the loop to exit. Call it only after
// Start; extra calls return immediately.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.poll() {
				w.reload()
			}
		}
	}
}

// poll reports whether any watched file changed since the last poll. A
// file that disappears is logged and does not trigger a reload; its
// reappearance does.
func (w *Watcher) poll() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := false
	for _, path := range w.paths {
		now := stampOf(path)
		before := w.stamps[path]
		if now == before {
			continue
		}
		w.stamps[path] = now
		if now.missing {
			w.logger.Warn("config.file.missing", slog.String("path", path))
			continue
		}
		changed = true
	}
	return changed
}

func (w *Watcher) reload() {
	w.logger.Info("config.reload.start", slog.Any("paths", w.paths))

	cfg, err := LoadWithCLI(w.args)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		w.logger.Error("config.reload.failed", slog.String("error", err.Error()))
		return
	}

	w.mu.Lock()
	w.current = cfg
	listeners := make([]func(*Config), len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	w.logger.Info("config.reload.complete", slog.Int("listeners", len(listeners)))
	for _, fn := range listeners {
		fn(cfg)
	}
}

// WatchConfig creates a watcher for args and starts it.
func WatchConfig(ctx context.Context, args []string, opts ...WatcherOption) (*Watcher, *Config, error) {
	w, err := NewWatcher(args, opts...)
	if err != nil {
		return nil, nil, err
	}
	w.Start(ctx)
	return w, w.Config(), nil
}

// ReloadableConfig holds the live configuration for readers that must
// not see a half-applied reload.
type ReloadableConfig struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewReloadableConfig wraps cfg.
func NewReloadableConfig(cfg *Config) *ReloadableConfig {
	return &ReloadableConfig{cfg: cfg}
}

// Get returns the current configuration.
func (r *ReloadableConfig) Get() *Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Update replaces the configuration.
func (r *ReloadableConfig) Update(cfg *Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
}

// Includes returns the include validator section.
func (r *ReloadableConfig) Includes() IncludesConfig {
	return r.Get().Includes
}

// Log returns the log section.
func (r *ReloadableConfig) Log() LogConfig {
	return r.Get().Log
}
