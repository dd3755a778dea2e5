// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jllopis/surveyshell/pkg/config"
	"github.com/jllopis/surveyshell/pkg/includecheck"
	"github.com/jllopis/surveyshell/pkg/telemetry"
)

// includeOptions applies the includes section over the canonical defaults.
// The required and optional chains always come from the shared contract.
func includeOptions(cfg config.IncludesConfig, metrics *telemetry.ShellMetrics) includecheck.Options {
	opts := includecheck.DefaultOptions()
	if cfg.Exclude != "" {
		opts.Exclude = cfg.Exclude
	}
	if len(cfg.Extensions) > 0 {
		opts.Extensions = append([]string(nil), cfg.Extensions...)
	}
	if cfg.Marker != "" {
		opts.Marker = cfg.Marker
	}
	opts.Logger = slog.Default()
	opts.Metrics = metrics
	return opts
}

func (a *app) reportFormat() string {
	if a.flags.JSON {
		return "json"
	}
	return a.cfg.Includes.Format
}

func rootArg(args []string) (string, error) {
	switch len(args) {
	case 0:
		return ".", nil
	case 1:
		return args[0], nil
	default:
		return "", NewInvalidArgumentError(fmt.Sprint(args[1:]), "expected at most one root directory")
	}
}

func (a *app) runCheckIncludes(ctx context.Context, args []string) error {
	root, err := rootArg(args)
	if err != nil {
		return err
	}
	metrics, err := telemetry.NewShellMetrics(nil)
	if err != nil {
		return err
	}

	report, err := includecheck.Run(ctx, root, includeOptions(a.cfg.Includes, metrics))
	if err != nil {
		return err
	}
	if err := report.Write(a.out, a.reportFormat()); err != nil {
		return err
	}
	if !report.OK() {
		return exitStatus(1)
	}
	return nil
}

// runWatchIncludes re-validates the corpus on every change and restarts
// with fresh include options whenever the config file changes.
func (a *app) runWatchIncludes(ctx context.Context, args []string) error {
	root, err := rootArg(args)
	if err != nil {
		return err
	}
	metrics, err := telemetry.NewShellMetrics(nil)
	if err != nil {
		return err
	}

	live := config.NewReloadableConfig(a.cfg)
	reloaded := make(chan struct{}, 1)
	watcher, err := config.NewWatcher(a.flags.ConfigArgs, config.WithWatchInterval(a.cfg.Includes.WatchInterval))
	if err != nil {
		return NewConfigError(err, configPath(a.flags.ConfigArgs))
	}
	watcher.OnChange(func(cfg *config.Config) {
		if err := cfg.Validate(); err != nil {
			slog.Warn("config.reload.rejected", "error", err)
			return
		}
		live.Update(cfg)
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	if len(watcher.Paths()) > 0 {
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	for {
		cfg := live.Get()
		a.cfg = cfg
		wctx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- includecheck.Watch(wctx, root, includeOptions(cfg.Includes, metrics), cfg.Includes.Debounce, a.printWatchReport)
		}()

		select {
		case <-reloaded:
			cancel()
			<-done
			slog.Info("includes.watch.restart", "root", root)
		case err := <-done:
			cancel()
			if err == nil || stderrors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func (a *app) printWatchReport(report *includecheck.Report, err error) {
	if err != nil {
		if !stderrors.Is(err, context.Canceled) {
			slog.Error("includes.watch.failed", "error", err)
		}
		return
	}
	fmt.Fprintf(a.out, "--- %s\n", time.Now().Format(time.RFC3339))
	if err := report.Write(a.out, a.reportFormat()); err != nil {
		slog.Error("includes.watch.write_failed", "error", err)
	}
}
