// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/jllopis/surveyshell/pkg/bootstrap"
	"github.com/jllopis/surveyshell/pkg/config"
	"github.com/jllopis/surveyshell/pkg/resilience"
	"github.com/jllopis/surveyshell/pkg/settings"
	"github.com/jllopis/surveyshell/pkg/shell"
	"github.com/jllopis/surveyshell/pkg/surveyname"
	"github.com/jllopis/surveyshell/pkg/telemetry"
)

// openStore opens the configured settings backend. The returned closer is
// never nil.
func openStore(cfg config.SettingsConfig) (settings.Store, io.Closer, error) {
	switch cfg.Store {
	case "", "memory":
		return settings.NewMemoryStore(), io.NopCloser(nil), nil
	case "sqlite":
		db, err := settings.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, nil, WrapStoreError(err, cfg.Store, cfg.DSN)
		}
		store, err := settings.NewSQLiteStore(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, WrapStoreError(err, cfg.Store, cfg.DSN)
		}
		return settings.NewRetryStore(store, resilience.RetryConfig{}), db, nil
	default:
		return nil, nil, NewInvalidArgumentError("settings.store", fmt.Sprintf("unknown settings store %q", cfg.Store))
	}
}

// orchestrator returns the process-wide orchestrator over store. Only the
// first call in a process picks the store.
func (a *app) orchestrator(store settings.Store) (*bootstrap.Orchestrator, error) {
	metrics, err := telemetry.NewShellMetrics(nil)
	if err != nil {
		return nil, err
	}
	newOrchestrator := a.newOrchestrator
	if newOrchestrator == nil {
		newOrchestrator = shell.Default
	}
	return newOrchestrator(shell.Config{
		Element:       a.cfg.Bootstrap.Element,
		SettleTimeout: a.cfg.Bootstrap.SettleTimeout,
		Store:         store,
		Logger:        slog.Default(),
		Metrics:       metrics,
	})
}

// manager runs the bootstrap and returns the published settings handle.
func (a *app) manager(ctx context.Context) (*settings.Manager, io.Closer, error) {
	store, closer, err := openStore(a.cfg.Settings)
	if err != nil {
		return nil, nil, err
	}
	orch, err := a.orchestrator(store)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	m, err := orch.Initialize(ctx)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return m, closer, nil
}

type bootstrapResult struct {
	bootstrap.Status
	ManagerID string `json:"manager_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (a *app) runBootstrap(ctx context.Context) error {
	store, closer, err := openStore(a.cfg.Settings)
	if err != nil {
		return err
	}
	defer closer.Close()

	orch, err := a.orchestrator(store)
	if err != nil {
		return err
	}

	result := bootstrapResult{}
	m, initErr := orch.Initialize(ctx)
	if initErr != nil {
		result.Error = initErr.Error()
	} else {
		result.ManagerID = m.ID()
	}
	result.Status = orch.Status()

	if a.flags.JSON {
		if err := a.printJSON(result); err != nil {
			return err
		}
	} else {
		writer := a.newTabWriter()
		writeRow(writer, "STEP", "LOADED")
		for _, step := range result.Steps {
			writeRow(writer, step.Name, fmt.Sprint(step.Loaded))
		}
		_ = writer.Flush()
		fmt.Fprintf(a.out, "registration: %t\n", result.RegistrationPresent)
		fmt.Fprintf(a.out, "initialized: %t\n", result.Initialized)
		if result.ManagerID != "" {
			fmt.Fprintf(a.out, "manager: %s\n", result.ManagerID)
		}
	}
	return initErr
}

func (a *app) runSettings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return NewInvalidArgumentError("settings", "usage: surveyshell settings list|get <key>|set <key> <value>")
	}
	m, closer, err := a.manager(ctx)
	if err != nil {
		return err
	}
	defer closer.Close()

	switch args[0] {
	case "list":
		if err := ensureNoArgs(args[1:]); err != nil {
			return err
		}
		values, err := m.Snapshot(ctx)
		if err != nil {
			return err
		}
		if a.flags.JSON {
			return a.printJSON(values)
		}
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		writer := a.newTabWriter()
		writeRow(writer, "KEY", "VALUE")
		for _, k := range keys {
			writeRow(writer, k, values[k])
		}
		return writer.Flush()
	case "get":
		if len(args) != 2 {
			return NewInvalidArgumentError("settings get", "usage: surveyshell settings get <key>")
		}
		value, ok, err := m.Get(ctx, args[1])
		if err != nil {
			return err
		}
		if !ok {
			return NewNotFoundError("settings", args[1])
		}
		if a.flags.JSON {
			return a.printJSON(map[string]string{"key": args[1], "value": value})
		}
		_, err = fmt.Fprintln(a.out, value)
		return err
	case "set":
		if len(args) != 3 {
			return NewInvalidArgumentError("settings set", "usage: surveyshell settings set <key> <value>")
		}
		return m.Set(ctx, args[1], args[2])
	default:
		return NewInvalidArgumentError(args[0], "unknown settings subcommand")
	}
}

func (a *app) runSurveyName(ctx context.Context, args []string) error {
	store, closer, err := openStore(a.cfg.Settings)
	if err != nil {
		return err
	}
	defer closer.Close()

	view := surveyname.NewHub(store).Attach()
	defer view.Detach()

	sub := "get"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "get":
		if len(args) > 1 {
			return ensureNoArgs(args[1:])
		}
		name, err := view.Get(ctx)
		if err != nil {
			return err
		}
		if a.flags.JSON {
			return a.printJSON(map[string]string{"survey_name": name})
		}
		_, err = fmt.Fprintln(a.out, name)
		return err
	case "set":
		if len(args) != 2 {
			return NewInvalidArgumentError("survey-name set", "usage: surveyshell survey-name set <name>")
		}
		name, err := view.Set(ctx, args[1])
		if err != nil {
			return err
		}
		if a.flags.JSON {
			return a.printJSON(map[string]string{"survey_name": name})
		}
		_, err = fmt.Fprintln(a.out, name)
		return err
	case "clear":
		if err := ensureNoArgs(args[1:]); err != nil {
			return err
		}
		return view.Clear(ctx)
	default:
		return NewInvalidArgumentError(sub, "unknown survey-name subcommand")
	}
}
