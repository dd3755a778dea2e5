package main

import (
	"context"
	"os"

	"github.com/jllopis/surveyshell/pkg/mcp"
	"github.com/jllopis/surveyshell/pkg/telemetry"
)

// runMCP serves the shell tools over stdio until the client disconnects.
// The corpus root defaults to the working directory.
func (a *app) runMCP(ctx context.Context) error {
	metrics, err := telemetry.NewShellMetrics(nil)
	if err != nil {
		return err
	}
	store, closer, err := openStore(a.cfg.Settings)
	if err != nil {
		return err
	}
	defer closer.Close()

	orch, err := a.orchestrator(store)
	if err != nil {
		return err
	}

	root, err := os.Getwd()
	if err != nil {
		return err
	}
	srv := mcp.NewServer(serviceName, version, mcp.Options{
		Root:         root,
		Includes:     includeOptions(a.cfg.Includes, metrics),
		Orchestrator: orch,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
