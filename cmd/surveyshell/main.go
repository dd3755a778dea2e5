// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Command surveyshell runs the survey shell's bootstrap chain, validates
// include order across the markup corpus and manages persisted settings.
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jllopis/surveyshell/pkg/bootstrap"
	"github.com/jllopis/surveyshell/pkg/config"
	"github.com/jllopis/surveyshell/pkg/shell"
	"github.com/jllopis/surveyshell/pkg/telemetry"
)

const serviceName = "surveyshell"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalFlags struct {
	ConfigArgs []string
	JSON       bool
	Help       bool
}

// app carries what every command needs. Commands write to out so they
// can be exercised without a process.
type app struct {
	flags globalFlags
	cfg   *config.Config
	out   io.Writer

	// newOrchestrator defaults to shell.Default.
	newOrchestrator func(shell.Config) (*bootstrap.Orchestrator, error)
}

// exitStatus ends the process with a status but no message. The command
// has already printed its result.
type exitStatus int

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	global, args, err := parseGlobalFlags(argv)
	if err != nil {
		return reportError(stderr, NewInvalidArgumentError("flags", err.Error()), global.JSON)
	}
	if global.Help || len(args) == 0 {
		printUsage(stdout)
		return 0
	}

	switch args[0] {
	case "help":
		printUsage(stdout)
		return 0
	case "version":
		fmt.Fprintln(stdout, version)
		return 0
	}

	cfg, err := config.LoadWithCLI(global.ConfigArgs)
	if err != nil {
		return reportError(stderr, NewConfigError(err, configPath(global.ConfigArgs)), global.JSON)
	}
	if err := cfg.Validate(); err != nil {
		return reportError(stderr, NewConfigError(err, configPath(global.ConfigArgs)), global.JSON)
	}

	telemetry.ConfigureSlog(stderr, cfg.Log.Level, cfg.Log.Format)
	shutdown, err := telemetry.InitWithConfig(serviceName, version, telemetry.Config{
		Exporter:           cfg.Telemetry.Exporter,
		OTLPEndpoint:       cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:       cfg.Telemetry.OTLPInsecure,
		OTLPTimeoutSeconds: cfg.Telemetry.OTLPTimeoutSeconds,
	})
	if err != nil {
		return reportError(stderr, NewConfigError(err, configPath(global.ConfigArgs)), global.JSON)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(sctx)
	}()

	a := &app{flags: global, cfg: cfg, out: stdout}
	if err := a.dispatch(ctx, args); err != nil {
		var status exitStatus
		if stderrors.As(err, &status) {
			return int(status)
		}
		return reportError(stderr, err, global.JSON)
	}
	return 0
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "check-includes":
		return a.runCheckIncludes(ctx, rest)
	case "watch-includes":
		return a.runWatchIncludes(ctx, rest)
	case "bootstrap":
		if err := ensureNoArgs(rest); err != nil {
			return err
		}
		return a.runBootstrap(ctx)
	case "settings":
		return a.runSettings(ctx, rest)
	case "survey-name":
		return a.runSurveyName(ctx, rest)
	case "url":
		return a.runURL(rest)
	case "mcp":
		if err := ensureNoArgs(rest); err != nil {
			return err
		}
		return a.runMCP(ctx)
	default:
		return NewInvalidArgumentError("command", fmt.Sprintf("unknown command %q", cmd))
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	var flags globalFlags

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") {
			return flags, args[i:], nil
		}
		switch {
		case arg == "-h" || arg == "--help":
			flags.Help = true
			return flags, nil, nil
		case arg == "--json":
			flags.JSON = true
		case arg == "--config" || arg == "--set" || arg == "--profile":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("missing value for %s", arg)
			}
			flags.ConfigArgs = append(flags.ConfigArgs, arg, args[i+1])
			i++
		case strings.HasPrefix(arg, "--config="),
			strings.HasPrefix(arg, "--set="),
			strings.HasPrefix(arg, "--profile="):
			flags.ConfigArgs = append(flags.ConfigArgs, arg)
		default:
			return flags, nil, fmt.Errorf("unknown global flag %q", arg)
		}
	}
	return flags, nil, nil
}

func configPath(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
	}
	return ""
}

func (a *app) printJSON(value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(payload))
	return err
}

func (a *app) newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 8, 2, ' ', 0)
}

func writeRow(writer *tabwriter.Writer, cols ...string) {
	for i, col := range cols {
		cols[i] = normalizeCell(col)
	}
	fmt.Fprintln(writer, strings.Join(cols, "\t"))
}

func normalizeCell(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return strings.Join(strings.Fields(value), " ")
}

func ensureNoArgs(args []string) error {
	if len(args) > 0 {
		return NewInvalidArgumentError(strings.Join(args, " "), "unexpected arguments")
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Survey shell

Usage:
  surveyshell [global flags] <command> [args]

Global flags:
  --config <path>      Path to surveyshell.yaml
  --profile <name>     Merge <config>.<name>.yaml over the config file
  --set key=value      Override config (repeatable)
  --json               JSON output

Commands:
  check-includes [root]              Validate include order of every header document
  watch-includes [root]              Re-validate whenever the corpus changes
  bootstrap                          Run the initialization chain and print its state
  settings list
  settings get <key>
  settings set <key> <value>
  survey-name [get]
  survey-name set <name>
  survey-name clear
  url [--host <name>] <path> [key=value...]
  mcp                                Serve shell tools over MCP stdio
  version
  help
`)
}
