//go:build ignore

// SPDX-License-Identifier: Apache-2.0
// Survey shell observability dashboards
// Dashboard templates for an OpenTelemetry UI or Grafana, built on the
// counters in pkg/telemetry/metrics.go and the spans of pkg/bootstrap and
// pkg/includecheck.
//
// DASHBOARD: Bootstrap
//
//	How often the settings bootstrap runs and how it fails.
//
//	Queries:
//	- surveyshell.bootstrap.attempts{surveyshell.bootstrap.success} (rate 5m)
//	  Display: Stacked bars, success=true vs success=false
//	  Expectation: one successful attempt per process; repeated attempts
//	  mean subscribers kept retrying after a failure
//
//	- surveyshell.bootstrap.failures{error.code, error.recoverable} (rate 5m)
//	  Display: Line chart per code (LOAD_FAILURE, REGISTRATION_TIMEOUT,
//	  CONTRACT_MISMATCH)
//	  Alert Threshold: any REGISTRATION_TIMEOUT over 15m; the header
//	  element is not being defined within bootstrap.settle_timeout
//
//	- surveyshell.callbacks.failed (increase 1h)
//	  Display: Single stat
//	  Meaning: readiness subscribers that panicked or returned an error.
//	  They never block the queue, so this is the only place they surface.
//
// DASHBOARD: Include order
//
//	Results of check-includes and watch-includes runs.
//
//	Queries:
//	- surveyshell.includes.documents{surveyshell.includes.valid} (last value per run)
//	  Display: Gauge, invalid documents
//	  Alert Threshold: > 0 on the main branch build
//
// TRACES
//   - Bootstrap.Initialize (surveyshell.bootstrap.attempt_id, .element,
//     .steps, .success)
//     Bootstrap.Step (surveyshell.step.name, .index, .skipped)
//     Skipped steps were loaded by an earlier attempt. A failed attempt
//     followed by a success should show the early steps skipped.
//   - Includes.Run (surveyshell.includes.root, .checked, .invalid)
//
// LOGS
//
//	Every log line emitted inside a span carries trace_id and span_id, so
//	bootstrap.attempt.failed lines link straight to the failing step span.
package main

// This file is documentation only and is not compiled.
