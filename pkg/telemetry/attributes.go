// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys for shell spans and metrics.
const (
	// Bootstrap attributes
	AttrBootstrapAttemptID = "surveyshell.bootstrap.attempt_id"
	AttrBootstrapElement   = "surveyshell.bootstrap.element"
	AttrBootstrapSteps     = "surveyshell.bootstrap.steps"
	AttrBootstrapSuccess   = "surveyshell.bootstrap.success"

	// Step attributes
	AttrStepName    = "surveyshell.step.name"
	AttrStepIndex   = "surveyshell.step.index"
	AttrStepSkipped = "surveyshell.step.skipped"

	// Include validation attributes
	AttrIncludesRoot    = "surveyshell.includes.root"
	AttrIncludesChecked = "surveyshell.includes.checked"
	AttrIncludesInvalid = "surveyshell.includes.invalid"
	AttrIncludesValid   = "surveyshell.includes.valid"

	// Error attributes
	AttrErrorCode        = "error.code"
	AttrErrorRecoverable = "error.recoverable"
)

// BootstrapAttributes returns attributes for a bootstrap attempt span.
func BootstrapAttributes(attemptID, element string, steps int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrBootstrapAttemptID, attemptID),
		attribute.Int(AttrBootstrapSteps, steps),
	}
	if element != "" {
		attrs = append(attrs, attribute.String(AttrBootstrapElement, element))
	}
	return attrs
}

// StepAttributes returns attributes for a single chain step span.
func StepAttributes(name string, index int, skipped bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrStepName, name),
		attribute.Int(AttrStepIndex, index),
		attribute.Bool(AttrStepSkipped, skipped),
	}
}

// IncludesAttributes returns attributes describing an include scan.
func IncludesAttributes(root string, checked, invalid int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrIncludesRoot, root),
		attribute.Int(AttrIncludesChecked, checked),
		attribute.Int(AttrIncludesInvalid, invalid),
	}
}
