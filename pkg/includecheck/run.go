// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package includecheck statically verifies that every document opting into
// the header chrome references the canonical resource chain exactly once
// and in canonical order, with paths adjusted to the document's depth.
//
// Matching is literal substring search over the raw text. A path that only
// appears inside a comment still counts as present.
package includecheck

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/jllopis/surveyshell/pkg/errors"
	"github.com/jllopis/surveyshell/pkg/telemetry"
)

// Run discovers and checks every document under root. A document that
// cannot be read is recorded on the report and the scan continues.
func Run(ctx context.Context, root string, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("surveyshell/includecheck")
	}
	ctx, span := tracer.Start(ctx, "Includes.Run")
	defer span.End()

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.New(errors.CodeNotFound, "corpus root not found", err).WithContext("root", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.CodeInvalidInput, "corpus root is not a directory", nil).WithContext("root", root)
	}

	docs, err := Discover(root, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.New(errors.CodeInternal, "failed to discover documents", err).WithContext("root", root)
	}
	logger.DebugContext(ctx, "includes.scan.start", slog.String("root", root), slog.Int("documents", len(docs)))

	report := &Report{Root: root}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, errors.New(errors.CodeTimeout, "scan cancelled", err).
				WithContext("root", root).
				WithContext("checked", report.Checked)
		}
		data, err := os.ReadFile(doc)
		if err != nil {
			logger.WarnContext(ctx, "includes.document.unreadable", slog.String("path", doc), slog.String("error", err.Error()))
			report.Errors = append(report.Errors, DocumentError{Path: displayPath(doc, root), Error: err.Error()})
			continue
		}
		res, checked, err := CheckDocument(doc, root, string(data), opts)
		if err != nil {
			report.Errors = append(report.Errors, DocumentError{Path: displayPath(doc, root), Error: err.Error()})
			continue
		}
		if !checked {
			continue
		}
		report.add(res)
		if !res.Valid {
			logger.DebugContext(ctx, "includes.document.invalid", slog.String("path", res.Path), slog.Any("issues", res.Issues()))
		}
	}

	span.SetAttributes(telemetry.IncludesAttributes(root, report.Checked, report.Invalid)...)
	if !report.OK() {
		span.SetStatus(codes.Error, "invalid documents")
	}
	opts.Metrics.RecordDocuments(ctx, report.Valid, report.Invalid)
	logger.InfoContext(ctx, "includes.scan.complete",
		slog.String("root", root),
		slog.Int("checked", report.Checked),
		slog.Int("valid", report.Valid),
		slog.Int("invalid", report.Invalid),
		slog.Int("errors", len(report.Errors)),
	)
	return report, nil
}
