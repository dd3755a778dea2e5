package includecheck

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/surveyshell/pkg/contract"
	"github.com/jllopis/surveyshell/pkg/telemetry"
)

// DefaultExclude is the subtree skipped during discovery.
const DefaultExclude = "node_modules"

// Options controls discovery and checking.
type Options struct {
	// Exclude names a directory skipped wherever it appears.
	Exclude string
	// Extensions are the markup file extensions that are scanned.
	Extensions []string
	// Marker opts a document into checking.
	Marker string
	// Required are root-relative paths that must appear once, in order.
	Required []string
	// Optional are root-relative paths that must only be present.
	Optional []string

	Logger  *slog.Logger
	Metrics *telemetry.ShellMetrics
	Tracer  trace.Tracer
}

// DefaultOptions checks the canonical header chain.
func DefaultOptions() Options {
	return Options{
		Exclude:    DefaultExclude,
		Extensions: []string{".html", ".htm"},
		Marker:     contract.Marker,
		Required:   contract.RequiredPaths(),
		Optional:   contract.OptionalPaths(),
	}
}

func withPrefix(prefix string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = prefix + p
	}
	return out
}
