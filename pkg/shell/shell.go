package shell

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jllopis/surveyshell/pkg/bootstrap"
	"github.com/jllopis/surveyshell/pkg/elements"
	"github.com/jllopis/surveyshell/pkg/settings"
	"github.com/jllopis/surveyshell/pkg/telemetry"
	"github.com/jllopis/surveyshell/pkg/theme"
)

// Config configures an orchestrator over the canonical chain. Zero fields
// take the bootstrap defaults; a nil Store uses a memory store.
type Config struct {
	Element       string
	SettleTimeout time.Duration
	Store         settings.Store
	Elements      *elements.Registry
	Themes        *theme.Registry
	Slot          *bootstrap.Slot
	Logger        *slog.Logger
	Metrics       *telemetry.ShellMetrics
}

// New builds an orchestrator over the canonical chain.
func New(cfg Config) (*bootstrap.Orchestrator, error) {
	if cfg.Store == nil {
		cfg.Store = settings.NewMemoryStore()
	}
	if cfg.Elements == nil {
		cfg.Elements = elements.NewRegistry()
	}
	if cfg.Themes == nil {
		cfg.Themes = theme.NewRegistry()
	}
	return bootstrap.New(bootstrap.Options{
		Steps: Chain(Deps{
			Elements: cfg.Elements,
			Themes:   cfg.Themes,
			Store:    cfg.Store,
			Element:  cfg.Element,
		}),
		Registrations: cfg.Elements,
		Element:       cfg.Element,
		SettleTimeout: cfg.SettleTimeout,
		Slot:          cfg.Slot,
		Logger:        cfg.Logger,
		Metrics:       cfg.Metrics,
	})
}

var (
	defaultOnce sync.Once
	defaultOrch *bootstrap.Orchestrator
	defaultErr  error
)

// Default returns the process-wide orchestrator, creating it from cfg on
// the first call. Later calls ignore cfg. It always publishes to
// bootstrap.GlobalSlot and uses the process element registry.
func Default(cfg Config) (*bootstrap.Orchestrator, error) {
	defaultOnce.Do(func() {
		cfg.Slot = bootstrap.GlobalSlot
		cfg.Elements = Elements
		defaultOrch, defaultErr = New(cfg)
	})
	return defaultOrch, defaultErr
}

// Elements is the process element registry used by Default.
var Elements = elements.NewRegistry()

// Manager returns the published settings manager, or nil before the
// process-wide bootstrap completes its final step.
func Manager() *settings.Manager {
	return bootstrap.GlobalSlot.Get()
}
