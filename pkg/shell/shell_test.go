package shell

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jllopis/surveyshell/pkg/bootstrap"
	"github.com/jllopis/surveyshell/pkg/contract"
	"github.com/jllopis/surveyshell/pkg/elements"
	"github.com/jllopis/surveyshell/pkg/settings"
	"github.com/jllopis/surveyshell/pkg/theme"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChainMatchesContract(t *testing.T) {
	steps := Chain(Deps{})
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	if err := contract.Verify(names); err != nil {
		t.Fatalf("chain diverges from the canonical list: %v", err)
	}
}

func TestHeaderNeedsBase(t *testing.T) {
	steps := Chain(Deps{Elements: elements.NewRegistry()})
	err := steps[1].Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), contract.BasePath) {
		t.Fatalf("expected header to require the base step, got %v", err)
	}
}

func TestNewInitializes(t *testing.T) {
	registry := elements.NewRegistry()
	themes := theme.NewRegistry()
	slot := bootstrap.NewSlot()
	o, err := New(Config{
		Elements:      registry,
		Themes:        themes,
		Slot:          slot,
		SettleTimeout: time.Second,
		Logger:        quiet(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m, err := o.Initialize(context.Background())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if slot.Get() != m {
		t.Fatal("manager must be published to the slot")
	}
	def, ok := registry.Get(contract.HeaderElement)
	if !ok || def.Module != contract.HeaderPath {
		t.Fatalf("header definition = %+v, %v", def, ok)
	}
	if !themes.Loaded() {
		t.Fatal("theme step must load palettes")
	}
	if err := m.SetTheme(context.Background(), theme.ModeDark); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	palette, err := m.Palette(context.Background(), false)
	if err != nil {
		t.Fatalf("Palette: %v", err)
	}
	if palette["--header-bg"] != "#111827" {
		t.Fatalf("unexpected dark palette %v", palette)
	}
}

func TestDefaultIsSingleton(t *testing.T) {
	store := settings.NewMemoryStore()
	first, err := Default(Config{Store: store, Logger: quiet()})
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	second, err := Default(Config{Element: "other-element"})
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if first != second {
		t.Fatal("Default must return the same orchestrator")
	}

	done := make(chan *settings.Manager, 1)
	first.OnReady(func(m *settings.Manager) { done <- m })
	select {
	case m := <-done:
		if Manager() != m {
			t.Fatal("Manager() must return the published handle")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("default orchestrator never became ready")
	}
}

func TestChainDefinesConfiguredElement(t *testing.T) {
	registry := elements.NewRegistry()
	o, err := New(Config{
		Element:       "survey-header",
		Elements:      registry,
		Slot:          bootstrap.NewSlot(),
		SettleTimeout: 200 * time.Millisecond,
		Logger:        quiet(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := o.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !registry.IsDefined("survey-header") {
		t.Fatal("configured element must be defined")
	}
	if registry.IsDefined(contract.HeaderElement) {
		t.Fatal("default element must not be defined when another is configured")
	}
}
