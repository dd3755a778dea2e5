package surveyname

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jllopis/surveyshell/pkg/settings"
)

func TestNormalize(t *testing.T) {
	if got := Normalize("  Customer survey  "); got != "Customer survey" {
		t.Errorf("Normalize trimmed = %q", got)
	}
	long := strings.Repeat("é", MaxLength+10)
	if got := Normalize(long); utf8.RuneCountInString(got) != MaxLength {
		t.Errorf("expected %d runes, got %d", MaxLength, utf8.RuneCountInString(got))
	}
	if got := Normalize("   "); got != "" {
		t.Errorf("blank name should normalize to empty, got %q", got)
	}
}

func TestSetBroadcastsToOtherViews(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(settings.NewMemoryStore())
	a := hub.Attach()
	b := hub.Attach()

	var fromA, fromB []string
	a.OnChange(func(name string) { fromA = append(fromA, name) })
	b.OnChange(func(name string) { fromB = append(fromB, name) })

	stored, err := a.Set(ctx, " Onboarding ")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if stored != "Onboarding" {
		t.Fatalf("expected normalized name, got %q", stored)
	}
	if len(fromA) != 0 {
		t.Errorf("the writer must not be notified of its own change")
	}
	if len(fromB) != 1 || fromB[0] != "Onboarding" {
		t.Errorf("other view notifications = %v", fromB)
	}

	got, err := b.Get(ctx)
	if err != nil || got != "Onboarding" {
		t.Fatalf("Get = %q, %v", got, err)
	}
}

func TestSetEmptyClears(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(settings.NewMemoryStore())
	a := hub.Attach()
	b := hub.Attach()

	if _, err := a.Set(ctx, "Exit poll"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var last = "unset"
	b.OnChange(func(name string) { last = name })

	if _, err := a.Set(ctx, "  "); err != nil {
		t.Fatalf("Set blank: %v", err)
	}
	if last != "" {
		t.Errorf("expected clear notification, got %q", last)
	}
	if got, _ := b.Get(ctx); got != "" {
		t.Errorf("expected cleared name, got %q", got)
	}
}

func TestDetach(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(settings.NewMemoryStore())
	a := hub.Attach()
	b := hub.Attach()

	called := false
	b.OnChange(func(string) { called = true })
	b.Detach()
	if hub.Views() != 1 {
		t.Fatalf("expected 1 view, got %d", hub.Views())
	}
	if err := a.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if called {
		t.Error("detached view must not be notified")
	}
}
