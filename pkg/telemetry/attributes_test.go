package telemetry

import "testing"

func TestBootstrapAttributes(t *testing.T) {
	attrs := BootstrapAttributes("a1", "app-header", 4)
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Value.AsString() != "a1" {
		t.Errorf("attempt id = %q", attrs[0].Value.AsString())
	}
	if attrs[1].Value.AsInt64() != 4 {
		t.Errorf("steps = %d", attrs[1].Value.AsInt64())
	}

	if got := BootstrapAttributes("a2", "", 1); len(got) != 2 {
		t.Errorf("element should be omitted when empty, got %d attributes", len(got))
	}
}

func TestStepAttributes(t *testing.T) {
	attrs := StepAttributes("assets/js/theme-utils.js", 2, true)
	if string(attrs[0].Key) != AttrStepName {
		t.Errorf("unexpected key %s", attrs[0].Key)
	}
	if !attrs[2].Value.AsBool() {
		t.Errorf("expected skipped=true")
	}
}

func TestIncludesAttributes(t *testing.T) {
	attrs := IncludesAttributes("/site", 5, 2)
	if attrs[1].Value.AsInt64() != 5 || attrs[2].Value.AsInt64() != 2 {
		t.Errorf("unexpected counts: %v", attrs)
	}
}
