package includecheck

import (
	"path/filepath"
	"testing"
)

func TestPrefixFor(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		doc  string
		want string
	}{
		{filepath.Join(root, "index.html"), ""},
		{filepath.Join(root, "surveys", "list.html"), "../"},
		{filepath.Join(root, "surveys", "edit", "page.html"), "../../"},
	}
	for _, tc := range tests {
		got, err := PrefixFor(tc.doc, root)
		if err != nil {
			t.Fatalf("PrefixFor(%s): %v", tc.doc, err)
		}
		if got != tc.want {
			t.Errorf("PrefixFor(%s) = %q, want %q", tc.doc, got, tc.want)
		}
	}
}

func TestPrefixForOutsideRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "site")
	if _, err := PrefixFor(filepath.Join(base, "other.html"), root); err == nil {
		t.Fatal("expected error for a document outside root")
	}
}

func TestDepthRelativeRoot(t *testing.T) {
	depth, err := Depth(filepath.Join("site", "a", "b.html"), "site")
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	if depth != 1 {
		t.Fatalf("expected depth 1, got %d", depth)
	}
}
