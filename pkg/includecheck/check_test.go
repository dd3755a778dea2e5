package includecheck

import (
	"path/filepath"
	"strings"
	"testing"
)

// shortOptions uses one-letter resources so documents can place them at
// exact offsets.
func shortOptions() Options {
	return Options{
		Marker:   "<app-header",
		Required: []string{"a.js", "b.js", "c.js", "d.js"},
	}
}

// layout builds a document of size n with each value written at its key offset.
func layout(n int, at map[int]string) string {
	buf := []byte(strings.Repeat(" ", n))
	for i, s := range at {
		copy(buf[i:], s)
	}
	return string(buf)
}

func checkAt(t *testing.T, opts Options, at map[int]string) Result {
	t.Helper()
	root := t.TempDir()
	at[300] = "<app-header>"
	res, checked, err := CheckDocument(filepath.Join(root, "index.html"), root, layout(320, at), opts)
	if err != nil {
		t.Fatalf("CheckDocument: %v", err)
	}
	if !checked {
		t.Fatal("document with marker must be checked")
	}
	return res
}

func TestCheckDocumentValid(t *testing.T) {
	res := checkAt(t, shortOptions(), map[int]string{10: "a.js", 50: "b.js", 80: "c.js", 120: "d.js"})
	if !res.Valid || !res.OrderOK {
		t.Fatalf("expected valid result, got %+v (issues %v)", res, res.Issues())
	}
	want := map[string]int{"a.js": 10, "b.js": 50, "c.js": 80, "d.js": 120}
	for p, i := range want {
		if res.Positions[p] != i {
			t.Errorf("position of %s = %d, want %d", p, res.Positions[p], i)
		}
	}
	if len(res.Issues()) != 0 {
		t.Errorf("valid result should have no issues: %v", res.Issues())
	}
}

func TestCheckDocumentReordered(t *testing.T) {
	res := checkAt(t, shortOptions(), map[int]string{10: "a.js", 80: "b.js", 50: "c.js", 120: "d.js"})
	if res.OrderOK || res.Valid {
		t.Fatalf("expected order failure, got %+v", res)
	}
	if len(res.MissingRequired) != 0 {
		t.Fatalf("nothing should be missing: %v", res.MissingRequired)
	}
	if got := res.Issues(); len(got) != 1 || got[0] != "Incorrect include order" {
		t.Fatalf("unexpected issues %v", got)
	}
}

func TestCheckDocumentDuplicate(t *testing.T) {
	res := checkAt(t, shortOptions(), map[int]string{10: "a.js", 50: "b.js", 80: "c.js", 120: "d.js", 200: "a.js"})
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if len(res.Duplicates) != 1 || res.Duplicates["a.js"] != 2 {
		t.Fatalf("unexpected duplicates %v", res.Duplicates)
	}
	if !res.OrderOK {
		t.Fatalf("first occurrences are still ordered")
	}
	if got := res.Issues(); len(got) != 1 || got[0] != "Duplicates: a.js x2" {
		t.Fatalf("unexpected issues %v", got)
	}
}

func TestCheckDocumentMissing(t *testing.T) {
	res := checkAt(t, shortOptions(), map[int]string{10: "a.js", 80: "c.js", 120: "d.js"})
	if res.Valid || res.OrderOK {
		t.Fatalf("expected invalid result without order evaluation, got %+v", res)
	}
	if len(res.MissingRequired) != 1 || res.MissingRequired[0] != "b.js" {
		t.Fatalf("unexpected missing %v", res.MissingRequired)
	}
	if got := res.Issues(); len(got) != 1 || got[0] != "Missing: b.js" {
		t.Fatalf("order must not be reported when a path is missing: %v", got)
	}
}

func TestCheckDocumentOptional(t *testing.T) {
	opts := shortOptions()
	opts.Optional = []string{"style.css"}

	res := checkAt(t, opts, map[int]string{10: "a.js", 50: "b.js", 80: "c.js", 120: "d.js"})
	if res.Valid {
		t.Fatal("missing optional resource must invalidate the document")
	}
	if got := res.Issues(); len(got) != 1 || got[0] != "Missing CSS: style.css" {
		t.Fatalf("unexpected issues %v", got)
	}

	res = checkAt(t, opts, map[int]string{10: "a.js", 50: "b.js", 80: "c.js", 120: "d.js", 200: "style.css"})
	if !res.Valid {
		t.Fatalf("expected valid with stylesheet present: %v", res.Issues())
	}
}

func TestCheckDocumentWithoutMarker(t *testing.T) {
	root := t.TempDir()
	_, checked, err := CheckDocument(filepath.Join(root, "plain.html"), root, "a.js b.js c.js d.js", shortOptions())
	if err != nil {
		t.Fatalf("CheckDocument: %v", err)
	}
	if checked {
		t.Fatal("documents without the marker must be skipped")
	}
}

func TestCheckDocumentCanonicalDepth(t *testing.T) {
	root := t.TempDir()
	flat := `<link rel="stylesheet" href="assets/css/app-header.css">
<script type="module" src="assets/js/lit-base.js"></script>
<script type="module" src="assets/js/components/app-header.js"></script>
<script src="assets/js/theme-utils.js"></script>
<script src="assets/js/settings-manager.js"></script>
<app-header></app-header>`

	res, checked, err := CheckDocument(filepath.Join(root, "index.html"), root, flat, DefaultOptions())
	if err != nil || !checked {
		t.Fatalf("CheckDocument: checked=%v err=%v", checked, err)
	}
	if !res.Valid {
		t.Fatalf("root document should be valid: %v", res.Issues())
	}

	res, _, err = CheckDocument(filepath.Join(root, "surveys", "edit.html"), root, flat, DefaultOptions())
	if err != nil {
		t.Fatalf("CheckDocument: %v", err)
	}
	if res.Valid || len(res.MissingRequired) != 4 || len(res.MissingOptional) != 1 {
		t.Fatalf("unprefixed paths in a nested document must be missing: %+v", res)
	}
	if res.MissingRequired[0] != "../assets/js/lit-base.js" {
		t.Fatalf("expected prefixed path, got %s", res.MissingRequired[0])
	}

	nested := strings.ReplaceAll(flat, `"assets/`, `"../assets/`)
	res, _, err = CheckDocument(filepath.Join(root, "surveys", "edit.html"), root, nested, DefaultOptions())
	if err != nil {
		t.Fatalf("CheckDocument: %v", err)
	}
	if !res.Valid || res.Prefix != "../" || res.Path != "surveys/edit.html" {
		t.Fatalf("prefixed nested document should be valid: %+v %v", res, res.Issues())
	}
}
