package includecheck

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Depth returns the number of directories between root and the directory
// containing doc. A document directly under root has depth 0.
func Depth(doc, root string) (int, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return 0, err
	}
	absDoc, err := filepath.Abs(doc)
	if err != nil {
		return 0, err
	}
	rel, err := filepath.Rel(absRoot, filepath.Dir(absDoc))
	if err != nil {
		return 0, err
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return 0, nil
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return 0, fmt.Errorf("document %s is outside root %s", doc, root)
	}
	return strings.Count(rel, "/") + 1, nil
}

// PrefixFor returns the relative prefix doc must put in front of
// root-relative resource paths: "" at depth 0 and one "../" per level below.
func PrefixFor(doc, root string) (string, error) {
	depth, err := Depth(doc, root)
	if err != nil {
		return "", err
	}
	return strings.Repeat("../", depth), nil
}
