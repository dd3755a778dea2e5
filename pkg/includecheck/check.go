package includecheck

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Result is the outcome of checking one document.
type Result struct {
	Path            string         `json:"path" yaml:"path"`
	Prefix          string         `json:"prefix" yaml:"prefix"`
	MissingRequired []string       `json:"missing_required,omitempty" yaml:"missing_required,omitempty"`
	MissingOptional []string       `json:"missing_optional,omitempty" yaml:"missing_optional,omitempty"`
	Duplicates      map[string]int `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	// Positions holds the first offset of every required path found.
	Positions map[string]int `json:"positions,omitempty" yaml:"positions,omitempty"`
	OrderOK   bool           `json:"order_ok" yaml:"order_ok"`
	Valid     bool           `json:"valid" yaml:"valid"`
}

// CheckDocument validates text, the content of the document at path under
// root. It reports false when the document lacks the marker and was
// therefore not checked.
func CheckDocument(path, root, text string, opts Options) (Result, bool, error) {
	if !strings.Contains(text, opts.Marker) {
		return Result{}, false, nil
	}
	prefix, err := PrefixFor(path, root)
	if err != nil {
		return Result{}, false, err
	}

	res := Result{
		Path:       displayPath(path, root),
		Prefix:     prefix,
		Duplicates: make(map[string]int),
		Positions:  make(map[string]int),
	}

	required := withPrefix(prefix, opts.Required)
	indices := make([]int, len(required))
	for i, p := range required {
		indices[i] = strings.Index(text, p)
		if indices[i] < 0 {
			res.MissingRequired = append(res.MissingRequired, p)
		} else {
			res.Positions[p] = indices[i]
		}
		if n := strings.Count(text, p); n > 1 {
			res.Duplicates[p] = n
		}
	}

	for _, p := range withPrefix(prefix, opts.Optional) {
		if !strings.Contains(text, p) {
			res.MissingOptional = append(res.MissingOptional, p)
		}
	}

	if len(res.MissingRequired) == 0 {
		res.OrderOK = increasing(indices)
	}
	res.Valid = len(res.MissingRequired) == 0 &&
		len(res.MissingOptional) == 0 &&
		len(res.Duplicates) == 0 &&
		res.OrderOK
	return res, true, nil
}

func increasing(indices []int) bool {
	for i := 1; i < len(indices); i++ {
		if indices[i] <= indices[i-1] {
			return false
		}
	}
	return true
}

func displayPath(path, root string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// Issues lists the findings of an invalid result in report form.
func (r Result) Issues() []string {
	var issues []string
	if len(r.MissingRequired) > 0 {
		issues = append(issues, "Missing: "+strings.Join(r.MissingRequired, ", "))
	}
	if len(r.MissingOptional) > 0 {
		issues = append(issues, "Missing CSS: "+strings.Join(r.MissingOptional, ", "))
	}
	if len(r.Duplicates) > 0 {
		paths := make([]string, 0, len(r.Duplicates))
		for p := range r.Duplicates {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		dups := make([]string, len(paths))
		for i, p := range paths {
			dups[i] = fmt.Sprintf("%s x%d", p, r.Duplicates[p])
		}
		issues = append(issues, "Duplicates: "+strings.Join(dups, ", "))
	}
	if len(r.MissingRequired) == 0 && !r.OrderOK {
		issues = append(issues, "Incorrect include order")
	}
	return issues
}
