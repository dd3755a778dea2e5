package includecheck

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Discover returns every markup document under root, skipping the
// excluded subtree. Paths are sorted so reports are reproducible.
func Discover(root string, opts Options) ([]string, error) {
	var files []string
	err := walkCorpus(root, opts, nil, func(path string) {
		files = append(files, path)
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// walkCorpus visits every directory and markup document under root that
// is not inside the excluded subtree. Either callback may be nil.
func walkCorpus(root string, opts Options, dir func(path string) error, doc func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if opts.Exclude != "" && d.Name() == opts.Exclude && path != root {
				return filepath.SkipDir
			}
			if dir != nil {
				return dir(path)
			}
			return nil
		}
		if doc != nil && hasExtension(d.Name(), opts.Extensions) {
			doc(path)
		}
		return nil
	})
}

// excluded reports whether path lies inside an excluded directory below root.
func excluded(root, path string, opts Options) bool {
	if opts.Exclude == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == opts.Exclude {
			return true
		}
	}
	return false
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
