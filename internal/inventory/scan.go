// Package inventory enumerates the course file tree and reconciles it
// against the manifest so no recognized content file is silently
// dropped.
package inventory

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// System files describe the export itself, not course content.
var systemFiles = map[string]bool{
	"imsmanifest.xml":         true,
	"course_settings.xml":     true,
	"module_meta.xml":         true,
	"assignment_settings.xml": true,
	"syllabus.html":           true,
}

// IsSystemFile reports whether a file name is export plumbing.
func IsSystemFile(name string) bool {
	return systemFiles[filepath.Base(name)]
}

// Scan walks the course root and returns every file path relative to it,
// forward-slash separated and sorted. Directories named in skipDirs
// (the output directory, typically) are not descended into; system
// files are excluded.
func Scan(root string, skipDirs ...string) ([]string, error) {
	skip := map[string]bool{}
	for _, d := range skipDirs {
		if d != "" {
			skip[d] = true
		}
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if IsSystemFile(rel) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("inventory: scan %s: %w", root, err)
	}

	sort.Strings(out)
	return out, nil
}

// Unreferenced computes the pure set difference between the scanned
// inventory and the manifest-referenced paths, in sorted order. Path
// separators are normalized on both sides so Windows-written manifests
// still match.
func Unreferenced(inventory []string, referenced map[string]bool) []string {
	norm := map[string]bool{}
	for p := range referenced {
		norm[strings.ReplaceAll(p, "\\", "/")] = true
	}

	var out []string
	for _, p := range inventory {
		if !norm[p] {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
