// Package export writes the migration artifacts: the course graph and
// the migration report as JSON, optional brotli copies for hand-off,
// and the asset files the course references.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"

	"course-migrate/internal/report"
	"course-migrate/internal/tutor"
)

const (
	CourseFile = "tutor_course.json"
	ReportFile = "migration_report.json"

	// AssetSourceDir is where Canvas exports keep binary course files.
	AssetSourceDir = "web_resources"
	// AssetTargetDir is the assets directory under the output root that
	// rewritten content references point into.
	AssetTargetDir = "assets"
)

// WriteCourseJSON writes the course graph to dir and returns the file
// path.
func WriteCourseJSON(dir string, course *tutor.Course) (string, error) {
	return writeJSON(dir, CourseFile, course)
}

// WriteReportJSON writes the frozen report snapshot to dir and returns
// the file path.
func WriteReportJSON(dir string, snap report.Snapshot) (string, error) {
	return writeJSON(dir, ReportFile, snap)
}

func writeJSON(dir, name string, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: mkdir %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: marshal %s: %w", name, err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	return path, nil
}

// CompressFile writes a brotli copy of path next to it and returns the
// compressed file's path. The original stays in place.
func CompressFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("export: open %s: %w", path, err)
	}
	defer src.Close()

	out := path + ".br"
	dst, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("export: create %s: %w", out, err)
	}
	defer dst.Close()

	w := brotli.NewWriterLevel(dst, brotli.BestCompression)
	if _, err := io.Copy(w, src); err != nil {
		return "", fmt.Errorf("export: compress %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("export: flush %s: %w", out, err)
	}
	return out, nil
}

// CopyAssets copies every inventory file under the asset source
// directory into <outDir>/assets, preserving the relative layout those
// rewritten content references expect. Returns the number of files
// copied.
func CopyAssets(srcRoot, outDir string, inventory []string) (int, error) {
	copied := 0
	for _, rel := range inventory {
		rest, ok := strings.CutPrefix(rel, AssetSourceDir+"/")
		if !ok {
			continue
		}
		dst := filepath.Join(outDir, AssetTargetDir, filepath.FromSlash(rest))
		if err := copyFile(filepath.Join(srcRoot, filepath.FromSlash(rel)), dst); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("export: mkdir %s: %w", filepath.Dir(dst), err)
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("export: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("export: copy %s: %w", dst, err)
	}
	return nil
}
