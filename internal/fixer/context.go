package fixer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesTruncationMarker is appended once the context budget is exhausted;
// files after it in traversal order are dropped.
const FilesTruncationMarker = "\n[... remaining files truncated for length ...]"

// MaxContextChars bounds the file contents included in a fix request.
const MaxContextChars = 60_000

// relevantExtensions is the allow-list for working-tree files worth showing
// the generation service when requesting a fix.
var relevantExtensions = map[string]bool{
	".go":         true,
	".py":         true,
	".sql":        true,
	".sh":         true,
	".yml":        true,
	".yaml":       true,
	".txt":        true,
	".dockerfile": true,
}

// skipDirs are version-control and dependency directories never included.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
}

// BuildContext reads every relevant file under workDir and concatenates them
// into the fix request, up to MaxContextChars of file content. The budget is
// checked before each file: once it is exceeded the marker is appended and
// all later files in traversal order are dropped.
func BuildContext(workDir string) (string, error) {
	var sb strings.Builder
	total := 0
	truncated := false

	err := filepath.WalkDir(workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] || d.Name() == "migrations" {
				return filepath.SkipDir
			}
			return nil
		}
		if truncated || !relevantFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(workDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			// Unreadable files are skipped, not fatal.
			return nil
		}

		if total > MaxContextChars {
			sb.WriteString(FilesTruncationMarker)
			truncated = true
			return nil
		}
		fmt.Fprintf(&sb, "\n\n### %s\n```\n%s\n```", rel, string(data))
		total += len(data)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("read working tree: %w", err)
	}
	return sb.String(), nil
}

func relevantFile(name string) bool {
	if name == "Dockerfile" || name == "Makefile" {
		return true
	}
	return relevantExtensions[strings.ToLower(filepath.Ext(name))]
}
