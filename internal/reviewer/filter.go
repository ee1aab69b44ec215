package reviewer

import (
	"path"
	"strings"
)

// TruncationMarker is appended whenever the filtered diff is cut at the
// character ceiling, so dropped content is always signaled, never silent.
const TruncationMarker = "\n\n[DIFF TRUNCATED: too large. Review remaining files manually.]"

// MaxDiffChars bounds the diff sent to the review service (~20k tokens).
const MaxDiffChars = 80_000

// skipPaths removes whole files from review when their path contains one of
// these fragments: lock files and generated migrations get no automated
// review.
var skipPaths = []string{
	"package-lock.json",
	"yarn.lock",
	"go.sum",
	"poetry.lock",
	"vendor/",
	"migrations/",
}

// reviewableExtensions is the fixed set of file types worth reviewing.
// Extensionless files (Makefile, Dockerfile) stay in.
var reviewableExtensions = map[string]bool{
	".go":         true,
	".py":         true,
	".js":         true,
	".jsx":        true,
	".ts":         true,
	".tsx":        true,
	".sql":        true,
	".sh":         true,
	".yml":        true,
	".yaml":       true,
	".json":       true,
	".dockerfile": true,
}

// FilterDiff removes whole-file blocks that match the skip-list or fall
// outside the reviewable extension set, then truncates the result to
// MaxDiffChars with a visible marker.
func FilterDiff(diff string) string {
	lines := strings.Split(diff, "\n")
	filtered := make([]string, 0, len(lines))
	skipCurrent := false

	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git") {
			skipCurrent = shouldSkipFile(line)
		}
		if !skipCurrent {
			filtered = append(filtered, line)
		}
	}

	out := strings.Join(filtered, "\n")
	if len(out) > MaxDiffChars {
		out = out[:MaxDiffChars] + TruncationMarker
	}
	return out
}

// shouldSkipFile decides from a "diff --git a/... b/..." header whether the
// whole file block is skipped.
func shouldSkipFile(header string) bool {
	for _, skip := range skipPaths {
		if strings.Contains(header, skip) {
			return true
		}
	}

	parts := strings.SplitN(header, " b/", 2)
	if len(parts) < 2 {
		return false
	}
	ext := strings.ToLower(path.Ext(parts[1]))
	if ext == "" {
		return false
	}
	return !reviewableExtensions[ext]
}

// IsEmptyDiff reports whether a filtered diff contains no reviewable content.
func IsEmptyDiff(diff string) bool {
	return strings.TrimSpace(diff) == ""
}
