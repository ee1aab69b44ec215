package reviewer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func diffBlock(path, line string) string {
	return "diff --git a/" + path + " b/" + path + "\n" +
		"--- a/" + path + "\n" +
		"+++ b/" + path + "\n" +
		"@@ -1 +1 @@\n" +
		"+" + line + "\n"
}

func TestFilterDiff_KeepsReviewableFiles(t *testing.T) {
	diff := diffBlock("internal/server.go", "func main() {}")
	out := FilterDiff(diff)
	assert.Contains(t, out, "internal/server.go")
	assert.Contains(t, out, "func main() {}")
}

func TestFilterDiff_RemovesLockFiles(t *testing.T) {
	diff := diffBlock("package-lock.json", `"lodash": "4.17.21"`) +
		diffBlock("app.go", "package app")
	out := FilterDiff(diff)
	assert.NotContains(t, out, "lodash")
	assert.NotContains(t, out, "package-lock.json")
	assert.Contains(t, out, "app.go")
}

func TestFilterDiff_RemovesVendorAndMigrations(t *testing.T) {
	diff := diffBlock("vendor/lib/lib.go", "vendored") +
		diffBlock("db/migrations/0001_init.sql", "CREATE TABLE t;") +
		diffBlock("handler.go", "package handler")
	out := FilterDiff(diff)
	assert.NotContains(t, out, "vendored")
	assert.NotContains(t, out, "CREATE TABLE")
	assert.Contains(t, out, "handler.go")
}

func TestFilterDiff_RemovesNonReviewableExtensions(t *testing.T) {
	diff := diffBlock("logo.png", "binarystuff") +
		diffBlock("README.md", "docs change") +
		diffBlock("main.go", "package main")
	out := FilterDiff(diff)
	assert.NotContains(t, out, "binarystuff")
	assert.NotContains(t, out, "docs change")
	assert.Contains(t, out, "main.go")
}

func TestFilterDiff_KeepsExtensionlessFiles(t *testing.T) {
	diff := diffBlock("Makefile", "build:")
	out := FilterDiff(diff)
	assert.Contains(t, out, "build:")
}

func TestFilterDiff_TruncatesAtCeiling(t *testing.T) {
	line := strings.Repeat("x", 200)
	var sb strings.Builder
	sb.WriteString("diff --git a/big.go b/big.go\n")
	for sb.Len() <= MaxDiffChars {
		sb.WriteString("+" + line + "\n")
	}

	out := FilterDiff(sb.String())
	assert.True(t, strings.HasSuffix(out, TruncationMarker))
	assert.Len(t, out, MaxDiffChars+len(TruncationMarker))
}

func TestFilterDiff_NoTruncationUnderCeiling(t *testing.T) {
	out := FilterDiff(diffBlock("small.go", "package small"))
	assert.NotContains(t, out, TruncationMarker)
}

func TestIsEmptyDiff(t *testing.T) {
	assert.True(t, IsEmptyDiff(""))
	assert.True(t, IsEmptyDiff("\n  \n"))
	assert.False(t, IsEmptyDiff(diffBlock("a.go", "x")))
}

func TestFilterDiff_AllFilesSkippedYieldsEmpty(t *testing.T) {
	diff := diffBlock("go.sum", "h1:hash") + diffBlock("yarn.lock", "dep")
	assert.True(t, IsEmptyDiff(FilterDiff(diff)))
}
