package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSlug_Basic(t *testing.T) {
	assert.Equal(t, "add-structured-logging", SanitizeSlug("Add Structured Logging"))
}

func TestSanitizeSlug_SpecialChars(t *testing.T) {
	assert.Equal(t, "fix-bug-42", SanitizeSlug("Fix bug (#42)!!"))
}

func TestSanitizeSlug_CollapsesHyphens(t *testing.T) {
	assert.Equal(t, "a-b", SanitizeSlug("a---___---b"))
}

func TestSanitizeSlug_TrimsHyphens(t *testing.T) {
	assert.Equal(t, "core", SanitizeSlug("--core--"))
}

func TestSanitizeSlug_LengthCap(t *testing.T) {
	long := strings.Repeat("abcde-", 20)
	got := SanitizeSlug(long)
	assert.LessOrEqual(t, len(got), maxSlugLen)
	assert.False(t, strings.HasSuffix(got, "-"), "cap must not leave a trailing hyphen")
	assert.False(t, strings.HasPrefix(got, "-"))
}

func TestSanitizeSlug_OnlySpecialChars(t *testing.T) {
	assert.Equal(t, "", SanitizeSlug("!!! ??? ///"))
}

func TestBranchName(t *testing.T) {
	assert.Equal(t, "feature/backend/42-add-logging", BranchName("backend", 42, "Add Logging"))
}

func TestBranchName_EmptySuffixFallsBack(t *testing.T) {
	assert.Equal(t, "feature/frontend/7-issue-7", BranchName("frontend", 7, "!!!"))
}

func TestBranchName_Deterministic(t *testing.T) {
	a := BranchName("backend", 12, "Improve Error Handling")
	b := BranchName("backend", 12, "Improve Error Handling")
	assert.Equal(t, a, b)
}
