package generator

import (
	"fmt"
	"regexp"
	"strings"
)

// maxSlugLen caps the sanitized slug portion of a branch name.
const maxSlugLen = 30

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9-]`)
	repeatedHyphens = regexp.MustCompile(`-+`)
)

// SanitizeSlug converts free text into a valid branch name segment:
// lowercase alphanumerics and hyphens only, no repeats, no leading or
// trailing hyphen, length-capped.
func SanitizeSlug(text string) string {
	text = strings.ToLower(text)
	text = disallowedChars.ReplaceAllString(text, "-")
	text = repeatedHyphens.ReplaceAllString(text, "-")
	text = strings.Trim(text, "-")
	if len(text) > maxSlugLen {
		text = strings.Trim(text[:maxSlugLen], "-")
	}
	return text
}

// BranchName derives the deterministic feature branch name for an issue.
// One branch per issue; the name stays stable across fix iterations.
func BranchName(agentKind string, issueNumber int, suffix string) string {
	slug := SanitizeSlug(suffix)
	if slug == "" {
		slug = fmt.Sprintf("issue-%d", issueNumber)
	}
	return fmt.Sprintf("feature/%s/%d-%s", agentKind, issueNumber, slug)
}
