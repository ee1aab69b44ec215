package models

// FileChange is one file to write, with its full new content.
type FileChange struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ChangeSet is the generation service's structured output for an issue:
// the files to write plus metadata for the resulting commit and pull request.
type ChangeSet struct {
	Files         []FileChange `json:"files"`
	BranchSuffix  string       `json:"branch_suffix"`
	CommitMessage string       `json:"commit_message"`
	PRTitle       string       `json:"pr_title"`
	PRBody        string       `json:"pr_body"`
	Summary       string       `json:"summary,omitempty"`
}

// FixSet is the generation service's structured output for a fix request.
// Fixes reuse the pull request's existing branch, so there is no branch
// suffix; PRComment is the explanation posted after the fix lands.
type FixSet struct {
	Files         []FileChange `json:"files"`
	CommitMessage string       `json:"commit_message"`
	PRComment     string       `json:"pr_comment"`
}
