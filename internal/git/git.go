package git

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Identity is the commit author/committer identity for an automated agent.
// Each pipeline role commits under its own identity so authorship and
// review-eligibility rules on the hosting platform are satisfiable.
type Identity struct {
	Name  string
	Email string
}

// Client defines the git operations the pipeline needs. All methods take a
// path parameter since runs operate on whatever working tree the triggering
// automation checked out.
type Client interface {
	CurrentBranch(path string) (string, error)
	SyncBranch(path, branch string) error
	CreateBranch(path, name string) error
	CheckoutBranch(path, name string) error
	AddAll(path string) error
	HasChanges(path string) (bool, error)
	Commit(path, message string, ident Identity) error
	PushWithToken(path, repoFullName, token, branch string) error
	Diff(path, baseSHA, headSHA string) (string, error)
	CountCommitsMatching(path, baseRef, grep string) (int, error)
}

// RealClient implements Client using real git commands.
type RealClient struct{}

// NewClient returns a new RealClient.
func NewClient() *RealClient {
	return &RealClient{}
}

func gitCmd(path string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", path}, args...)
	out, err := exec.Command("git", fullArgs...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *RealClient) CurrentBranch(path string) (string, error) {
	return gitCmd(path, "rev-parse", "--abbrev-ref", "HEAD")
}

// SyncBranch checks out branch and fast-forwards it to its upstream, so new
// feature branches start from current base state. A fast-forward failure is
// surfaced rather than forced: a diverged base needs a human.
func (c *RealClient) SyncBranch(path, branch string) error {
	if _, err := gitCmd(path, "checkout", branch); err != nil {
		return err
	}
	_, err := gitCmd(path, "pull", "--ff-only", "origin", branch)
	return err
}

func (c *RealClient) CreateBranch(path, name string) error {
	_, err := gitCmd(path, "checkout", "-b", name)
	return err
}

func (c *RealClient) CheckoutBranch(path, name string) error {
	_, err := gitCmd(path, "checkout", name)
	return err
}

func (c *RealClient) AddAll(path string) error {
	_, err := gitCmd(path, "add", ".")
	return err
}

func (c *RealClient) HasChanges(path string) (bool, error) {
	out, err := gitCmd(path, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Commit creates a commit with the given identity as both author and
// committer, without touching the repository's user config.
func (c *RealClient) Commit(path, message string, ident Identity) error {
	args := []string{
		"-c", "user.name=" + ident.Name,
		"-c", "user.email=" + ident.Email,
		"commit", "-m", message,
	}
	_, err := gitCmd(path, args...)
	return err
}

// PushWithToken pushes branch to the repository over HTTPS using a token
// credential, so the push is attributable to the agent identity rather than
// the invoking automation's default credential.
func (c *RealClient) PushWithToken(path, repoFullName, token, branch string) error {
	remote := fmt.Sprintf("https://x-access-token:%s@github.com/%s.git", token, repoFullName)
	fullArgs := []string{"-C", path, "push", remote, branch}
	out, err := exec.Command("git", fullArgs...).CombinedOutput()
	if err != nil {
		// CombinedOutput may echo the remote URL; scrub the token before
		// the error becomes a PR comment.
		msg := strings.ReplaceAll(strings.TrimSpace(string(out)), token, "***")
		return fmt.Errorf("git push %s: %s", branch, msg)
	}
	return nil
}

// Diff returns the merge-base diff between two commits (three-dot form), the
// same view the hosting platform shows for a pull request.
func (c *RealClient) Diff(path, baseSHA, headSHA string) (string, error) {
	fullArgs := []string{"-C", path, "diff", baseSHA + "..." + headSHA}
	out, err := exec.Command("git", fullArgs...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git diff: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git diff: %w", err)
	}
	return string(out), nil
}

// CountCommitsMatching counts commits whose subject matches grep, scoped to
// commits reachable from HEAD but not from baseRef. Scoping to the branch
// keeps one pull request's fix-attempt counter from seeing marker commits
// that other branches merged into the base.
func (c *RealClient) CountCommitsMatching(path, baseRef, grep string) (int, error) {
	out, err := gitCmd(path, "rev-list", "--count", "--grep="+grep, baseRef+"..HEAD")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("parse rev-list count %q: %w", out, err)
	}
	return n, nil
}
