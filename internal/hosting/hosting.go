// Package hosting wraps the source-control hosting platform behind the small
// interface the pipeline needs. Each automated role (generator agent,
// reviewer bot) authenticates with its own token, so a Client is always
// bound to one credential identity.
package hosting

import "context"

// PullRequest is the platform's view of a pull request, reduced to the
// fields the pipeline reads.
type PullRequest struct {
	Number  int
	Title   string
	Body    string
	Author  string
	HeadRef string
	BaseRef string
	HeadSHA string
	BaseSHA string
	State   string
	URL     string
}

// ReviewInfo is one formal review event on a pull request.
type ReviewInfo struct {
	ID     int64
	Author string
	State  string // APPROVED, CHANGES_REQUESTED, COMMENTED, DISMISSED
	Body   string
}

// InlineComment is one file/line review comment on a pull request.
type InlineComment struct {
	File   string
	Line   int
	Author string
	Body   string
}

// Review states accepted by CreateReview.
const (
	ReviewEventApprove        = "APPROVE"
	ReviewEventRequestChanges = "REQUEST_CHANGES"
)

// ReviewStateChangesRequested is the platform's state string for a posted
// REQUEST_CHANGES review.
const ReviewStateChangesRequested = "CHANGES_REQUESTED"

// Client is the hosting-platform surface consumed by the pipeline.
type Client interface {
	AuthenticatedUser(ctx context.Context) (string, error)

	CommentOnIssue(ctx context.Context, issueNumber int, body string) error

	CreatePullRequest(ctx context.Context, title, body, head, base string) (*PullRequest, error)
	GetPullRequest(ctx context.Context, number int) (*PullRequest, error)
	CommentOnPullRequest(ctx context.Context, number int, body string) error

	ListReviews(ctx context.Context, prNumber int) ([]ReviewInfo, error)
	DismissReview(ctx context.Context, prNumber int, reviewID int64, message string) error
	CreateReview(ctx context.Context, prNumber int, body, event string) error
	ListReviewComments(ctx context.Context, prNumber int) ([]InlineComment, error)

	SquashMerge(ctx context.Context, prNumber int, commitTitle, commitMessage string) error
	DeleteBranch(ctx context.Context, branch string) error
}
