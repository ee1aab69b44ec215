package hosting

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"
)

// GitHubClient implements Client against the GitHub API.
type GitHubClient struct {
	api   *github.Client
	owner string
	repo  string
}

// NewGitHubClient creates a client bound to one repository and one token
// identity. repoFullName is "owner/repo".
func NewGitHubClient(repoFullName, token string) (*GitHubClient, error) {
	owner, repo, err := splitFullName(repoFullName)
	if err != nil {
		return nil, err
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)

	return &GitHubClient{
		api:   github.NewClient(httpClient),
		owner: owner,
		repo:  repo,
	}, nil
}

func splitFullName(fullName string) (owner, repo string, err error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository name %q (want owner/repo)", fullName)
	}
	return parts[0], parts[1], nil
}

func (c *GitHubClient) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.api.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

func (c *GitHubClient) CommentOnIssue(ctx context.Context, issueNumber int, body string) error {
	_, _, err := c.api.Issues.CreateComment(ctx, c.owner, c.repo, issueNumber, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("comment on issue #%d: %w", issueNumber, err)
	}
	return nil
}

func (c *GitHubClient) CreatePullRequest(ctx context.Context, title, body, head, base string) (*PullRequest, error) {
	pr, _, err := c.api.PullRequests.Create(ctx, c.owner, c.repo, &github.NewPullRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
		Head:  github.Ptr(head),
		Base:  github.Ptr(base),
		Draft: github.Ptr(false),
	})
	if err != nil {
		return nil, fmt.Errorf("create pull request %s -> %s: %w", head, base, err)
	}
	return convertPR(pr), nil
}

func (c *GitHubClient) GetPullRequest(ctx context.Context, number int) (*PullRequest, error) {
	pr, _, err := c.api.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return nil, fmt.Errorf("get pull request #%d: %w", number, err)
	}
	return convertPR(pr), nil
}

func convertPR(pr *github.PullRequest) *PullRequest {
	return &PullRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		Author:  pr.GetUser().GetLogin(),
		HeadRef: pr.GetHead().GetRef(),
		BaseRef: pr.GetBase().GetRef(),
		HeadSHA: pr.GetHead().GetSHA(),
		BaseSHA: pr.GetBase().GetSHA(),
		State:   pr.GetState(),
		URL:     pr.GetHTMLURL(),
	}
}

// CommentOnPullRequest posts a plain conversation comment. Pull requests are
// issues under the hood, so this goes through the issues API.
func (c *GitHubClient) CommentOnPullRequest(ctx context.Context, number int, body string) error {
	_, _, err := c.api.Issues.CreateComment(ctx, c.owner, c.repo, number, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return fmt.Errorf("comment on pull request #%d: %w", number, err)
	}
	return nil
}

func (c *GitHubClient) ListReviews(ctx context.Context, prNumber int) ([]ReviewInfo, error) {
	var all []ReviewInfo
	opts := &github.ListOptions{PerPage: 100}
	for {
		reviews, resp, err := c.api.PullRequests.ListReviews(ctx, c.owner, c.repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("list reviews for #%d: %w", prNumber, err)
		}
		for _, r := range reviews {
			all = append(all, ReviewInfo{
				ID:     r.GetID(),
				Author: r.GetUser().GetLogin(),
				State:  r.GetState(),
				Body:   r.GetBody(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func (c *GitHubClient) DismissReview(ctx context.Context, prNumber int, reviewID int64, message string) error {
	_, _, err := c.api.PullRequests.DismissReview(ctx, c.owner, c.repo, prNumber, reviewID,
		&github.PullRequestReviewDismissalRequest{Message: github.Ptr(message)})
	if err != nil {
		return fmt.Errorf("dismiss review %d on #%d: %w", reviewID, prNumber, err)
	}
	return nil
}

func (c *GitHubClient) CreateReview(ctx context.Context, prNumber int, body, event string) error {
	_, _, err := c.api.PullRequests.CreateReview(ctx, c.owner, c.repo, prNumber,
		&github.PullRequestReviewRequest{
			Body:  github.Ptr(body),
			Event: github.Ptr(event),
		})
	if err != nil {
		return fmt.Errorf("create %s review on #%d: %w", event, prNumber, err)
	}
	return nil
}

func (c *GitHubClient) ListReviewComments(ctx context.Context, prNumber int) ([]InlineComment, error) {
	var all []InlineComment
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := c.api.PullRequests.ListComments(ctx, c.owner, c.repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("list review comments for #%d: %w", prNumber, err)
		}
		for _, cm := range comments {
			all = append(all, InlineComment{
				File:   cm.GetPath(),
				Line:   cm.GetOriginalLine(),
				Author: cm.GetUser().GetLogin(),
				Body:   cm.GetBody(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

func (c *GitHubClient) SquashMerge(ctx context.Context, prNumber int, commitTitle, commitMessage string) error {
	_, _, err := c.api.PullRequests.Merge(ctx, c.owner, c.repo, prNumber, commitMessage,
		&github.PullRequestOptions{
			MergeMethod: "squash",
			CommitTitle: commitTitle,
		})
	if err != nil {
		return fmt.Errorf("squash merge #%d: %w", prNumber, err)
	}
	return nil
}

func (c *GitHubClient) DeleteBranch(ctx context.Context, branch string) error {
	_, err := c.api.Git.DeleteRef(ctx, c.owner, c.repo, "heads/"+branch)
	if err != nil {
		return fmt.Errorf("delete branch %s: %w", branch, err)
	}
	return nil
}
