// internal/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	custom_errors "gibwerk/internal/errors"
	"gibwerk/internal/model"
)

const (
	// GitHub caps page size at 100; only the first page is read.
	perPage = 100

	defaultDiffConcurrency = 5
)

// Client calls the GitHub REST API on behalf of the caller whose access token
// is passed to each method.
type Client struct {
	httpClient      *http.Client
	baseURL         *url.URL
	diffConcurrency int
	logger          *slog.Logger
}

// NewClient creates and configures a new Client instance. An empty baseURL
// targets api.github.com; otherwise it must point at a REST API root.
func NewClient(httpClient *http.Client, baseURL string, diffConcurrency int, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if diffConcurrency <= 0 {
		diffConcurrency = defaultDiffConcurrency
	}

	c := &Client{
		httpClient:      httpClient,
		diffConcurrency: diffConcurrency,
		logger:          logger,
	}
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.baseURL = u
	}
	return c, nil
}

// gh builds a go-github client authenticated with the given token.
func (c *Client) gh(ctx context.Context, token string) *github.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), ts)

	client := github.NewClient(tc)
	if c.baseURL != nil {
		client.BaseURL = c.baseURL
	}
	return client
}

// ListRepositories returns the full names of the caller's repositories, most
// recently updated first. At most one page of 100 entries is returned.
func (c *Client) ListRepositories(ctx context.Context, token string) ([]string, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	repos, _, err := c.gh(ctx, token).Repositories.ListByAuthenticatedUser(ctx, opts)
	if err != nil {
		c.logger.Error("Failed to list repositories", "error", err)
		return nil, toUpstreamError(err)
	}

	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.GetFullName())
	}
	return names, nil
}

// ListCommits fetches up to 100 most recent commits of "owner/repo" together
// with their diffs. A failed diff fetch leaves that commit's Diff unset and
// does not abort the batch.
func (c *Client) ListCommits(ctx context.Context, token, repoFullName string) ([]model.Commit, error) {
	owner, name, err := ParseRepoFullName(repoFullName)
	if err != nil {
		return nil, err
	}
	logger := c.logger.With("owner", owner, "repo", name)

	gh := c.gh(ctx, token)
	ghCommits, _, err := gh.Repositories.ListCommits(ctx, owner, name, &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	})
	if err != nil {
		logger.Error("Failed to list commits", "error", err)
		return nil, toUpstreamError(err)
	}
	logger.Debug("Fetched commits page", "count", len(ghCommits))

	commits := make([]model.Commit, len(ghCommits))
	for i, gc := range ghCommits {
		commits[i] = toInternalCommit(gc, repoFullName)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.diffConcurrency)
	for i := range commits {
		i := i
		g.Go(func() error {
			sha := commits[i].Hash
			diff, _, err := gh.Repositories.GetCommitRaw(gctx, owner, name, sha, github.RawOptions{Type: github.Diff})
			if err != nil {
				logger.Warn("Failed to fetch commit diff", "sha", sha, "error", err)
				return nil
			}
			commits[i].Diff = model.StringPtr(diff)
			return nil
		})
	}
	_ = g.Wait() // diff failures are recorded per commit

	return commits, nil
}

// ParseRepoFullName splits "owner/repo" into its parts.
func ParseRepoFullName(repoFullName string) (owner, name string, err error) {
	parts := strings.Split(repoFullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", custom_errors.InvalidRepoFormat(repoFullName)
	}
	return parts[0], parts[1], nil
}

// toInternalCommit translates a github.RepositoryCommit object to our internal model.Commit.
func toInternalCommit(c *github.RepositoryCommit, repoFullName string) model.Commit {
	subject, body := model.SplitMessage(c.GetCommit().GetMessage())
	commit := model.Commit{
		Hash:       c.GetSHA(),
		Author:     c.GetCommit().GetAuthor().GetName(),
		Date:       c.GetCommit().GetAuthor().GetDate().Time.UTC(),
		Message:    subject,
		Repository: repoFullName,
	}
	if body != "" {
		commit.Summary = model.StringPtr(body)
	}
	return commit
}

// toUpstreamError maps go-github failures to the UpstreamError kind, keeping
// the HTTP status when GitHub answered.
func toUpstreamError(err error) error {
	upstream := &custom_errors.UpstreamError{Err: err}

	var (
		errResp  *github.ErrorResponse
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
	)
	switch {
	case errors.As(err, &rateErr) && rateErr.Response != nil:
		upstream.Status, upstream.Message = rateErr.Response.StatusCode, rateErr.Message
	case errors.As(err, &abuseErr) && abuseErr.Response != nil:
		upstream.Status, upstream.Message = abuseErr.Response.StatusCode, abuseErr.Message
	case errors.As(err, &errResp) && errResp.Response != nil:
		upstream.Status, upstream.Message = errResp.Response.StatusCode, errResp.Message
	}
	return upstream
}
