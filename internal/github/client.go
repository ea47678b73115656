// Package github is a thin client for the handful of REST endpoints the
// changelog needs. Every operation is a single GET that fails fast: a non-2xx
// status or an unexpected response shape aborts the run.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/barkibu/github-changelog/internal/config"
	"github.com/barkibu/github-changelog/internal/model"
	"github.com/barkibu/github-changelog/internal/observability"
	"github.com/barkibu/github-changelog/internal/ratelimit"
)

type Client struct {
	apiURL  string
	auth    tokenSource
	http    *http.Client
	limiter *ratelimit.Limiter
	logger  *observability.Logger
}

// NewClient builds a client from configuration. A personal token wins over
// GitHub App credentials; with neither, requests go out unauthenticated.
func NewClient(cfg *config.Config, logger *observability.Logger) *Client {
	httpClient := &http.Client{Timeout: cfg.HTTP.RequestTimeout}
	apiURL := strings.TrimSuffix(cfg.GitHub.APIURL, "/")

	var auth tokenSource
	switch {
	case cfg.GitHub.APIToken != "":
		auth = staticToken(cfg.GitHub.APIToken)
	case cfg.GitHub.AppID != "" && cfg.GitHub.AppInstallationID != "" && cfg.GitHub.AppPrivateKeyPath != "":
		auth = &appAuth{
			appID:          cfg.GitHub.AppID,
			installationID: cfg.GitHub.AppInstallationID,
			keyPath:        cfg.GitHub.AppPrivateKeyPath,
			apiURL:         apiURL,
			http:           httpClient,
			cache:          &tokenCache{},
		}
	}

	return &Client{
		apiURL:  apiURL,
		auth:    auth,
		http:    httpClient,
		limiter: ratelimit.New(cfg.GitHub.RateLimitRPS, cfg.GitHub.RateLimitBurst),
		logger:  logger,
	}
}

// CommitForTag resolves a tag name to the commit it points at, following
// annotated tag objects until a commit object is reached.
func (c *Client) CommitForTag(ctx context.Context, owner, repo, tag string) (string, error) {
	target := fmt.Sprintf("%s/repos/%s/%s/git/refs/tags/%s", c.apiURL, owner, repo, tag)
	for {
		var ref refResponse
		if err := c.getJSON(ctx, target, &ref); err != nil {
			return "", fmt.Errorf("resolve tag %s: %w", tag, err)
		}
		switch ref.Object.Type {
		case "commit":
			return ref.Object.SHA, nil
		case "tag":
			// Annotated tags point at a tag object that must be followed.
			target = ref.Object.URL
		default:
			return "", fmt.Errorf("resolve tag %s: unexpected object type %q", tag, ref.Object.Type)
		}
	}
}

// LastCommit returns the sha of the most recent commit on a branch.
func (c *Client) LastCommit(ctx context.Context, owner, repo, branch string) (string, error) {
	target := fmt.Sprintf("%s/repos/%s/%s/commits?sha=%s", c.apiURL, owner, repo, url.QueryEscape(branch))
	var commits []branchCommit
	if err := c.getJSON(ctx, target, &commits); err != nil {
		return "", fmt.Errorf("resolve branch %s: %w", branch, err)
	}
	if len(commits) == 0 {
		return "", fmt.Errorf("resolve branch %s: no commits", branch)
	}
	return commits[0].SHA, nil
}

// LastTag returns the name of the most recent tag of the repository.
func (c *Client) LastTag(ctx context.Context, owner, repo string) (string, error) {
	target := fmt.Sprintf("%s/repos/%s/%s/tags", c.apiURL, owner, repo)
	var tags []tagEntry
	if err := c.getJSON(ctx, target, &tags); err != nil {
		return "", fmt.Errorf("list tags: %w", err)
	}
	if len(tags) == 0 {
		return "", errors.New("list tags: repository has no tags")
	}
	return tags[0].Name, nil
}

// CommitsBetween lists the commits the compare endpoint reports between two
// shas, preserving the order GitHub returns them in.
func (c *Client) CommitsBetween(ctx context.Context, owner, repo, from, to string) ([]model.Commit, error) {
	target := fmt.Sprintf("%s/repos/%s/%s/compare/%s...%s", c.apiURL, owner, repo, from, to)
	var cmp compareResponse
	if err := c.getJSON(ctx, target, &cmp); err != nil {
		return nil, fmt.Errorf("compare %s...%s: %w", from, to, err)
	}
	if cmp.Commits == nil {
		return nil, fmt.Errorf("compare %s...%s: commits missing from response", from, to)
	}
	commits := make([]model.Commit, 0, len(*cmp.Commits))
	for _, entry := range *cmp.Commits {
		commits = append(commits, model.Commit{SHA: entry.SHA, Message: entry.Commit.Message})
	}
	return commits, nil
}

// PullDetails fetches the body and labels of a pull request.
func (c *Client) PullDetails(ctx context.Context, owner, repo, number string) (model.PullRequestDetails, error) {
	target := fmt.Sprintf("%s/repos/%s/%s/pulls/%s", c.apiURL, owner, repo, number)
	var pull pullResponse
	if err := c.getJSON(ctx, target, &pull); err != nil {
		return model.PullRequestDetails{}, fmt.Errorf("pull request #%s: %w", number, err)
	}
	labels := make([]string, 0, len(pull.Labels))
	for _, label := range pull.Labels {
		labels = append(labels, label.Name)
	}
	return model.PullRequestDetails{Body: pull.Body, Labels: labels}, nil
}

// PullForCommit looks up the pull request that contained a commit. The lookup
// is best effort: a non-2xx status or an empty result both resolve to nil.
func (c *Client) PullForCommit(ctx context.Context, owner, repo, sha string) (*model.PullRequest, error) {
	target := fmt.Sprintf("%s/repos/%s/%s/commits/%s/pulls", c.apiURL, owner, repo, sha)
	var pulls []commitPull
	if err := c.getJSON(ctx, target, &pulls); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.logger.Debug("no pull request for commit", "sha", sha, "status", apiErr.StatusCode)
			return nil, nil
		}
		return nil, fmt.Errorf("pulls for commit %s: %w", sha, err)
	}
	if len(pulls) == 0 {
		return nil, nil
	}
	first := pulls[0]
	return &model.PullRequest{Number: strconv.Itoa(first.Number), Title: first.Title}, nil
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	if c.auth != nil {
		token, err := c.auth.Token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "token "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	c.logger.Debug("github request",
		"url", target,
		"status", res.StatusCode,
	)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		apiErr := &APIError{StatusCode: res.StatusCode}
		var remote errorResponse
		if json.Unmarshal(body, &remote) == nil && remote.Message != "" {
			apiErr.Message = remote.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return apiErr
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
