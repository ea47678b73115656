// Package changelog turns a commit range into an ordered, deduplicated list
// of merged pull requests and renders the final report.
package changelog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/barkibu/github-changelog/internal/commit"
	"github.com/barkibu/github-changelog/internal/model"
	"github.com/barkibu/github-changelog/internal/observability"
)

// API is the subset of the GitHub client the resolver depends on.
type API interface {
	LastTag(ctx context.Context, owner, repo string) (string, error)
	CommitForTag(ctx context.Context, owner, repo, tag string) (string, error)
	LastCommit(ctx context.Context, owner, repo, branch string) (string, error)
	CommitsBetween(ctx context.Context, owner, repo, from, to string) ([]model.Commit, error)
	PullDetails(ctx context.Context, owner, repo, number string) (model.PullRequestDetails, error)
	PullForCommit(ctx context.Context, owner, repo, sha string) (*model.PullRequest, error)
}

// ErrNoPullRequests signals a non-empty commit range from which no pull
// request could be resolved, usually a branch or merge-pattern mismatch.
// Surfacing it beats printing a misleadingly empty changelog.
var ErrNoPullRequests = errors.New("commits found but no pull requests resolved")

// Params identifies the range to resolve. An empty PreviousTag means the
// repository's most recent tag; an empty CurrentTag means the head of Branch.
type Params struct {
	Owner               string
	Repo                string
	PreviousTag         string
	CurrentTag          string
	Branch              string
	IgnoreReleaseMerges bool
}

type Resolver struct {
	api    API
	logger *observability.Logger
}

func NewResolver(api API, logger *observability.Logger) *Resolver {
	return &Resolver{api: api, logger: logger}
}

// Resolve walks the commit range and returns one entry per merged pull
// request, oldest relevant change first.
func (r *Resolver) Resolve(ctx context.Context, p Params) ([]model.ExtendedPullRequest, error) {
	previousTag := p.PreviousTag
	if previousTag == "" {
		tag, err := r.api.LastTag(ctx, p.Owner, p.Repo)
		if err != nil {
			return nil, err
		}
		previousTag = tag
	}

	from, err := r.api.CommitForTag(ctx, p.Owner, p.Repo, previousTag)
	if err != nil {
		return nil, err
	}

	var to string
	if p.CurrentTag != "" {
		to, err = r.api.CommitForTag(ctx, p.Owner, p.Repo, p.CurrentTag)
	} else {
		to, err = r.api.LastCommit(ctx, p.Owner, p.Repo, p.Branch)
	}
	if err != nil {
		return nil, err
	}

	commits, err := r.api.CommitsBetween(ctx, p.Owner, p.Repo, from, to)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("commit range resolved",
		"from", from,
		"to", to,
		"commits", len(commits),
	)

	var pulls []model.PullRequest
	seen := make(map[string]struct{})

	for _, c := range commits {
		var pull *model.PullRequest

		if commit.IsPullRequest(c.Message) {
			if p.IgnoreReleaseMerges && commit.IsReleaseMerge(c.Message) {
				r.logger.Debug("skipping release merge", "sha", c.SHA)
				continue
			}
			extracted, err := commit.ExtractPullRequest(c.Message)
			if err != nil {
				return nil, err
			}
			pull = &extracted
		} else {
			// Rebase merges leave no merge commit behind; ask GitHub which
			// pull request contained the commit.
			pull, err = r.api.PullForCommit(ctx, p.Owner, p.Repo, c.SHA)
			if err != nil {
				return nil, err
			}
		}

		if pull == nil {
			continue
		}
		if _, dup := seen[pull.Number]; dup {
			continue
		}
		seen[pull.Number] = struct{}{}
		pulls = append(pulls, *pull)
	}

	if len(pulls) == 0 && len(commits) > 0 {
		return nil, fmt.Errorf("%w (branch %s)", ErrNoPullRequests, p.Branch)
	}

	extended := make([]model.ExtendedPullRequest, 0, len(pulls))
	for _, pull := range pulls {
		details, err := r.api.PullDetails(ctx, p.Owner, p.Repo, pull.Number)
		if err != nil {
			return nil, err
		}
		extended = append(extended, model.ExtendedPullRequest{PullRequest: pull, Details: details})
	}

	// The compare walk accumulates newest change first; flip once, after
	// dedup and detail fetching, so the report reads oldest first.
	slices.Reverse(extended)

	return extended, nil
}
