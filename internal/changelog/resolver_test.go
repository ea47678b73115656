package changelog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/barkibu/github-changelog/internal/model"
	"github.com/barkibu/github-changelog/internal/observability"
)

type fakeAPI struct {
	lastTag        func(owner, repo string) (string, error)
	commitForTag   func(tag string) (string, error)
	lastCommit     func(branch string) (string, error)
	commitsBetween func(from, to string) ([]model.Commit, error)
	pullDetails    func(number string) (model.PullRequestDetails, error)
	pullForCommit  func(sha string) (*model.PullRequest, error)
}

func (f *fakeAPI) LastTag(_ context.Context, owner, repo string) (string, error) {
	return f.lastTag(owner, repo)
}

func (f *fakeAPI) CommitForTag(_ context.Context, _, _, tag string) (string, error) {
	return f.commitForTag(tag)
}

func (f *fakeAPI) LastCommit(_ context.Context, _, _, branch string) (string, error) {
	return f.lastCommit(branch)
}

func (f *fakeAPI) CommitsBetween(_ context.Context, _, _, from, to string) ([]model.Commit, error) {
	return f.commitsBetween(from, to)
}

func (f *fakeAPI) PullDetails(_ context.Context, _, _, number string) (model.PullRequestDetails, error) {
	return f.pullDetails(number)
}

func (f *fakeAPI) PullForCommit(_ context.Context, _, _, sha string) (*model.PullRequest, error) {
	return f.pullForCommit(sha)
}

// newFakeAPI returns a fake whose unset calls fail loudly.
func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		lastTag:        func(string, string) (string, error) { return "", errors.New("lastTag not stubbed") },
		commitForTag:   func(string) (string, error) { return "", errors.New("commitForTag not stubbed") },
		lastCommit:     func(string) (string, error) { return "", errors.New("lastCommit not stubbed") },
		commitsBetween: func(string, string) ([]model.Commit, error) { return nil, errors.New("commitsBetween not stubbed") },
		pullDetails: func(string) (model.PullRequestDetails, error) {
			return model.PullRequestDetails{}, errors.New("pullDetails not stubbed")
		},
		pullForCommit: func(string) (*model.PullRequest, error) { return nil, errors.New("pullForCommit not stubbed") },
	}
}

func emptyDetails(string) (model.PullRequestDetails, error) {
	return model.PullRequestDetails{}, nil
}

type ResolverSuite struct {
	suite.Suite
}

func (s *ResolverSuite) newResolver(api API) *Resolver {
	return NewResolver(api, observability.NewNop())
}

// Mirrors the full flow: latest tag lookup, merge and squash extraction,
// fallback lookups that find nothing, and the final reversal.
func (s *ResolverSuite) Test_ResolvesAndReversesWalkOrder() {
	api := newFakeAPI()
	api.lastTag = func(owner, repo string) (string, error) {
		s.Equal("someone", owner)
		s.Equal("one-repo", repo)
		return "0.1.0", nil
	}
	api.commitForTag = func(tag string) (string, error) {
		s.Equal("0.1.0", tag)
		return "4", nil
	}
	api.lastCommit = func(branch string) (string, error) {
		s.Equal("main", branch)
		return "10", nil
	}
	api.commitsBetween = func(from, to string) ([]model.Commit, error) {
		s.Equal("4", from)
		s.Equal("10", to)
		return []model.Commit{
			{SHA: "10", Message: "Merge pull request #10 from some/branch\n\nMy Title"},
			{SHA: "9", Message: "My Title (#9)\n\nMy description"},
			{SHA: "8", Message: "I made some changes!"},
			{SHA: "7", Message: "Merge pull request from some/branch\n\nMy Title"},
			{SHA: "6", Message: "Some title addresses bug (#6)"},
			{SHA: "5", Message: "Merge pull request #5 from some/branch\n\nMy Title"},
		}, nil
	}
	api.pullForCommit = func(sha string) (*model.PullRequest, error) {
		return nil, nil
	}
	api.pullDetails = func(number string) (model.PullRequestDetails, error) {
		if number == "10" {
			body := "My Title #10\n\nCHANGELOG: Specific Changelog"
			return model.PullRequestDetails{Body: &body}, nil
		}
		body := "PR body content"
		return model.PullRequestDetails{Body: &body}, nil
	}

	result, err := s.newResolver(api).Resolve(context.Background(), Params{
		Owner:  "someone",
		Repo:   "one-repo",
		Branch: "main",
	})
	s.Require().NoError(err)
	s.Require().Len(result, 4)

	var numbers []string
	for _, ext := range result {
		numbers = append(numbers, ext.PullRequest.Number)
	}
	s.Equal([]string{"5", "6", "9", "10"}, numbers)

	lines := FormatChanges("https://github.com", "someone", "one-repo", result, false)
	s.Equal([]string{
		"MINOR RELEASE",
		"- My Title #5",
		"- Some title addresses bug #6",
		"- My Title #9",
		"- Specific Changelog #10",
	}, lines)
}

func (s *ResolverSuite) Test_DeduplicatesRebaseMerges() {
	pullsByCommit := map[string]*model.PullRequest{
		"commit1": {Number: "100", Title: "Fix authentication bug"},
		"commit2": {Number: "100", Title: "Fix authentication bug"},
		"commit3": {Number: "101", Title: "Documentation updates"},
	}

	api := newFakeAPI()
	api.commitForTag = func(string) (string, error) { return "tag_sha", nil }
	api.lastCommit = func(string) (string, error) { return "head_sha", nil }
	api.commitsBetween = func(string, string) ([]model.Commit, error) {
		return []model.Commit{
			{SHA: "commit1", Message: "Fix bug in authentication"},
			{SHA: "commit2", Message: "Add unit tests"},
			{SHA: "commit3", Message: "Update documentation"},
		}, nil
	}
	api.pullForCommit = func(sha string) (*model.PullRequest, error) {
		return pullsByCommit[sha], nil
	}
	api.pullDetails = emptyDetails

	result, err := s.newResolver(api).Resolve(context.Background(), Params{
		Owner:       "owner",
		Repo:        "repo",
		PreviousTag: "v1.0.0",
		Branch:      "main",
	})
	s.Require().NoError(err)
	s.Require().Len(result, 2)

	// Walk order was [100, 101]; reversal puts 101 first.
	s.Equal("101", result[0].PullRequest.Number)
	s.Equal("100", result[1].PullRequest.Number)
}

func (s *ResolverSuite) Test_CommitsWithoutPullRequestsFails() {
	api := newFakeAPI()
	api.commitForTag = func(string) (string, error) { return "a", nil }
	api.lastCommit = func(string) (string, error) { return "b", nil }
	api.commitsBetween = func(string, string) ([]model.Commit, error) {
		return []model.Commit{
			{SHA: "x", Message: "I made some changes!"},
			{SHA: "y", Message: "More direct pushes"},
		}, nil
	}
	api.pullForCommit = func(string) (*model.PullRequest, error) { return nil, nil }

	_, err := s.newResolver(api).Resolve(context.Background(), Params{
		Owner:       "owner",
		Repo:        "repo",
		PreviousTag: "v1.0.0",
		Branch:      "main",
	})
	s.Require().Error(err)
	s.True(errors.Is(err, ErrNoPullRequests))
}

func (s *ResolverSuite) Test_EmptyRangeYieldsEmptyReport() {
	api := newFakeAPI()
	api.commitForTag = func(string) (string, error) { return "a", nil }
	api.lastCommit = func(string) (string, error) { return "a", nil }
	api.commitsBetween = func(string, string) ([]model.Commit, error) { return nil, nil }

	result, err := s.newResolver(api).Resolve(context.Background(), Params{
		Owner:       "owner",
		Repo:        "repo",
		PreviousTag: "v1.0.0",
		Branch:      "main",
	})
	s.Require().NoError(err)
	s.Empty(result)
}

func (s *ResolverSuite) Test_IgnoresReleaseMerges() {
	api := newFakeAPI()
	api.commitForTag = func(string) (string, error) { return "a", nil }
	api.lastCommit = func(string) (string, error) { return "b", nil }
	api.commitsBetween = func(string, string) ([]model.Commit, error) {
		return []model.Commit{
			{SHA: "r", Message: "Merge pull request #12 from org/release/1.2.0\n\nRelease 1.2.0"},
			{SHA: "f", Message: "Merge pull request #13 from org/feature-branch\n\nAdd the thing"},
		}, nil
	}
	api.pullForCommit = func(sha string) (*model.PullRequest, error) {
		return nil, fmt.Errorf("fallback should not run for %s", sha)
	}
	api.pullDetails = emptyDetails

	result, err := s.newResolver(api).Resolve(context.Background(), Params{
		Owner:               "owner",
		Repo:                "repo",
		PreviousTag:         "v1.0.0",
		Branch:              "main",
		IgnoreReleaseMerges: true,
	})
	s.Require().NoError(err)
	s.Require().Len(result, 1)
	s.Equal("13", result[0].PullRequest.Number)
}

func (s *ResolverSuite) Test_KeepsReleaseMergesByDefault() {
	api := newFakeAPI()
	api.commitForTag = func(string) (string, error) { return "a", nil }
	api.lastCommit = func(string) (string, error) { return "b", nil }
	api.commitsBetween = func(string, string) ([]model.Commit, error) {
		return []model.Commit{
			{SHA: "r", Message: "Merge pull request #12 from org/release/1.2.0\n\nRelease 1.2.0"},
		}, nil
	}
	api.pullDetails = emptyDetails

	result, err := s.newResolver(api).Resolve(context.Background(), Params{
		Owner:       "owner",
		Repo:        "repo",
		PreviousTag: "v1.0.0",
		Branch:      "main",
	})
	s.Require().NoError(err)
	s.Require().Len(result, 1)
	s.Equal("12", result[0].PullRequest.Number)
}

func (s *ResolverSuite) Test_CurrentTagWinsOverBranchHead() {
	resolvedTags := []string{}

	api := newFakeAPI()
	api.commitForTag = func(tag string) (string, error) {
		resolvedTags = append(resolvedTags, tag)
		return "sha-" + tag, nil
	}
	api.commitsBetween = func(from, to string) ([]model.Commit, error) {
		s.Equal("sha-v1.0.0", from)
		s.Equal("sha-v1.1.0", to)
		return nil, nil
	}

	_, err := s.newResolver(api).Resolve(context.Background(), Params{
		Owner:       "owner",
		Repo:        "repo",
		PreviousTag: "v1.0.0",
		CurrentTag:  "v1.1.0",
		Branch:      "main",
	})
	s.Require().NoError(err)
	s.Equal([]string{"v1.0.0", "v1.1.0"}, resolvedTags)
}

func (s *ResolverSuite) Test_RemoteFailureAborts() {
	api := newFakeAPI()
	api.commitForTag = func(string) (string, error) {
		return "", errors.New("github api status 404: nope")
	}

	_, err := s.newResolver(api).Resolve(context.Background(), Params{
		Owner:       "owner",
		Repo:        "repo",
		PreviousTag: "v1.0.0",
		Branch:      "main",
	})
	s.Require().Error(err)
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}
