// Package commit classifies commit messages and extracts pull request
// references from them. Everything here is pure string matching, no I/O.
package commit

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/barkibu/github-changelog/internal/model"
)

// ErrNotPullRequest is returned by ExtractPullRequest for messages that match
// neither merge template. Callers are expected to check IsPullRequest first.
var ErrNotPullRequest = errors.New("commit is not a pull request merge")

// Merge commits use a double linebreak between the branch name and the title.
var mergeRE = regexp.MustCompile(`^Merge pull request #([0-9]+) from .*\n\n(.*)`)

// Merge commits of a release branch back into the target branch.
var releaseMergeRE = regexp.MustCompile(`^Merge pull request #([0-9]+) from .*/release/.*\n\n(.*)`)

// Squash-and-merge commits use the PR title with the number in parentheses.
var squashRE = regexp.MustCompile(`^(.*) \(#([0-9]+)\).*`)

// Changelog override line inside a PR body, e.g. "CHANGELOG: Added some stuff".
var changelogRE = regexp.MustCompile(`(?m)^CHANGELOG:\s?(.*)`)

// IsPullRequest reports whether a commit message records a merged or squashed
// pull request.
func IsPullRequest(message string) bool {
	return mergeRE.MatchString(message) || squashRE.MatchString(message)
}

// IsReleaseMerge reports whether a merge commit merges a release branch.
func IsReleaseMerge(message string) bool {
	return releaseMergeRE.MatchString(message)
}

// ExtractPullRequest pulls the number and title out of a merge or squash
// commit message. Squash messages may carry trailing text after the
// parenthesized number; it is discarded.
func ExtractPullRequest(message string) (model.PullRequest, error) {
	if m := mergeRE.FindStringSubmatch(message); m != nil {
		return model.PullRequest{Number: m[1], Title: m[2]}, nil
	}
	if m := squashRE.FindStringSubmatch(message); m != nil {
		return model.PullRequest{Number: m[2], Title: m[1]}, nil
	}
	return model.PullRequest{}, fmt.Errorf("%w: %q", ErrNotPullRequest, message)
}

// ExtractChangelog returns the remainder of a CHANGELOG: line found anywhere
// in a pull request body, or nil when the body is absent or has no such line.
func ExtractChangelog(body *string) *string {
	if body == nil {
		return nil
	}
	m := changelogRE.FindStringSubmatch(*body)
	if m == nil {
		return nil
	}
	return &m[1]
}
