// Package model defines the entities shared across the changelog pipeline.
package model

// Commit is a single commit as returned by the compare endpoint.
type Commit struct {
	SHA     string
	Message string
}

// PullRequest identifies a merged pull request found in the commit history.
// Number stays a string because it doubles as the dedup key and is rendered
// verbatim in the report.
type PullRequest struct {
	Number string
	Title  string
}

// PullRequestDetails carries the lazily fetched body and labels of a pull
// request. Body is nil when GitHub reports no description.
type PullRequestDetails struct {
	Body   *string
	Labels []string
}

// ExtendedPullRequest pairs a pull request with its fetched details. It is
// the unit that becomes one line of the report.
type ExtendedPullRequest struct {
	PullRequest PullRequest
	Details     PullRequestDetails
}
