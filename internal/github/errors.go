package github

import "fmt"

// APIError is a non-2xx response from the GitHub API. It carries the message
// GitHub reported so the user sees the remote reason verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github api status %d", e.StatusCode)
	}
	return fmt.Sprintf("github api status %d: %s", e.StatusCode, e.Message)
}
