package github

// Response shapes for the endpoints the client consumes. Only the fields the
// tool reads are declared; anything else GitHub sends is ignored.

type refResponse struct {
	Object struct {
		Type string `json:"type"`
		SHA  string `json:"sha"`
		URL  string `json:"url"`
	} `json:"object"`
}

type branchCommit struct {
	SHA string `json:"sha"`
}

type tagEntry struct {
	Name string `json:"name"`
}

// Commits is a pointer so a response without the field can be told apart
// from an empty range.
type compareResponse struct {
	Commits *[]compareCommit `json:"commits"`
}

type compareCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
	} `json:"commit"`
}

type pullResponse struct {
	Body   *string `json:"body"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

type commitPull struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

type errorResponse struct {
	Message string `json:"message"`
}
