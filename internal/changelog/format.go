package changelog

import (
	"fmt"
	"strings"

	"github.com/barkibu/github-changelog/internal/commit"
	"github.com/barkibu/github-changelog/internal/model"
)

// ChangeLevel grades the release impact of a change set. Lower values are
// more severe, so aggregation is a running minimum.
type ChangeLevel int

const (
	Major ChangeLevel = iota + 1
	Minor
	Patch
)

// Labels GitHub users put on pull requests, mapped to the level they imply.
// Lookups are case sensitive; unrecognized labels count as Minor.
var labelLevels = map[string]ChangeLevel{
	"patch":    Patch,
	"hotfix":   Patch,
	"fix":      Patch,
	"minor":    Minor,
	"feature":  Minor,
	"breaking": Major,
	"major":    Major,
}

var levelHeadings = map[ChangeLevel]string{
	Major: "MAJOR RELEASE",
	Minor: "MINOR RELEASE",
	Patch: "PATCH RELEASE",
}

// FormatChanges renders one line per pull request, prefixed with a heading
// for the most severe change level implied by any label in the set.
func FormatChanges(baseURL, owner, repo string, pulls []model.ExtendedPullRequest, markdown bool) []string {
	lines := make([]string, 0, len(pulls)+1)
	level := Patch

	for _, ext := range pulls {
		number := "#" + ext.PullRequest.Number
		if markdown {
			link := fmt.Sprintf("%s/%s/%s/pull/%s", baseURL, owner, repo, ext.PullRequest.Number)
			number = fmt.Sprintf("[%s](%s)", number, link)
		}

		// An unlabeled PR counts as a feature, never silently as a patch.
		if len(ext.Details.Labels) == 0 {
			level = min(level, Minor)
		}
		for _, label := range ext.Details.Labels {
			implied, ok := labelLevels[label]
			if !ok {
				implied = Minor
			}
			level = min(level, implied)
		}

		description := ext.PullRequest.Title
		if override := commit.ExtractChangelog(ext.Details.Body); override != nil {
			description = *override
		}

		lines = append(lines, fmt.Sprintf("- %s %s", description, number))
	}

	return append([]string{levelHeadings[level]}, lines...)
}

// Render joins report lines with real newlines, or with the literal two
// character sequence backslash-n when single-line output is requested.
func Render(lines []string, singleLine bool) string {
	separator := "\n"
	if singleLine {
		separator = `\n`
	}
	return strings.Join(lines, separator)
}
