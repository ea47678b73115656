// Command gh-changelog generates a changelog between two git tags based on
// GitHub pull request merge commit messages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/barkibu/github-changelog/internal/changelog"
	"github.com/barkibu/github-changelog/internal/config"
	"github.com/barkibu/github-changelog/internal/github"
	"github.com/barkibu/github-changelog/internal/observability"
)

type options struct {
	markdown           bool
	singleLine         bool
	branch             string
	baseURL            string
	apiURL             string
	token              string
	ignoreReleaseMerge bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.markdown, "markdown", false, "output in markdown")
	flag.BoolVar(&opts.markdown, "m", false, "output in markdown (shorthand)")
	flag.BoolVar(&opts.singleLine, "single-line", false, `output as single line joined by \n characters`)
	flag.BoolVar(&opts.singleLine, "s", false, "single-line output (shorthand)")
	flag.StringVar(&opts.branch, "branch", "", "override the target branch (defaults to main)")
	flag.StringVar(&opts.baseURL, "github-base-url", "", "override for GitHub Enterprise, e.g. https://github.my-company.com")
	flag.StringVar(&opts.apiURL, "github-api-url", "", "override for GitHub Enterprise, e.g. https://github.my-company.com/api/v3")
	flag.StringVar(&opts.token, "github-token", "", "GitHub oauth token to auth your requests with")
	flag.BoolVar(&opts.ignoreReleaseMerge, "ignore-release-merge", false, "leave release branch merges out of the changelog")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 || len(args) > 4 {
		usage()
		os.Exit(2)
	}

	if err := run(args, opts); err != nil {
		fmt.Fprintf(os.Stderr, "gh-changelog: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, opts options) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	applyOverrides(cfg, opts)

	logger, err := observability.NewLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	params := changelog.Params{
		Owner:               args[0],
		Repo:                args[1],
		Branch:              cfg.GitHub.Branch,
		IgnoreReleaseMerges: opts.ignoreReleaseMerge,
	}
	if len(args) > 2 {
		params.PreviousTag = args[2]
	}
	if len(args) > 3 {
		params.CurrentTag = args[3]
	}

	client := github.NewClient(cfg, logger)
	resolver := changelog.NewResolver(client, logger)

	pulls, err := resolver.Resolve(ctx, params)
	if err != nil {
		return err
	}

	lines := changelog.FormatChanges(cfg.GitHub.BaseURL, params.Owner, params.Repo, pulls, opts.markdown)
	fmt.Println(changelog.Render(lines, opts.singleLine))

	return nil
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.branch != "" {
		cfg.GitHub.Branch = opts.branch
	}
	if opts.baseURL != "" {
		cfg.GitHub.BaseURL = opts.baseURL
	}
	if opts.apiURL != "" {
		cfg.GitHub.APIURL = opts.apiURL
	}
	if opts.token != "" {
		cfg.GitHub.APIToken = opts.token
	}
}

func usage() {
	fmt.Fprint(flag.CommandLine.Output(),
		"Usage: gh-changelog [flags] OWNER REPO [PREVIOUS [CURRENT]]\n\n"+
			"Generate a changelog between two git tags based on GitHub pull\n"+
			"request merge commit messages.\n\n"+
			"  OWNER     owner of the repo on GitHub\n"+
			"  REPO      name of the repo on GitHub\n"+
			"  PREVIOUS  previous release tag (defaults to the last tag)\n"+
			"  CURRENT   current release tag (defaults to the branch head)\n\n"+
			"Flags:\n")
	flag.PrintDefaults()
}
